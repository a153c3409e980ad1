package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tagmaker/internal/models"
)

// ListBlockedKeywords returns all blocked keywords ordered alphabetically.
func (d *DB) ListBlockedKeywords(ctx context.Context) ([]models.BlockedKeyword, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, keyword, created_at
		FROM blocked_keywords
		ORDER BY lower(keyword) ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocked []models.BlockedKeyword
	for rows.Next() {
		var b models.BlockedKeyword
		if err := rows.Scan(&b.ID, &b.Keyword, &b.CreatedAt); err != nil {
			return nil, err
		}
		blocked = append(blocked, b)
	}
	return blocked, rows.Err()
}

// GetBlockedKeywordByID retrieves a single blocked keyword.
func (d *DB) GetBlockedKeywordByID(ctx context.Context, id uuid.UUID) (*models.BlockedKeyword, error) {
	var b models.BlockedKeyword
	err := d.Pool.QueryRow(ctx, `
		SELECT id, keyword, created_at FROM blocked_keywords WHERE id = $1
	`, id).Scan(&b.ID, &b.Keyword, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBlockedKeywordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// AddBlockedKeyword blocks a keyword. Keywords are unique case-insensitively.
func (d *DB) AddBlockedKeyword(ctx context.Context, keyword string) (*models.BlockedKeyword, error) {
	b := &models.BlockedKeyword{Keyword: keyword}
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO blocked_keywords (keyword) VALUES ($1)
		RETURNING id, created_at
	`, keyword).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateBlocked
		}
		return nil, err
	}
	return b, nil
}

// DeleteBlockedKeyword unblocks a keyword by ID.
func (d *DB) DeleteBlockedKeyword(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM blocked_keywords WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlockedKeywordNotFound
	}
	return nil
}

// DeleteBlockedKeywordByName unblocks a keyword by its exact text.
func (d *DB) DeleteBlockedKeywordByName(ctx context.Context, keyword string) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM blocked_keywords WHERE keyword = $1`, keyword)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlockedKeywordNotFound
	}
	return nil
}

// ClearBlockedKeywords removes every blocked keyword.
func (d *DB) ClearBlockedKeywords(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, `DELETE FROM blocked_keywords`)
	return err
}

// ImportBlockedKeywords blocks each keyword, counting those already blocked
// as duplicates.
func (d *DB) ImportBlockedKeywords(ctx context.Context, keywords []string) (models.ImportResult, error) {
	var result models.ImportResult
	for _, k := range keywords {
		tag, err := d.Pool.Exec(ctx, `
			INSERT INTO blocked_keywords (keyword) VALUES ($1)
			ON CONFLICT ((lower(keyword))) DO NOTHING
		`, k)
		if err != nil {
			return result, err
		}
		if tag.RowsAffected() == 0 {
			result.Duplicates++
		} else {
			result.Imported++
		}
	}
	return result, nil
}
