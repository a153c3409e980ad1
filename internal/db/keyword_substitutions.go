package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tagmaker/internal/keywords"
	"tagmaker/internal/models"
)

// ListKeywordSubstitutions returns all substitutions in creation order,
// which is the order the filter pipeline matches them in.
func (d *DB) ListKeywordSubstitutions(ctx context.Context) ([]models.KeywordSubstitution, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, original_keyword, replacement_keyword, created_at, updated_at
		FROM keyword_substitutions
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.KeywordSubstitution
	for rows.Next() {
		var s models.KeywordSubstitution
		if err := rows.Scan(&s.ID, &s.OriginalKeyword, &s.ReplacementKeyword, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// GetKeywordSubstitutionByID retrieves a single substitution.
func (d *DB) GetKeywordSubstitutionByID(ctx context.Context, id uuid.UUID) (*models.KeywordSubstitution, error) {
	var s models.KeywordSubstitution
	err := d.Pool.QueryRow(ctx, `
		SELECT id, original_keyword, replacement_keyword, created_at, updated_at
		FROM keyword_substitutions WHERE id = $1
	`, id).Scan(&s.ID, &s.OriginalKeyword, &s.ReplacementKeyword, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubstitutionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertKeywordSubstitution adds a substitution, or replaces the existing one
// for the same original keyword (case-insensitive). inserted is false when an
// existing row was updated.
func (d *DB) UpsertKeywordSubstitution(ctx context.Context, original, replacement string) (sub *models.KeywordSubstitution, inserted bool, err error) {
	s := &models.KeywordSubstitution{OriginalKeyword: original, ReplacementKeyword: replacement}
	err = d.Pool.QueryRow(ctx, `
		INSERT INTO keyword_substitutions (original_keyword, replacement_keyword)
		VALUES ($1, $2)
		ON CONFLICT ((lower(original_keyword))) DO UPDATE SET
			original_keyword = EXCLUDED.original_keyword,
			replacement_keyword = EXCLUDED.replacement_keyword,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`, original, replacement).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &inserted)
	if err != nil {
		return nil, false, err
	}
	return s, inserted, nil
}

// UpdateKeywordSubstitution changes both sides of an existing substitution.
func (d *DB) UpdateKeywordSubstitution(ctx context.Context, id uuid.UUID, original, replacement string) error {
	tag, err := d.Pool.Exec(ctx, `
		UPDATE keyword_substitutions
		SET original_keyword = $1, replacement_keyword = $2, updated_at = NOW()
		WHERE id = $3
	`, original, replacement, id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSubstitution
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubstitutionNotFound
	}
	return nil
}

// DeleteKeywordSubstitution removes a substitution by ID.
func (d *DB) DeleteKeywordSubstitution(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM keyword_substitutions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubstitutionNotFound
	}
	return nil
}

// ClearKeywordSubstitutions removes every substitution.
func (d *DB) ClearKeywordSubstitutions(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, `DELETE FROM keyword_substitutions`)
	return err
}

// ImportKeywordSubstitutions upserts each substitution.
func (d *DB) ImportKeywordSubstitutions(ctx context.Context, subs []keywords.Substitution) (models.ImportResult, error) {
	var result models.ImportResult
	for _, s := range subs {
		_, inserted, err := d.UpsertKeywordSubstitution(ctx, s.Original, s.Replacement)
		if err != nil {
			return result, err
		}
		if inserted {
			result.Imported++
		} else {
			result.Updated++
		}
	}
	return result, nil
}
