package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tagmaker/internal/models"
	"tagmaker/internal/validation"
)

const articleColumns = `id, title, post_type, status, featured_image_id, full_keywords, tags_processed_at, created_at, updated_at`

func scanArticle(row pgx.Row) (*models.Article, error) {
	var a models.Article
	err := row.Scan(&a.ID, &a.Title, &a.PostType, &a.Status, &a.FeaturedImageID,
		&a.FullKeywords, &a.TagsProcessedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetArticleByID retrieves an article.
func (d *DB) GetArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	a, err := scanArticle(d.Pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	return a, err
}

// CreateArticle inserts a new article.
func (d *DB) CreateArticle(ctx context.Context, title, postType, status string) (*models.Article, error) {
	return scanArticle(d.Pool.QueryRow(ctx, `
		INSERT INTO articles (title, post_type, status)
		VALUES ($1, $2, $3)
		RETURNING `+articleColumns,
		title, postType, status))
}

// UpdateArticleStatus changes an article's status and returns the previous one.
func (d *DB) UpdateArticleStatus(ctx context.Context, id uuid.UUID, status string) (string, error) {
	var old string
	err := d.Pool.QueryRow(ctx, `
		UPDATE articles a SET status = $2, updated_at = NOW()
		FROM (SELECT id, status FROM articles WHERE id = $1 FOR UPDATE) prev
		WHERE a.id = prev.id
		RETURNING prev.status
	`, id, status).Scan(&old)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrArticleNotFound
	}
	return old, err
}

// CreateAttachment registers a media file, optionally attached to an article.
func (d *DB) CreateAttachment(ctx context.Context, articleID *uuid.UUID, title, filePath, mimeType string) (*models.Attachment, error) {
	att := &models.Attachment{ArticleID: articleID, Title: title, FilePath: filePath, MIMEType: mimeType}
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO attachments (article_id, title, file_path, mime_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, articleID, title, filePath, mimeType).Scan(&att.ID, &att.CreatedAt)
	if err != nil {
		return nil, err
	}
	return att, nil
}

// GetAttachmentByID retrieves an attachment.
func (d *DB) GetAttachmentByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	var att models.Attachment
	err := d.Pool.QueryRow(ctx, `
		SELECT id, article_id, title, file_path, mime_type, created_at
		FROM attachments WHERE id = $1
	`, id).Scan(&att.ID, &att.ArticleID, &att.Title, &att.FilePath, &att.MIMEType, &att.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAttachmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// SetFeaturedImage sets (or clears, with nil) an article's featured image.
func (d *DB) SetFeaturedImage(ctx context.Context, articleID uuid.UUID, attachmentID *uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `
		UPDATE articles SET featured_image_id = $2, updated_at = NOW() WHERE id = $1
	`, articleID, attachmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// FirstAttachedImage returns the oldest image attached to an article.
func (d *DB) FirstAttachedImage(ctx context.Context, articleID uuid.UUID) (*models.Attachment, error) {
	var att models.Attachment
	err := d.Pool.QueryRow(ctx, `
		SELECT id, article_id, title, file_path, mime_type, created_at
		FROM attachments
		WHERE article_id = $1 AND mime_type LIKE 'image/%'
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`, articleID).Scan(&att.ID, &att.ArticleID, &att.Title, &att.FilePath, &att.MIMEType, &att.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAttachmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// SetArticleTags assigns tags to an article, creating missing tags by slug.
// In replace mode existing tags are removed first, even when names is empty.
// Names whose slug is empty are skipped.
func (d *DB) SetArticleTags(ctx context.Context, articleID uuid.UUID, names []string, mode string) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)`, articleID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrArticleNotFound
	}

	if mode == models.TagModeReplace {
		if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
	}

	for _, name := range names {
		slug := validation.Slugify(name)
		if slug == "" {
			continue
		}
		var tagID uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO tags (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			RETURNING id
		`, name, slug).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("get or create tag %q: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, articleID, tagID); err != nil {
			return fmt.Errorf("assign tag %q: %w", name, err)
		}
	}

	return tx.Commit(ctx)
}

// GetArticleTags returns the tags assigned to an article, by name.
func (d *DB) GetArticleTags(ctx context.Context, articleID uuid.UUID) ([]models.Tag, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = $1
		ORDER BY lower(t.name) ASC
	`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SetFullKeywordsIfEmpty stores the full keyword list unless one is already
// present. Reports whether the value was written.
func (d *DB) SetFullKeywordsIfEmpty(ctx context.Context, articleID uuid.UUID, value string) (bool, error) {
	tag, err := d.Pool.Exec(ctx, `
		UPDATE articles SET full_keywords = $2, updated_at = NOW()
		WHERE id = $1 AND trim(full_keywords) = ''
	`, articleID, value)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkTagsProcessed records that an article's tags were derived from its image.
func (d *DB) MarkTagsProcessed(ctx context.Context, articleID uuid.UUID) error {
	_, err := d.Pool.Exec(ctx, `
		UPDATE articles SET tags_processed_at = NOW() WHERE id = $1
	`, articleID)
	return err
}

// RecordTagFailure counts a failed processing attempt. Once an article has
// failed maxFailures times it is marked processed and leaves the backfill
// queue. Reports whether that happened.
func (d *DB) RecordTagFailure(ctx context.Context, articleID uuid.UUID, maxFailures int) (bool, error) {
	var gaveUp bool
	err := d.Pool.QueryRow(ctx, `
		UPDATE articles SET
			tag_failures = tag_failures + 1,
			tags_processed_at = CASE
				WHEN tag_failures + 1 >= $2 THEN NOW()
				ELSE tags_processed_at
			END
		WHERE id = $1
		RETURNING tags_processed_at IS NOT NULL
	`, articleID, maxFailures).Scan(&gaveUp)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrArticleNotFound
	}
	return gaveUp, err
}

// GetArticlesNeedingTags returns published posts that were never processed.
// Articles with fewer failed attempts come first, then oldest first.
func (d *DB) GetArticlesNeedingTags(ctx context.Context, limit int) ([]models.Article, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE tags_processed_at IS NULL AND status = 'publish' AND post_type = 'post'
		ORDER BY tag_failures ASC, created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}
