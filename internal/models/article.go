package models

import (
	"time"

	"github.com/google/uuid"
)

// Post types and statuses that drive automatic processing.
const (
	PostTypePost = "post"

	StatusDraft   = "draft"
	StatusPublish = "publish"
)

// Tag modes
const (
	TagModeAppend  = "append"
	TagModeReplace = "replace"
)

// Article is a piece of content whose tags are derived from its first image.
type Article struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	PostType        string     `json:"post_type"`
	Status          string     `json:"status"`
	FeaturedImageID *uuid.UUID `json:"featured_image_id"`
	FullKeywords    string     `json:"full_keywords"`
	TagsProcessedAt *time.Time `json:"tags_processed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Attachment is a media file uploaded to an article.
type Attachment struct {
	ID        uuid.UUID  `json:"id"`
	ArticleID *uuid.UUID `json:"article_id"`
	Title     string     `json:"title"`
	FilePath  string     `json:"file_path"`
	MIMEType  string     `json:"mime_type"`
	CreatedAt time.Time  `json:"created_at"`
}

// Tag is a content tag.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
