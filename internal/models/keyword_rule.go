package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockedKeyword is a keyword that must never become a tag.
type BlockedKeyword struct {
	ID        uuid.UUID `json:"id"`
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"created_at"`
}

// KeywordSubstitution replaces one keyword with another before tagging.
type KeywordSubstitution struct {
	ID                 uuid.UUID `json:"id"`
	OriginalKeyword    string    `json:"original_keyword"`
	ReplacementKeyword string    `json:"replacement_keyword"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ImportResult counts the outcome of a bulk import.
type ImportResult struct {
	Imported   int `json:"imported"`
	Updated    int `json:"updated"`
	Duplicates int `json:"duplicates"`
}
