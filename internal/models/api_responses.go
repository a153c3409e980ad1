package models

import (
	"github.com/google/uuid"

	"tagmaker/internal/keywords"
)

// KeywordPreviewResponse shows what processing an article would produce.
type KeywordPreviewResponse struct {
	ArticleID    uuid.UUID           `json:"article_id"`
	AttachmentID uuid.UUID           `json:"attachment_id"`
	Raw          []string            `json:"raw"`
	Filtered     []string            `json:"filtered"`
	Decisions    []keywords.Decision `json:"decisions"`
}

// ProcessResponse reports the result of processing an article.
type ProcessResponse struct {
	ArticleID uuid.UUID `json:"article_id"`
	Processed bool      `json:"processed"`
	Reason    string    `json:"reason,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// RulesResponse exposes the rules the filter pipeline would use right now.
type RulesResponse struct {
	Blocked            []BlockedKeyword      `json:"blocked"`
	Substitutions      []KeywordSubstitution `json:"substitutions"`
	ExcludedSubstrings []string              `json:"excluded_substrings"`
}
