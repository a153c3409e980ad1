package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level database error sentinels.
var (
	// Keyword rule errors
	ErrBlockedKeywordNotFound = errors.New("blocked keyword not found")
	ErrDuplicateBlocked       = errors.New("keyword is already blocked")
	ErrSubstitutionNotFound   = errors.New("keyword substitution not found")
	ErrDuplicateSubstitution  = errors.New("a substitution for this keyword already exists")

	// Article errors
	ErrArticleNotFound    = errors.New("article not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
