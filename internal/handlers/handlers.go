package handlers

import (
	"context"
	"html"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"tagmaker/internal/keywords"
	"tagmaker/internal/models"
	"tagmaker/internal/tagging"
)

// RuleStore manages the blocked list and the substitutions.
type RuleStore interface {
	ListBlockedKeywords(ctx context.Context) ([]models.BlockedKeyword, error)
	AddBlockedKeyword(ctx context.Context, keyword string) (*models.BlockedKeyword, error)
	DeleteBlockedKeyword(ctx context.Context, id uuid.UUID) error
	ClearBlockedKeywords(ctx context.Context) error
	ImportBlockedKeywords(ctx context.Context, keywords []string) (models.ImportResult, error)

	ListKeywordSubstitutions(ctx context.Context) ([]models.KeywordSubstitution, error)
	UpsertKeywordSubstitution(ctx context.Context, original, replacement string) (*models.KeywordSubstitution, bool, error)
	UpdateKeywordSubstitution(ctx context.Context, id uuid.UUID, original, replacement string) error
	DeleteKeywordSubstitution(ctx context.Context, id uuid.UUID) error
	ClearKeywordSubstitutions(ctx context.Context) error
	ImportKeywordSubstitutions(ctx context.Context, subs []keywords.Substitution) (models.ImportResult, error)
}

// Previewer shows what tagging an article would do.
type Previewer interface {
	Preview(ctx context.Context, articleID uuid.UUID) (*tagging.Preview, error)
}

// htmxError returns an error message as HTML that HTMX will display.
// Uses 200 status so HTMX processes the swap (HTMX ignores non-2xx by default).
func htmxError(c fiber.Ctx, message string) error {
	return c.SendString(
		`<div class="p-3 rounded-lg bg-red-50 text-red-700 text-sm">` + html.EscapeString(message) + `</div>`,
	)
}

// formValue returns a copy of a form field. Fiber's value points into the
// request buffer, which is reused once the handler returns.
func formValue(c fiber.Ctx, key string) string {
	return strings.Clone(c.FormValue(key))
}
