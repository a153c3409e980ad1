package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"tagmaker/internal/config"
	"tagmaker/internal/db"
	"tagmaker/internal/keywords"
	"tagmaker/internal/tagging"
	"tagmaker/internal/validation"
)

// AdminHandler serves the rule management page and its htmx partials.
type AdminHandler struct {
	store     RuleStore
	previewer Previewer
	settings  config.Settings
	excluded  []string
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(store RuleStore, previewer Previewer, settings config.Settings, excluded []string) *AdminHandler {
	return &AdminHandler{
		store:     store,
		previewer: previewer,
		settings:  settings,
		excluded:  excluded,
	}
}

// Index renders the admin page.
func (h *AdminHandler) Index(c fiber.Ctx) error {
	blocked, err := h.store.ListBlockedKeywords(c.Context())
	if err != nil {
		return err
	}
	subs, err := h.store.ListKeywordSubstitutions(c.Context())
	if err != nil {
		return err
	}

	admin, _ := c.Locals("admin").(string)
	return c.Render("admin", fiber.Map{
		"Title":         "IPTC TagMaker",
		"Admin":         admin,
		"Blocked":       blocked,
		"Substitutions": subs,
		"Excluded":      h.excluded,
		"Settings":      h.settings,
	})
}

func (h *AdminHandler) renderBlocked(c fiber.Ctx, flash string) error {
	blocked, err := h.store.ListBlockedKeywords(c.Context())
	if err != nil {
		return htmxError(c, "Failed to load blocked keywords")
	}
	return c.Render("partials/blocked_list", fiber.Map{
		"Blocked": blocked,
		"Flash":   flash,
	}, "")
}

func (h *AdminHandler) renderSubstitutions(c fiber.Ctx, flash string) error {
	subs, err := h.store.ListKeywordSubstitutions(c.Context())
	if err != nil {
		return htmxError(c, "Failed to load substitutions")
	}
	return c.Render("partials/substitution_list", fiber.Map{
		"Substitutions": subs,
		"Flash":         flash,
	}, "")
}

// AddBlocked blocks the keyword from the form.
func (h *AdminHandler) AddBlocked(c fiber.Ctx) error {
	keyword := keywords.CleanKeyword(formValue(c, "keyword"))
	if valid, msg := validation.ValidateKeyword(keyword); !valid {
		return htmxError(c, msg)
	}

	if _, err := h.store.AddBlockedKeyword(c.Context(), keyword); err != nil {
		if errors.Is(err, db.ErrDuplicateBlocked) {
			return htmxError(c, fmt.Sprintf("%q is already blocked", keyword))
		}
		slog.Error("failed to block keyword", "keyword", keyword, "error", err)
		return htmxError(c, "Failed to block keyword")
	}
	return h.renderBlocked(c, fmt.Sprintf("Blocked %q", keyword))
}

// DeleteBlocked unblocks a keyword.
func (h *AdminHandler) DeleteBlocked(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return htmxError(c, "Invalid keyword id")
	}
	if err := h.store.DeleteBlockedKeyword(c.Context(), id); err != nil && !errors.Is(err, db.ErrBlockedKeywordNotFound) {
		return htmxError(c, "Failed to unblock keyword")
	}
	return h.renderBlocked(c, "")
}

// ClearBlocked removes every blocked keyword.
func (h *AdminHandler) ClearBlocked(c fiber.Ctx) error {
	if err := h.store.ClearBlockedKeywords(c.Context()); err != nil {
		return htmxError(c, "Failed to clear blocked keywords")
	}
	return h.renderBlocked(c, "All blocked keywords removed")
}

// ImportBlocked blocks every keyword of the pasted list.
func (h *AdminHandler) ImportBlocked(c fiber.Ctx) error {
	var list []string
	for _, k := range keywords.ParseBlockedList(formValue(c, "keywords")) {
		if ok, _ := validation.ValidateKeyword(k); ok {
			list = append(list, k)
		}
	}
	if len(list) == 0 {
		return htmxError(c, "No keywords to import")
	}

	result, err := h.store.ImportBlockedKeywords(c.Context(), list)
	if err != nil {
		return htmxError(c, "Failed to import keywords")
	}
	return h.renderBlocked(c, fmt.Sprintf("Imported %d keywords (%d duplicates skipped)", result.Imported, result.Duplicates))
}

// AddSubstitution saves the substitution from the form.
func (h *AdminHandler) AddSubstitution(c fiber.Ctx) error {
	original := keywords.CleanKeyword(formValue(c, "original"))
	replacement := keywords.CleanKeyword(formValue(c, "replacement"))
	if valid, msg := validation.ValidateSubstitution(original, replacement); !valid {
		return htmxError(c, msg)
	}

	_, inserted, err := h.store.UpsertKeywordSubstitution(c.Context(), original, replacement)
	if err != nil {
		return htmxError(c, "Failed to save substitution")
	}
	flash := fmt.Sprintf("Added %q → %q", original, replacement)
	if !inserted {
		flash = fmt.Sprintf("Updated %q → %q", original, replacement)
	}
	return h.renderSubstitutions(c, flash)
}

// UpdateSubstitution edits a substitution in place.
func (h *AdminHandler) UpdateSubstitution(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return htmxError(c, "Invalid substitution id")
	}
	original := keywords.CleanKeyword(formValue(c, "original"))
	replacement := keywords.CleanKeyword(formValue(c, "replacement"))
	if valid, msg := validation.ValidateSubstitution(original, replacement); !valid {
		return htmxError(c, msg)
	}

	if err := h.store.UpdateKeywordSubstitution(c.Context(), id, original, replacement); err != nil {
		switch {
		case errors.Is(err, db.ErrSubstitutionNotFound):
			return htmxError(c, "Substitution not found")
		case errors.Is(err, db.ErrDuplicateSubstitution):
			return htmxError(c, fmt.Sprintf("A substitution for %q already exists", original))
		}
		return htmxError(c, "Failed to update substitution")
	}
	return h.renderSubstitutions(c, "")
}

// DeleteSubstitution removes a substitution.
func (h *AdminHandler) DeleteSubstitution(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return htmxError(c, "Invalid substitution id")
	}
	if err := h.store.DeleteKeywordSubstitution(c.Context(), id); err != nil && !errors.Is(err, db.ErrSubstitutionNotFound) {
		return htmxError(c, "Failed to delete substitution")
	}
	return h.renderSubstitutions(c, "")
}

// ClearSubstitutions removes every substitution.
func (h *AdminHandler) ClearSubstitutions(c fiber.Ctx) error {
	if err := h.store.ClearKeywordSubstitutions(c.Context()); err != nil {
		return htmxError(c, "Failed to clear substitutions")
	}
	return h.renderSubstitutions(c, "All substitutions removed")
}

// ImportSubstitutions saves every pair of the pasted list.
func (h *AdminHandler) ImportSubstitutions(c fiber.Ctx) error {
	var subs []keywords.Substitution
	for _, s := range keywords.ParseSubstitutionList(formValue(c, "substitutions")) {
		if ok, _ := validation.ValidateSubstitution(s.Original, s.Replacement); ok {
			subs = append(subs, s)
		}
	}
	if len(subs) == 0 {
		return htmxError(c, "No substitutions to import. Use one \"original => replacement\" per line.")
	}

	result, err := h.store.ImportKeywordSubstitutions(c.Context(), subs)
	if err != nil {
		return htmxError(c, "Failed to import substitutions")
	}
	return h.renderSubstitutions(c, fmt.Sprintf("Imported %d substitutions (%d updated)", result.Imported, result.Updated))
}

// Preview renders the keyword decisions for an article.
func (h *AdminHandler) Preview(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Query("article_id"))
	if err != nil {
		return htmxError(c, "Enter a valid article id")
	}

	preview, err := h.previewer.Preview(c.Context(), id)
	switch {
	case errors.Is(err, db.ErrArticleNotFound):
		return htmxError(c, "Article not found")
	case errors.Is(err, tagging.ErrNoImage):
		return htmxError(c, "This article has no image")
	case errors.Is(err, tagging.ErrNoKeywords):
		return htmxError(c, "The article's image has no IPTC keywords")
	case err != nil:
		slog.Error("keyword preview failed", "article_id", id, "error", err)
		return htmxError(c, "Failed to preview keywords")
	}

	return c.Render("partials/preview", fiber.Map{
		"Preview": preview,
	}, "")
}
