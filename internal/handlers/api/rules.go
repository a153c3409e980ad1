package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"tagmaker/internal/db"
	"tagmaker/internal/keywords"
	"tagmaker/internal/models"
	"tagmaker/internal/validation"
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

// RuleHandler handles keyword rule management via JSON API.
type RuleHandler struct {
	store    RuleStore
	excluded []string
}

// NewRuleHandler creates a new API rule handler.
func NewRuleHandler(store RuleStore, excluded []string) *RuleHandler {
	return &RuleHandler{store: store, excluded: excluded}
}

// List returns the rules the filter pipeline would use right now.
func (h *RuleHandler) List(c fiber.Ctx) error {
	blocked, err := h.store.ListBlockedKeywords(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch blocked keywords")
	}
	subs, err := h.store.ListKeywordSubstitutions(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch substitutions")
	}

	if blocked == nil {
		blocked = []models.BlockedKeyword{}
	}
	if subs == nil {
		subs = []models.KeywordSubstitution{}
	}
	excluded := h.excluded
	if excluded == nil {
		excluded = []string{}
	}

	return jsonSuccess(c, models.RulesResponse{
		Blocked:            blocked,
		Substitutions:      subs,
		ExcludedSubstrings: excluded,
	})
}

// AddBlocked blocks a keyword.
func (h *RuleHandler) AddBlocked(c fiber.Ctx) error {
	var body struct {
		Keyword string `json:"keyword"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	keyword := keywords.CleanKeyword(body.Keyword)
	if valid, msg := validation.ValidateKeyword(keyword); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	blocked, err := h.store.AddBlockedKeyword(c.Context(), keyword)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateBlocked) {
			return jsonError(c, fiber.StatusConflict, "keyword is already blocked")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to block keyword")
	}

	return jsonCreated(c, blocked)
}

// DeleteBlocked unblocks a keyword.
func (h *RuleHandler) DeleteBlocked(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid blocked keyword id")
	}

	if err := h.store.DeleteBlockedKeyword(c.Context(), id); err != nil {
		if errors.Is(err, db.ErrBlockedKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "blocked keyword not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to unblock keyword")
	}

	return jsonSuccess(c, fiber.Map{"deleted": id})
}

// ClearBlocked removes every blocked keyword.
func (h *RuleHandler) ClearBlocked(c fiber.Ctx) error {
	if err := h.store.ClearBlockedKeywords(c.Context()); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to clear blocked keywords")
	}
	return jsonSuccess(c, fiber.Map{"cleared": true})
}

// ImportBlocked blocks many keywords at once. The body carries either a
// keyword list or free text separated by commas or newlines.
func (h *RuleHandler) ImportBlocked(c fiber.Ctx) error {
	var body struct {
		Keywords []string `json:"keywords"`
		Text     string   `json:"text"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var list []string
	for _, k := range body.Keywords {
		if k = keywords.CleanKeyword(k); k != "" {
			list = append(list, k)
		}
	}
	list = append(list, keywords.ParseBlockedList(body.Text)...)

	valid := list[:0]
	for _, k := range list {
		if ok, _ := validation.ValidateKeyword(k); ok {
			valid = append(valid, k)
		}
	}
	if len(valid) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "no valid keywords to import")
	}

	result, err := h.store.ImportBlockedKeywords(c.Context(), valid)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to import blocked keywords")
	}
	return jsonSuccess(c, result)
}

type substitutionBody struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

func parseSubstitutionBody(c fiber.Ctx) (string, string, string) {
	var body substitutionBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return "", "", "invalid request body"
	}
	original := keywords.CleanKeyword(body.Original)
	replacement := keywords.CleanKeyword(body.Replacement)
	if valid, msg := validation.ValidateSubstitution(original, replacement); !valid {
		return "", "", msg
	}
	return original, replacement, ""
}

// AddSubstitution adds a substitution, replacing any existing one for the
// same original keyword.
func (h *RuleHandler) AddSubstitution(c fiber.Ctx) error {
	original, replacement, msg := parseSubstitutionBody(c)
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	sub, inserted, err := h.store.UpsertKeywordSubstitution(c.Context(), original, replacement)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save substitution")
	}

	if inserted {
		return jsonCreated(c, sub)
	}
	return jsonSuccess(c, sub)
}

// UpdateSubstitution edits both sides of a substitution.
func (h *RuleHandler) UpdateSubstitution(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid substitution id")
	}

	original, replacement, msg := parseSubstitutionBody(c)
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	if err := h.store.UpdateKeywordSubstitution(c.Context(), id, original, replacement); err != nil {
		switch {
		case errors.Is(err, db.ErrSubstitutionNotFound):
			return jsonError(c, fiber.StatusNotFound, "substitution not found")
		case errors.Is(err, db.ErrDuplicateSubstitution):
			return jsonError(c, fiber.StatusConflict, "a substitution for this keyword already exists")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update substitution")
	}

	return jsonSuccess(c, models.KeywordSubstitution{
		ID:                 id,
		OriginalKeyword:    original,
		ReplacementKeyword: replacement,
	})
}

// DeleteSubstitution removes a substitution.
func (h *RuleHandler) DeleteSubstitution(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid substitution id")
	}

	if err := h.store.DeleteKeywordSubstitution(c.Context(), id); err != nil {
		if errors.Is(err, db.ErrSubstitutionNotFound) {
			return jsonError(c, fiber.StatusNotFound, "substitution not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete substitution")
	}

	return jsonSuccess(c, fiber.Map{"deleted": id})
}

// ClearSubstitutions removes every substitution.
func (h *RuleHandler) ClearSubstitutions(c fiber.Ctx) error {
	if err := h.store.ClearKeywordSubstitutions(c.Context()); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to clear substitutions")
	}
	return jsonSuccess(c, fiber.Map{"cleared": true})
}

// ImportSubstitutions adds many substitutions at once. The body carries
// either a list of pairs or text with one "original => replacement" per line.
func (h *RuleHandler) ImportSubstitutions(c fiber.Ctx) error {
	var body struct {
		Substitutions []substitutionBody `json:"substitutions"`
		Text          string             `json:"text"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var subs []keywords.Substitution
	for _, s := range body.Substitutions {
		subs = append(subs, keywords.Substitution{
			Original:    keywords.CleanKeyword(s.Original),
			Replacement: keywords.CleanKeyword(s.Replacement),
		})
	}
	subs = append(subs, keywords.ParseSubstitutionList(body.Text)...)

	valid := subs[:0]
	for _, s := range subs {
		if ok, _ := validation.ValidateSubstitution(s.Original, s.Replacement); ok {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "no valid substitutions to import")
	}

	result, err := h.store.ImportKeywordSubstitutions(c.Context(), valid)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to import substitutions")
	}
	return jsonSuccess(c, result)
}
