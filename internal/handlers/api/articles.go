package api

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"tagmaker/internal/models"
	"tagmaker/internal/tagging"
)

// Tagger runs the tagging workflow for one article.
type Tagger interface {
	Preview(ctx context.Context, articleID uuid.UUID) (*tagging.Preview, error)
	Process(ctx context.Context, articleID uuid.UUID) (*tagging.Result, error)
	OnSave(ctx context.Context, ev tagging.SaveEvent) (*tagging.Result, error)
	OnStatusChange(ctx context.Context, ch tagging.StatusChange) (*tagging.Result, error)
}

// TagLister reads an article's current tags.
type TagLister interface {
	GetArticleTags(ctx context.Context, articleID uuid.UUID) ([]models.Tag, error)
}

// ArticleHandler exposes the CMS hooks and the per-article tools.
type ArticleHandler struct {
	tagger Tagger
	tags   TagLister
}

// NewArticleHandler creates a new API article handler.
func NewArticleHandler(tagger Tagger, tags TagLister) *ArticleHandler {
	return &ArticleHandler{tagger: tagger, tags: tags}
}

func articleID(c fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func processResponse(r *tagging.Result) models.ProcessResponse {
	resp := models.ProcessResponse{
		ArticleID: r.ArticleID,
		Processed: r.Processed,
		Reason:    r.Reason,
		Tags:      r.Tags,
	}
	if r.FullKeywordsSaved {
		resp.Message = "full keyword list saved"
	}
	return resp
}

// Saved is the hook the CMS calls after an article is saved.
func (h *ArticleHandler) Saved(c fiber.Ctx) error {
	id, ok := articleID(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid article id")
	}

	var body struct {
		Autosave bool `json:"autosave"`
		Revision bool `json:"revision"`
	}
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	result, err := h.tagger.OnSave(c.Context(), tagging.SaveEvent{
		ArticleID: id,
		Autosave:  body.Autosave,
		Revision:  body.Revision,
	})
	if err != nil {
		return taggingError(c, err)
	}
	return jsonSuccess(c, processResponse(result))
}

// Transition is the hook the CMS calls when an article changes status.
func (h *ArticleHandler) Transition(c fiber.Ctx) error {
	id, ok := articleID(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid article id")
	}

	var body struct {
		OldStatus string `json:"old_status"`
		NewStatus string `json:"new_status"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.NewStatus == "" {
		return jsonError(c, fiber.StatusBadRequest, "new_status is required")
	}

	result, err := h.tagger.OnStatusChange(c.Context(), tagging.StatusChange{
		ArticleID: id,
		OldStatus: body.OldStatus,
		NewStatus: body.NewStatus,
	})
	if err != nil {
		return taggingError(c, err)
	}
	return jsonSuccess(c, processResponse(result))
}

// Preview shows which keywords would become tags, and why the others would not.
func (h *ArticleHandler) Preview(c fiber.Ctx) error {
	id, ok := articleID(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid article id")
	}

	preview, err := h.tagger.Preview(c.Context(), id)
	if err != nil {
		return taggingError(c, err)
	}

	return jsonSuccess(c, models.KeywordPreviewResponse{
		ArticleID:    id,
		AttachmentID: preview.Attachment.ID,
		Raw:          preview.Raw,
		Filtered:     preview.Filtered,
		Decisions:    preview.Decisions,
	})
}

// Process tags the article now, regardless of its type or status.
func (h *ArticleHandler) Process(c fiber.Ctx) error {
	id, ok := articleID(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid article id")
	}

	result, err := h.tagger.Process(c.Context(), id)
	if err != nil {
		return taggingError(c, err)
	}
	return jsonSuccess(c, processResponse(result))
}

// Tags lists the article's current tags.
func (h *ArticleHandler) Tags(c fiber.Ctx) error {
	id, ok := articleID(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid article id")
	}

	tags, err := h.tags.GetArticleTags(c.Context(), id)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch tags")
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return jsonSuccess(c, tags)
}
