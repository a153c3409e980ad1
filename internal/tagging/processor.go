// Package tagging turns the keywords embedded in an article's first image
// into the article's tags.
package tagging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tagmaker/internal/config"
	"tagmaker/internal/db"
	"tagmaker/internal/keywords"
	"tagmaker/internal/metrics"
	"tagmaker/internal/models"
)

var (
	ErrNoImage    = errors.New("article has no image")
	ErrNoKeywords = errors.New("image has no IPTC keywords")
)

// Skip reasons reported by the hooks.
const (
	ReasonAutosave      = "autosave"
	ReasonRevision      = "revision"
	ReasonPostType      = "unsupported post type"
	ReasonDisabled      = "automatic processing disabled"
	ReasonNotPublishing = "not a transition to publish"
	ReasonNoImage       = "no image"
	ReasonNoKeywords    = "no keywords"
)

// RuleStore supplies the stored block and substitution lists.
type RuleStore interface {
	LoadRules(ctx context.Context) (keywords.Rules, error)
}

// ArticleStore is the content side: articles, their media and their tags.
type ArticleStore interface {
	GetArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	GetAttachmentByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	FirstAttachedImage(ctx context.Context, articleID uuid.UUID) (*models.Attachment, error)
	SetArticleTags(ctx context.Context, articleID uuid.UUID, names []string, mode string) error
	SetFullKeywordsIfEmpty(ctx context.Context, articleID uuid.UUID, value string) (bool, error)
	MarkTagsProcessed(ctx context.Context, articleID uuid.UUID) error
}

// KeywordReader extracts embedded keywords from an image file.
type KeywordReader interface {
	ReadKeywords(path string) ([]string, bool)
}

// Preview is what processing an article would do, without doing it.
type Preview struct {
	Article    *models.Article
	Attachment *models.Attachment
	Raw        []string
	Filtered   []string
	Decisions  []keywords.Decision
}

// Result reports a processing run.
type Result struct {
	ArticleID         uuid.UUID
	Processed         bool
	Reason            string
	AttachmentID      uuid.UUID
	Raw               []string
	Tags              []string
	FullKeywordsSaved bool
}

// SaveEvent is sent by the CMS whenever an article is saved.
type SaveEvent struct {
	ArticleID uuid.UUID
	Autosave  bool
	Revision  bool
}

// StatusChange is sent by the CMS when an article changes status.
type StatusChange struct {
	ArticleID uuid.UUID
	OldStatus string
	NewStatus string
}

// Processor runs the tagging workflow. Rules are loaded from the store on
// every run and never cached.
type Processor struct {
	rules    RuleStore
	articles ArticleStore
	reader   KeywordReader
	settings config.Settings
	excluded []string
}

// NewProcessor creates a Processor. excluded is the substring list applied
// on top of the stored rules.
func NewProcessor(rules RuleStore, articles ArticleStore, reader KeywordReader, settings config.Settings, excluded []string) *Processor {
	return &Processor{
		rules:    rules,
		articles: articles,
		reader:   reader,
		settings: settings,
		excluded: excluded,
	}
}

// Settings returns the settings the processor was built with.
func (p *Processor) Settings() config.Settings {
	return p.settings
}

// ExcludedSubstrings returns the configured excluded substrings.
func (p *Processor) ExcludedSubstrings() []string {
	return p.excluded
}

// FirstImage returns the image whose keywords tag the article: the featured
// image, else (unless only featured images are allowed) the oldest attached
// image.
func (p *Processor) FirstImage(ctx context.Context, articleID uuid.UUID) (*models.Attachment, error) {
	article, err := p.articles.GetArticleByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return p.firstImage(ctx, article)
}

func (p *Processor) firstImage(ctx context.Context, article *models.Article) (*models.Attachment, error) {
	if article.FeaturedImageID != nil {
		att, err := p.articles.GetAttachmentByID(ctx, *article.FeaturedImageID)
		switch {
		case err == nil:
			return att, nil
		case !errors.Is(err, db.ErrAttachmentNotFound):
			return nil, err
		}
	}

	if p.settings.ProcessFeaturedImageOnly {
		return nil, ErrNoImage
	}

	att, err := p.articles.FirstAttachedImage(ctx, article.ID)
	if errors.Is(err, db.ErrAttachmentNotFound) {
		return nil, ErrNoImage
	}
	if err != nil {
		return nil, err
	}
	return att, nil
}

func (p *Processor) evaluate(ctx context.Context, articleID uuid.UUID) (*Preview, error) {
	article, err := p.articles.GetArticleByID(ctx, articleID)
	if err != nil {
		return nil, err
	}

	att, err := p.firstImage(ctx, article)
	if err != nil {
		return nil, err
	}

	raw, ok := p.reader.ReadKeywords(att.FilePath)
	if !ok || len(raw) == 0 {
		return nil, ErrNoKeywords
	}

	rules, err := p.rules.LoadRules(ctx)
	if err != nil {
		return nil, err
	}
	rules.ExcludedSubstrings = p.excluded

	decisions := keywords.New(rules).Evaluate(raw)
	filtered := make([]string, 0, len(decisions))
	for _, d := range decisions {
		if !d.Dropped() {
			filtered = append(filtered, d.Keyword)
		}
	}

	return &Preview{
		Article:    article,
		Attachment: att,
		Raw:        raw,
		Filtered:   filtered,
		Decisions:  decisions,
	}, nil
}

// Preview reports what Process would do to the article.
func (p *Processor) Preview(ctx context.Context, articleID uuid.UUID) (*Preview, error) {
	return p.evaluate(ctx, articleID)
}

// Process reads the keywords of the article's first image, filters them and
// assigns the survivors as tags. When the image carries more than
// MinimumKeywordsForFullKW keywords and the article has no full keyword list
// yet, the filtered list is stored as one.
func (p *Processor) Process(ctx context.Context, articleID uuid.UUID) (*Result, error) {
	preview, err := p.evaluate(ctx, articleID)
	if err != nil {
		p.recordFailure(ctx, articleID, err)
		return nil, err
	}

	for _, d := range preview.Decisions {
		metrics.RecordDecision(string(d.Disposition))
	}

	if err := p.articles.SetArticleTags(ctx, articleID, preview.Filtered, p.settings.TagMode); err != nil {
		metrics.RecordArticle(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to assign tags: %w", err)
	}

	result := &Result{
		ArticleID:    articleID,
		Processed:    true,
		AttachmentID: preview.Attachment.ID,
		Raw:          preview.Raw,
		Tags:         preview.Filtered,
	}

	if len(preview.Raw) > p.settings.MinimumKeywordsForFullKW {
		saved, err := p.articles.SetFullKeywordsIfEmpty(ctx, articleID, strings.Join(preview.Filtered, ","))
		if err != nil {
			metrics.RecordArticle(metrics.OutcomeError)
			return nil, fmt.Errorf("failed to save full keywords: %w", err)
		}
		result.FullKeywordsSaved = saved
	}

	if err := p.articles.MarkTagsProcessed(ctx, articleID); err != nil {
		slog.Warn("failed to mark article processed", "article_id", articleID, "error", err)
	}

	metrics.RecordArticle(metrics.OutcomeTagged)
	slog.Debug("article tagged",
		"article_id", articleID,
		"attachment_id", preview.Attachment.ID,
		"raw", len(preview.Raw),
		"tags", len(preview.Filtered),
		"mode", p.settings.TagMode,
	)
	return result, nil
}

// recordFailure counts a failed run. Articles without an image or keywords
// are still marked processed so the backfill job moves past them.
func (p *Processor) recordFailure(ctx context.Context, articleID uuid.UUID, err error) {
	switch {
	case errors.Is(err, ErrNoImage):
		metrics.RecordArticle(metrics.OutcomeNoImage)
	case errors.Is(err, ErrNoKeywords):
		metrics.RecordArticle(metrics.OutcomeNoKeywords)
	default:
		metrics.RecordArticle(metrics.OutcomeError)
		return
	}
	if markErr := p.articles.MarkTagsProcessed(ctx, articleID); markErr != nil {
		slog.Warn("failed to mark article processed", "article_id", articleID, "error", markErr)
	}
}

// OnSave handles an article save. Autosaves, revisions and non-post types
// are ignored, as is everything when automatic processing is off.
func (p *Processor) OnSave(ctx context.Context, ev SaveEvent) (*Result, error) {
	skip := func(reason string) (*Result, error) {
		slog.Debug("skipping article save", "article_id", ev.ArticleID, "reason", reason)
		return &Result{ArticleID: ev.ArticleID, Reason: reason}, nil
	}

	switch {
	case ev.Autosave:
		return skip(ReasonAutosave)
	case ev.Revision:
		return skip(ReasonRevision)
	case !p.settings.AutoProcessOnSave:
		return skip(ReasonDisabled)
	}

	article, err := p.articles.GetArticleByID(ctx, ev.ArticleID)
	if err != nil {
		return nil, err
	}
	if article.PostType != models.PostTypePost {
		return skip(ReasonPostType)
	}

	return p.processForHook(ctx, ev.ArticleID)
}

// OnStatusChange handles a status transition. Only a transition into publish
// from another status triggers processing.
func (p *Processor) OnStatusChange(ctx context.Context, ch StatusChange) (*Result, error) {
	skip := func(reason string) (*Result, error) {
		slog.Debug("skipping status change", "article_id", ch.ArticleID, "reason", reason)
		return &Result{ArticleID: ch.ArticleID, Reason: reason}, nil
	}

	if ch.NewStatus != models.StatusPublish || ch.OldStatus == models.StatusPublish {
		return skip(ReasonNotPublishing)
	}
	if !p.settings.AutoProcessOnSave {
		return skip(ReasonDisabled)
	}

	article, err := p.articles.GetArticleByID(ctx, ch.ArticleID)
	if err != nil {
		return nil, err
	}
	if article.PostType != models.PostTypePost {
		return skip(ReasonPostType)
	}

	return p.processForHook(ctx, ch.ArticleID)
}

// processForHook runs Process and reports a missing image or missing
// keywords as an unprocessed result instead of an error.
func (p *Processor) processForHook(ctx context.Context, articleID uuid.UUID) (*Result, error) {
	result, err := p.Process(ctx, articleID)
	switch {
	case errors.Is(err, ErrNoImage):
		return &Result{ArticleID: articleID, Reason: ReasonNoImage}, nil
	case errors.Is(err, ErrNoKeywords):
		return &Result{ArticleID: articleID, Reason: ReasonNoKeywords}, nil
	case err != nil:
		return nil, err
	}
	return result, nil
}
