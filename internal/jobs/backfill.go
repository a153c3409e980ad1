package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tagmaker/internal/models"
	"tagmaker/internal/tagging"
)

const (
	// batchSize is the number of articles processed per tick.
	batchSize = 50
	// maxFailures is how many failed attempts an article gets before it is
	// taken out of the queue.
	maxFailures = 3
)

// ArticleLister finds published posts that were never tagged and tracks
// failed attempts.
type ArticleLister interface {
	GetArticlesNeedingTags(ctx context.Context, limit int) ([]models.Article, error)
	RecordTagFailure(ctx context.Context, articleID uuid.UUID, maxFailures int) (bool, error)
}

// ArticleProcessor tags a single article.
type ArticleProcessor interface {
	Process(ctx context.Context, articleID uuid.UUID) (*tagging.Result, error)
}

// Backfill tags published articles in the background.
type Backfill struct {
	articles  ArticleLister
	processor ArticleProcessor
	interval  time.Duration
}

// NewBackfill creates a new backfill job.
func NewBackfill(articles ArticleLister, processor ArticleProcessor, interval time.Duration) *Backfill {
	return &Backfill{
		articles:  articles,
		processor: processor,
		interval:  interval,
	}
}

// Start begins the background loop. It blocks until ctx is cancelled.
func (b *Backfill) Start(ctx context.Context) {
	slog.Info("backfill started", "interval", b.interval, "batch", batchSize)

	// Run immediately on start
	b.RunOnce(ctx)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("backfill stopped")
			return
		case <-ticker.C:
			b.RunOnce(ctx)
		}
	}
}

// RunOnce processes one batch and returns how many articles were tagged.
func (b *Backfill) RunOnce(ctx context.Context) int {
	articles, err := b.articles.GetArticlesNeedingTags(ctx, batchSize)
	if err != nil {
		slog.Error("backfill: failed to list articles", "error", err)
		return 0
	}
	if len(articles) == 0 {
		return 0
	}

	slog.Info("backfill: processing articles", "count", len(articles))

	tagged := 0
	for _, a := range articles {
		select {
		case <-ctx.Done():
			return tagged
		default:
		}

		_, err := b.processor.Process(ctx, a.ID)
		switch {
		case err == nil:
			tagged++
		case errors.Is(err, tagging.ErrNoImage), errors.Is(err, tagging.ErrNoKeywords):
			slog.Debug("backfill: nothing to tag", "article_id", a.ID, "reason", err)
		default:
			slog.Error("backfill: failed to process article", "article_id", a.ID, "error", err)
			gaveUp, ferr := b.articles.RecordTagFailure(ctx, a.ID, maxFailures)
			if ferr != nil {
				slog.Warn("backfill: failed to record failure", "article_id", a.ID, "error", ferr)
			} else if gaveUp {
				slog.Warn("backfill: giving up on article", "article_id", a.ID, "attempts", maxFailures)
			}
		}
	}
	return tagged
}
