package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	rulesDesc = prometheus.NewDesc(
		"tagmaker_keyword_rules",
		"Number of stored keyword rules by kind",
		[]string{"kind"},
		nil,
	)

	keywordDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagmaker_keyword_decisions_total",
			Help: "Keywords seen by the filter pipeline, by disposition",
		},
		[]string{"disposition"},
	)

	articlesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagmaker_articles_processed_total",
			Help: "Article tagging runs by outcome",
		},
		[]string{"outcome"},
	)
)

// RuleCounter is the part of the database the collector reads.
type RuleCounter interface {
	CountRules(ctx context.Context) (blocked, substitutions int64, err error)
}

// RuleCollector is a custom Prometheus collector that reads rule counts from
// the database on each scrape.
type RuleCollector struct {
	store RuleCounter
}

// NewRuleCollector returns a collector backed by store.
func NewRuleCollector(store RuleCounter) *RuleCollector {
	return &RuleCollector{store: store}
}

// Describe sends the metric descriptor to the channel.
func (c *RuleCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- rulesDesc
}

// Collect queries the database for rule counts and emits them as gauges.
func (c *RuleCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	blocked, subs, err := c.store.CountRules(ctx)
	if err != nil {
		slog.Error("failed to collect keyword rule metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(rulesDesc, prometheus.GaugeValue, float64(blocked), "blocked")
	ch <- prometheus.MustNewConstMetric(rulesDesc, prometheus.GaugeValue, float64(subs), "substitution")
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(store RuleCounter) {
	initOnce.Do(func() {
		prometheus.MustRegister(NewRuleCollector(store), keywordDecisions, articlesProcessed)
	})
}

// RecordDecision counts one keyword decision.
func RecordDecision(disposition string) {
	keywordDecisions.WithLabelValues(disposition).Inc()
}

// Article outcomes.
const (
	OutcomeTagged     = "tagged"
	OutcomeNoImage    = "no_image"
	OutcomeNoKeywords = "no_keywords"
	OutcomeError      = "error"
)

// RecordArticle counts one tagging run.
func RecordArticle(outcome string) {
	articlesProcessed.WithLabelValues(outcome).Inc()
}
