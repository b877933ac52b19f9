// Package notifier runs the URL notification pipeline: find the key, derive
// the current URL set, diff it against the sent-URL cache, submit the
// difference to IndexNow and replace the cache.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/indexnow/internal/clock"
	"github.com/JakeFAU/indexnow/internal/indexnow"
	"github.com/JakeFAU/indexnow/internal/keyfile"
	"github.com/JakeFAU/indexnow/internal/metrics"
	"github.com/JakeFAU/indexnow/internal/publisher"
	"github.com/JakeFAU/indexnow/internal/sentcache"
	"github.com/JakeFAU/indexnow/internal/videos"
)

// Config is everything a run needs to know about the site.
type Config struct {
	BaseURL    string
	Host       string
	PublicDir  string
	VideosPath string
	DryRun     bool
}

// Report summarizes one run. It is logged and published.
type Report struct {
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Host          string    `json:"host"`
	Key           string    `json:"key"`
	Discovered    int       `json:"discovered"`
	Pending       int       `json:"pending"`
	Submitted     int       `json:"submitted"`
	BatchesOK     int       `json:"batches_ok"`
	BatchesFailed int       `json:"batches_failed"`
	CacheUpdated  bool      `json:"cache_updated"`
	DryRun        bool      `json:"dry_run"`
	Interrupted   bool      `json:"interrupted"`
}

// Notifier wires the pipeline's collaborators.
type Notifier struct {
	cfg       Config
	cache     sentcache.Store
	submitter *indexnow.Submitter
	publisher publisher.Publisher
	clock     clock.Clock
	logger    *zap.Logger
}

// New creates a Notifier. A nil publisher or clock gets a no-op or the system clock.
func New(
	cfg Config,
	cache sentcache.Store,
	submitter *indexnow.Submitter,
	pub publisher.Publisher,
	clk clock.Clock,
	logger *zap.Logger,
) *Notifier {
	if pub == nil {
		pub = publisher.Noop{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		cfg:       cfg,
		cache:     cache,
		submitter: submitter,
		publisher: pub,
		clock:     clk,
		logger:    logger,
	}
}

// Diff returns the URLs of current that are absent from sent, in current's order.
func Diff(current, sent []string) []string {
	seen := make(map[string]struct{}, len(sent))
	for _, u := range sent {
		seen[u] = struct{}{}
	}
	pending := make([]string, 0, len(current))
	for _, u := range current {
		if _, ok := seen[u]; !ok {
			pending = append(pending, u)
		}
	}
	return pending
}

// Run executes the pipeline once. A missing key aborts it, and an
// interrupted submission returns an error without touching the cache. Every
// other failure is logged and reflected in the report.
func (n *Notifier) Run(ctx context.Context) (Report, error) {
	report := Report{
		StartedAt: n.clock.Now(),
		Host:      n.cfg.Host,
		DryRun:    n.cfg.DryRun,
	}

	key, err := keyfile.Find(n.cfg.PublicDir)
	if err != nil {
		if errors.Is(err, keyfile.ErrKeyNotFound) {
			return report, fmt.Errorf("%w; run the keygen command first", err)
		}
		return report, fmt.Errorf("look up indexnow key: %w", err)
	}
	report.Key = key.Value
	n.logger.Info("Found IndexNow key file", zap.String("path", key.Path))

	current := videos.LoadURLs(n.cfg.VideosPath, n.cfg.BaseURL, n.logger)
	report.Discovered = len(current)
	metrics.SetDiscovered(len(current))

	sent, err := n.cache.Load(ctx)
	if err != nil {
		if errors.Is(err, sentcache.ErrNotFound) {
			n.logger.Info("IndexNow cache not found; submitting every URL")
		} else {
			n.logger.Info("IndexNow cache unreadable; submitting every URL", zap.Error(err))
		}
		sent = nil
	}

	pending := Diff(current, sent)
	report.Pending = len(pending)
	n.logger.Info("Computed pending URLs",
		zap.Int("discovered", len(current)),
		zap.Int("previously_sent", len(sent)),
		zap.Int("pending", len(pending)),
	)

	if n.cfg.DryRun {
		for _, u := range pending {
			n.logger.Debug("Would submit", zap.String("url", u))
		}
		n.logger.Info("Dry run: skipping submission and cache update")
		return n.finish(ctx, report), nil
	}

	result := n.submitter.SubmitAll(ctx, indexnow.Site{
		Host:        n.cfg.Host,
		Key:         key.Value,
		KeyLocation: keyfile.Location(n.cfg.BaseURL, key.Value),
	}, pending)
	report.Submitted = result.URLsAccepted
	report.BatchesOK = result.BatchesOK
	report.BatchesFailed = result.BatchesFailed

	if err := ctx.Err(); err != nil {
		report.Interrupted = true
		n.logger.Warn("IndexNow submission interrupted; cache left unchanged", zap.Error(err))
		return n.finish(ctx, report), fmt.Errorf("submission interrupted: %w", err)
	}

	// The cache always mirrors the current URL set, even after failed batches.
	if err := n.cache.Save(ctx, current); err != nil {
		n.logger.Error("Failed to update IndexNow cache", zap.Error(err))
	} else {
		report.CacheUpdated = true
		n.logger.Info("IndexNow cache updated", zap.Int("urls", len(current)))
	}

	return n.finish(ctx, report), nil
}

func (n *Notifier) finish(ctx context.Context, report Report) Report {
	report.FinishedAt = n.clock.Now()
	metrics.MarkRun("notify", report.FinishedAt)
	n.logger.Info("IndexNow notify finished",
		zap.String("host", report.Host),
		zap.Int("discovered", report.Discovered),
		zap.Int("pending", report.Pending),
		zap.Int("submitted", report.Submitted),
		zap.Int("batches_ok", report.BatchesOK),
		zap.Int("batches_failed", report.BatchesFailed),
		zap.Bool("cache_updated", report.CacheUpdated),
		zap.Bool("dry_run", report.DryRun),
		zap.Bool("interrupted", report.Interrupted),
	)
	if id, err := n.publisher.Publish(ctx, report); err != nil {
		n.logger.Warn("Failed to publish run report", zap.Error(err))
	} else if id != "" {
		n.logger.Debug("Published run report", zap.String("message_id", id))
	}
	return report
}
