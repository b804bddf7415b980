package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cadenza/internal/catalog"
	"cadenza/internal/classify"
	"cadenza/internal/config"
	"cadenza/internal/consistency"
	"cadenza/internal/images"
	"cadenza/internal/logging"
	"cadenza/internal/notifications"
	"cadenza/internal/services"
	"cadenza/internal/taxonomy"
)

// Tagger is the classification surface the orchestrator drives.
// *classify.Tagger satisfies it.
type Tagger interface {
	TagBatch(ctx context.Context, items []*catalog.Item) (map[int64]classify.Result, error)
	TagItem(ctx context.Context, item *catalog.Item) (classify.Result, error)
	TagImages(ctx context.Context, item *catalog.Item, encoded []images.EncodedImage) (classify.Result, error)
}

// Enforcer is the additive correction pass. *enforce.Enforcer satisfies it.
type Enforcer interface {
	Enforce(ctx context.Context, item *catalog.Item, tags, keywords []string) ([]string, []string)
}

// ImageFetcher loads and encodes an item's reference images.
type ImageFetcher interface {
	FetchEncoded(ctx context.Context, urls []string) []images.EncodedImage
}

// Summary aggregates the outcome of one run for the console report and
// the completion notification.
type Summary struct {
	Processed int
	Tagged    int
	Review    int
	Failed    int
	Duration  time.Duration
}

// Orchestrator drains pending catalog items through classification,
// consistency retries, enforcement, and persistence.
type Orchestrator struct {
	store    *catalog.Store
	tagger   Tagger
	enforcer Enforcer
	fetcher  ImageFetcher
	checker  *consistency.Checker
	tax      *taxonomy.Taxonomy
	notifier notifications.Service
	logger   *slog.Logger

	itemDelay        time.Duration
	consistencyDelay time.Duration
	sleep            func(time.Duration)
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithSleeper overrides how pacing sleeps are performed (useful for tests).
func WithSleeper(sleep func(time.Duration)) Option {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// New wires an orchestrator from its collaborators.
func New(
	cfg *config.Config,
	store *catalog.Store,
	tagger Tagger,
	enforcer Enforcer,
	fetcher ImageFetcher,
	tax *taxonomy.Taxonomy,
	notifier notifications.Service,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	o := &Orchestrator{
		store:            store,
		tagger:           tagger,
		enforcer:         enforcer,
		fetcher:          fetcher,
		checker:          consistency.NewChecker(tax),
		tax:              tax,
		notifier:         notifier,
		logger:           logging.NewComponentLogger(logger, "pipeline"),
		itemDelay:        time.Duration(cfg.Pipeline.ItemDelayMS) * time.Millisecond,
		consistencyDelay: time.Duration(cfg.Pipeline.ConsistencyRetryDelayMS) * time.Millisecond,
		sleep:            time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes every pending item once and returns the run summary.
// Per-item failures are counted and logged; only context cancellation or a
// failure to read the queue aborts the run.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	summary := Summary{}

	if reset, err := o.store.ResetStale(ctx); err != nil {
		o.logger.Warn("reset stale items failed", logging.Error(err))
	} else if reset > 0 {
		o.logger.Info("reset stale items", logging.Int64("count", reset))
	}

	pending, err := o.store.NextUntagged(ctx, 0)
	if err != nil {
		return summary, err
	}
	if len(pending) == 0 {
		o.logger.Info("no pending items")
		summary.Duration = time.Since(started)
		return summary, nil
	}

	o.logger.Info("run started", logging.Int("pending", len(pending)))
	if err := o.notifier.NotifyRunStarted(ctx, len(pending)); err != nil {
		o.logger.Warn("run-started notification failed", logging.Error(err))
	}

	textItems := make([]*catalog.Item, 0, len(pending))
	soloItems := make([]*catalog.Item, 0)
	for _, item := range pending {
		if item.HasSynopsis() {
			textItems = append(textItems, item)
		} else {
			soloItems = append(soloItems, item)
		}
	}

	for start := 0; start < len(textItems); start += classify.BatchSize {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}
		end := min(start+classify.BatchSize, len(textItems))
		o.processTextBatch(ctx, textItems[start:end], &summary)
	}

	for _, item := range soloItems {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}
		o.processSolo(ctx, item, &summary)
	}

	summary.Duration = time.Since(started)
	o.logger.Info("run completed",
		logging.Int("processed", summary.Processed),
		logging.Int("tagged", summary.Tagged),
		logging.Int("review", summary.Review),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration),
	)
	if err := o.notifier.NotifyRunCompleted(ctx, summary.Tagged, summary.Review, summary.Failed, summary.Duration); err != nil {
		o.logger.Warn("run-completed notification failed", logging.Error(err))
	}
	return summary, nil
}

// itemContext annotates ctx with item and correlation identifiers used by
// downstream logging.
func itemContext(ctx context.Context, item *catalog.Item) context.Context {
	ctx = services.WithItemID(ctx, item.ID)
	return services.WithRequestID(ctx, uuid.NewString())
}
