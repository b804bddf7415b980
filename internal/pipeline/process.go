package pipeline

import (
	"context"
	"log/slog"

	"cadenza/internal/catalog"
	"cadenza/internal/classify"
	"cadenza/internal/images"
	"cadenza/internal/logging"
	"cadenza/internal/services"
)

// extraction modality for a classification pass.
type modality string

const (
	modalityText  modality = "text"
	modalityImage modality = "image"
)

// processTextBatch classifies one batch of synopsis-bearing items and
// carries each result through retries, enforcement, and persistence. A
// transport failure on the batch call downgrades every item to an empty
// low-confidence result rather than aborting the run.
func (o *Orchestrator) processTextBatch(ctx context.Context, batch []*catalog.Item, summary *Summary) {
	for _, item := range batch {
		o.markTagging(ctx, item)
	}

	results, err := o.tagger.TagBatch(services.WithPass(ctx, "text-batch"), batch)
	if err != nil {
		o.logger.Warn("batch classification failed, downgrading items",
			logging.Int("items", len(batch)),
			logging.Error(err),
		)
		results = make(map[int64]classify.Result, len(batch))
		for _, item := range batch {
			results[item.ID] = classify.EmptyLow()
		}
	}

	for _, item := range batch {
		o.finishItem(ctx, item, results[item.ID], modalityText, summary)
		o.sleep(o.itemDelay)
	}
}

// processSolo classifies a single item without synopsis text. Items with
// images go through the image path; items with neither text nor images are
// classified from the title alone and always flagged for review, whatever
// confidence the model claims.
func (o *Orchestrator) processSolo(ctx context.Context, item *catalog.Item, summary *Summary) {
	o.markTagging(ctx, item)

	var (
		result classify.Result
		path   modality
		err    error
	)
	if item.HasImages() {
		path = modalityImage
		result, err = o.tagImages(services.WithPass(ctx, "image"), item)
	} else {
		path = modalityText
		result, err = o.tagger.TagItem(services.WithPass(ctx, "text"), item)
	}
	if err != nil {
		o.itemLogger(item).Warn("classification failed, downgrading to low confidence", logging.Error(err))
		result = classify.EmptyLow()
	}
	if !item.HasImages() {
		result.Confidence = classify.ConfidenceLow
	}

	o.finishItem(ctx, item, result, path, summary)
	o.sleep(o.itemDelay)
}

// finishItem runs the retry ladder, the enforcement pass, and persistence
// for one classified item.
func (o *Orchestrator) finishItem(parent context.Context, item *catalog.Item, result classify.Result, path modality, summary *Summary) {
	ctx := itemContext(parent, item)
	logger := logging.WithContext(ctx, o.logger)

	result, low := o.resolveResult(ctx, logger, item, result, path)

	tags := o.tax.Finalize(result.Tags)
	tags, keywords := o.enforcer.Enforce(services.WithPass(ctx, "enforcement"), item, tags, result.Keywords)

	summary.Processed++
	if err := o.persist(ctx, item, tags, keywords, low); err != nil {
		summary.Failed++
		logger.Error("persist failed", logging.Error(err))
		o.recordFailure(ctx, item, err)
		return
	}
	if low {
		summary.Review++
		logger.Info("item flagged for review",
			logging.Any("tags", item.Tags),
			logging.Bool("has_images", item.HasImages()),
		)
	} else {
		summary.Tagged++
		logger.Info("item tagged", logging.Any("tags", item.Tags))
	}
}

// resolveResult applies the retry ladder to an initial classification:
// a low-confidence text result falls back to images, an inconsistent
// result earns one same-modality retry and, for text-path items with
// images, one final image attempt. Exhausting the ladder forces low
// confidence instead of looping.
func (o *Orchestrator) resolveResult(ctx context.Context, logger *slog.Logger, item *catalog.Item, result classify.Result, path modality) (classify.Result, bool) {
	entry := path
	if result.Low() && path == modalityText && item.HasImages() {
		logger.Info("low confidence from text, retrying with images")
		retried, err := o.tagImages(services.WithPass(ctx, "image-retry"), item)
		if err != nil {
			logger.Warn("image retry failed", logging.Error(err))
			retried = classify.EmptyLow()
		}
		result = retried
		path = modalityImage
	}
	if result.Low() {
		return result, true
	}

	if !o.inconsistent(item, result) {
		return result, false
	}

	logger.Info("inconsistent result, retrying same modality")
	o.sleep(o.consistencyDelay)
	retried, err := o.retrySameModality(services.WithPass(ctx, "consistency-retry"), item, path)
	if err != nil {
		logger.Warn("consistency retry failed", logging.Error(err))
		retried = classify.EmptyLow()
	}
	result = retried

	// The final image attempt is reserved for items that entered through the
	// text path, even when a low-confidence fallback already moved them to
	// images.
	if (result.Low() || o.inconsistent(item, result)) && entry == modalityText && item.HasImages() {
		logger.Info("still inconsistent, final image attempt")
		o.sleep(o.consistencyDelay)
		retried, err = o.tagImages(services.WithPass(ctx, "consistency-image-retry"), item)
		if err != nil {
			logger.Warn("consistency image retry failed", logging.Error(err))
			retried = classify.EmptyLow()
		}
		result = retried
	}

	if result.Low() || o.inconsistent(item, result) {
		logger.Info("retries exhausted, forcing low confidence")
		result.Confidence = classify.ConfidenceLow
		return result, true
	}
	return result, false
}

func (o *Orchestrator) retrySameModality(ctx context.Context, item *catalog.Item, path modality) (classify.Result, error) {
	if path == modalityImage {
		return o.tagImages(ctx, item)
	}
	return o.tagger.TagItem(ctx, item)
}

// inconsistent runs the consistency checker over the finalized form of the
// result's tags.
func (o *Orchestrator) inconsistent(item *catalog.Item, result classify.Result) bool {
	return o.checker.HasInconsistency(item, o.tax.Finalize(result.Tags))
}

// tagImages fetches and encodes the item's images before the vision call.
// Zero usable images degrades to an empty low-confidence result inside the
// tagger.
func (o *Orchestrator) tagImages(ctx context.Context, item *catalog.Item) (classify.Result, error) {
	var encoded []images.EncodedImage
	if item.HasImages() {
		encoded = o.fetcher.FetchEncoded(ctx, item.IntroImages)
	}
	return o.tagger.TagImages(ctx, item, encoded)
}

// persist splits out foreign-performer tags awaiting human approval and
// writes the final classification.
func (o *Orchestrator) persist(ctx context.Context, item *catalog.Item, tags, keywords []string, low bool) error {
	foreign, rest := o.tax.SplitForeign(tags)
	item.Tags = rest
	item.PendingForeignTags = foreign
	item.AIKeywords = keywords
	item.NeedReview = low
	item.ErrorMessage = ""
	if low {
		item.Status = catalog.StatusReview
	} else {
		item.Status = catalog.StatusTagged
	}
	if err := o.store.Update(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, "persist", "update item", "", err)
	}
	return nil
}

func (o *Orchestrator) markTagging(ctx context.Context, item *catalog.Item) {
	item.Status = catalog.StatusTagging
	if err := o.store.Update(ctx, item); err != nil {
		o.itemLogger(item).Warn("mark tagging failed", logging.Error(err))
	}
}

// recordFailure persists the failure outcome; a second write failure is
// only logged so the run can continue.
func (o *Orchestrator) recordFailure(ctx context.Context, item *catalog.Item, cause error) {
	item.Status = services.FailureStatus(cause)
	item.ErrorMessage = cause.Error()
	item.NeedReview = true
	if err := o.store.Update(ctx, item); err != nil {
		o.itemLogger(item).Error("record failure failed", logging.Error(err))
	}
	if err := o.notifier.NotifyError(ctx, cause, "persistence"); err != nil {
		o.itemLogger(item).Warn("error notification failed", logging.Error(err))
	}
}

func (o *Orchestrator) itemLogger(item *catalog.Item) *slog.Logger {
	return o.logger.With(logging.Int64(logging.FieldItemID, item.ID))
}
