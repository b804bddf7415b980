package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"cadenza/internal/catalog"
	"cadenza/internal/images"
	"cadenza/internal/logging"
	"cadenza/internal/services"
	"cadenza/internal/taxonomy"
)

// BatchSize is the number of text items grouped into one tagging call to
// amortize request overhead against the rate-limited endpoint.
const BatchSize = 8

// Completer is the LLM surface the tagger needs. *llm.Client satisfies it.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteJSONVision(ctx context.Context, systemPrompt string, imageURLs []string, trailing string) (string, error)
}

// Tagger issues classification calls against the configured endpoint.
type Tagger struct {
	llm    Completer
	tax    *taxonomy.Taxonomy
	logger *slog.Logger

	taggingPrompt string
}

// NewTagger constructs a tagger bound to a taxonomy.
func NewTagger(completer Completer, tax *taxonomy.Taxonomy, logger *slog.Logger) *Tagger {
	return &Tagger{
		llm:           completer,
		tax:           tax,
		logger:        logging.NewComponentLogger(logger, "classify"),
		taggingPrompt: TaggingPrompt(tax),
	}
}

type batchEntry struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Performers string `json:"performers,omitempty"`
	Producer   string `json:"producer,omitempty"`
	Synopsis   string `json:"synopsis,omitempty"`
}

// TagBatch classifies up to BatchSize items in one text call, returning one
// Result per item ID. A transport failure is returned as an error for the
// caller to coerce; an unparseable response is downgraded here — every item
// gets an empty low-confidence result and the batch is not re-split.
func (t *Tagger) TagBatch(ctx context.Context, items []*catalog.Item) (map[int64]Result, error) {
	if len(items) == 0 {
		return map[int64]Result{}, nil
	}
	if len(items) > BatchSize {
		return nil, services.Wrap(services.ErrValidation, passName(ctx), "tag batch",
			fmt.Sprintf("%d items exceeds batch size %d", len(items), BatchSize), nil)
	}

	entries := make([]batchEntry, 0, len(items))
	expected := make([]string, 0, len(items))
	for _, item := range items {
		id := strconv.FormatInt(item.ID, 10)
		expected = append(expected, id)
		entries = append(entries, batchEntry{
			ID:         id,
			Title:      item.Title,
			Performers: item.Performers,
			Producer:   item.Producer,
			Synopsis:   item.Synopsis,
		})
	}
	encoded, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("tag batch: encode items: %w", err)
	}

	userPrompt := "Concerts:\n" + string(encoded) + "\n\n" + batchResponseInstruction
	raw, err := t.llm.CompleteJSON(ctx, t.taggingPrompt, userPrompt)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, passName(ctx), "tag batch", "", err)
	}

	byKey, err := ParseTagResult(raw, expected)
	if err != nil {
		logging.WithContext(ctx, t.logger).Warn("batch response unparseable, assigning low confidence",
			logging.Int("items", len(items)),
			logging.Error(err),
		)
		results := make(map[int64]Result, len(items))
		for _, item := range items {
			results[item.ID] = EmptyLow()
		}
		return results, nil
	}

	results := make(map[int64]Result, len(items))
	for _, item := range items {
		results[item.ID] = byKey[strconv.FormatInt(item.ID, 10)]
	}
	return results, nil
}

// TagItem classifies a single item from its text fields. Items without any
// text still produce a call with empty content; the model is expected to
// answer low confidence, and parse failures are downgraded the same way as
// in TagBatch.
func (t *Tagger) TagItem(ctx context.Context, item *catalog.Item) (Result, error) {
	userPrompt := itemText(item) + "\n\n" + singleResponseInstruction
	raw, err := t.llm.CompleteJSON(ctx, t.taggingPrompt, userPrompt)
	if err != nil {
		return EmptyLow(), services.Wrap(services.ErrExternal, passName(ctx), "tag item",
			strconv.FormatInt(item.ID, 10), err)
	}
	result, err := ParseSingleResult(raw)
	if err != nil {
		logging.WithContext(ctx, t.logger).Warn("single-item response unparseable",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err),
		)
		return EmptyLow(), nil
	}
	return result, nil
}

// TagImages classifies a single item from its poster/programme images.
// Zero images degrades to an empty low-confidence result without a call.
func (t *Tagger) TagImages(ctx context.Context, item *catalog.Item, encoded []images.EncodedImage) (Result, error) {
	if len(encoded) == 0 {
		return EmptyLow(), nil
	}
	urls := dataURLs(encoded)
	trailing := imageTaggingInstruction + "\n\n" + itemText(item) + "\n\n" + singleResponseInstruction
	raw, err := t.llm.CompleteJSONVision(ctx, t.taggingPrompt, urls, trailing)
	if err != nil {
		return EmptyLow(), services.Wrap(services.ErrExternal, passName(ctx), "tag images",
			strconv.FormatInt(item.ID, 10), err)
	}
	result, err := ParseSingleResult(raw)
	if err != nil {
		logging.WithContext(ctx, t.logger).Warn("image response unparseable",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err),
		)
		return EmptyLow(), nil
	}
	return result, nil
}

// ExtractComposers runs the narrow composer-only extraction over text.
func (t *Tagger) ExtractComposers(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	raw, err := t.llm.CompleteJSON(ctx, composerExtractionPrompt, text)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, passName(ctx), "extract composers", "", err)
	}
	names, err := ParseComposerList(raw)
	if err != nil {
		logging.WithContext(ctx, t.logger).Warn("composer extraction unparseable", logging.Error(err))
		return nil, nil
	}
	return names, nil
}

// ExtractComposersFromImages runs the narrow composer-only extraction over
// the item's images.
func (t *Tagger) ExtractComposersFromImages(ctx context.Context, encoded []images.EncodedImage) ([]string, error) {
	if len(encoded) == 0 {
		return nil, nil
	}
	raw, err := t.llm.CompleteJSONVision(ctx, composerExtractionPrompt, dataURLs(encoded), "List the composers on this program.")
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, passName(ctx), "extract composers from images", "", err)
	}
	names, err := ParseComposerList(raw)
	if err != nil {
		logging.WithContext(ctx, t.logger).Warn("image composer extraction unparseable", logging.Error(err))
		return nil, nil
	}
	return names, nil
}

func passName(ctx context.Context) string {
	pass, _ := services.PassFromContext(ctx)
	return pass
}

func itemText(item *catalog.Item) string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(item.Title)
	if item.Performers != "" {
		b.WriteString("\nPerformers: ")
		b.WriteString(item.Performers)
	}
	if item.Producer != "" {
		b.WriteString("\nProducer: ")
		b.WriteString(item.Producer)
	}
	if item.Synopsis != "" {
		b.WriteString("\nSynopsis: ")
		b.WriteString(item.Synopsis)
	}
	return b.String()
}

func dataURLs(encoded []images.EncodedImage) []string {
	urls := make([]string, 0, len(encoded))
	for _, img := range encoded {
		urls = append(urls, img.DataURL())
	}
	return urls
}
