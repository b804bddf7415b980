// Package enforce implements the strictly additive correction pass that
// runs after classification, regardless of confidence. It cross-checks the
// item's raw text (and images, when present) for composer mentions the
// primary passes missed, and can only add tags and keywords, never remove
// them.
package enforce

import (
	"context"
	"log/slog"
	"strings"

	"cadenza/internal/catalog"
	"cadenza/internal/images"
	"cadenza/internal/logging"
	"cadenza/internal/taxonomy"
)

// ComposerExtractor is the narrow composer-only extraction surface.
// *classify.Tagger satisfies it.
type ComposerExtractor interface {
	ExtractComposers(ctx context.Context, text string) ([]string, error)
	ExtractComposersFromImages(ctx context.Context, encoded []images.EncodedImage) ([]string, error)
}

// ImageFetcher loads and encodes an item's reference images.
type ImageFetcher interface {
	FetchEncoded(ctx context.Context, urls []string) []images.EncodedImage
}

// Enforcer applies the correction pass.
type Enforcer struct {
	extractor ComposerExtractor
	fetcher   ImageFetcher
	tax       *taxonomy.Taxonomy
	logger    *slog.Logger
}

func New(extractor ComposerExtractor, fetcher ImageFetcher, tax *taxonomy.Taxonomy, logger *slog.Logger) *Enforcer {
	return &Enforcer{
		extractor: extractor,
		fetcher:   fetcher,
		tax:       tax,
		logger:    logging.NewComponentLogger(logger, "enforce"),
	}
}

// Enforce returns the corrected tag and keyword sets for an item. Input
// tags and keywords are always preserved; extraction failures are logged
// and treated as nothing found.
func (e *Enforcer) Enforce(ctx context.Context, item *catalog.Item, tags, keywords []string) ([]string, []string) {
	source := taxonomy.CanonicalText(item.Title + " " + item.Synopsis + " " + strings.Join(keywords, " "))

	extracted := e.extractMentions(ctx, item)
	if len(extracted) > 0 {
		source += " " + taxonomy.CanonicalText(strings.Join(extracted, " "))
	}

	outTags := append([]string(nil), tags...)
	outKeywords := append([]string(nil), keywords...)
	tagSet := make(map[string]bool, len(outTags))
	for _, tag := range outTags {
		tagSet[tag] = true
	}

	// Primary-taxonomy composers mentioned anywhere in the source text get
	// tagged directly.
	for _, composers := range e.tax.EraMap {
		for _, composer := range composers {
			if !tagSet[composer] && strings.Contains(source, taxonomy.CanonicalText(composer)) {
				outTags = append(outTags, composer)
				tagSet[composer] = true
			}
		}
	}

	// Supplementary composers stay out of the tag set but pin down the era
	// and surface the name as a keyword.
	for composer, era := range e.tax.SupplementaryComposers {
		if !strings.Contains(source, taxonomy.CanonicalText(composer)) {
			continue
		}
		if !tagSet[era] {
			outTags = append(outTags, era)
			tagSet[era] = true
		}
		outKeywords = appendKeyword(outKeywords, composer)
	}

	// Extracted names outside the whitelist are kept as keywords so human
	// reviewers see them.
	for _, name := range extracted {
		if name == "" || e.tax.Allowed(name) {
			continue
		}
		outKeywords = appendKeyword(outKeywords, name)
	}

	outTags = e.tax.FilterAllowed(e.tax.AddEraTags(outTags))
	return outTags, taxonomy.DedupeKeywordsFold(outKeywords)
}

// extractMentions runs the narrow composer extraction over text and, when
// the item carries images, over the images too. Names are alias-normalized
// before use; every failure degrades to an empty list.
func (e *Enforcer) extractMentions(ctx context.Context, item *catalog.Item) []string {
	var names []string

	text := strings.TrimSpace(item.Title + " " + item.Synopsis)
	if text != "" {
		extracted, err := e.extractor.ExtractComposers(ctx, text)
		if err != nil {
			logging.WithContext(ctx, e.logger).Warn("text composer extraction failed", logging.Error(err))
		} else {
			names = append(names, extracted...)
		}
	}

	if item.HasImages() {
		encoded := e.fetcher.FetchEncoded(ctx, item.IntroImages)
		if len(encoded) > 0 {
			extracted, err := e.extractor.ExtractComposersFromImages(ctx, encoded)
			if err != nil {
				logging.WithContext(ctx, e.logger).Warn("image composer extraction failed", logging.Error(err))
			} else {
				names = append(names, extracted...)
			}
		}
	}

	return e.tax.NormalizeAliases(names)
}

// appendKeyword adds a keyword unless an equal entry (case-insensitive)
// already exists.
func appendKeyword(keywords []string, keyword string) []string {
	folded := taxonomy.CanonicalText(keyword)
	for _, existing := range keywords {
		if taxonomy.CanonicalText(existing) == folded {
			return keywords
		}
	}
	return append(keywords, keyword)
}
