package taxonomy

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category names used across the pipeline.
const (
	CategoryComposer   = "composer"
	CategoryWorkForm   = "work-form"
	CategoryInstrument = "instrument"
	CategoryEra        = "era"
	CategoryPerformer  = "performer"
)

// Category is a named group of allowed tags. Tag order is preserved so
// review tooling can render categories the way curators entered them.
type Category struct {
	Name string
	Tags []string
}

// Taxonomy holds the tag vocabulary and its derived lookup tables. It is
// passed explicitly into pipeline components so tests can substitute a
// minimal fixture.
type Taxonomy struct {
	Categories []Category

	// EraMap maps an era tag to the composers known to belong to it. Every
	// composer listed here is also a member of the composer category.
	EraMap map[string][]string

	// AliasTable maps non-canonical composer spellings to the canonical
	// spelling used in the composer category.
	AliasTable map[string]string

	// SupplementaryComposers maps composers that are recognized but kept
	// outside the primary taxonomy to their era tag. Used only by the
	// enforcement pass.
	SupplementaryComposers map[string]string

	// SoloInstruments is the fixed instrument list checked when a concerto
	// tag is present without a solo instrument.
	SoloInstruments []string

	// OrchestraTag is the instrument-category tag expected whenever an
	// orchestra or ensemble performs.
	OrchestraTag string

	whitelist map[string]struct{}
	composers map[string]struct{}
	eras      map[string]struct{}
}

// CanonicalText folds text for matching: NFC-normalized and lowercased.
// All substring scans in the pipeline operate on this form.
func CanonicalText(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// buildIndexes populates the derived lookup sets from the category lists.
func (t *Taxonomy) buildIndexes() {
	t.whitelist = make(map[string]struct{})
	t.composers = make(map[string]struct{})
	t.eras = make(map[string]struct{})
	for _, cat := range t.Categories {
		for _, tag := range cat.Tags {
			t.whitelist[tag] = struct{}{}
			switch cat.Name {
			case CategoryComposer:
				t.composers[tag] = struct{}{}
			case CategoryEra:
				t.eras[tag] = struct{}{}
			}
		}
	}
}

// Allowed reports whether tag is part of the whitelist.
func (t *Taxonomy) Allowed(tag string) bool {
	_, ok := t.whitelist[tag]
	return ok
}

// IsComposer reports whether tag belongs to the composer category.
func (t *Taxonomy) IsComposer(tag string) bool {
	_, ok := t.composers[tag]
	return ok
}

// IsEra reports whether tag belongs to the era category.
func (t *Taxonomy) IsEra(tag string) bool {
	_, ok := t.eras[tag]
	return ok
}

// HasEraTag reports whether any era tag is present in tags.
func (t *Taxonomy) HasEraTag(tags []string) bool {
	for _, tag := range tags {
		if t.IsEra(tag) {
			return true
		}
	}
	return false
}

// HasComposerTag reports whether any composer tag is present in tags.
func (t *Taxonomy) HasComposerTag(tags []string) bool {
	for _, tag := range tags {
		if t.IsComposer(tag) {
			return true
		}
	}
	return false
}

// ForeignTags returns the performer-category tags that require separate
// human approval before activation, preserving input order, along with
// the remaining tags.
func (t *Taxonomy) SplitForeign(tags []string) (foreign, rest []string) {
	foreignSet := make(map[string]struct{})
	for _, cat := range t.Categories {
		if cat.Name != CategoryPerformer {
			continue
		}
		for _, tag := range cat.Tags {
			foreignSet[tag] = struct{}{}
		}
	}
	for _, tag := range tags {
		if _, ok := foreignSet[tag]; ok {
			foreign = append(foreign, tag)
		} else {
			rest = append(rest, tag)
		}
	}
	return foreign, rest
}
