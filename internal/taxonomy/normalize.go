package taxonomy

import "strings"

// NormalizeAliases replaces known spelling variants with their canonical
// form. Unknown tags pass through untouched; filtering happens downstream.
func (t *Taxonomy) NormalizeAliases(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if canonical, ok := t.AliasTable[tag]; ok {
			tag = canonical
		}
		out = append(out, tag)
	}
	return out
}

// FilterAllowed drops any tag not present in the whitelist, preserving the
// order of surviving tags.
func (t *Taxonomy) FilterAllowed(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t.Allowed(tag) {
			out = append(out, tag)
		}
	}
	return out
}

// AddEraTags appends the era tag for every era whose composers intersect
// tags. Multiple eras may be added for mixed-program concerts. Already
// present era tags are not duplicated.
func (t *Taxonomy) AddEraTags(tags []string) []string {
	present := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		present[tag] = struct{}{}
	}
	out := append([]string(nil), tags...)
	for _, era := range t.eraOrder() {
		if _, ok := present[era]; ok {
			continue
		}
		for _, composer := range t.EraMap[era] {
			if _, ok := present[composer]; ok {
				out = append(out, era)
				present[era] = struct{}{}
				break
			}
		}
	}
	return out
}

// Finalize normalizes aliases, filters against the whitelist, injects era
// tags implied by present composers, and filters once more. Era injection
// can only add whitelist members, so the second filter is a safety net for
// future taxonomy edits rather than dead code. Finalize is idempotent and
// its output is always a subset of the whitelist.
func (t *Taxonomy) Finalize(raw []string) []string {
	tags := t.NormalizeAliases(raw)
	tags = t.FilterAllowed(tags)
	tags = t.AddEraTags(tags)
	tags = t.FilterAllowed(tags)
	return dedupeTags(tags)
}

// eraOrder returns era names in category order so injected tags are stable
// across runs. Eras missing from the category list fall back to map order.
func (t *Taxonomy) eraOrder() []string {
	for _, cat := range t.Categories {
		if cat.Name == CategoryEra {
			ordered := make([]string, 0, len(cat.Tags))
			for _, era := range cat.Tags {
				if _, ok := t.EraMap[era]; ok {
					ordered = append(ordered, era)
				}
			}
			if len(ordered) > 0 {
				return ordered
			}
		}
	}
	ordered := make([]string, 0, len(t.EraMap))
	for era := range t.EraMap {
		ordered = append(ordered, era)
	}
	return ordered
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// DedupeKeywordsFold deduplicates keywords case-insensitively, keeping the
// first spelling seen.
func DedupeKeywordsFold(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := CanonicalText(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	return out
}
