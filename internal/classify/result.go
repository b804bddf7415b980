package classify

import (
	"encoding/json"
	"strings"

	"cadenza/internal/services/llm"
)

// Confidence is the model's self-reported confidence in a tag set. Anything
// other than the literal "low" is coerced to "high".
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Result is one extraction pass's output for a single item.
type Result struct {
	Tags       []string
	Keywords   []string
	Confidence Confidence
}

// Low reports whether the result is low confidence.
func (r Result) Low() bool {
	return r.Confidence == ConfidenceLow
}

// EmptyLow is the result assigned when an extraction pass fails or the
// model's output cannot be parsed.
func EmptyLow() Result {
	return Result{Tags: []string{}, Keywords: []string{}, Confidence: ConfidenceLow}
}

// ParseTagResult decodes a batched tagging response into one Result per
// expected identifier. Identifiers absent from the payload yield empty
// tags and keywords with low confidence. An entry that is a bare array is
// the legacy response shape: it is treated as the tags list with empty
// keywords and high confidence. Object entries have their fields extracted
// defensively — non-array tags/keywords become empty.
func ParseTagResult(raw string, expectedIDs []string) (map[string]Result, error) {
	var payload map[string]json.RawMessage
	if err := llm.DecodeLLMJSON(raw, &payload); err != nil {
		return nil, err
	}

	results := make(map[string]Result, len(expectedIDs))
	for _, id := range expectedIDs {
		entry, ok := payload[id]
		if !ok {
			results[id] = EmptyLow()
			continue
		}
		results[id] = parseResultEntry(entry)
	}
	return results, nil
}

// ParseSingleResult decodes a single-item tagging response: either an
// object with tags/keywords/confidence or a legacy bare tags array.
func ParseSingleResult(raw string) (Result, error) {
	var entry json.RawMessage
	if err := llm.DecodeLLMJSON(raw, &entry); err != nil {
		return EmptyLow(), err
	}
	return parseResultEntry(entry), nil
}

func parseResultEntry(entry json.RawMessage) Result {
	trimmed := strings.TrimSpace(string(entry))
	if trimmed == "" {
		return EmptyLow()
	}

	// Legacy shape: a bare array of tags.
	if trimmed[0] == '[' {
		return Result{
			Tags:       stringList(entry),
			Keywords:   []string{},
			Confidence: ConfidenceHigh,
		}
	}

	var obj struct {
		Tags       json.RawMessage `json:"tags"`
		Keywords   json.RawMessage `json:"keywords"`
		Confidence string          `json:"confidence"`
	}
	if err := json.Unmarshal(entry, &obj); err != nil {
		return EmptyLow()
	}

	confidence := ConfidenceHigh
	if strings.TrimSpace(strings.ToLower(obj.Confidence)) == string(ConfidenceLow) {
		confidence = ConfidenceLow
	}
	return Result{
		Tags:       stringList(obj.Tags),
		Keywords:   stringList(obj.Keywords),
		Confidence: confidence,
	}
}

// stringList decodes a JSON array of strings, tolerating mixed content by
// keeping only the string elements. Anything that is not an array decodes
// to an empty list.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseComposerList decodes the narrow composer-extraction response, a
// bare JSON array of names.
func ParseComposerList(raw string) ([]string, error) {
	var names []string
	if err := llm.DecodeLLMJSON(raw, &names); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
