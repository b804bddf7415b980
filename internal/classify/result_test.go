package classify

import (
	"reflect"
	"testing"
)

func TestParseTagResultObjectEntries(t *testing.T) {
	raw := `{"1": {"tags": ["베토벤", "교향곡"], "keywords": ["합창"], "confidence": "high"},
	         "2": {"tags": ["쇼팽"], "keywords": [], "confidence": "low"}}`
	got, err := ParseTagResult(raw, []string{"1", "2"})
	if err != nil {
		t.Fatalf("ParseTagResult: %v", err)
	}
	if !reflect.DeepEqual(got["1"].Tags, []string{"베토벤", "교향곡"}) {
		t.Fatalf("tags = %v", got["1"].Tags)
	}
	if got["1"].Confidence != ConfidenceHigh {
		t.Fatalf("confidence = %q", got["1"].Confidence)
	}
	if got["2"].Confidence != ConfidenceLow {
		t.Fatalf("confidence = %q", got["2"].Confidence)
	}
}

func TestParseTagResultMissingIDYieldsEmptyLow(t *testing.T) {
	got, err := ParseTagResult(`{"1": {"tags": ["바흐"]}}`, []string{"1", "2"})
	if err != nil {
		t.Fatalf("ParseTagResult: %v", err)
	}
	missing := got["2"]
	if len(missing.Tags) != 0 || len(missing.Keywords) != 0 || missing.Confidence != ConfidenceLow {
		t.Fatalf("missing entry = %+v", missing)
	}
}

func TestParseTagResultLegacyBareArray(t *testing.T) {
	got, err := ParseTagResult(`{"7": ["모차르트", "협주곡"]}`, []string{"7"})
	if err != nil {
		t.Fatalf("ParseTagResult: %v", err)
	}
	entry := got["7"]
	if !reflect.DeepEqual(entry.Tags, []string{"모차르트", "협주곡"}) {
		t.Fatalf("tags = %v", entry.Tags)
	}
	if len(entry.Keywords) != 0 {
		t.Fatalf("keywords = %v", entry.Keywords)
	}
	if entry.Confidence != ConfidenceHigh {
		t.Fatalf("confidence = %q", entry.Confidence)
	}
}

func TestParseTagResultDefensiveCoercion(t *testing.T) {
	raw := `{"3": {"tags": "not-an-array", "keywords": 42, "confidence": "medium"}}`
	got, err := ParseTagResult(raw, []string{"3"})
	if err != nil {
		t.Fatalf("ParseTagResult: %v", err)
	}
	entry := got["3"]
	if len(entry.Tags) != 0 {
		t.Fatalf("tags = %v, want empty", entry.Tags)
	}
	if len(entry.Keywords) != 0 {
		t.Fatalf("keywords = %v, want empty", entry.Keywords)
	}
	// Any confidence other than the literal "low" coerces to high.
	if entry.Confidence != ConfidenceHigh {
		t.Fatalf("confidence = %q, want high", entry.Confidence)
	}
}

func TestParseTagResultSkipsNonStringElements(t *testing.T) {
	raw := `{"4": {"tags": ["바흐", 13, null, "  "], "confidence": "high"}}`
	got, err := ParseTagResult(raw, []string{"4"})
	if err != nil {
		t.Fatalf("ParseTagResult: %v", err)
	}
	if !reflect.DeepEqual(got["4"].Tags, []string{"바흐"}) {
		t.Fatalf("tags = %v", got["4"].Tags)
	}
}

func TestParseTagResultUnparseable(t *testing.T) {
	if _, err := ParseTagResult("complete nonsense", []string{"1"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseSingleResultWithProse(t *testing.T) {
	raw := `Here you go: {"tags": ["드뷔시"], "keywords": ["인상주의"], "confidence": "high"}`
	got, err := ParseSingleResult(raw)
	if err != nil {
		t.Fatalf("ParseSingleResult: %v", err)
	}
	if !reflect.DeepEqual(got.Tags, []string{"드뷔시"}) {
		t.Fatalf("tags = %v", got.Tags)
	}
}

func TestParseComposerList(t *testing.T) {
	got, err := ParseComposerList("the composers: [\"바흐\", \" 헨델 \", \"\"]")
	if err != nil {
		t.Fatalf("ParseComposerList: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"바흐", "헨델"}) {
		t.Fatalf("names = %v", got)
	}
}

func TestEmptyLow(t *testing.T) {
	r := EmptyLow()
	if !r.Low() || len(r.Tags) != 0 || len(r.Keywords) != 0 {
		t.Fatalf("EmptyLow = %+v", r)
	}
}
