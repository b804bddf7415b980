package enforce

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cadenza/internal/catalog"
	"cadenza/internal/images"
	"cadenza/internal/logging"
	"cadenza/internal/taxonomy"
)

type fakeExtractor struct {
	textNames   []string
	textErr     error
	imageNames  []string
	imageErr    error
	textCalls   int
	imageCalls  int
	lastText    string
	imageInputs int
}

func (f *fakeExtractor) ExtractComposers(_ context.Context, text string) ([]string, error) {
	f.textCalls++
	f.lastText = text
	return f.textNames, f.textErr
}

func (f *fakeExtractor) ExtractComposersFromImages(_ context.Context, encoded []images.EncodedImage) ([]string, error) {
	f.imageCalls++
	f.imageInputs = len(encoded)
	return f.imageNames, f.imageErr
}

type fakeFetcher struct {
	encoded []images.EncodedImage
	calls   int
}

func (f *fakeFetcher) FetchEncoded(_ context.Context, urls []string) []images.EncodedImage {
	f.calls++
	return f.encoded
}

func newEnforcer(extractor *fakeExtractor, fetcher *fakeFetcher) *Enforcer {
	return New(extractor, fetcher, taxonomy.Default(), logging.NewNop())
}

func TestEnforceTagsComposerInTitle(t *testing.T) {
	extractor := &fakeExtractor{}
	enforcer := newEnforcer(extractor, &fakeFetcher{})

	item := &catalog.Item{ID: 1, Title: "브람스 실내악의 밤"}
	tags, keywords := enforcer.Enforce(context.Background(), item, []string{"실내악"}, nil)

	if !contains(tags, "브람스") {
		t.Fatalf("tags = %v, want 브람스 added", tags)
	}
	if !contains(tags, "낭만") {
		t.Fatalf("tags = %v, want era added", tags)
	}
	if len(keywords) != 0 {
		t.Fatalf("keywords = %v", keywords)
	}
}

func TestEnforceExtractedAliasNormalized(t *testing.T) {
	extractor := &fakeExtractor{textNames: []string{"차이코프스키"}}
	enforcer := newEnforcer(extractor, &fakeFetcher{})

	item := &catalog.Item{ID: 2, Title: "러시아 명곡의 밤", Synopsis: "발레 모음곡"}
	tags, _ := enforcer.Enforce(context.Background(), item, []string{"발레"}, nil)

	if !contains(tags, "차이콥스키") {
		t.Fatalf("tags = %v, want canonical composer from extracted alias", tags)
	}
	if !contains(tags, "낭만") {
		t.Fatalf("tags = %v, want era tag", tags)
	}
}

func TestEnforceSupplementaryComposer(t *testing.T) {
	extractor := &fakeExtractor{}
	enforcer := newEnforcer(extractor, &fakeFetcher{})

	item := &catalog.Item{ID: 3, Title: "피아졸라 탱고의 밤"}
	tags, keywords := enforcer.Enforce(context.Background(), item, []string{"첼로"}, nil)

	if contains(tags, "피아졸라") {
		t.Fatalf("tags = %v, supplementary composer must not become a tag", tags)
	}
	if !contains(tags, "근현대") {
		t.Fatalf("tags = %v, want supplementary composer's era", tags)
	}
	if !contains(keywords, "피아졸라") {
		t.Fatalf("keywords = %v, want composer surfaced as keyword", keywords)
	}
}

func TestEnforceUnknownExtractedNameBecomesKeyword(t *testing.T) {
	extractor := &fakeExtractor{textNames: []string{"사티"}}
	enforcer := newEnforcer(extractor, &fakeFetcher{})

	item := &catalog.Item{ID: 4, Title: "짐노페디"}
	tags, keywords := enforcer.Enforce(context.Background(), item, []string{"피아노"}, nil)

	if contains(tags, "사티") {
		t.Fatalf("tags = %v, out-of-whitelist name must not be tagged", tags)
	}
	if !contains(keywords, "사티") {
		t.Fatalf("keywords = %v, want extracted name", keywords)
	}
}

func TestEnforceAdditivity(t *testing.T) {
	extractor := &fakeExtractor{textNames: []string{"바흐"}}
	enforcer := newEnforcer(extractor, &fakeFetcher{})

	inTags := []string{"쇼팽", "낭만", "피아노"}
	inKeywords := []string{"야상곡"}
	item := &catalog.Item{ID: 5, Title: "쇼팽과 바흐"}
	tags, keywords := enforcer.Enforce(context.Background(), item, inTags, inKeywords)

	for _, tag := range inTags {
		if !contains(tags, tag) {
			t.Fatalf("tags = %v, input tag %q removed", tags, tag)
		}
	}
	for _, kw := range inKeywords {
		if !contains(keywords, kw) {
			t.Fatalf("keywords = %v, input keyword %q removed", keywords, kw)
		}
	}
	if !reflect.DeepEqual(inTags, []string{"쇼팽", "낭만", "피아노"}) {
		t.Fatal("input slice mutated")
	}
}

func TestEnforceExtractionFailureSwallowed(t *testing.T) {
	extractor := &fakeExtractor{textErr: errors.New("rate limited")}
	enforcer := newEnforcer(extractor, &fakeFetcher{})

	item := &catalog.Item{ID: 6, Title: "가곡의 밤"}
	tags, keywords := enforcer.Enforce(context.Background(), item, []string{"성악"}, []string{"가곡"})

	if !reflect.DeepEqual(tags, []string{"성악"}) {
		t.Fatalf("tags = %v", tags)
	}
	if !reflect.DeepEqual(keywords, []string{"가곡"}) {
		t.Fatalf("keywords = %v", keywords)
	}
}

func TestEnforceImagesOnlyWhenPresent(t *testing.T) {
	extractor := &fakeExtractor{imageNames: []string{"말러"}}
	fetcher := &fakeFetcher{encoded: []images.EncodedImage{{Base64: "QUJD"}}}
	enforcer := newEnforcer(extractor, fetcher)

	item := &catalog.Item{ID: 7, Title: "대편성의 밤", IntroImages: []string{"http://x/a.jpg"}}
	tags, _ := enforcer.Enforce(context.Background(), item, []string{"오케스트라"}, nil)

	if fetcher.calls != 1 || extractor.imageCalls != 1 {
		t.Fatalf("fetch calls = %d, image extraction calls = %d", fetcher.calls, extractor.imageCalls)
	}
	if !contains(tags, "말러") || !contains(tags, "근현대") {
		t.Fatalf("tags = %v", tags)
	}

	noImages := &catalog.Item{ID: 8, Title: "소편성의 밤"}
	enforcer.Enforce(context.Background(), noImages, []string{"실내악"}, nil)
	if fetcher.calls != 1 {
		t.Fatalf("fetch calls = %d, item without images must not fetch", fetcher.calls)
	}
}

func TestEnforceKeywordDedupCaseInsensitive(t *testing.T) {
	extractor := &fakeExtractor{textNames: []string{"Satie"}}
	enforcer := newEnforcer(extractor, &fakeFetcher{})

	item := &catalog.Item{ID: 9, Title: "짐노페디"}
	_, keywords := enforcer.Enforce(context.Background(), item, []string{"피아노"}, []string{"satie"})

	count := 0
	for _, kw := range keywords {
		if taxonomy.CanonicalText(kw) == "satie" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("keywords = %v, want one satie entry", keywords)
	}
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
