package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"cadenza/internal/logging"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeResult(t *testing.T, encoded EncodedImage) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded.Base64)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode jpeg: %v", err)
	}
	return img
}

func TestFetchEncodedResizesLargeImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes(t, 2048, 1024))
	}))
	defer server.Close()

	fetcher := NewFetcher(logging.NewNop())
	got := fetcher.FetchEncoded(context.Background(), []string{server.URL + "/poster.png"})
	if len(got) != 1 {
		t.Fatalf("got %d images, want 1", len(got))
	}
	img := decodeResult(t, got[0])
	if img.Bounds().Dx() != 1024 || img.Bounds().Dy() != 512 {
		t.Fatalf("resized to %dx%d, want 1024x512", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestFetchEncodedKeepsSmallImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes(t, 640, 480))
	}))
	defer server.Close()

	fetcher := NewFetcher(logging.NewNop())
	got := fetcher.FetchEncoded(context.Background(), []string{server.URL})
	if len(got) != 1 {
		t.Fatalf("got %d images, want 1", len(got))
	}
	img := decodeResult(t, got[0])
	if img.Bounds().Dx() != 640 || img.Bounds().Dy() != 480 {
		t.Fatalf("dimensions changed to %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestFetchEncodedDropsFailedImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good":
			_, _ = w.Write(pngBytes(t, 64, 64))
		case "/notfound":
			http.NotFound(w, r)
		default:
			_, _ = w.Write([]byte("not an image"))
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(logging.NewNop())
	got := fetcher.FetchEncoded(context.Background(), []string{
		server.URL + "/notfound",
		server.URL + "/good",
		server.URL + "/garbage",
	})
	if len(got) != 1 {
		t.Fatalf("got %d images, want only the good one", len(got))
	}
	if got[0].SourceURL != server.URL+"/good" {
		t.Fatalf("kept %q", got[0].SourceURL)
	}
}

func TestFetchEncodedCapsAtThree(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(pngBytes(t, 32, 32))
	}))
	defer server.Close()

	fetcher := NewFetcher(logging.NewNop())
	urls := []string{server.URL, server.URL, server.URL, server.URL, server.URL}
	got := fetcher.FetchEncoded(context.Background(), urls)
	if len(got) != MaxPerItem {
		t.Fatalf("got %d images, want %d", len(got), MaxPerItem)
	}
	if int(hits.Load()) != MaxPerItem {
		t.Fatalf("server hit %d times, want %d", hits.Load(), MaxPerItem)
	}
}

func TestFetchEncodedEmptyInput(t *testing.T) {
	fetcher := NewFetcher(logging.NewNop())
	if got := fetcher.FetchEncoded(context.Background(), nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestDataURL(t *testing.T) {
	encoded := EncodedImage{Base64: "QUJD"}
	if got := encoded.DataURL(); got != "data:image/jpeg;base64,QUJD" {
		t.Fatalf("DataURL = %q", got)
	}
}
