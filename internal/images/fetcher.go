package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
	"golang.org/x/sync/errgroup"

	"cadenza/internal/logging"
)

const (
	// MaxPerItem caps how many images are submitted per classification call.
	MaxPerItem = 3

	maxDimension   = 1024
	jpegQuality    = 80
	maxBodyBytes   = 20 << 20
	defaultTimeout = 20 * time.Second
)

// EncodedImage is a resized, JPEG-recompressed, base64-encoded image ready
// for a vision request.
type EncodedImage struct {
	SourceURL string
	Base64    string
}

// DataURL returns the image as a data URL for multimodal message parts.
func (e EncodedImage) DataURL() string {
	return "data:image/jpeg;base64," + e.Base64
}

// Fetcher downloads and prepares reference images.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// Option customizes the fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// NewFetcher constructs an image fetcher.
func NewFetcher(logger *slog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
		logger: logging.NewComponentLogger(logger, "images"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchEncoded downloads up to MaxPerItem images concurrently and returns
// the ones that could be fetched, decoded, and resized. A failed image is
// logged and dropped; the remaining images still go through. An empty
// result is not an error — the caller decides how to degrade.
func (f *Fetcher) FetchEncoded(ctx context.Context, urls []string) []EncodedImage {
	if len(urls) > MaxPerItem {
		urls = urls[:MaxPerItem]
	}
	if len(urls) == 0 {
		return nil
	}

	results := make([]EncodedImage, len(urls))
	ok := make([]bool, len(urls))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(MaxPerItem)
	for i, url := range urls {
		group.Go(func() error {
			encoded, err := f.fetchOne(groupCtx, url)
			if err != nil {
				f.logger.Warn("image dropped",
					logging.String("url", url),
					logging.Error(err),
				)
				return nil // per-image failures never abort the batch
			}
			mu.Lock()
			results[i] = encoded
			ok[i] = true
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	out := make([]EncodedImage, 0, len(urls))
	for i := range results {
		if ok[i] {
			out = append(out, results[i])
		}
	}
	return out
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) (EncodedImage, error) {
	var empty EncodedImage

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return empty, fmt.Errorf("new request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return empty, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return empty, fmt.Errorf("fetch: http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return empty, fmt.Errorf("read body: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return empty, fmt.Errorf("decode: %w", err)
	}

	resized := fitWithin(img, maxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return empty, fmt.Errorf("encode jpeg: %w", err)
	}

	return EncodedImage{
		SourceURL: url,
		Base64:    base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// fitWithin scales img down so both dimensions fit within limit, preserving
// aspect ratio. Images already within the limit pass through unscaled.
func fitWithin(img image.Image, limit int) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()
	if srcWidth <= limit && srcHeight <= limit {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = limit
		dstHeight = (srcHeight * limit) / srcWidth
		if dstHeight < 1 {
			dstHeight = 1
		}
	} else {
		dstHeight = limit
		dstWidth = (srcWidth * limit) / srcHeight
		if dstWidth < 1 {
			dstWidth = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
