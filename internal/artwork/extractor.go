// Package artwork extracts representative colors from album artwork.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"playback_lights/internal/models"

	_ "golang.org/x/image/webp"
)

const (
	DefaultTimeout  = 5 * time.Second
	DefaultMaxBytes = 8 << 20 // 8 MB

	spotifyImagePrefix = "spotify:image:"
	spotifyImageCDN    = "https://i.scdn.co/image/"
)

var (
	ErrNoArtwork   = errors.New("no artwork reference")
	ErrTooLarge    = errors.New("artwork exceeds size limit")
	ErrUnsupported = errors.New("unsupported artwork reference")
)

// Extractor returns ranked color candidates for an artwork reference.
// An empty result with a nil error means no usable color.
type Extractor interface {
	Extract(ctx context.Context, ref string) ([]models.ColorCandidate, error)
}

// HTTPExtractor downloads artwork over HTTP(S) and ranks its colors.
type HTTPExtractor struct {
	client    *http.Client
	maxBytes  int64
	imageBase string
}

func NewHTTPExtractor(timeout time.Duration, maxBytes int64) *HTTPExtractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &HTTPExtractor{
		client:    &http.Client{Timeout: timeout},
		maxBytes:  maxBytes,
		imageBase: spotifyImageCDN,
	}
}

// Extract accepts an http(s) URL or a spotify:image:<id> reference.
func (e *HTTPExtractor) Extract(ctx context.Context, ref string) ([]models.ColorCandidate, error) {
	url, err := e.resolve(ref)
	if err != nil {
		return nil, err
	}

	img, err := e.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Rank(img), nil
}

func (e *HTTPExtractor) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return "", ErrNoArtwork
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref, nil
	case strings.HasPrefix(ref, spotifyImagePrefix):
		id := strings.TrimPrefix(ref, spotifyImagePrefix)
		if id == "" {
			return "", ErrNoArtwork
		}
		return e.imageBase + id, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ref)
	}
}

func (e *HTTPExtractor) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch artwork: HTTP %d", resp.StatusCode)
	}
	if resp.ContentLength > e.maxBytes {
		return nil, ErrTooLarge
	}

	// one extra byte tells a truncated read apart from an exact fit
	body := io.LimitReader(resp.Body, e.maxBytes+1)
	lr := &countingReader{r: body}
	img, _, err := image.Decode(lr)
	if lr.n > e.maxBytes {
		return nil, ErrTooLarge
	}
	if err != nil {
		return nil, fmt.Errorf("decode artwork: %w", err)
	}
	return img, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
