package artwork

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(c color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRank_SolidColor(t *testing.T) {
	got := Rank(solid(color.RGBA{R: 255, A: 255}, 300, 300))
	require.Len(t, got, 1)
	assert.Equal(t, SwatchVibrant, got[0].Name)
	assert.Equal(t, uint8(255), got[0].R)
	assert.Equal(t, uint8(0), got[0].G)
	assert.Equal(t, uint8(0), got[0].B)
}

func TestRank_VibrantBeatsProminent(t *testing.T) {
	img := solid(color.RGBA{R: 128, G: 128, B: 128, A: 255}, 64, 64)
	for y := 48; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{B: 255, A: 255})
		}
	}

	got := Rank(img)
	require.GreaterOrEqual(t, len(got), 2)

	assert.Equal(t, SwatchVibrant, got[0].Name)
	assert.Less(t, got[0].R, uint8(16))
	assert.Greater(t, got[0].B, uint8(240))

	assert.Equal(t, SwatchProminent, got[1].Name)
	assert.InDelta(t, 128, int(got[1].R), 8)
	assert.InDelta(t, 128, int(got[1].B), 8)
}

func TestRank_SemiTransparentKeepsTrueColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 200})
		}
	}

	got := Rank(img)
	require.Len(t, got, 1)
	assert.InDelta(t, 255, int(got[0].R), 2)
	assert.InDelta(t, 0, int(got[0].G), 2)
	assert.InDelta(t, 0, int(got[0].B), 2)
}

func TestRank_TransparentIsEmpty(t *testing.T) {
	assert.Empty(t, Rank(image.NewRGBA(image.Rect(0, 0, 10, 10))))
	assert.Empty(t, Rank(nil))
}

func TestHTTPExtractor_Extract(t *testing.T) {
	body := encodePNG(t, solid(color.RGBA{G: 255, A: 255}, 32, 32))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	got, err := NewHTTPExtractor(time.Second, 0).Extract(context.Background(), srv.URL+"/cover.png")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, uint8(255), got[0].G)
}

func TestHTTPExtractor_Errors(t *testing.T) {
	e := NewHTTPExtractor(time.Second, 64)

	_, err := e.Extract(context.Background(), "  ")
	assert.True(t, errors.Is(err, ErrNoArtwork))

	_, err = e.Extract(context.Background(), "file:///tmp/cover.png")
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = e.Extract(context.Background(), "spotify:image:")
	assert.True(t, errors.Is(err, ErrNoArtwork))

	big := encodePNG(t, solid(color.RGBA{R: 1, G: 2, B: 3, A: 255}, 200, 200))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/garbage":
			_, _ = w.Write([]byte("definitely not an image"))
		default:
			_, _ = w.Write(big)
		}
	}))
	defer srv.Close()

	_, err = e.Extract(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")

	_, err = e.Extract(context.Background(), srv.URL+"/big")
	assert.True(t, errors.Is(err, ErrTooLarge), "got %v", err)

	_, err = NewHTTPExtractor(time.Second, 0).Extract(context.Background(), srv.URL+"/garbage")
	assert.ErrorContains(t, err, "decode artwork")
}

func TestHTTPExtractor_SpotifyImageRef(t *testing.T) {
	img := encodePNG(t, solid(color.RGBA{R: 255, A: 255}, 8, 8))
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write(img)
	}))
	defer srv.Close()

	e := NewHTTPExtractor(time.Second, 0)
	e.imageBase = srv.URL + "/image/"

	got, err := e.Extract(context.Background(), "spotify:image:ab67616d0000b273")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, uint8(255), got[0].R)
	assert.Equal(t, "/image/ab67616d0000b273", gotPath)
}
