package scraper

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travischeung/generalized-web-scraper/internal/config"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

type imageServer struct {
	*httptest.Server
	mu     sync.Mutex
	ranges map[string]string
}

func newImageServer(t *testing.T) *imageServer {
	t.Helper()
	s := &imageServer{ranges: map[string]string{}}

	images := map[string][]byte{
		"/square.png": pngBytes(t, 600, 550),
		"/small.png":  pngBytes(t, 400, 400),
		"/wide.png":   pngBytes(t, 600, 300),
		"/big.jpg":    jpegBytes(t, 800, 800),
		"/slow.png":   pngBytes(t, 700, 700),
		"/broken.jpg": []byte("definitely not an image"),
	}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.ranges[r.URL.Path] = r.Header.Get("Range")
		s.mu.Unlock()

		if r.URL.Path == "/slow.png" {
			time.Sleep(50 * time.Millisecond)
		}
		data, ok := images[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *imageServer) requested(path string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ranges[path]
	return v, ok
}

func newTestFilter(srv *imageServer, cfg config.ImageConfig) *ImageFilter {
	client := newHTTPClient(srv.Client(), config.DefaultScrapeConfig())
	return NewImageFilter(cfg, client, nil, nil)
}

func TestImageFilterKeepsProductPhotosInInputOrder(t *testing.T) {
	srv := newImageServer(t)
	filter := newTestFilter(srv, config.DefaultImageConfig())

	urls := []string{
		srv.URL + "/slow.png",
		srv.URL + "/small.png",
		srv.URL + "/square.png",
		srv.URL + "/wide.png",
		srv.URL + "/broken.jpg",
		srv.URL + "/missing.jpg",
		srv.URL + "/big.jpg",
		srv.URL + "/anim.gif",
	}

	got := filter.Filter(t.Context(), urls)

	assert.Equal(t, []string{
		srv.URL + "/slow.png",
		srv.URL + "/square.png",
		srv.URL + "/big.jpg",
	}, got)
}

func TestImageFilterSkipsDisallowedTypesWithoutFetching(t *testing.T) {
	srv := newImageServer(t)
	filter := newTestFilter(srv, config.DefaultImageConfig())

	got := filter.Filter(t.Context(), []string{srv.URL + "/anim.gif", srv.URL + "/noext"})

	assert.Empty(t, got)
	_, fetched := srv.requested("/anim.gif")
	assert.False(t, fetched)
}

func TestImageFilterRequestsOnlyTheHeader(t *testing.T) {
	srv := newImageServer(t)
	filter := newTestFilter(srv, config.DefaultImageConfig())

	filter.Filter(t.Context(), []string{srv.URL + "/square.png"})

	rng, ok := srv.requested("/square.png")
	require.True(t, ok)
	assert.Equal(t, "bytes=0-65535", rng)
}

func TestImageFilterRespectsCancelledContext(t *testing.T) {
	srv := newImageServer(t)
	filter := newTestFilter(srv, config.DefaultImageConfig())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	assert.Empty(t, filter.Filter(ctx, []string{srv.URL + "/square.png"}))
}

func TestPassesQuality(t *testing.T) {
	f := NewImageFilter(config.DefaultImageConfig(), nil, nil, nil)

	assert.True(t, f.passesQuality(600, 550))
	assert.True(t, f.passesQuality(500, 500))
	assert.False(t, f.passesQuality(400, 400))
	assert.False(t, f.passesQuality(600, 300))
	assert.False(t, f.passesQuality(500, 0))
	assert.False(t, f.passesQuality(1000, 700))
}

func TestIsValidImageType(t *testing.T) {
	f := NewImageFilter(config.DefaultImageConfig(), nil, nil, nil)

	assert.True(t, f.isValidImageType("https://cdn.example.com/a.JPG?w=1200"))
	assert.True(t, f.isValidImageType("https://cdn.example.com/a.webp"))
	assert.True(t, f.isValidImageType("https://cdn.example.com/a.jpeg#zoom"))
	assert.False(t, f.isValidImageType("https://cdn.example.com/a.gif"))
	assert.False(t, f.isValidImageType("https://cdn.example.com/image"))
	assert.False(t, f.isValidImageType("https://cdn.example.com/v1.2/image"))
}
