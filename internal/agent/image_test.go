package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimits() Limits {
	return Limits{Formats: []string{"png", "jpg"}, MaxBytes: 1024}
}

func TestDecodeImage(t *testing.T) {
	img, err := DecodeImage(pngHeader, "photo.bin", testLimits())
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)

	jpeg := []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	img, err = DecodeImage(jpeg, "", testLimits())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)

	// Unrecognized binary falls back to the file extension.
	img, err = DecodeImage([]byte{0x00, 0x01, 0x02, 0xfe}, "scan.jpg", testLimits())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
}

func TestDecodeImage_Rejects(t *testing.T) {
	_, err := DecodeImage([]byte("GIF89a\x01\x00"), "a.gif", testLimits())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = DecodeImage([]byte("plain text"), "notes.txt", testLimits())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = DecodeImage([]byte("plain text"), "x.png", testLimits())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "text/plain")

	_, err = DecodeImage([]byte("<html><body>hi</body></html>"), "x.jpg", testLimits())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = DecodeImage(nil, "a.png", testLimits())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	big := append(append([]byte{}, pngHeader...), make([]byte, 2048)...)
	_, err = DecodeImage(big, "a.png", testLimits())
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLoadImageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))

	img, err := LoadImageFile(path, testLimits())
	require.NoError(t, err)
	assert.Equal(t, pngHeader, img.Data)

	_, err = LoadImageFile(filepath.Join(dir, "missing.png"), testLimits())
	assert.Error(t, err)

	_, err = LoadImageFile(dir, testLimits())
	assert.Error(t, err)
}

func TestFetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pic.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngHeader)
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body><h1>Sunset</h1><p>Over the bay.</p></body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	img, page, err := FetchImage(context.Background(), srv.Client(), srv.URL+"/pic.png", testLimits())
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Empty(t, page)
	assert.Equal(t, "image/png", img.MIMEType)

	img, page, err = FetchImage(context.Background(), srv.Client(), srv.URL+"/page", testLimits())
	require.NoError(t, err)
	assert.Nil(t, img)
	assert.Contains(t, page, "# Sunset")
	assert.Contains(t, page, "Over the bay.")

	_, _, err = FetchImage(context.Background(), srv.Client(), srv.URL+"/missing", testLimits())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchImage_ClipsPageOnRuneBoundary(t *testing.T) {
	page := "<p>a" + strings.Repeat("é", maxPageChars) + "</p>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	lim := Limits{Formats: []string{"png"}, MaxBytes: 1 << 20}
	img, text, err := FetchImage(context.Background(), srv.Client(), srv.URL, lim)
	require.NoError(t, err)
	assert.Nil(t, img)
	assert.LessOrEqual(t, len(text), maxPageChars)
	assert.True(t, utf8.ValidString(text))
}

func TestLimitsFrom(t *testing.T) {
	cfg := testAgentConfig()
	lim := LimitsFrom(cfg)
	assert.Equal(t, int64(1024*1024), lim.MaxBytes)
	assert.True(t, lim.allows("JPG"))
	assert.True(t, lim.allows(".jpeg"))
	assert.False(t, lim.allows("webp"))
}

func TestWithPageContext(t *testing.T) {
	assert.Equal(t, "q", WithPageContext("q", ""))
	assert.Contains(t, WithPageContext("q", "page"), "Question: q")
}
