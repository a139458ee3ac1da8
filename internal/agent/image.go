package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/user/llmbench/internal/config"
	"github.com/user/llmbench/internal/tools"
	"github.com/user/llmbench/pkg/llm"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image exceeds maximum file size")
)

const maxPageChars = 20000

// Limits bounds the images the agent accepts.
type Limits struct {
	Formats  []string
	MaxBytes int64
}

// LimitsFrom reads the image limits from the agent settings.
func LimitsFrom(cfg config.AgentConfig) Limits {
	return Limits{
		Formats:  cfg.SupportedFormats,
		MaxBytes: int64(cfg.MaxFileSizeMB) * 1024 * 1024,
	}
}

func (l Limits) allows(format string) bool {
	format = normalizeFormat(format)
	for _, f := range l.Formats {
		if normalizeFormat(f) == format {
			return true
		}
	}
	return false
}

func (l Limits) checkSize(n int64) error {
	if l.MaxBytes > 0 && n > l.MaxBytes {
		return fmt.Errorf("%w: %.1f MB (max %d MB)", ErrTooLarge,
			float64(n)/(1024*1024), l.MaxBytes/(1024*1024))
	}
	return nil
}

func normalizeFormat(f string) string {
	f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
	if f == "jpg" {
		return "jpeg"
	}
	return f
}

// DecodeImage validates raw image bytes. The format is sniffed from the
// content. The extension of name is only used when the content is
// unrecognized binary data.
func DecodeImage(data []byte, name string, lim Limits) (*llm.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedFormat)
	}
	if err := lim.checkSize(int64(len(data))); err != nil {
		return nil, err
	}

	format := ""
	switch ct := http.DetectContentType(data); {
	case strings.HasPrefix(ct, "image/"):
		format = strings.TrimPrefix(ct, "image/")
	case ct == "application/octet-stream":
		format = filepath.Ext(name)
	default:
		return nil, fmt.Errorf("%w: content is %s", ErrUnsupportedFormat, ct)
	}
	format = normalizeFormat(format)
	if format == "" || !lim.allows(format) {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat,
			format, strings.Join(lim.Formats, ", "))
	}
	return &llm.Image{MIMEType: "image/" + format, Data: data}, nil
}

// LoadImageFile reads and validates an image from disk.
func LoadImageFile(path string, lim Limits) (*llm.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open image: %s is a directory", path)
	}
	if err := lim.checkSize(info.Size()); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return DecodeImage(data, path, lim)
}

// FetchImage downloads url. An image body is validated and returned. An
// HTML page is converted to markdown and returned as context instead,
// with a nil image.
func FetchImage(ctx context.Context, client *http.Client, url string, lim Limits) (*llm.Image, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "llmbench/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image: HTTP status %d", resp.StatusCode)
	}

	limit := lim.MaxBytes
	if limit <= 0 {
		limit = 50 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if err := lim.checkSize(int64(len(data))); err != nil {
		return nil, "", err
	}

	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/html") {
		text, err := htmltomarkdown.ConvertString(string(data))
		if err != nil {
			return nil, "", fmt.Errorf("convert page: %w", err)
		}
		text = strings.TrimSpace(text)
		text = tools.Clip(text, maxPageChars)
		return nil, text, nil
	}

	img, err := DecodeImage(data, url, lim)
	if err != nil {
		return nil, "", err
	}
	return img, "", nil
}

// WithPageContext prefixes question with text taken from a web page.
func WithPageContext(question, page string) string {
	if page == "" {
		return question
	}
	return "Context from the linked page:\n\n" + page + "\n\nQuestion: " + question
}
