package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten_Nested(t *testing.T) {
	m := map[string]any{
		"log": map[string]any{"level": "INFO"},
		"request": map[string]any{
			"timeout": 30,
			"retry":   map[string]any{"max": 2},
		},
		"top": true,
	}
	got := Flatten(m)
	assert.Equal(t, map[string]any{
		"log.level":         "INFO",
		"request.timeout":   30,
		"request.retry.max": 2,
		"top":               true,
	}, got)
}

func TestFlatten_EmptyNestedMapDisappears(t *testing.T) {
	got := Flatten(map[string]any{"fallback": map[string]any{}})
	assert.Empty(t, got)
}

func TestUnflatten_RoundTrip(t *testing.T) {
	original := map[string]any{
		"openai":   map[string]any{"api_key": "sk-1", "base_url": "https://api.openai.com/v1"},
		"cache":    map[string]any{"enabled": true, "ttl": 3600},
		"telegram": map[string]any{"token": "123:abc"},
	}
	assert.Equal(t, original, Unflatten(Flatten(original)))
}

func TestUnflatten_ReplacesScalarWithMap(t *testing.T) {
	got := Unflatten(map[string]any{"a.b": 1})
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, got)
}

func TestMaskSecrets(t *testing.T) {
	flat := map[string]any{
		"openai.api_key":      "sk-test123456",
		"gemini.api_key":      "ab",
		"anthropic.api_key":   "",
		"huggingface.api_key": "abcd",
		"telegram.token":      "123456:ABCdefGHIjkl",
		"log.level":           "INFO",
	}
	got := MaskSecrets(flat)
	assert.Equal(t, "***3456", got["openai.api_key"])
	assert.Equal(t, "***ab", got["gemini.api_key"])
	assert.Equal(t, "", got["anthropic.api_key"])
	assert.Equal(t, "***abcd", got["huggingface.api_key"])
	assert.Equal(t, "***Ijkl", got["telegram.token"])
	assert.Equal(t, "INFO", got["log.level"])
}

func TestIsSecretKey(t *testing.T) {
	assert.True(t, IsSecretKey("history.dsn"))
	assert.False(t, IsSecretKey("history.dir"))
}
