package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/llmbench/internal/catalog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, envs := range envBindings {
		for _, env := range envs {
			t.Setenv(env, "")
		}
	}
}

func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "settings.yaml")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(tempConfigPath(t))
	require.NoError(t, err)

	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, 1000, cfg.Request.MaxTokens)
	assert.Equal(t, 0.7, cfg.Request.Temperature)
	assert.Equal(t, 30, cfg.Request.Timeout)
	assert.Equal(t, 2, cfg.Request.MaxRetries)
	assert.Equal(t, 4, cfg.Request.MaxConcurrent)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "model_comparisons.log", cfg.Log.File)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "dark", cfg.Visualization.Theme)
	assert.Equal(t, "gemini", cfg.Agent.Provider)
	assert.Equal(t, []string{"png", "jpg", "jpeg", "gif", "bmp", "webp"}, cfg.Agent.SupportedFormats)
	assert.Equal(t, 50, cfg.Agent.MaxHistory)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.AvailableProviders())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)
	writeFile(t, path, `
openai:
  api_key: file-key
request:
  max_tokens: 500
  temperature: 1.2
fallback:
  provider: anthropic
`)
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("REQUEST_TIMEOUT", "45")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.OpenAI.APIKey)
	assert.Equal(t, 500, cfg.Request.MaxTokens)
	assert.Equal(t, 1.2, cfg.Request.Temperature)
	assert.Equal(t, 45, cfg.Request.Timeout)
	assert.Equal(t, "anthropic", cfg.Fallback.Provider)
}

func TestLoad_GeminiKeyAliases(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem")

	cfg, err := Load(tempConfigPath(t))
	require.NoError(t, err)
	assert.Equal(t, "gem", cfg.Gemini.APIKey)
	assert.Equal(t, []catalog.Provider{catalog.Gemini}, cfg.AvailableProviders())
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)
	writeFile(t, path, "request: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is already set.
	require.NoError(t, os.Unsetenv("REQUEST_TIMEOUT"))
	t.Chdir(t.TempDir())
	writeFile(t, ".env", "REQUEST_TIMEOUT=42\n")

	cfg, err := Load(tempConfigPath(t))
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Request.Timeout)
	assert.Empty(t, cfg.LoadWarnings)
}

func TestLoad_MalformedDotEnvIsReported(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	writeFile(t, ".env", "BAD-KEY=1\n")

	cfg, err := Load(tempConfigPath(t))
	require.NoError(t, err)
	require.Len(t, cfg.LoadWarnings, 1)
	assert.Contains(t, cfg.LoadWarnings[0], ".env")
}

func TestLoad_MissingDotEnvIsSilent(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load(tempConfigPath(t))
	require.NoError(t, err)
	assert.Empty(t, cfg.LoadWarnings)
}

func TestSave_MasksSecretsByDefault(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.OpenAI.APIKey = "sk-secret"
	cfg.Request.MaxTokens = 321
	require.NoError(t, Save(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, reloaded.OpenAI.APIKey, "masked keys load as unset")
	assert.Equal(t, 321, reloaded.Request.MaxTokens)
}

func TestSave_IncludeSecretsRoundTrip(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Anthropic.APIKey = "ant-key"
	cfg.Telegram.Token = "bot-token"
	require.NoError(t, Save(path, cfg, true))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ant-key", reloaded.Anthropic.APIKey)
	assert.Equal(t, "bot-token", reloaded.Telegram.Token)
}

func TestSave_AtomicWriteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	require.NoError(t, Save(path, &Config{}, false))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should not be left behind")
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestListValues(t *testing.T) {
	cfg := &Config{}
	cfg.OpenAI.APIKey = "sk-secret-key-1234"
	cfg.Log.Level = "DEBUG"

	plain, err := ListValues(cfg, false)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-key-1234", plain["openai.api_key"])

	masked, err := ListValues(cfg, true)
	require.NoError(t, err)
	assert.Equal(t, "***1234", masked["openai.api_key"])
	assert.Equal(t, "DEBUG", masked["log.level"])
}

func TestGetValue(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)
	writeFile(t, path, "request:\n  max_concurrent: 8\ncustom:\n  setting: hello\n")

	v, err := GetValue(path, "request.max_concurrent")
	require.NoError(t, err)
	assert.Equal(t, 8, v)

	v, err = GetValue(path, "custom.setting")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = GetValue(path, "log.level")
	require.NoError(t, err)
	assert.Equal(t, "INFO", v, "defaults are visible")

	_, err = GetValue(path, "nonexistent.key")
	assert.EqualError(t, err, "unknown config key: nonexistent.key")
}

func TestSetValue_KeepsTypes(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)
	writeFile(t, path, "log:\n  level: INFO\n")

	require.NoError(t, SetValue(path, "request.max_concurrent", "16"))
	require.NoError(t, SetValue(path, "request.temperature", "0.3"))
	require.NoError(t, SetValue(path, "cache.enabled", "false"))
	require.NoError(t, SetValue(path, "fallback.model", "gpt-4"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Request.MaxConcurrent)
	assert.Equal(t, 0.3, cfg.Request.Temperature)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "gpt-4", cfg.Fallback.Model)
	assert.Equal(t, "INFO", cfg.Log.Level, "existing values are preserved")
}

func TestSetValue_NonexistentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.yaml")
	assert.Error(t, SetValue(path, "log.level", "DEBUG"))
}

func TestValidate(t *testing.T) {
	cfg := &Config{Request: RequestConfig{MaxTokens: 100, Temperature: 0.5, Timeout: 10}}
	cfg.OpenAI.APIKey = "k"

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Anthropic API key not configured",
		"Hugging Face API key not configured",
		"Google Gemini API key not configured",
	}, warnings)

	bad := &Config{Request: RequestConfig{MaxTokens: 0, Temperature: 2.5, Timeout: 0}}
	_, err = bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API keys configured")
	assert.Contains(t, err.Error(), "request.max_tokens")
	assert.Contains(t, err.Error(), "request.temperature")
	assert.Contains(t, err.Error(), "request.timeout")
}

func TestValidateAgent(t *testing.T) {
	cfg := &Config{Agent: AgentConfig{
		Provider: "gemini", Temperature: 0.3, MaxTokens: 100, MaxImageSize: 1024, MaxFileSizeMB: 10,
	}}
	err := cfg.ValidateAgent()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY is required")

	cfg.Gemini.APIKey = "g"
	assert.NoError(t, cfg.ValidateAgent())

	cfg.Agent.Temperature = 1.5
	assert.ErrorContains(t, cfg.ValidateAgent(), "agent.temperature")
}

func TestLoad_Schedules(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)
	writeFile(t, path, `schedules:
  - name: nightly
    cron: "0 2 * * *"
    query: What is AI?
    providers: [openai, gemini]
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Schedules, 1)
	assert.Equal(t, "nightly", cfg.Schedules[0].Name)
	assert.Equal(t, []string{"openai", "gemini"}, cfg.Schedules[0].Providers)
	assert.True(t, cfg.Schedules[0].Enabled)
}
