// Package config loads llmbench settings from a YAML file, a .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/user/llmbench/internal/catalog"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "config/settings.yaml"

const maskedValue = "***"

type Config struct {
	OpenAI        ProviderConfig      `mapstructure:"openai" yaml:"openai"`
	Anthropic     ProviderConfig      `mapstructure:"anthropic" yaml:"anthropic"`
	HuggingFace   ProviderConfig      `mapstructure:"huggingface" yaml:"huggingface"`
	Gemini        ProviderConfig      `mapstructure:"gemini" yaml:"gemini"`
	Request       RequestConfig       `mapstructure:"request" yaml:"request"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
	Visualization VisualizationConfig `mapstructure:"visualization" yaml:"visualization"`
	Cache         CacheConfig         `mapstructure:"cache" yaml:"cache"`
	Fallback      FallbackConfig      `mapstructure:"fallback" yaml:"fallback"`
	Agent         AgentConfig         `mapstructure:"agent" yaml:"agent"`
	Server        ServerConfig        `mapstructure:"server" yaml:"server"`
	Telegram      TelegramConfig      `mapstructure:"telegram" yaml:"telegram"`
	History       HistoryConfig       `mapstructure:"history" yaml:"history"`
	Schedules     []ScheduleConfig    `mapstructure:"schedules" yaml:"schedules"`

	// LoadWarnings are problems Load skipped over, such as a malformed
	// .env file.
	LoadWarnings []string `mapstructure:"-" yaml:"-"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

type RequestConfig struct {
	MaxTokens     int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature   float64 `mapstructure:"temperature" yaml:"temperature"`
	Timeout       int     `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries    int     `mapstructure:"max_retries" yaml:"max_retries"`
	MaxConcurrent int     `mapstructure:"max_concurrent" yaml:"max_concurrent"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

type VisualizationConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Theme   string `mapstructure:"theme" yaml:"theme"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	TTL     int  `mapstructure:"ttl" yaml:"ttl"`
}

// FallbackConfig names the model retried when a primary query fails.
type FallbackConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"`
	ModelType string `mapstructure:"model_type" yaml:"model_type"`
	Model     string `mapstructure:"model" yaml:"model"`
}

type AgentConfig struct {
	Provider         string   `mapstructure:"provider" yaml:"provider"`
	VisionModel      string   `mapstructure:"vision_model" yaml:"vision_model"`
	TextModel        string   `mapstructure:"text_model" yaml:"text_model"`
	Temperature      float64  `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens        int      `mapstructure:"max_tokens" yaml:"max_tokens"`
	MaxImageSize     int      `mapstructure:"max_image_size" yaml:"max_image_size"`
	MaxFileSizeMB    int      `mapstructure:"max_file_size_mb" yaml:"max_file_size_mb"`
	SupportedFormats []string `mapstructure:"supported_formats" yaml:"supported_formats"`
	MaxHistory       int      `mapstructure:"max_history" yaml:"max_history"`
	Title            string   `mapstructure:"title" yaml:"title"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token" yaml:"token"`
}

type HistoryConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// ScheduleConfig is a comparison run on a cron schedule while the server
// is up. Empty Providers or ModelTypes means all of them.
type ScheduleConfig struct {
	Name       string   `mapstructure:"name" yaml:"name"`
	Cron       string   `mapstructure:"cron" yaml:"cron"`
	Query      string   `mapstructure:"query" yaml:"query"`
	Providers  []string `mapstructure:"providers" yaml:"providers,omitempty"`
	ModelTypes []string `mapstructure:"model_types" yaml:"model_types,omitempty"`
	Enabled    bool     `mapstructure:"enabled" yaml:"enabled"`
}

// envBindings maps config keys to the environment variables that override
// them, in lookup order.
var envBindings = map[string][]string{
	"openai.api_key":         {"OPENAI_API_KEY"},
	"openai.base_url":        {"OPENAI_BASE_URL"},
	"anthropic.api_key":      {"ANTHROPIC_API_KEY"},
	"huggingface.api_key":    {"HUGGINGFACE_API_KEY"},
	"gemini.api_key":         {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"request.max_tokens":     {"DEFAULT_MAX_TOKENS"},
	"request.temperature":    {"DEFAULT_TEMPERATURE"},
	"request.timeout":        {"REQUEST_TIMEOUT"},
	"log.level":              {"LOG_LEVEL"},
	"log.file":               {"LOG_FILE"},
	"visualization.enabled":  {"ENABLE_VISUALIZATION"},
	"visualization.theme":    {"CHART_THEME"},
	"agent.vision_model":     {"VISION_MODEL"},
	"agent.text_model":       {"TEXT_MODEL"},
	"agent.temperature":      {"MODEL_TEMPERATURE"},
	"agent.max_image_size":   {"MAX_IMAGE_SIZE"},
	"agent.max_file_size_mb": {"MAX_FILE_SIZE_MB"},
	"agent.title":            {"APP_TITLE"},
	"telegram.token":         {"TELEGRAM_BOT_TOKEN"},
	"history.dsn":            {"HISTORY_DSN"},
}

// Load reads configuration from path (DefaultPath when empty). Precedence
// is environment, then file, then defaults. A .env file in the working
// directory is loaded into the environment first. Missing files are not
// an error.
func Load(path string) (*Config, error) {
	var warnings []string
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		warnings = append(warnings, fmt.Sprintf("ignoring .env: %v", err))
	}

	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	setDefaults(v)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Keys saved masked are treated as unset.
	for _, s := range []*string{&cfg.OpenAI.APIKey, &cfg.Anthropic.APIKey, &cfg.HuggingFace.APIKey, &cfg.Gemini.APIKey} {
		if strings.HasPrefix(*s, maskedValue) {
			*s = ""
		}
	}
	for _, s := range []*string{&cfg.Telegram.Token, &cfg.History.DSN} {
		if strings.HasPrefix(*s, maskedValue) {
			*s = ""
		}
	}

	cfg.LoadWarnings = warnings
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.base_url", "https://api.anthropic.com")
	v.SetDefault("huggingface.api_key", "")
	v.SetDefault("huggingface.base_url", "https://api-inference.huggingface.co")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")

	v.SetDefault("request.max_tokens", 1000)
	v.SetDefault("request.temperature", 0.7)
	v.SetDefault("request.timeout", 30)
	v.SetDefault("request.max_retries", 2)
	v.SetDefault("request.max_concurrent", 4)

	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.file", "model_comparisons.log")

	v.SetDefault("visualization.enabled", true)
	v.SetDefault("visualization.theme", "dark")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 3600)

	v.SetDefault("fallback.provider", "")
	v.SetDefault("fallback.model_type", "")
	v.SetDefault("fallback.model", "")

	v.SetDefault("agent.provider", string(catalog.Gemini))
	v.SetDefault("agent.vision_model", "gemini-1.5-flash")
	v.SetDefault("agent.text_model", "gemini-1.5-flash")
	v.SetDefault("agent.temperature", 0.3)
	v.SetDefault("agent.max_tokens", 1000)
	v.SetDefault("agent.max_image_size", 1024)
	v.SetDefault("agent.max_file_size_mb", 10)
	v.SetDefault("agent.supported_formats", []string{"png", "jpg", "jpeg", "gif", "bmp", "webp"})
	v.SetDefault("agent.max_history", 50)
	v.SetDefault("agent.title", "Multimodal QA Agent")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("telegram.token", "")

	dir := ".llmbench"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".llmbench")
	}
	v.SetDefault("history.dir", dir)
	v.SetDefault("history.dsn", "")
}

// Provider returns the connection settings of a provider.
func (c *Config) Provider(p catalog.Provider) ProviderConfig {
	switch p {
	case catalog.OpenAI:
		return c.OpenAI
	case catalog.Anthropic:
		return c.Anthropic
	case catalog.HuggingFace:
		return c.HuggingFace
	case catalog.Gemini:
		return c.Gemini
	}
	return ProviderConfig{}
}

// AvailableProviders lists the providers that have an API key, in
// catalog order.
func (c *Config) AvailableProviders() []catalog.Provider {
	var out []catalog.Provider
	for _, p := range catalog.Providers {
		if c.Provider(p).APIKey != "" {
			out = append(out, p)
		}
	}
	return out
}

// RequestTimeout is the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Request.Timeout) * time.Second
}

// CacheTTL is how long cached responses stay valid.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// Validate checks the request settings and provider keys. Providers without
// a key produce warnings; having no key at all is an error.
func (c *Config) Validate() ([]string, error) {
	var warnings []string
	for _, p := range catalog.Providers {
		if c.Provider(p).APIKey == "" {
			warnings = append(warnings, fmt.Sprintf("%s API key not configured", p.DisplayName()))
		}
	}

	var errs []error
	if len(c.AvailableProviders()) == 0 {
		errs = append(errs, errors.New("no API keys configured: at least one provider API key is required"))
	}
	if c.Request.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("request.max_tokens must be positive, got %d", c.Request.MaxTokens))
	}
	if c.Request.Temperature < 0 || c.Request.Temperature > 2 {
		errs = append(errs, fmt.Errorf("request.temperature must be between 0 and 2, got %g", c.Request.Temperature))
	}
	if c.Request.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("request.timeout must be positive, got %d", c.Request.Timeout))
	}
	return warnings, errors.Join(errs...)
}

// ValidateAgent checks the settings used by the multimodal agent.
func (c *Config) ValidateAgent() error {
	var errs []error
	p, err := catalog.ParseProvider(c.Agent.Provider)
	if err != nil {
		errs = append(errs, fmt.Errorf("agent.provider: %w", err))
	} else if c.Provider(p).APIKey == "" {
		errs = append(errs, fmt.Errorf("%s is required for the agent", p.EnvVar()))
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 1 {
		errs = append(errs, fmt.Errorf("agent.temperature must be between 0 and 1, got %g", c.Agent.Temperature))
	}
	if c.Agent.MaxTokens <= 0 {
		errs = append(errs, errors.New("agent.max_tokens must be positive"))
	}
	if c.Agent.MaxImageSize <= 0 {
		errs = append(errs, errors.New("agent.max_image_size must be positive"))
	}
	if c.Agent.MaxFileSizeMB <= 0 {
		errs = append(errs, errors.New("agent.max_file_size_mb must be positive"))
	}
	return errors.Join(errs...)
}

// ToMap converts a Config into a nested map keyed by YAML field names.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return m, nil
}

// Save writes cfg as YAML. Secrets are replaced with "***" unless
// includeSecrets is set.
func Save(path string, cfg *Config, includeSecrets bool) error {
	m, err := ToMap(cfg)
	if err != nil {
		return err
	}
	if !includeSecrets {
		flat := Flatten(m)
		for k, v := range flat {
			if s, ok := v.(string); ok && s != "" && IsSecretKey(k) {
				flat[k] = maskedValue
			}
		}
		m = Unflatten(flat)
	}
	return writeYAML(path, m)
}

// ListValues returns the flattened configuration, optionally masking secrets.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	flat := Flatten(m)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// GetValue returns the effective value of a dot-separated key. Keys present
// only in the file (not part of Config) are also found.
func GetValue(path, key string) (any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	flat, err := ListValues(cfg, false)
	if err != nil {
		return nil, err
	}
	if raw, err := readYAML(path); err == nil {
		for k, v := range Flatten(raw) {
			if _, ok := flat[k]; !ok {
				flat[k] = v
			}
		}
	}
	v, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return v, nil
}

// SetValue updates a key in an existing config file. The value is parsed as
// YAML, so numbers and booleans keep their type.
func SetValue(path, key, value string) error {
	raw, err := readYAML(path)
	if err != nil {
		return err
	}
	var parsed any
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil || parsed == nil {
		parsed = value
	}
	if _, isMap := parsed.(map[string]any); isMap {
		parsed = value
	}
	flat := Flatten(raw)
	flat[key] = parsed
	return writeYAML(path, Unflatten(flat))
}

func readYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return m, nil
}

func writeYAML(path string, m map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
