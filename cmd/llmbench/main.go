// Command llmbench queries and compares hosted LLM providers, renders
// reports and charts, and serves a multimodal QA agent.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/config"
	"github.com/user/llmbench/internal/events"
	"github.com/user/llmbench/internal/history"
	"github.com/user/llmbench/pkg/logger"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	logLevel    string
	debug       bool
	verbose     bool
	noCache     bool
	maxTokens   int
	temperature float64
	timeout     int

	setMaxTokens   bool
	setTemperature bool
	setTimeout     bool
}

var (
	cfgPath = config.DefaultPath
	global  globalOptions
)

var rootCmd = &cobra.Command{
	Use:           "llmbench",
	Short:         "Query and compare LLM providers",
	Long:          "llmbench sends a query to OpenAI, Anthropic, Hugging Face or Gemini models, alone or side by side, and shows token usage, timing and model characteristics.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		global.setMaxTokens = flags.Changed("max-tokens")
		global.setTemperature = flags.Changed("temperature")
		global.setTimeout = flags.Changed("timeout")
		cfgPath = global.configPath
		return validateGlobal(&global)
	},
	RunE: runRoot,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&global.configPath, "config", config.DefaultPath, "config file path")
	pf.StringVar(&global.logLevel, "log-level", "", "log level (DEBUG, INFO, WARNING, ERROR)")
	pf.BoolVar(&global.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&global.verbose, "verbose", false, "show detailed output")
	pf.BoolVar(&global.noCache, "no-cache", false, "disable the response cache")
	pf.IntVar(&global.maxTokens, "max-tokens", 0, "maximum tokens in the response")
	pf.Float64Var(&global.temperature, "temperature", 0, "sampling temperature (0.0-2.0)")
	pf.IntVar(&global.timeout, "timeout", 0, "request timeout in seconds")

	f := rootCmd.Flags()
	f.StringVarP(&query.query, "query", "q", "", "query to send")
	f.StringVarP(&query.provider, "provider", "p", "openai", "provider (openai, anthropic, huggingface, gemini)")
	f.StringVarP(&query.modelType, "model-type", "t", "instruct", "model type (base, instruct, fine-tuned)")
	f.StringVarP(&query.model, "model", "m", "", "specific model name")
	f.BoolVarP(&query.compareAll, "compare-all", "c", false, "compare every available provider and model type")
	f.BoolVarP(&query.interactive, "interactive", "i", false, "start the interactive menu")
	f.BoolVarP(&query.visualize, "visualize", "v", false, "draw terminal charts of the results")
	f.StringVarP(&query.output, "output", "o", "console", "output format (console, json, markdown)")
	f.StringVarP(&query.save, "save", "s", "", "save results to a file (.json, .md, .yaml or text)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func validateGlobal(g *globalOptions) error {
	if g.logLevel != "" {
		switch strings.ToUpper(g.logLevel) {
		case "DEBUG", "INFO", "WARNING", "ERROR":
		default:
			return fmt.Errorf("invalid log level: %s (expected DEBUG, INFO, WARNING or ERROR)", g.logLevel)
		}
	}
	if g.setTemperature && (g.temperature < 0 || g.temperature > 2) {
		return errors.New("temperature must be between 0.0 and 2.0")
	}
	if g.setMaxTokens && g.maxTokens <= 0 {
		return errors.New("max tokens must be positive")
	}
	if g.setTimeout && g.timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if global.setMaxTokens {
		cfg.Request.MaxTokens = global.maxTokens
	}
	if global.setTemperature {
		cfg.Request.Temperature = global.temperature
	}
	if global.setTimeout {
		cfg.Request.Timeout = global.timeout
	}
	if global.logLevel != "" {
		cfg.Log.Level = global.logLevel
	}
	if global.noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(logger.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		Debug: global.debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	for _, w := range cfg.LoadWarnings {
		log.Warnw("configuration problem", "detail", w)
	}
	return log, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// app holds the services a command runs against. History is recorded
// from the event bus while the app is open.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	bus   events.Bus
	store history.Store
	rec   *history.Recorder
	svc   *compare.Service
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := setupLogging(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, bus: events.New(log)}
	a.svc = compare.NewFromConfig(cfg, log, a.bus)
	if global.noCache {
		a.svc.DisableCache()
	}

	store, err := history.Open(cfg.History)
	if err != nil {
		log.Warnw("history disabled", "error", err)
		return a, nil
	}
	a.store = store
	a.rec = history.NewRecorder(store, a.bus, log)
	if err := a.rec.Start(); err != nil {
		log.Warnw("history recorder not started", "error", err)
		a.rec = nil
	}
	return a, nil
}

// Close flushes pending history writes and releases the store.
func (a *app) Close() {
	a.bus.WaitAsync()
	if a.rec != nil {
		if err := a.rec.Stop(); err != nil {
			a.log.Debugw("stop recorder", "error", err)
		}
	}
	if err := a.bus.Close(); err != nil {
		a.log.Debugw("close bus", "error", err)
	}
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warnw("close history store", "error", err)
		}
	}
	_ = a.log.Sync()
}
