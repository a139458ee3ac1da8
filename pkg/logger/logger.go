package logger

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a sugared zap logger.
type Logger struct {
	*zap.SugaredLogger
}

// Options controls how New builds the logger.
type Options struct {
	Level string // DEBUG, INFO, WARNING or ERROR
	File  string // optional extra output path
	Debug bool
}

// New builds a JSON logger writing to stderr and, when set, to opts.File.
func New(opts Options) (*Logger, error) {
	config := zap.NewProductionConfig()
	if opts.Debug {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	if opts.Debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.OutputPaths = []string{"stderr"}
	if opts.File != "" {
		config.OutputPaths = append(config.OutputPaths, opts.File)
	}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = !opts.Debug

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		SugaredLogger: logger.Sugar(),
	}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// ParseLevel maps the CLI level names onto zap levels. Unknown names fall
// back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARNING", "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With("request_id", requestID),
	}
}

func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With("component", name),
	}
}

// LogRequest records an outgoing model request. Only the query length is
// logged at info; the text itself goes to debug.
func (l *Logger) LogRequest(provider, model, query string) {
	l.Infow("model request",
		"provider", provider,
		"model", model,
		"query_chars", len(query),
	)
	l.Debugw("model request body", "provider", provider, "query", query)
}

// LogResponse records a completed model call.
func (l *Logger) LogResponse(provider, model string, inputTokens, outputTokens int, elapsed time.Duration) {
	l.Infow("model response",
		"provider", provider,
		"model", model,
		"input_tokens", inputTokens,
		"output_tokens", outputTokens,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// LogError records a failed model call.
func (l *Logger) LogError(provider, model string, err error) {
	l.Errorw("model error",
		"provider", provider,
		"model", model,
		"error", err,
	)
}
