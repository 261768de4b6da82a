// Package logger configures zerolog for the server and bridges the
// engine's game log into it.
package logger

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/freeeve/brass-engine/pkg/brass"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const requestIDKey contextKey = "request_id"

const milliTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Options controls logger output. Zero values fall back to the LOG_LEVEL,
// LOG_FILE and DEV environment variables.
type Options struct {
	Level string
	File  string
	Dev   bool
	JSON  bool
}

// Init configures the global logger.
func Init(opts Options) {
	zerolog.TimeFieldFormat = milliTimeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	const callerWidth = 24
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		path := fmt.Sprintf("%s:%d", filepath.Base(file), line)
		if len(path) >= callerWidth {
			return path[len(path)-callerWidth:]
		}
		return path + strings.Repeat(" ", callerWidth-len(path))
	}

	if opts.Level == "" {
		opts.Level = os.Getenv("LOG_LEVEL")
	}
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	dev := opts.Dev || isDevelopmentMode()
	var output io.Writer = os.Stdout
	if !opts.JSON {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: milliTimeFormat, NoColor: !dev}
	}

	if opts.File == "" {
		opts.File = os.Getenv("LOG_FILE")
	}
	if opts.File != "" {
		f, ferr := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if ferr == nil {
			output = io.MultiWriter(output, f)
		}
	}

	log.Logger = log.Output(output).With().Caller().Logger()
	log.Debug().Str("level", level.String()).Bool("dev", dev).Msg("Logger initialized")
}

func isDevelopmentMode() bool {
	return os.Getenv("DEV") == "true" || os.Getenv("DEV_MODE") == "true"
}

// Get returns the global logger instance.
func Get() zerolog.Logger {
	return log.Logger
}

// NewRequestID returns a random 8-character alphanumeric id.
func NewRequestID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req%06d", time.Now().UnixNano()%1000000)
	}
	for i := range b {
		b[i] = charset[b[i]%byte(len(charset))]
	}
	return string(b)
}

// WithRequestID stores a request id in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the request id from context, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ForRequest returns the global logger tagged with the request id.
func ForRequest(ctx context.Context) zerolog.Logger {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return log.Logger
	}
	return log.Logger.With().Str("requestId", id).Logger()
}

// LogBody logs a request or response body at debug level, truncated.
func LogBody(logger zerolog.Logger, field string, body []byte) {
	if len(body) == 0 {
		return
	}
	if len(body) > 1000 {
		logger.Debug().Str(field, string(body[:1000])).Bool("truncated", true).Msg("Body")
		return
	}
	logger.Debug().Str(field, string(body)).Msg("Body")
}

// EngineSink writes engine log entries for one game as structured
// debug events.
type EngineSink struct {
	logger zerolog.Logger
}

// NewEngineSink returns a sink tagging every entry with the game id.
func NewEngineSink(gameID string) *EngineSink {
	return &EngineSink{logger: log.Logger.With().Str("gameId", gameID).Logger()}
}

// NewEngineSinkWith uses the given logger instead of the global one.
func NewEngineSinkWith(logger zerolog.Logger) *EngineSink {
	return &EngineSink{logger: logger}
}

func (s *EngineSink) Append(e brass.LogEntry) {
	ev := s.logger.Debug().Str("era", string(e.Era)).Int("round", e.Round)
	if e.Player != "" {
		ev = ev.Str("player", e.Player)
	}
	ev.Msg(e.Message)
}
