package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// init sets up a JSON logger so packages can log before Init runs
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().In(time.UTC)
	}
	log = newLogger(os.Stdout, zerolog.InfoLevel)
}

// Init reconfigures the logger from application settings.
// Production writes JSON lines, every other environment gets a console writer.
func Init(level, environment, timezone string) {
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().In(loc)
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var writer io.Writer = os.Stdout
	if environment != "prod" {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	}

	log = newLogger(writer, lvl)
	log.Debug().
		Str("level", lvl.String()).
		Str("environment", environment).
		Str("timezone", loc.String()).
		Msg("Logger reconfigured")
}

// SetOutput redirects the logger, mostly for tests and quiet CLI output
func SetOutput(w io.Writer, level zerolog.Level) {
	log = newLogger(w, level)
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	l := zerolog.New(w).With().Timestamp().Logger().Level(level)
	zerolog.DefaultContextLogger = &l
	return l
}

// Trace returns a trace level log event
func Trace() *zerolog.Event {
	return log.Trace()
}

// Debug returns a debug level log event
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info returns an info level log event
func Info() *zerolog.Event {
	return log.Info()
}

// Warn returns a warning level log event
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error returns an error level log event
func Error() *zerolog.Event {
	return log.Error()
}

// Fatal returns a fatal level log event
func Fatal() *zerolog.Event {
	return log.Fatal()
}

// ScopedLogger is a logger carrying a fixed scope field
type ScopedLogger struct {
	scope string
}

// WithScope creates a scoped logger. The underlying zerolog logger is
// resolved on every call so a later Init is honoured.
func WithScope(scope string) *ScopedLogger {
	return &ScopedLogger{scope: scope}
}

func (s *ScopedLogger) logger() zerolog.Logger {
	return log.With().Str("scope", s.scope).Logger()
}

// Trace returns a trace level log event with scope
func (s *ScopedLogger) Trace() *zerolog.Event {
	l := s.logger()
	return l.Trace()
}

// Debug returns a debug level log event with scope
func (s *ScopedLogger) Debug() *zerolog.Event {
	l := s.logger()
	return l.Debug()
}

// Info returns an info level log event with scope
func (s *ScopedLogger) Info() *zerolog.Event {
	l := s.logger()
	return l.Info()
}

// Warn returns a warning level log event with scope
func (s *ScopedLogger) Warn() *zerolog.Event {
	l := s.logger()
	return l.Warn()
}

// Error returns an error level log event with scope
func (s *ScopedLogger) Error() *zerolog.Event {
	l := s.logger()
	return l.Error()
}

// Fatal returns a fatal level log event with scope
func (s *ScopedLogger) Fatal() *zerolog.Event {
	l := s.logger()
	return l.Fatal()
}

// GetScope returns the scope name
func (s *ScopedLogger) GetScope() string {
	return s.scope
}
