package sso

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// zerologAdapter bridges a zerolog.Logger into the package Logger interface.
type zerologAdapter struct {
	log zerolog.Logger
}

var _ Logger = (*zerologAdapter)(nil)

// NewZerologAdapter wraps an existing zerolog logger.
func NewZerologAdapter(log zerolog.Logger) Logger {
	return &zerologAdapter{log: log}
}

// NewSecurityLogger returns a structured logger for security-relevant
// events: token rejections, failed logins, admin-gate denials.
func NewSecurityLogger(out io.Writer) Logger {
	return newNamedLogger(out, "security")
}

// NewEventLogger returns a structured logger for ordinary application
// events.
func NewEventLogger(out io.Writer) Logger {
	return newNamedLogger(out, "event")
}

func newNamedLogger(out io.Writer, name string) Logger {
	if out == nil {
		out = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log := zerolog.New(out).With().
		Timestamp().
		Str("logger", name).
		Logger()
	return &zerologAdapter{log: log}
}

func (z *zerologAdapter) Debug(format string, args ...any) {
	z.log.Debug().Msgf(format, args...)
}

func (z *zerologAdapter) Info(format string, args ...any) {
	z.log.Info().Msgf(format, args...)
}

func (z *zerologAdapter) Warn(format string, args ...any) {
	z.log.Warn().Msgf(format, args...)
}

func (z *zerologAdapter) Error(format string, args ...any) {
	z.log.Error().Msgf(format, args...)
}
