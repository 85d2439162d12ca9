// Package logging carries a logrus handle through context.Context so every
// layer of the check/fix pipeline logs through the same explicit logger.
//
// Callers that never attach a logger get a discard logger, so library code can
// always log unconditionally.
package logging

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

var discard = newDiscard()

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// Options configures New.
type Options struct {
	// Verbose lowers the level to Debug (per-document fix attempts).
	Verbose bool

	// Color forces colored level names on or off.
	Color bool
}

// New creates a logger writing plain text lines to w.
func New(w io.Writer, opts Options) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableColors:          !opts.Color,
		ForceColors:            opts.Color,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
	l.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Discard returns the shared no-op logger.
func Discard() logrus.FieldLogger {
	return discard
}

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l logrus.FieldLogger) context.Context {
	if l == nil {
		l = discard
	}
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger attached to ctx, or the discard logger.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if ctx == nil {
		return discard
	}
	if l, ok := ctx.Value(ctxKey{}).(logrus.FieldLogger); ok && l != nil {
		return l
	}
	return discard
}
