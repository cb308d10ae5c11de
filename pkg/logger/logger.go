// Package logger builds the *slog.Logger values mousetron commands share.
//
// Commands log to the terminal through charmbracelet/log; serve can tee the
// same records as JSON lines into a log file with Multi.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type settings struct {
	level  slog.Level
	pretty bool
	json   bool
	out    []io.Writer
}

// Option adjusts a logger built by New.
type Option func(*settings)

// WithDebug lowers the level to Debug.
func WithDebug(debug bool) Option {
	return func(s *settings) {
		s.level = slog.LevelInfo
		if debug {
			s.level = slog.LevelDebug
		}
	}
}

// WithPretty selects colorized terminal output.
func WithPretty(pretty bool) Option {
	return func(s *settings) {
		s.pretty = pretty
	}
}

// WithJSON selects one JSON object per record. It wins over WithPretty.
func WithJSON(json bool) Option {
	return func(s *settings) {
		s.json = json
	}
}

// WithWriter sends output to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return WithWriters(w)
}

// WithWriters sends every record to each of w.
func WithWriters(w ...io.Writer) Option {
	return func(s *settings) {
		s.out = w
	}
}

// New returns an Info level text logger on stdout unless opts say otherwise.
func New(opts ...Option) *slog.Logger {
	s := settings{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&s)
	}

	var w io.Writer = os.Stdout
	switch len(s.out) {
	case 0:
	case 1:
		w = s.out[0]
	default:
		w = io.MultiWriter(s.out...)
	}

	switch {
	case s.json:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: s.level}))
	case s.pretty:
		return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			Level:           charmlog.Level(s.level),
		}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: s.level}))
	}
}

// Multi returns a logger that delivers each record to every logger that
// accepts its level. A failing sink does not stop delivery to the others;
// the errors are joined.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	sinks := make(fanout, 0, len(loggers))
	for _, l := range loggers {
		sinks = append(sinks, l.Handler())
	}
	return slog.New(sinks)
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(discard{})
}

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
