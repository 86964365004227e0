package logger

import (
	"io"
	"log/slog"
)

// Option configures New.
type Option func(*config)

// WithDebug lowers the level to Debug.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithPretty selects the charmbracelet/log handler used for terminal output.
// It wins over WithJSON.
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithJSON selects slog's JSON handler, used for log files.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithWriter sets the destination. Nil means os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) { c.writer = w }
}

// WithSource adds the calling file and line to each record.
func WithSource(source bool) Option {
	return func(c *config) { c.source = source }
}
