// Package watcher detects new or modified source files in a directory and
// hands each one to a Handler, one at a time.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/papercomputeco/mentor/pkg/logger"
)

const (
	ModePoll   = "poll"
	ModeNotify = "notify"

	DefaultInterval = 5 * time.Second
)

// DefaultExtensions are watched when Config.Extensions is empty.
var DefaultExtensions = []string{".py"}

// Config configures a Watcher.
type Config struct {
	// Dir is the watched directory. Only its direct entries are considered.
	Dir string

	Extensions []string
	Interval   time.Duration

	// Exclude holds glob patterns matched against file names, such as
	// "test_*.py" or "*_pb2.py". Matching files are never handled.
	Exclude []string

	// Mode is ModePoll (default) or ModeNotify. In notify mode filesystem
	// events trigger a poll early; the interval still applies as a fallback.
	Mode string
}

func (c *Config) setDefaults() {
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Mode == "" {
		c.Mode = ModePoll
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return ErrEmptyDir
	}
	if c.Interval <= 0 {
		return ErrInvalidInterval
	}
	if c.Mode != ModePoll && c.Mode != ModeNotify {
		return ErrInvalidMode
	}
	return nil
}

// Handler processes one changed artifact. It may block for as long as it
// needs; no other artifact is handled meanwhile.
type Handler func(ctx context.Context, path, code string) error

// Watcher tracks the modification time of every matching artifact.
type Watcher struct {
	cfg     Config
	handler Handler
	exclude []glob.Glob
	logger  *slog.Logger

	seen   map[string]time.Time
	seeded bool
}

// New creates a Watcher.
func New(cfg Config, handler Handler, log *slog.Logger) (*Watcher, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, errors.New("watcher requires a handler")
	}

	exclude, err := compileExcludes(cfg.Exclude)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		cfg:     cfg,
		handler: handler,
		exclude: exclude,
		logger:  logger.OrNop(log),
		seen:    make(map[string]time.Time),
	}, nil
}

type artifact struct {
	path    string
	modTime time.Time
}

// scan lists matching regular files in Dir, sorted by name.
func (w *Watcher) scan() ([]artifact, error) {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading watch directory: %w", err)
	}

	var found []artifact
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !w.matches(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}

		found = append(found, artifact{
			path:    filepath.Join(w.cfg.Dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	return found, nil
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// matches reports whether the file at name should be handled.
func (w *Watcher) matches(name string) bool {
	base := filepath.Base(name)
	if !slices.Contains(w.cfg.Extensions, filepath.Ext(base)) {
		return false
	}
	for _, g := range w.exclude {
		if g.Match(base) {
			return false
		}
	}
	return true
}

// Seed records every artifact present now so that only later changes are
// handled.
func (w *Watcher) Seed() error {
	found, err := w.scan()
	if err != nil {
		return err
	}

	for _, a := range found {
		w.seen[a.path] = a.modTime
	}
	w.seeded = true

	w.logger.Debug("watcher seeded", "dir", w.cfg.Dir, "artifacts", len(found))
	return nil
}

// Poll runs one detection cycle. It returns ErrEmptyArtifact as soon as a
// changed artifact is blank. Read and handler failures skip that artifact and
// move on; they are joined into the returned error. A skipped artifact stays
// unrecorded so the next Poll retries it, unless the handler wrapped its
// error in ErrPartiallyHandled.
func (w *Watcher) Poll(ctx context.Context) error {
	found, err := w.scan()
	if err != nil {
		return err
	}

	var errs []error
	for _, a := range found {
		if prev, ok := w.seen[a.path]; ok && !a.modTime.After(prev) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := os.ReadFile(a.path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s: %w", a.path, err))
			continue
		}

		code := string(data)
		if strings.TrimSpace(code) == "" {
			w.logger.Warn("no code detected", "path", a.path)
			return fmt.Errorf("%w in %s", ErrEmptyArtifact, a.path)
		}

		w.logger.Info("detected changes", "path", a.path)

		if err := w.handler(ctx, a.path, code); err != nil {
			errs = append(errs, fmt.Errorf("handling %s: %w", a.path, err))
			if !errors.Is(err, ErrPartiallyHandled) {
				w.logger.Debug("artifact left for retry", "path", a.path)
				continue
			}
		}

		w.seen[a.path] = a.modTime
	}

	return errors.Join(errs...)
}

// Run seeds the watcher unless Seed was already called and polls until ctx
// is canceled or an empty artifact is found. Handler failures are logged and
// left to Poll's retry rules.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.seeded {
		if err := w.Seed(); err != nil {
			return err
		}
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	if w.cfg.Mode == ModeNotify {
		fw, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("creating file watcher: %w", err)
		}
		defer fw.Close()

		if err := fw.Add(w.cfg.Dir); err != nil {
			return fmt.Errorf("watching %s: %w", w.cfg.Dir, err)
		}
		events, errs = fw.Events, fw.Errors
	}

	w.logger.Info("watching directory", "dir", w.cfg.Dir, "mode", w.cfg.Mode, "interval", w.cfg.Interval)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.matches(event.Name) {
				continue
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Warn("file watcher error", "error", err)
			continue
		}

		err := w.Poll(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, ErrEmptyArtifact):
			return err
		default:
			w.logger.Error("watch cycle failed", "error", err)
		}
	}
}
