// Package app builds the long-lived mentor components from resolved
// settings. Commands create one App, use its Store and Generator, and Close
// it on exit.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/papercomputeco/mentor/pkg/cliui"
	"github.com/papercomputeco/mentor/pkg/config"
	"github.com/papercomputeco/mentor/pkg/credentials"
	"github.com/papercomputeco/mentor/pkg/dotdir"
	embeddingcache "github.com/papercomputeco/mentor/pkg/embeddings/cache"
	embeddingutils "github.com/papercomputeco/mentor/pkg/embeddings/utils"
	"github.com/papercomputeco/mentor/pkg/eventstream"
	eventstreamutils "github.com/papercomputeco/mentor/pkg/eventstream/utils"
	"github.com/papercomputeco/mentor/pkg/generation"
	generationutils "github.com/papercomputeco/mentor/pkg/generation/utils"
	"github.com/papercomputeco/mentor/pkg/git"
	"github.com/papercomputeco/mentor/pkg/instance"
	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/memory"
	"github.com/papercomputeco/mentor/pkg/session"
	vectorutils "github.com/papercomputeco/mentor/pkg/vector/utils"
)

const (
	chromemDirName   = "memory"
	sqliteFileName   = "memory.sqlite"
	defaultChromaURL = "http://localhost:8000"
)

// ErrSession wraps a failure of the chat session Review opens after the
// analysis. The code is already stored when it occurs.
var ErrSession = errors.New("chat session failed")

// Options configures New.
type Options struct {
	// ConfigDir overrides .mentor/ resolution.
	ConfigDir string
	Settings  *config.Settings

	// Command is recorded as the lock holder.
	Command string

	// WithoutGenerator skips building a generator for read-only commands.
	WithoutGenerator bool

	Logger *slog.Logger
}

// App holds the components shared by a command run.
type App struct {
	Settings  *config.Settings
	Store     *memory.Store
	Generator generation.Generator
	Publisher eventstream.Publisher

	lock   *instance.Lock
	logger *slog.Logger
}

// New opens the memory store and builds the generator and publisher.
// Anything opened before a failure is closed again.
func New(ctx context.Context, o Options) (a *App, err error) {
	if o.Settings == nil {
		return nil, errors.New("app requires settings")
	}
	s := o.Settings
	log := logger.OrNop(o.Logger)

	a = &App{Settings: s, logger: log}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()

	if s.VectorStore.Provider != vectorutils.ProviderChroma {
		im, err := instance.NewManager(o.ConfigDir)
		if err != nil {
			return nil, err
		}
		a.lock, err = im.TryLock(&instance.State{Command: o.Command, WatchDir: s.Watch.Dir})
		if err != nil {
			return nil, err
		}
	}

	credMgr, err := credentials.NewManager(o.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	target, err := vectorTarget(o.ConfigDir, s.VectorStore)
	if err != nil {
		return nil, err
	}

	driver, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		ProviderType:   s.VectorStore.Provider,
		Target:         target,
		CollectionName: s.VectorStore.Collection,
		Dimensions:     s.Embedding.Dimensions,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: s.Embedding.Provider,
		TargetURL:    s.Embedding.Target,
		Model:        s.Embedding.Model,
		Dimensions:   s.Embedding.Dimensions,
		APIKey:       credMgr.ResolveKey(s.Embedding.Provider),
	})
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	cached, err := embeddingcache.New(embedder, embeddingcache.Config{})
	if err != nil {
		_ = driver.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	embedder = cached

	a.Publisher, err = eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: s.Events.Provider,
		Brokers:      s.Events.Brokers,
		Topic:        s.Events.Topic,
		Logger:       log,
	})
	if err != nil {
		_ = driver.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}

	a.Store, err = memory.NewStore(ctx, memory.Config{
		Driver:    driver,
		Embedder:  embedder,
		Publisher: a.Publisher,
		Source: eventstream.EventSource{
			Collection: s.VectorStore.Collection,
			Provider:   s.VectorStore.Provider,
			Project:    git.RepoName(s.Watch.Dir),
		},
		Logger: log,
	})
	if err != nil {
		_ = driver.Close()
		_ = embedder.Close()
		return nil, err
	}

	if o.WithoutGenerator {
		return a, nil
	}

	a.Generator, err = generationutils.NewGenerator(&generationutils.NewGeneratorOpts{
		ProviderType: s.Generation.Provider,
		Target:       s.Generation.Target,
		Model:        s.Generation.Model,
		CredMgr:      credMgr,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	return a, nil
}

// Params returns the generation parameters from settings.
func (a *App) Params() generation.Params {
	return generation.Params{
		Temperature: a.Settings.Generation.Temperature,
		MaxTokens:   a.Settings.Generation.MaxTokens,
		Timeout:     a.Settings.Generation.Timeout,
	}
}

// NewSession builds a session over the app's store and generator.
func (a *App) NewSession(in *session.LineReader, out io.Writer) (*session.Session, error) {
	return session.New(session.Config{
		Store:     a.Store,
		Generator: a.Generator,
		Params:    a.Params(),
		TopK:      a.Settings.TopK,
		In:        in,
		Out:       out,
		Render:    cliui.Markdown,
		Progress:  out,
		Logger:    a.logger,
	})
}

// Review runs one analysis cycle on code. With chat set it then opens a
// session over in, even when the analysis itself failed to generate.
func (a *App) Review(ctx context.Context, code string, in *session.LineReader, out io.Writer, chat bool) error {
	sess, err := a.NewSession(in, out)
	if err != nil {
		return err
	}

	if _, err := sess.Analyze(ctx, code); err != nil {
		var f *generation.Failure
		if !errors.As(err, &f) {
			return err
		}
	}

	if !chat {
		return nil
	}
	if err := sess.Run(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSession, err)
	}
	return nil
}

// Close releases everything New opened.
func (a *App) Close() error {
	var errs []error
	if a.Generator != nil {
		errs = append(errs, a.Generator.Close())
	}
	if a.Store != nil {
		// Closes the driver, embedder and publisher.
		errs = append(errs, a.Store.Close())
	} else if a.Publisher != nil {
		errs = append(errs, a.Publisher.Close())
	}
	errs = append(errs, a.lock.Release())
	return errors.Join(errs...)
}

// vectorTarget fills in the default location for each provider.
func vectorTarget(configDir string, vs config.VectorStoreConfig) (string, error) {
	if vs.Target != "" {
		return vs.Target, nil
	}

	switch vs.Provider {
	case vectorutils.ProviderChroma:
		return defaultChromaURL, nil
	case vectorutils.ProviderSQLite:
		return dotdir.NewManager().Path(configDir, sqliteFileName)
	default:
		return dotdir.NewManager().Path(configDir, chromemDirName)
	}
}
