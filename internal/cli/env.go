// Package cli implements the audiocaps-download commands on top of an
// injectable environment, so tests can swap every external dependency.
package cli

import (
	"io"
	"os"

	"github.com/MorenoLaQuatra/audiocaps-download/internal/clip"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/config"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/dataset"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/pipeline"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/probe"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/ytdlp"
)

// ConfigStore reads and writes persisted user configuration.
type ConfigStore interface {
	Load() (config.Config, error)
	Save(key, value string) error
	Get(key string) (string, error)
	List() (map[string]string, error)
}

// ToolResolver locates the external binaries the pipeline shells out to.
type ToolResolver interface {
	ResolveDownloader() (string, error)
	ResolveProber() (string, error)
}

// LoaderFactory builds the metadata loader for a run.
type LoaderFactory interface {
	NewLoader(baseURL string) pipeline.Loader
}

// FetcherFactory builds the clip fetcher for a run.
type FetcherFactory interface {
	NewFetcher(binPath string, format clip.Format, quality clip.Quality) pipeline.Fetcher
}

// CheckerFactory builds the clip validity checker for a run.
type CheckerFactory interface {
	NewChecker(binPath string) pipeline.Checker
}

// Env holds the injectable dependencies of the commands.
type Env struct {
	Stderr   io.Writer
	Getenv   func(string) string
	Config   ConfigStore
	Resolver ToolResolver
	Loaders  LoaderFactory
	Fetchers FetcherFactory
	Checkers CheckerFactory
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStderr overrides the diagnostics writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv overrides environment variable lookups.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithConfigStore overrides the configuration store.
func WithConfigStore(s ConfigStore) EnvOption {
	return func(e *Env) { e.Config = s }
}

// WithToolResolver overrides the external binary resolver.
func WithToolResolver(r ToolResolver) EnvOption {
	return func(e *Env) { e.Resolver = r }
}

// WithLoaderFactory overrides the metadata loader factory.
func WithLoaderFactory(f LoaderFactory) EnvOption {
	return func(e *Env) { e.Loaders = f }
}

// WithFetcherFactory overrides the clip fetcher factory.
func WithFetcherFactory(f FetcherFactory) EnvOption {
	return func(e *Env) { e.Fetchers = f }
}

// WithCheckerFactory overrides the validity checker factory.
func WithCheckerFactory(f CheckerFactory) EnvOption {
	return func(e *Env) { e.Checkers = f }
}

// NewEnv creates an Env with defaults, applying any options.
func NewEnv(opts ...EnvOption) *Env {
	e := &Env{
		Stderr:   os.Stderr,
		Getenv:   os.Getenv,
		Config:   fileConfigStore{},
		Resolver: execToolResolver{},
		Loaders:  datasetLoaderFactory{},
		Fetchers: ytdlpFetcherFactory{},
		Checkers: probeCheckerFactory{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultEnv creates an Env wired to the real implementations.
func DefaultEnv() *Env {
	return NewEnv()
}

// fileConfigStore delegates to the config package's file-backed store.
type fileConfigStore struct{}

func (fileConfigStore) Load() (config.Config, error)     { return config.Load() }
func (fileConfigStore) Save(key, value string) error     { return config.Save(key, value) }
func (fileConfigStore) Get(key string) (string, error)   { return config.Get(key) }
func (fileConfigStore) List() (map[string]string, error) { return config.List() }

// execToolResolver finds binaries via env overrides and PATH lookup.
type execToolResolver struct{}

func (execToolResolver) ResolveDownloader() (string, error) { return ytdlp.Resolve() }
func (execToolResolver) ResolveProber() (string, error)     { return probe.Resolve() }

type datasetLoaderFactory struct{}

func (datasetLoaderFactory) NewLoader(baseURL string) pipeline.Loader {
	return dataset.NewLoader(dataset.WithBaseURL(baseURL))
}

type ytdlpFetcherFactory struct{}

func (ytdlpFetcherFactory) NewFetcher(binPath string, format clip.Format, quality clip.Quality) pipeline.Fetcher {
	return clip.NewFetcher(ytdlp.NewClient(binPath), format, quality)
}

type probeCheckerFactory struct{}

func (probeCheckerFactory) NewChecker(binPath string) pipeline.Checker {
	return probe.NewChecker(binPath)
}

var (
	_ ConfigStore    = fileConfigStore{}
	_ ToolResolver   = execToolResolver{}
	_ LoaderFactory  = datasetLoaderFactory{}
	_ FetcherFactory = ytdlpFetcherFactory{}
	_ CheckerFactory = probeCheckerFactory{}
)
