package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	cfgpkg "github.com/rzbill/xstream/internal/config"
	"github.com/rzbill/xstream/internal/metrics"
	"github.com/rzbill/xstream/internal/store"
	logpkg "github.com/rzbill/xstream/pkg/log"
)

// ErrClosed is returned by CheckHealth after Close.
var ErrClosed = errors.New("runtime closed")

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
}

// Runtime owns the process-wide stream store together with the config,
// logger and metrics it was built with.
type Runtime struct {
	store   *store.Store
	metrics *metrics.Metrics
	logger  logpkg.Logger

	mu     sync.RWMutex
	config cfgpkg.Config
	closed atomic.Bool
}

// Open validates the config and returns a Runtime with an empty store.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	rt := &Runtime{config: opts.Config, logger: logger}

	sopts := store.Options{
		Logger:       logger.With(logpkg.Component("store")),
		DefaultCount: opts.Config.DefaultCount,
		MaxCount:     opts.Config.MaxCount,
		MaxNameBytes: opts.Config.MaxStreamNameBytes,
	}
	if opts.Config.EnableMetrics {
		rt.metrics = metrics.New()
		sopts.Metrics = rt.metrics
	}
	rt.store = store.New(sopts)
	return rt, nil
}

// Close releases the runtime. The in-memory store is dropped with it.
func (r *Runtime) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.logger.Info("runtime closed", logpkg.Int("streams", len(r.store.Streams(context.Background()))))
	return nil
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

// ApplyConfig applies the settings that may change while running; today
// that is the log level.
func (r *Runtime) ApplyConfig(cfg cfgpkg.Config) {
	r.mu.Lock()
	prev := r.config.LogLevel
	r.config.LogLevel = cfg.LogLevel
	r.mu.Unlock()

	if cfg.LogLevel == prev {
		return
	}
	level, err := logpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		r.logger.Warn("ignoring invalid log level", logpkg.Str("level", cfg.LogLevel), logpkg.Err(err))
		return
	}
	r.logger.SetLevel(level)
	r.logger.Info("log level changed", logpkg.Str("from", prev), logpkg.Str("to", cfg.LogLevel))
}

// Store returns the stream store shared by all request handlers.
func (r *Runtime) Store() *store.Store { return r.store }

// Metrics returns the Prometheus collectors, or nil when metrics are disabled.
func (r *Runtime) Metrics() *metrics.Metrics { return r.metrics }

// Logger returns the root logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}
