package serverrun

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/xstream/internal/config"
	"github.com/rzbill/xstream/internal/runtime"
	httpserver "github.com/rzbill/xstream/internal/server/http"
	"github.com/rzbill/xstream/internal/telemetry"
	logpkg "github.com/rzbill/xstream/pkg/log"
)

const tracingShutdownTimeout = 5 * time.Second

// Options for Run.
type Options struct {
	// Config is the effective configuration (file, env and flags merged).
	Config cfgpkg.Config
	// ConfigPath, when set together with Watch, is watched for changes and
	// reloadable settings are applied live.
	ConfigPath string
	Watch      bool
	// Overlay is re-applied after every config reload. The CLI passes its
	// explicitly set flags here so they keep priority over the file.
	Overlay func(*cfgpkg.Config)
	// Listener, when set, is used instead of listening on Config.HTTPAddr.
	Listener net.Listener
	// Logger overrides the logger built from Config.
	Logger logpkg.Logger
}

// newLogger builds the process logger from cfg, falling back to an
// info-level text logger when the config is unusable.
func newLogger(cfg cfgpkg.Config) logpkg.Logger {
	lcfg := &logpkg.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	logger, err := logpkg.ApplyConfig(lcfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.LogLevel); e == nil {
			lvl = l
		}
		logger = logpkg.NewLogger(
			logpkg.WithLevel(lvl),
			logpkg.WithFormatter(&logpkg.TextFormatter{}),
			logpkg.WithOutput(logpkg.NewConsoleOutput()),
		)
		logger.Warn("invalid log config; using text format", logpkg.Err(err))
	}
	return logger
}

// Run opens the runtime, starts the HTTP server and blocks until ctx is
// cancelled or a termination signal arrives.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	procLogger := opts.Logger
	if procLogger == nil {
		procLogger = newLogger(opts.Config)
		logpkg.RedirectStdLog(procLogger)
	}

	rt, err := runtime.Open(runtime.Options{Config: opts.Config, Logger: procLogger})
	if err != nil {
		return err
	}
	defer rt.Close()

	if opts.Config.EnableTracing {
		tel, err := telemetry.New(sctx, telemetry.Config{
			Enabled:    true,
			Endpoint:   opts.Config.TracingEndpoint,
			SampleRate: opts.Config.TracingSampleRate,
		})
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
			defer cancel()
			if err := tel.Shutdown(ctx); err != nil {
				procLogger.Warn("tracing shutdown", logpkg.Err(err))
			}
		}()
	}

	if opts.Watch && opts.ConfigPath != "" {
		var overlays []func(*cfgpkg.Config)
		if opts.Overlay != nil {
			overlays = append(overlays, opts.Overlay)
		}
		w, err := cfgpkg.NewWatcher(opts.ConfigPath, procLogger.With(logpkg.Component("config")), overlays...)
		if err != nil {
			return err
		}
		w.OnChange(rt.ApplyConfig)
		stopWatch, err := w.Watch()
		if err != nil {
			return err
		}
		defer stopWatch()
	}

	cfg := rt.Config()
	procLogger.Info("Starting xstream server",
		logpkg.Str("http", cfg.HTTPAddr),
		logpkg.Str("level", cfg.LogLevel),
		logpkg.Str("format", cfg.LogFormat),
		logpkg.Str("config", opts.ConfigPath),
		logpkg.Bool("metrics", cfg.EnableMetrics),
		logpkg.Bool("tracing", cfg.EnableTracing),
		logpkg.Str("tracing_endpoint", cfg.TracingEndpoint),
	)

	hsrv := httpserver.New(rt, procLogger)
	if opts.Listener != nil {
		err = hsrv.Serve(sctx, opts.Listener)
	} else {
		err = hsrv.ListenAndServe(sctx, cfg.HTTPAddr)
	}
	if err != nil && sctx.Err() == nil {
		procLogger.Error("http server error", logpkg.Err(err))
		return err
	}
	return nil
}
