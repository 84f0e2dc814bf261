package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rzbill/xstream/internal/runtime"
	"github.com/rzbill/xstream/internal/server/http/controllers"
	"github.com/rzbill/xstream/internal/telemetry"
	logpkg "github.com/rzbill/xstream/pkg/log"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front end over a Runtime's stream store.
type Server struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
	srv    *http.Server

	mu  sync.Mutex
	lis net.Listener
}

// New builds the router and middleware chain. Routes are registered by the
// controllers package.
func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	logger = logger.With(logpkg.Component("http"))

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger(logger, rt.Metrics()))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	controllers.NewControllerRegistry(rt, logger).RegisterAllRoutes(r)

	var h http.Handler = r
	if rt.Config().EnableTracing {
		h = telemetry.HTTPMiddleware(telemetry.DefaultServiceName)(h)
	}
	s := &Server{
		rt:     rt,
		logger: logger,
		srv: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          logpkg.ToStdLogger(logger, logpkg.WarnLevel),
		},
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.mu.Lock()
	s.lis = l
	s.mu.Unlock()

	s.logger.Info("http server listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := s.srv.Shutdown(cctx)
		s.logger.Info("http server stopped")
		return err
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Addr returns the bound listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Close stops the server immediately.
func (s *Server) Close() {
	_ = s.srv.Close()
}
