package serverrun

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	cfgpkg "github.com/rzbill/xstream/internal/config"
	logpkg "github.com/rzbill/xstream/pkg/log"
)

func TestNewLoggerFallsBackOnBadFormat(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.LogFormat = "xml"
	if l := newLogger(cfg); l == nil {
		t.Fatal("expected a fallback logger")
	}
	cfg.LogFormat = "json"
	cfg.LogLevel = "debug"
	if l := newLogger(cfg); l.GetLevel() != logpkg.DebugLevel {
		t.Fatalf("level = %v", l.GetLevel())
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.MaxCount = 1
	err := Run(context.Background(), Options{Config: cfg, Logger: logpkg.NewNopLogger()})
	if err == nil {
		t.Fatal("expected config validation error")
	}
}

// TestRunIntegration starts Run on a loopback listener, exercises one
// append over HTTP and then cancels.
func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{Config: cfgpkg.Default(), Listener: l, Logger: logpkg.NewNopLogger()})
	}()

	base := "http://" + l.Addr().String()
	waitHealthy(t, base)

	resp, err := http.Post(base+"/xadd/orders", "application/json", strings.NewReader(`{"sku":"A1"}`))
	if err != nil {
		t.Fatalf("xadd: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"id"`) {
		t.Fatalf("xadd: %d %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunAppliesWatchedLogLevel(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	file := filepath.Join(t.TempDir(), "xstream.yaml")
	if err := os.WriteFile(file, []byte("logLevel: info\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := cfgpkg.Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var buf syncBuffer
	logger, err := logpkg.ApplyConfig(&logpkg.Config{Level: cfg.LogLevel, Writer: &buf})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{Config: cfg, ConfigPath: file, Watch: true, Listener: l, Logger: logger})
	}()
	waitHealthy(t, "http://"+l.Addr().String())

	if err := os.WriteFile(file, []byte("logLevel: debug\n"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for logger.GetLevel() != logpkg.DebugLevel {
		if time.Now().After(deadline) {
			t.Fatalf("log level not applied; log:\n%s", buf.String())
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	<-done
}

// TestRunInstallsTracerProvider checks that enableTracing replaces the
// global no-op provider for the lifetime of the server. Sampling is off so
// nothing is exported to the unreachable collector.
func TestRunInstallsTracerProvider(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	cfg := cfgpkg.Default()
	cfg.EnableTracing = true
	cfg.TracingEndpoint = "127.0.0.1:1"
	cfg.TracingSampleRate = 0
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{Config: cfg, Listener: l, Logger: logpkg.NewNopLogger()})
	}()
	waitHealthy(t, "http://"+l.Addr().String())

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("global tracer provider is %T", otel.GetTracerProvider())
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func waitHealthy(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server not healthy: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}
