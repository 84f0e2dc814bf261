package runtime

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	cfgpkg "github.com/rzbill/xstream/internal/config"
	"github.com/rzbill/xstream/internal/stream"
	"github.com/rzbill/xstream/internal/store"
	logpkg "github.com/rzbill/xstream/pkg/log"
)

func TestOpenCloseHealth(t *testing.T) {
	rt, err := Open(Options{Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.DefaultCount = 0
	if _, err := Open(Options{Config: cfg}); err == nil {
		t.Fatalf("expected error for invalid config")
	}
}

func TestStoreUsesConfigLimits(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.MaxStreamNameBytes = 4
	cfg.EnableMetrics = false
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	if rt.Metrics() != nil {
		t.Fatalf("metrics should be disabled")
	}
	ctx := context.Background()
	if _, err := rt.Store().XAdd(ctx, "toolong", stream.Fields{"a": "b"}, store.AddOptions{}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for long name, got %v", err)
	}
	if _, err := rt.Store().XAdd(ctx, "ok", stream.Fields{"a": "b"}, store.AddOptions{}); err != nil {
		t.Fatalf("xadd: %v", err)
	}
	if n := rt.Store().XLen(ctx, "ok"); n != 1 {
		t.Fatalf("xlen = %d", n)
	}
}

func TestApplyConfigChangesLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logpkg.ApplyConfig(&logpkg.Config{Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	rt, err := Open(Options{Config: cfgpkg.Default(), Logger: logger})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	logger.Debug("hidden")
	next := rt.Config()
	next.LogLevel = "debug"
	rt.ApplyConfig(next)
	logger.Debug("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug logged before level change: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("debug not logged after level change: %s", out)
	}
	if rt.Config().LogLevel != "debug" {
		t.Fatalf("config not updated")
	}
}

func TestStoreLogsCarryComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logpkg.ApplyConfig(&logpkg.Config{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	rt, err := Open(Options{Config: cfgpkg.Default(), Logger: logger})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	if _, err := rt.Store().XAdd(context.Background(), "c", stream.Fields{"a": "b"}, store.AddOptions{}); err != nil {
		t.Fatalf("xadd: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"msg":"store.xadd"`) || !strings.Contains(out, `"component":"store"`) {
		t.Fatalf("store log missing component: %s", out)
	}
}
