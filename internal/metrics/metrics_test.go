package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/xstream/internal/store"
)

var _ store.MetricsHook = (*Metrics)(nil)

func TestMetrics_StoreHook(t *testing.T) {
	m := New()
	m.ObserveAppend("s", time.Millisecond)
	m.ObserveAppend("s", time.Millisecond)
	m.ObserveQuery("xrange", time.Millisecond, 7)
	m.ObserveRejected("xadd")
	m.SetStreams(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntriesAppended))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries.WithLabelValues("xrange")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.EntriesReturned.WithLabelValues("xrange")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("xadd")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Streams))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP("/xlen/{stream}", "GET", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `xstream_http_requests_total{method="GET",route="/xlen/{stream}",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_StoreIntegration(t *testing.T) {
	m := New()
	s := store.New(store.Options{Metrics: m})
	_, err := s.XAdd(context.Background(), "a", map[string]any{"k": "v"}, store.AddOptions{})
	require.NoError(t, err)
	_, err = s.XAdd(context.Background(), "", map[string]any{"k": "v"}, store.AddOptions{})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntriesAppended))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Streams))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("xadd")))
}
