package store

import "time"

// MetricsHook observes store operations. internal/metrics provides the
// Prometheus implementation.
type MetricsHook interface {
	ObserveAppend(stream string, elapsed time.Duration)
	ObserveQuery(op string, elapsed time.Duration, entries int)
	ObserveRejected(op string)
	SetStreams(n int)
}

// NoopMetrics is used when no metrics hook is provided.
type NoopMetrics struct{}

func (NoopMetrics) ObserveAppend(string, time.Duration)     {}
func (NoopMetrics) ObserveQuery(string, time.Duration, int) {}
func (NoopMetrics) ObserveRejected(string)                  {}
func (NoopMetrics) SetStreams(int)                          {}
