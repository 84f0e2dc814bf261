// Package httpserver exposes the stream store over HTTP: xadd, xrange, xlen
// and xread with Redis-Streams-like semantics, plus health, stream listing
// and Prometheus metrics.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default(), Logger: logger})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
