// Package runtime wires the stream store, config, logger and metrics into a
// single-process xstream instance. It exposes Open/Close, a basic health
// check and live application of reloadable settings.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
//	defer rt.Close()
//	// Health
//	_ = rt.CheckHealth(context.Background())
//	// Append and read back
//	id, _ := rt.Store().XAdd(ctx, "orders", stream.Fields{"sku": "A1"}, store.AddOptions{})
//	items, _ := rt.Store().XRange(ctx, "orders", store.RangeQuery{Count: 10})
package runtime
