// Package store implements the process-wide Stream Store: the mapping from
// stream name to stream.Stream and the xadd/xlen/xrange/xread operations.
//
// Streams are created lazily on first append. Queries against a name that was
// never appended to behave as an empty stream rather than failing.
//
// Example:
//
//	st := store.New(store.Options{Logger: logger})
//	newID, _ := st.XAdd(ctx, "orders", stream.Fields{"sku": "A1"}, store.AddOptions{})
//	n := st.XLen(ctx, "orders")
//	items, _ := st.XRange(ctx, "orders", store.RangeQuery{Count: 10})
//
//	reqs, _ := store.ParseStreamsArg("orders 0-0 payments $")
//	results, _ := st.XRead(ctx, reqs, 10)
package store
