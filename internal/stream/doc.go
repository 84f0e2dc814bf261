// Package stream implements a single named, append-only log of entries.
//
// # Overview
//
// A Stream keeps its entries in ID order in memory and owns the id.Generator
// that numbers them. One writer lock per Stream serializes ID generation and
// the append, so concurrent appends to the same stream can never produce
// duplicate or out-of-order IDs; appends to different streams never contend.
//
// Readers capture a prefix of the entry slice under the read lock and then
// scan it without holding any lock. Entries are never mutated after append,
// so every read observes a consistent prefix of the history.
//
// API surface (internal)
//
//	s := stream.New("orders")
//	newID := s.Append(stream.Fields{"sku": "A1"}, id.NowMs())
//
//	// Inclusive range with a count bound
//	items := s.Range(stream.RangeOptions{Start: id.Min, End: id.Max, Count: 10})
//
//	// Everything strictly after a cursor
//	after := s.EntriesAfter(newID, 0)
package stream
