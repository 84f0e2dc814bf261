package stream

import (
	"sort"
	"sync"

	"github.com/rzbill/xstream/pkg/id"
)

// DefaultCount bounds Range when no positive count is supplied.
const DefaultCount = 10

// Stream provides append-only operations for one named log.
type Stream struct {
	name string

	mu      sync.RWMutex
	gen     *id.Generator
	entries []Entry
}

// New creates an empty stream.
func New(name string) *Stream {
	return &Stream{name: name, gen: id.NewGenerator()}
}

// Name returns the stream name.
func (s *Stream) Name() string { return s.name }

// Append assigns the next ID for nowMs and appends the entry. The entry is
// visible to readers as soon as Append returns.
func (s *Stream) Append(fields Fields, nowMs uint64) id.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.gen.Next(nowMs)
	s.entries = append(s.entries, Entry{ID: next, Fields: fields.Clone()})
	return next
}

// Len returns the number of entries ever appended.
func (s *Stream) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Tail returns the highest ID present, or false for an empty stream.
func (s *Stream) Tail() (id.ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return id.Min, false
	}
	return s.entries[len(s.entries)-1].ID, true
}

// snapshot returns the current prefix. The backing array below len is never
// written again, so callers may scan it without the lock.
func (s *Stream) snapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[:len(s.entries):len(s.entries)]
}

// RangeOptions bounds a Range scan. Start and End are inclusive.
type RangeOptions struct {
	Start id.ID
	End   id.ID
	// Count caps the number of returned entries; <= 0 means DefaultCount.
	Count int
	// Match, when set, skips entries for which it returns false. Skipped
	// entries do not count toward Count.
	Match func(Entry) bool
}

// Range returns entries with Start <= id <= End in ascending order.
func (s *Stream) Range(opts RangeOptions) []Entry {
	limit := opts.Count
	if limit <= 0 {
		limit = DefaultCount
	}
	snap := s.snapshot()
	items := make([]Entry, 0, min(limit, len(snap)))
	if opts.End.Less(opts.Start) {
		return items
	}

	i := sort.Search(len(snap), func(i int) bool { return !snap[i].ID.Less(opts.Start) })
	for ; i < len(snap) && len(items) < limit; i++ {
		e := snap[i]
		if opts.End.Less(e.ID) {
			break
		}
		if opts.Match != nil && !opts.Match(e) {
			continue
		}
		items = append(items, e)
	}
	return items
}

// EntriesAfter returns entries with id > cursor in ascending order, at most
// limit of them (limit <= 0 returns all).
func (s *Stream) EntriesAfter(cursor id.ID, limit int) []Entry {
	snap := s.snapshot()
	i := sort.Search(len(snap), func(i int) bool { return cursor.Less(snap[i].ID) })
	rest := snap[i:]
	if limit > 0 && len(rest) > limit {
		rest = rest[:limit]
	}
	out := make([]Entry, len(rest))
	copy(out, rest)
	return out
}
