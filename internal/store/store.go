package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rzbill/xstream/internal/stream"
	"github.com/rzbill/xstream/pkg/id"
	logpkg "github.com/rzbill/xstream/pkg/log"
)

const (
	// DefaultCount is applied when a request carries no positive count.
	DefaultCount = stream.DefaultCount
	// DefaultMaxCount caps any single xrange/xread response per stream.
	DefaultMaxCount = 10000
	// DefaultMaxNameBytes bounds stream name length.
	DefaultMaxNameBytes = 256
)

// Options configures a Store. Zero values select defaults.
type Options struct {
	Logger       logpkg.Logger
	Metrics      MetricsHook
	DefaultCount int
	MaxCount     int
	MaxNameBytes int
	// Now supplies the generator clock in ms; id.NowMs when nil.
	Now func() uint64
}

// Store maps stream names to streams. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	streams map[string]*stream.Stream

	logger       logpkg.Logger
	metrics      MetricsHook
	defaultCount int
	maxCount     int
	maxNameBytes int
	now          func() uint64
}

// New returns an empty Store.
func New(opts Options) *Store {
	s := &Store{
		streams:      make(map[string]*stream.Stream),
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		defaultCount: opts.DefaultCount,
		maxCount:     opts.MaxCount,
		maxNameBytes: opts.MaxNameBytes,
		now:          opts.Now,
	}
	if s.logger == nil {
		s.logger = logpkg.NewNopLogger()
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics{}
	}
	if s.defaultCount <= 0 {
		s.defaultCount = DefaultCount
	}
	if s.maxCount <= 0 {
		s.maxCount = DefaultMaxCount
	}
	if s.maxNameBytes <= 0 {
		s.maxNameBytes = DefaultMaxNameBytes
	}
	if s.now == nil {
		s.now = func() uint64 { return id.NowMs() }
	}
	return s
}

// lookup returns the stream bound to name, or nil.
func (s *Store) lookup(name string) *stream.Stream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streams[name]
}

// getOrCreate binds exactly one Stream to name even under concurrent first
// appends.
func (s *Store) getOrCreate(name string) *stream.Stream {
	if st := s.lookup(name); st != nil {
		return st
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.streams[name]; ok {
		return st
	}
	st := stream.New(name)
	s.streams[name] = st
	s.metrics.SetStreams(len(s.streams))
	s.logger.Debug("store.create", logpkg.Str("stream", name))
	return st
}

// ValidateName enforces the stream naming policy: non-empty, bounded length
// and no whitespace (names are space-delimited in xread requests).
func (s *Store) ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: stream name is required", ErrInvalidInput)
	}
	if len(name) > s.maxNameBytes {
		return fmt.Errorf("%w: stream name exceeds %d bytes", ErrInvalidInput, s.maxNameBytes)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: stream name %q contains whitespace", ErrInvalidInput, name)
	}
	return nil
}

// count applies the default and the maximum to a requested count.
func (s *Store) count(n int) int {
	if n <= 0 {
		return s.defaultCount
	}
	if n > s.maxCount {
		return s.maxCount
	}
	return n
}

// AddOptions tunes a single append.
type AddOptions struct {
	// TimestampMs, when non-zero, replaces the wall clock as the generator
	// input. The returned ID is still strictly greater than the stream tail.
	TimestampMs uint64
}

// XAdd appends fields to the named stream, creating it on first use, and
// returns the new entry ID.
func (s *Store) XAdd(ctx context.Context, name string, fields stream.Fields, opts AddOptions) (id.ID, error) {
	t0 := time.Now()
	if err := s.ValidateName(name); err != nil {
		s.metrics.ObserveRejected("xadd")
		return id.ID{}, err
	}
	if err := fields.Validate(); err != nil {
		s.metrics.ObserveRejected("xadd")
		if errors.Is(err, stream.ErrInvalidFields) {
			return id.ID{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return id.ID{}, err
	}
	now := opts.TimestampMs
	if now == 0 {
		now = s.now()
	}

	newID := s.getOrCreate(name).Append(fields, now)

	elapsed := time.Since(t0)
	s.metrics.ObserveAppend(name, elapsed)
	s.logger.WithContext(ctx).With(
		logpkg.Str("stream", name),
		logpkg.Str("id", newID.String()),
		logpkg.Int("fields", len(fields)),
		logpkg.Int64("dur_us", elapsed.Microseconds()),
	).Debug("store.xadd")
	return newID, nil
}

// XAddJSON decodes body as a flat JSON object and appends it like XAdd.
// Undecodable bodies count as rejected appends.
func (s *Store) XAddJSON(ctx context.Context, name string, body []byte, opts AddOptions) (id.ID, error) {
	fields, err := stream.DecodeFields(body)
	if err != nil {
		s.metrics.ObserveRejected("xadd")
		if errors.Is(err, stream.ErrInvalidFields) {
			return id.ID{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return id.ID{}, err
	}
	return s.XAdd(ctx, name, fields, opts)
}

// XLen returns the number of entries in the named stream; 0 if it does not exist.
func (s *Store) XLen(ctx context.Context, name string) int {
	st := s.lookup(name)
	if st == nil {
		return 0
	}
	return st.Len()
}

// RangeQuery describes an xrange request. Empty Start/End select the whole
// stream; "-" and "+" name the beginning and end explicitly.
type RangeQuery struct {
	Start  string
	End    string
	Count  int
	Filter string
}

// XRange returns up to Count entries of the named stream in ascending ID
// order between Start and End inclusive.
func (s *Store) XRange(ctx context.Context, name string, q RangeQuery) ([]stream.Entry, error) {
	t0 := time.Now()
	start, err := parseBound(q.Start, id.Min, false)
	if err != nil {
		s.metrics.ObserveRejected("xrange")
		return nil, err
	}
	end, err := parseBound(q.End, id.Max, true)
	if err != nil {
		s.metrics.ObserveRejected("xrange")
		return nil, err
	}
	match, err := compileFilter(q.Filter)
	if err != nil {
		s.metrics.ObserveRejected("xrange")
		return nil, err
	}

	st := s.lookup(name)
	if st == nil {
		s.metrics.ObserveQuery("xrange", time.Since(t0), 0)
		return []stream.Entry{}, nil
	}
	items := st.Range(stream.RangeOptions{Start: start, End: end, Count: s.count(q.Count), Match: match})
	s.metrics.ObserveQuery("xrange", time.Since(t0), len(items))
	return items, nil
}

// parseBound decodes a range bound. A bare "<ms>" end bound covers every
// sequence in that millisecond.
func parseBound(tok string, def id.ID, isEnd bool) (id.ID, error) {
	switch tok {
	case "":
		return def, nil
	case "-":
		return id.Min, nil
	case "+":
		return id.Max, nil
	}
	v, err := id.Parse(tok)
	if err != nil {
		return id.ID{}, fmt.Errorf("%w: range bound: %v", ErrInvalidInput, err)
	}
	if isEnd && !strings.Contains(tok, "-") {
		v.Seq = id.Max.Seq
	}
	return v, nil
}

// Streams returns the names of all streams in sorted order.
func (s *Store) Streams(ctx context.Context) []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.streams))
	for name := range s.streams {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}
