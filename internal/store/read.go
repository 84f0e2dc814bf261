package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rzbill/xstream/internal/stream"
	"github.com/rzbill/xstream/pkg/id"
)

// LatestToken is the cursor token meaning "the stream's tail at call time".
const LatestToken = "$"

// Cursor is a resolved-or-deferred xread position.
type Cursor struct {
	ID id.ID
	// Latest defers resolution to the stream tail observed by XRead.
	Latest bool
}

func (c Cursor) String() string {
	if c.Latest {
		return LatestToken
	}
	return c.ID.String()
}

// ParseCursor decodes "$" or a stream ID.
func ParseCursor(tok string) (Cursor, error) {
	if tok == LatestToken {
		return Cursor{Latest: true}, nil
	}
	v, err := id.Parse(tok)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: cursor: %v", ErrInvalidInput, err)
	}
	return Cursor{ID: v}, nil
}

// ReadRequest pairs a stream with the cursor to read after.
type ReadRequest struct {
	Stream string
	Cursor Cursor
}

// ParseStreamsArg decodes the xread "streams" argument: whitespace separated
// alternating stream names and cursors, e.g. "a 0-0 b $".
func ParseStreamsArg(s string) ([]ReadRequest, error) {
	toks := strings.Fields(s)
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: streams is required", ErrInvalidInput)
	}
	if len(toks)%2 != 0 {
		return nil, fmt.Errorf("%w: streams must alternate name and id", ErrInvalidInput)
	}
	reqs := make([]ReadRequest, 0, len(toks)/2)
	for i := 0; i < len(toks); i += 2 {
		c, err := ParseCursor(toks[i+1])
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, ReadRequest{Stream: toks[i], Cursor: c})
	}
	return reqs, nil
}

// ReadResult holds the entries returned for one stream. It encodes as the
// two-element array [name, entries].
type ReadResult struct {
	Stream  string
	Entries []stream.Entry
}

func (r ReadResult) MarshalJSON() ([]byte, error) {
	entries := r.Entries
	if entries == nil {
		entries = []stream.Entry{}
	}
	return json.Marshal([]any{r.Stream, entries})
}

func (r *ReadResult) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("xread result: want 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &r.Stream); err != nil {
		return err
	}
	r.Entries = nil
	var items []json.RawMessage
	if err := json.Unmarshal(raw[1], &items); err != nil {
		return err
	}
	for _, it := range items {
		var wire struct {
			ID     id.ID           `json:"id"`
			Fields json.RawMessage `json:"fields"`
		}
		if err := json.Unmarshal(it, &wire); err != nil {
			return err
		}
		f, err := stream.DecodeFields(wire.Fields)
		if err != nil {
			return err
		}
		r.Entries = append(r.Entries, stream.Entry{ID: wire.ID, Fields: f})
	}
	return nil
}

// Resolve pins c against the current state of the named stream: "$" becomes
// the tail, or id.Min when the stream is empty or unknown. Concrete cursors
// are returned unchanged.
func (s *Store) Resolve(name string, c Cursor) Cursor {
	if !c.Latest {
		return c
	}
	if st := s.lookup(name); st != nil {
		if tail, ok := st.Tail(); ok {
			return Cursor{ID: tail}
		}
	}
	return Cursor{ID: id.Min}
}

// XRead returns, for each request in order, up to count entries with IDs
// strictly greater than its cursor. Streams with no such entries are omitted.
// "$" cursors resolve to the tail at call time, so a non-blocking read with
// "$" returns nothing for that stream.
func (s *Store) XRead(ctx context.Context, reqs []ReadRequest, count int) ([]ReadResult, error) {
	t0 := time.Now()
	if len(reqs) == 0 {
		s.metrics.ObserveRejected("xread")
		return nil, fmt.Errorf("%w: no streams requested", ErrInvalidInput)
	}
	for _, r := range reqs {
		if err := s.ValidateName(r.Stream); err != nil {
			s.metrics.ObserveRejected("xread")
			return nil, err
		}
	}
	limit := s.count(count)

	out := make([]ReadResult, 0, len(reqs))
	total := 0
	for _, r := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st := s.lookup(r.Stream)
		if st == nil {
			continue
		}
		after := s.Resolve(r.Stream, r.Cursor).ID
		items := st.EntriesAfter(after, limit)
		if len(items) == 0 {
			continue
		}
		total += len(items)
		out = append(out, ReadResult{Stream: r.Stream, Entries: items})
	}
	s.metrics.ObserveQuery("xread", time.Since(t0), total)
	return out, nil
}
