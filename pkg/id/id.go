package id

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ID identifies an entry's position within a stream.
type ID struct {
	Ms  uint64
	Seq uint64
}

var (
	// Min is the lowest possible ID (0-0).
	Min = ID{}
	// Max is the highest possible ID.
	Max = ID{Ms: math.MaxUint64, Seq: math.MaxUint64}
)

// ErrMalformed is returned by Parse for tokens that are not valid IDs.
var ErrMalformed = errors.New("malformed stream id")

// String renders the ID as "<ms>-<seq>".
func (i ID) String() string {
	return strconv.FormatUint(i.Ms, 10) + "-" + strconv.FormatUint(i.Seq, 10)
}

// Compare returns -1, 0, 1 comparing timestamp first, then sequence.
func (i ID) Compare(other ID) int {
	switch {
	case i.Ms < other.Ms:
		return -1
	case i.Ms > other.Ms:
		return 1
	case i.Seq < other.Seq:
		return -1
	case i.Seq > other.Seq:
		return 1
	}
	return 0
}

// Less reports whether i sorts before other.
func (i ID) Less(other ID) bool { return i.Compare(other) < 0 }

// IsZero reports whether i is the minimal ID.
func (i ID) IsZero() bool { return i == Min }

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Parse decodes "<ms>-<seq>" or the shorthand "<ms>" (sequence 0).
func Parse(s string) (ID, error) {
	msPart, seqPart, hasSeq := strings.Cut(s, "-")
	ms, err := strconv.ParseUint(msPart, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if !hasSeq {
		return ID{Ms: ms}, nil
	}
	seq, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return ID{Ms: ms, Seq: seq}, nil
}

// Generator produces strictly increasing IDs for a single stream.
type Generator struct {
	mu   sync.Mutex
	last ID
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator { return &Generator{} }

// NowMs returns current time in milliseconds since Unix epoch.
var NowMs = func() uint64 { return uint64(time.Now().UnixMilli()) }

// Next returns the ID following the last issued one for the supplied clock
// reading. If the clock went backwards, it keeps the last millisecond and
// increments the sequence.
func (g *Generator) Next(nowMs uint64) ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := nowMs
	if ms < g.last.Ms {
		ms = g.last.Ms
	}

	var next ID
	switch {
	case ms > g.last.Ms:
		next = ID{Ms: ms}
	case g.last.Seq == math.MaxUint64:
		// sequence exhausted for this millisecond
		next = ID{Ms: ms + 1}
	default:
		next = ID{Ms: ms, Seq: g.last.Seq + 1}
	}
	g.last = next
	return next
}

// Last returns the most recently issued ID (Min if none).
func (g *Generator) Last() ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
