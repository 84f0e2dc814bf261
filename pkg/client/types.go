package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rzbill/xstream/pkg/id"
)

// Entry is one stream entry. Numeric field values decode as json.Number so
// their textual form is preserved.
type Entry struct {
	ID     id.ID          `json:"id"`
	Fields map[string]any `json:"fields"`
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID     id.ID           `json:"id"`
		Fields json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	fields, err := decodeObject(wire.Fields)
	if err != nil {
		return err
	}
	e.ID, e.Fields = wire.ID, fields
	return nil
}

// StreamEntries is one element of an XRead result, encoded on the wire as
// the pair [stream, entries].
type StreamEntries struct {
	Stream  string
	Entries []Entry
}

func (s *StreamEntries) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("xread result: want [stream, entries], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &s.Stream); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &s.Entries)
}

func (s StreamEntries) MarshalJSON() ([]byte, error) {
	entries := s.Entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal([]any{s.Stream, entries})
}

// RangeOptions narrows an XRangeWith call. Zero values select the server
// defaults: the whole stream and 10 entries.
type RangeOptions struct {
	Count  int
	Start  string
	End    string
	Filter string
}

func decodeObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}
