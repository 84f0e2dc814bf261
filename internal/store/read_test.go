package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/xstream/internal/stream"
	"github.com/rzbill/xstream/pkg/id"
)

func TestParseStreamsArg(t *testing.T) {
	reqs, err := ParseStreamsArg("s1 0-0  s2 $ s3 17")
	require.NoError(t, err)
	assert.Equal(t, []ReadRequest{
		{Stream: "s1", Cursor: Cursor{ID: id.Min}},
		{Stream: "s2", Cursor: Cursor{Latest: true}},
		{Stream: "s3", Cursor: Cursor{ID: id.ID{Ms: 17}}},
	}, reqs)

	for _, bad := range []string{"", "   ", "s1", "s1 0-0 s2", "s1 abc", "s1 1-x"} {
		_, err := ParseStreamsArg(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", bad)
	}
}

func TestCursorString(t *testing.T) {
	assert.Equal(t, "$", Cursor{Latest: true}.String())
	assert.Equal(t, "3-4", Cursor{ID: id.ID{Ms: 3, Seq: 4}}.String())
}

func TestXRead_RejectsEmptyRequest(t *testing.T) {
	_, err := New(Options{}).XRead(context.Background(), nil, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReadResult_JSONShape(t *testing.T) {
	res := []ReadResult{{
		Stream: "race",
		Entries: []stream.Entry{{
			ID:     id.ID{Ms: 5, Seq: 1},
			Fields: stream.Fields{"rider": "Castilla", "speed": json.Number("30.2"), "position": json.Number("1")},
		}},
	}}
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `[["race",[{"id":"5-1","fields":{"position":1,"rider":"Castilla","speed":30.2}}]]]`, string(b))

	var back []ReadResult
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, res, back)
}

func TestReadResult_EmptyEntriesEncodeAsArray(t *testing.T) {
	b, err := json.Marshal(ReadResult{Stream: "x"})
	require.NoError(t, err)
	assert.Equal(t, `["x",[]]`, string(b))
}

func TestXRead_FieldRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(Options{})
	in, err := stream.DecodeFields([]byte(`{"temp":"21.5","n":1,"big":12345678901234567890,"f":1.50}`))
	require.NoError(t, err)
	v, err := s.XAdd(ctx, "rt", in, AddOptions{})
	require.NoError(t, err)

	res, err := s.XRead(ctx, []ReadRequest{{Stream: "rt", Cursor: Cursor{ID: id.Min}}}, 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Len(t, res[0].Entries, 1)
	assert.Equal(t, v, res[0].Entries[0].ID)
	assert.Equal(t, in, res[0].Entries[0].Fields)

	b, err := json.Marshal(res[0].Entries[0].Fields)
	require.NoError(t, err)
	assert.JSONEq(t, `{"temp":"21.5","n":1,"big":12345678901234567890,"f":1.50}`, string(b))
	assert.Contains(t, string(b), `"f":1.50`)
}
