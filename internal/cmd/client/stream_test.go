package client

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/rzbill/xstream/internal/config"
	"github.com/rzbill/xstream/internal/runtime"
	httpserver "github.com/rzbill/xstream/internal/server/http"
)

func startBackend(t *testing.T) BaseURLFunc {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{Config: cfgpkg.Default()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	srv := httptest.NewServer(httpserver.New(rt, nil).Handler())
	t.Cleanup(srv.Close)
	return func() string { return srv.URL }
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestXAddXLenXRange(t *testing.T) {
	base := startBackend(t)

	out, err := run(t, NewRoot(base), "xadd", "race", "rider=Castilla", "speed=30.2", "position=1")
	require.NoError(t, err)
	id1 := strings.TrimSpace(out)
	assert.Regexp(t, `^\d+-\d+$`, id1)

	_, err = run(t, NewRoot(base), "xadd", "race", "--json", `{"rider":"Norem","speed":29.1}`)
	require.NoError(t, err)

	out, err = run(t, NewRoot(base), "xlen", "race")
	require.NoError(t, err)
	assert.Equal(t, "2", strings.TrimSpace(out))

	out, err = run(t, NewRoot(base), "xrange", "race", "--count", "1")
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, id1, entries[0]["id"])
	assert.Equal(t, map[string]any{"rider": "Castilla", "speed": 30.2, "position": 1.0}, entries[0]["fields"])

	out, err = run(t, NewRoot(base), "xrange", "race", "--filter", "fields.speed < 30.0")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Norem", entries[0]["fields"].(map[string]any)["rider"])
}

func TestXReadCommand(t *testing.T) {
	base := startBackend(t)
	out, err := run(t, NewRoot(base), "xadd", "a", "n=1")
	require.NoError(t, err)
	first := strings.TrimSpace(out)
	_, err = run(t, NewRoot(base), "xadd", "a", "n=2")
	require.NoError(t, err)

	out, err = run(t, NewRoot(base), "xread", "a", first, "b", "$")
	require.NoError(t, err)
	var res []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 1)
	assert.Contains(t, string(res[0]), `"a"`)
	assert.Contains(t, string(res[0]), `"n": 2`)

	_, err = run(t, NewRoot(base), "xread", "a")
	assert.Error(t, err)
}

func TestStreamsCommand(t *testing.T) {
	base := startBackend(t)
	for _, s := range []string{"zeta", "alpha"} {
		_, err := run(t, NewRoot(base), "xadd", s, "k=v")
		require.NoError(t, err)
	}
	out, err := run(t, NewRoot(base), "streams")
	require.NoError(t, err)
	assert.Equal(t, "alpha\nzeta\n", out)
}

func TestXAddErrors(t *testing.T) {
	base := startBackend(t)
	_, err := run(t, NewRoot(base), "xadd", "s")
	assert.EqualError(t, err, "HTTP error! status: 400")

	_, err = run(t, NewRoot(base), "xadd", "s", "novalue")
	assert.Error(t, err)

	_, err = run(t, NewRoot(base), "xadd", "s", "a=1", "--json", `{"a":1}`)
	assert.Error(t, err)
}

func TestParseFieldArgs(t *testing.T) {
	fields, err := parseFieldArgs([]string{"a=1", "b=1.50", "c=hello", "d=Inf", "e=", "f=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": json.Number("1"),
		"b": json.Number("1.50"),
		"c": "hello",
		"d": "Inf",
		"e": "",
		"f": "a=b",
	}, fields)
}
