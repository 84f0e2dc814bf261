package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	xclient "github.com/rzbill/xstream/pkg/client"
)

// BaseURLFromEnv returns the server URL from XSTREAM_HTTP or a default.
func BaseURLFromEnv() string {
	if v := os.Getenv("XSTREAM_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}

// newClient builds an API client for the given base URL.
func newClient(baseURL BaseURLFunc) (*xclient.Client, error) {
	return xclient.New(baseURL())
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseFieldArgs turns key=value arguments into a field map. Values that
// parse as numbers are sent as JSON numbers, everything else as strings.
func parseFieldArgs(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q; expected key=value", a)
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil && isJSONNumber(v) {
			fields[k] = json.Number(v)
		} else {
			fields[k] = v
		}
	}
	return fields, nil
}

// isJSONNumber reports whether s is valid JSON number syntax (ParseFloat
// also accepts forms such as "Inf", "0x1p-2" and "+1").
func isJSONNumber(s string) bool {
	var n json.Number
	return json.Unmarshal([]byte(s), &n) == nil
}

// decodeFieldsJSON parses a --json argument, keeping number text intact.
func decodeFieldsJSON(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid --json: %w", err)
	}
	return m, nil
}
