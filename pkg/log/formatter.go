package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TextFormatter renders entries as a single human-readable line:
//
//	2024-09-20T12:00:00.000Z INFO  message key=value key2=value2
type TextFormatter struct {
	// TimeFormat defaults to RFC3339 with milliseconds.
	TimeFormat string
}

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Format implements Formatter.
func (f *TextFormatter) Format(e *Entry) ([]byte, error) {
	tf := f.TimeFormat
	if tf == "" {
		tf = defaultTimeFormat
	}
	var buf bytes.Buffer
	buf.WriteString(timestamp(e).Format(tf))
	buf.WriteByte(' ')
	fmt.Fprintf(&buf, "%-5s", e.Level.String())
	buf.WriteByte(' ')
	buf.WriteString(e.Message)
	for _, k := range sortedKeys(e.Fields) {
		buf.WriteByte(' ')
		buf.WriteString(k)
		buf.WriteByte('=')
		writeTextValue(&buf, e.Fields[k])
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeTextValue(buf *bytes.Buffer, v any) {
	switch t := v.(type) {
	case string:
		if needsQuote(t) {
			fmt.Fprintf(buf, "%q", t)
			return
		}
		buf.WriteString(t)
	case nil:
		buf.WriteString("<nil>")
	default:
		fmt.Fprint(buf, t)
	}
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '"' || r == '=' {
			return true
		}
	}
	return false
}

// JSONFormatter renders entries as one JSON object per line.
type JSONFormatter struct{}

// Format implements Formatter.
func (f *JSONFormatter) Format(e *Entry) ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+3)
	for k, v := range e.Fields {
		out[k] = v
	}
	out["ts"] = timestamp(e).Format(defaultTimeFormat)
	out["level"] = e.Level.String()
	out["msg"] = e.Message
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func timestamp(e *Entry) time.Time {
	if e.Timestamp.IsZero() {
		return time.Now().UTC()
	}
	return e.Timestamp.UTC()
}

func sortedKeys(m Fields) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
