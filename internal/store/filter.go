package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/rzbill/xstream/internal/stream"
)

// celFilter wraps a compiled CEL program evaluated against range entries.
// Expressions see id (string), ms and seq (int), fields (map of string to
// string or double) and now_ms (int).
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("ms", cel.IntType),
		cel.Variable("seq", cel.IntType),
		cel.Variable("fields", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return celFilter{}, iss2.Err()
	}
	if !checked.OutputType().IsExactType(cel.BoolType) && !checked.OutputType().IsExactType(cel.DynType) {
		return celFilter{}, fmt.Errorf("filter must be a boolean expression, got %s", checked.OutputType())
	}
	prog, err := env.Program(checked)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval reports whether e matches. A disabled filter matches everything;
// evaluation errors (e.g. a missing field) are treated as no match.
func (f celFilter) Eval(e stream.Entry) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":     e.ID.String(),
		"ms":     int64(e.ID.Ms),
		"seq":    int64(e.ID.Seq),
		"fields": celFields(e.Fields),
		"now_ms": time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// celFields exposes numbers as doubles so comparisons like
// fields.speed > 30 work regardless of how the number was written.
func celFields(f stream.Fields) map[string]any {
	m := make(map[string]any, len(f))
	for k, v := range f {
		switch n := v.(type) {
		case json.Number:
			if x, err := n.Float64(); err == nil {
				m[k] = x
			} else {
				m[k] = n.String()
			}
		case int:
			m[k] = float64(n)
		case int32:
			m[k] = float64(n)
		case int64:
			m[k] = float64(n)
		case uint:
			m[k] = float64(n)
		case uint32:
			m[k] = float64(n)
		case uint64:
			m[k] = float64(n)
		case float32:
			m[k] = float64(n)
		default:
			m[k] = v
		}
	}
	return m
}

// compileFilter turns a filter expression into a range predicate; nil when
// the expression is empty.
func compileFilter(expr string) (func(stream.Entry) bool, error) {
	f, err := newCELFilter(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: filter: %v", ErrInvalidInput, err)
	}
	if !f.enabled {
		return nil, nil
	}
	return f.Eval, nil
}
