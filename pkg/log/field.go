package log

import "time"

// Field is a single structured key/value pair.
type Field struct {
	Key   string
	Value any
}

// Str builds a string field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 builds an int64 field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Uint64 builds a uint64 field.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Bool builds a bool field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Any builds a field from an arbitrary value.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Duration records d in its string form.
func Duration(key string, d time.Duration) Field { return Field{Key: key, Value: d.String()} }

// Component tags a record with the emitting component.
func Component(name string) Field { return Field{Key: ComponentKey, Value: name} }

// Operation tags a record with the operation being performed.
func Operation(name string) Field { return Field{Key: OperationKey, Value: name} }

// Err records an error under the "error" key.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}
