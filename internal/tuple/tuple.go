// Package tuple defines the accessor contract the core uses to project
// fields out of an arbitrary, fixed-schema record without knowing its
// concrete type at compile time.
package tuple

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFieldIndex is returned when a configured field index does not exist in
// a Schema. It is a configuration fault: callers should treat it as fatal at
// wiring time, not as a per-tuple runtime condition.
var ErrFieldIndex = errors.New("tuple: field index out of range")

// Tuple is an immutable record with a numeric identifier at position 0 and
// a fixed set of positionally addressed fields.
type Tuple interface {
	// ID returns the tuple's numeric identifier.
	ID() int64
	// Field returns the value at position i. Implementations need not
	// bounds-check; accessors built via NewIndexAccessor validate indices
	// against a Schema before any tuple ever reaches Field.
	Field(i int) any
	// Len returns the number of fields, including the identifier.
	Len() int
}

// Schema names a tuple type's fields in declared order, used only to
// validate configured indices at accessor-construction time.
type Schema []string

// Accessor projects a single field of type T out of a Tuple.
type Accessor[T any] func(Tuple) T

// NewIndexAccessor builds an Accessor that reads field i and type-asserts it
// to T. It validates i against schema up front so a misconfigured index is a
// configuration fault, not a panic deep inside Consume/AddEdge.
func NewIndexAccessor[T any](schema Schema, i int) (Accessor[T], error) {
	if i < 0 || i >= len(schema) {
		return nil, fmt.Errorf("%w: index %d, schema has %d fields", ErrFieldIndex, i, len(schema))
	}
	return func(t Tuple) T {
		v, _ := t.Field(i).(T)
		return v
	}, nil
}

// MustIndexAccessor is NewIndexAccessor for callers building static wiring at
// program startup, where a bad schema index should abort the process the
// same way a misconfigured SlidingWindow does.
func MustIndexAccessor[T any](schema Schema, i int) Accessor[T] {
	a, err := NewIndexAccessor[T](schema, i)
	if err != nil {
		panic(err)
	}
	return a
}

// NewIndexStringAccessor builds an Accessor[string] that renders field i
// with fmt.Sprint, for use as a group-key component regardless of the
// field's underlying type.
func NewIndexStringAccessor(schema Schema, i int) (Accessor[string], error) {
	if i < 0 || i >= len(schema) {
		return nil, fmt.Errorf("%w: index %d, schema has %d fields", ErrFieldIndex, i, len(schema))
	}
	return func(t Tuple) string {
		return fmt.Sprint(t.Field(i))
	}, nil
}

// groupKeySeparator cannot occur in any fmt.Sprint-rendered scalar in this
// domain, so it's safe as a field-rendering delimiter.
const groupKeySeparator = "\x1f"

// GroupKeyFunc builds a group-key generator from zero or more string
// accessors, concatenating their renderings in declared order.
func GroupKeyFunc(fields ...Accessor[string]) func(Tuple) string {
	if len(fields) == 0 {
		return func(Tuple) string { return "" }
	}
	return func(t Tuple) string {
		var b strings.Builder
		for i, f := range fields {
			if i > 0 {
				b.WriteString(groupKeySeparator)
			}
			b.WriteString(f(t))
		}
		return b.String()
	}
}
