package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Instance is one concrete occurrence of a tag type.
//
// Value returns the explicitly declared value for an attribute; the bool is
// false when the attribute was left to its default. Defaults are applied by
// the read path, never by instances themselves.
type Instance interface {
	Type() *TagType
	Value(name string) (any, bool)
	// Source identifies the program element the instance was found on, for
	// diagnostics. May be nil.
	Source() any
}

// MapInstance is the map-backed Instance used by tag-set files, synthesis,
// and tests.
type MapInstance struct {
	id     uuid.UUID
	typ    *TagType
	values map[string]any
	source any
}

// NewInstance builds a map-backed instance of the given type. Supplied values
// are normalized to the declared attribute types where possible; values that
// cannot be normalized, and values for unknown attributes, are kept as given.
func NewInstance(t *TagType, values map[string]any) *MapInstance {
	normalized := make(map[string]any, len(values))
	for name, raw := range values {
		v := raw
		if i := t.Attributes().IndexOf(name); i >= 0 {
			if nv, err := Normalize(t.Attributes().Get(i).Type, raw); err == nil {
				v = nv
			}
		}
		normalized[name] = v
	}
	return &MapInstance{
		id:     uuid.New(),
		typ:    t,
		values: normalized,
	}
}

// ID returns the instance's unique identity, used in diagnostics.
func (m *MapInstance) ID() uuid.UUID {
	return m.id
}

// Type returns the instance's tag type.
func (m *MapInstance) Type() *TagType {
	return m.typ
}

// Value returns the explicitly declared value for the named attribute.
func (m *MapInstance) Value(name string) (any, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Source returns the program element this instance was found on, if any.
func (m *MapInstance) Source() any {
	return m.source
}

// WithSource returns a copy of the instance attributed to the given source
// element.
func (m *MapInstance) WithSource(source any) *MapInstance {
	clone := *m
	clone.source = source
	return &clone
}

// String renders the instance in declaration form, e.g. `web.Route(path="/x")`.
// Only explicitly declared attributes appear.
func (m *MapInstance) String() string {
	var b strings.Builder
	b.WriteString(m.typ.Name())
	b.WriteString("(")
	first := true
	set := m.typ.Attributes()
	for i := 0; i < set.Size(); i++ {
		name := set.Get(i).Name
		v, ok := m.values[name]
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(formatValue(v))
	}
	b.WriteString(")")
	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case TypeRef:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
