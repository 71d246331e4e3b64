// Package synth materializes resolved tag views as live values. The default
// strategy is a map-backed adapter; build-time generated accessors (typegen)
// layer on top of the same resolved maps.
package synth

import (
	"fmt"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/types"
)

// Adapter is a map-backed synthesized view: a tag-shaped value carrying
// fully resolved attribute values. It implements types.Instance, so
// synthesized views are usable anywhere declared instances are.
type Adapter struct {
	typ    *types.TagType
	values map[string]any
}

var (
	_ types.Instance  = (*Adapter)(nil)
	_ mts.Synthesizer = Synthesizer{}
)

// NewAdapter wraps resolved values for a tag type. The map is taken over as
// given; callers hand off ownership.
func NewAdapter(t *types.TagType, values map[string]any) *Adapter {
	if values == nil {
		values = map[string]any{}
	}
	return &Adapter{typ: t, values: values}
}

// Type returns the synthesized tag type.
func (a *Adapter) Type() *types.TagType {
	return a.typ
}

// Value implements types.Instance. Every resolved attribute reads as
// explicit; resolution already applied the defaults.
func (a *Adapter) Value(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Source returns nil; synthesized views have no declaring element.
func (a *Adapter) Source() any {
	return nil
}

// AsMap returns a copy of the resolved values.
func (a *Adapter) AsMap() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

func (a *Adapter) String() string {
	return fmt.Sprintf("synthesized @%s", a.typ.Name())
}

// Typed accessors returning zero values when absent or differently typed.
// Resolution already decided presence and defaults, so absence here is
// ordinary, not an error.

// GetString returns the named value as a string.
func (a *Adapter) GetString(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// GetStringSlice returns the named value as a string slice, widening a
// scalar routed in from a scalar-typed alias.
func (a *Adapter) GetStringSlice(name string) []string {
	switch v := a.values[name].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	}
	return nil
}

// GetInt returns the named value as an int64.
func (a *Adapter) GetInt(name string) int64 {
	n, _ := a.values[name].(int64)
	return n
}

// GetIntSlice returns the named value as an int64 slice.
func (a *Adapter) GetIntSlice(name string) []int64 {
	switch v := a.values[name].(type) {
	case []int64:
		return v
	case int64:
		return []int64{v}
	}
	return nil
}

// GetFloat returns the named value as a float64.
func (a *Adapter) GetFloat(name string) float64 {
	f, _ := a.values[name].(float64)
	return f
}

// GetBool returns the named value as a bool.
func (a *Adapter) GetBool(name string) bool {
	b, _ := a.values[name].(bool)
	return b
}

// GetTypeRef returns the named value as a type reference.
func (a *Adapter) GetTypeRef(name string) types.TypeRef {
	switch v := a.values[name].(type) {
	case types.TypeRef:
		return v
	case string:
		return types.TypeRef(v)
	}
	return ""
}

// GetTypeRefSlice returns the named value as a type reference slice.
func (a *Adapter) GetTypeRefSlice(name string) []types.TypeRef {
	switch v := a.values[name].(type) {
	case []types.TypeRef:
		return v
	case types.TypeRef:
		return []types.TypeRef{v}
	case string:
		return []types.TypeRef{types.TypeRef(v)}
	case []string:
		out := make([]types.TypeRef, len(v))
		for i, s := range v {
			out[i] = types.TypeRef(s)
		}
		return out
	}
	return nil
}

// GetTag returns the named value as a nested instance.
func (a *Adapter) GetTag(name string) types.Instance {
	inst, _ := a.values[name].(types.Instance)
	return inst
}

// Synthesizer is the default mts.Synthesizer. It produces map-backed
// adapters.
type Synthesizer struct{}

// Synthesize wraps the resolved values in an Adapter.
func (Synthesizer) Synthesize(t *types.TagType, values map[string]any) (any, error) {
	if t == nil {
		return nil, errors.New("cannot synthesize without a tag type")
	}
	return NewAdapter(t, values), nil
}
