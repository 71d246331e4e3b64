package merged

import (
	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/synth"
	"github.com/teranos/tagx/mts/types"
)

// FilterAttributes returns a view exposing only attributes the predicate
// keeps. Filters compose: the new predicate applies on top of any existing
// one. Filtered attributes read as unknown.
func (t *Tag) FilterAttributes(keep func(name string) bool) *Tag {
	if t.mapping == nil || keep == nil {
		return t
	}
	combined := keep
	if prev := t.attrFilter; prev != nil {
		combined = func(name string) bool { return prev(name) && keep(name) }
	}
	c := *t
	c.attrFilter = combined
	return &c
}

// FilterDefaultValues returns a view in which default-valued attributes read
// as absent. Attributes whose resolution fails stay visible, so the failure
// still surfaces on read.
func (t *Tag) FilterDefaultValues() *Tag {
	return t.FilterAttributes(func(name string) bool {
		nonDefault, err := t.HasNonDefaultValue(name)
		if err != nil {
			return true
		}
		return nonDefault
	})
}

// WithNonMergedAttributes returns a view that reads attributes as declared
// on this mapping's own instance, without alias or convention routing to the
// root. Mirror winners stay as already resolved.
func (t *Tag) WithNonMergedAttributes() *Tag {
	if t.mapping == nil {
		return t
	}
	c := *t
	c.useMerged = false
	return &c
}

// MapOption adapts AsMap output.
type MapOption uint8

const (
	// TypeRefsAsStrings renders type references as their qualified names.
	TypeRefsAsStrings MapOption = 1 << iota
	// NestedAsMaps renders nested tag instances as value maps, recursively.
	NestedAsMaps
)

func hasOption(opts []MapOption, o MapOption) bool {
	for _, opt := range opts {
		if opt&o != 0 {
			return true
		}
	}
	return false
}

// AsMap renders the merged view as attribute name to resolved value.
// Filtered attributes are omitted, as are attributes with neither a value
// nor a default. The missing view renders empty.
func (t *Tag) AsMap(opts ...MapOption) (map[string]any, error) {
	out := make(map[string]any)
	if t.mapping == nil {
		return out, nil
	}
	attrs := t.mapping.Attributes()
	for i := 0; i < attrs.Size(); i++ {
		attr := attrs.Get(i)
		if t.attrFilter != nil && !t.attrFilter(attr.Name) {
			continue
		}
		v, err := t.value(i, true, false)
		if err != nil {
			return nil, err
		}
		if v == nil {
			v = attr.Default
		}
		if v == nil {
			continue
		}
		out[attr.Name] = adaptValue(v, opts)
	}
	return out, nil
}

func adaptValue(v any, opts []MapOption) any {
	switch tv := v.(type) {
	case types.TypeRef:
		if hasOption(opts, TypeRefsAsStrings) {
			return string(tv)
		}
	case []types.TypeRef:
		if hasOption(opts, TypeRefsAsStrings) {
			out := make([]string, len(tv))
			for i, r := range tv {
				out[i] = string(r)
			}
			return out
		}
	case types.Instance:
		if hasOption(opts, NestedAsMaps) {
			return instanceMap(tv, opts)
		}
	case []types.Instance:
		if hasOption(opts, NestedAsMaps) {
			out := make([]map[string]any, len(tv))
			for i, inst := range tv {
				out[i] = instanceMap(inst, opts)
			}
			return out
		}
	}
	return v
}

// instanceMap renders a nested instance with its defaults applied. Nested
// values see the same adaptations.
func instanceMap(inst types.Instance, opts []MapOption) map[string]any {
	attrs := inst.Type().Attributes()
	out := make(map[string]any, attrs.Size())
	for i := 0; i < attrs.Size(); i++ {
		attr := attrs.Get(i)
		if v := types.InstanceValue(inst, attr); v != nil {
			out[attr.Name] = adaptValue(v, opts)
		}
	}
	return out
}

// Synthesize materializes the view through the default synthesizer.
func (t *Tag) Synthesize() (any, error) {
	return t.SynthesizeWith(nil)
}

// SynthesizeWith materializes the view: the resolved value map is handed to
// the synthesizer. Views whose mapping cannot change any value pass the
// underlying instance through unchanged. A nil synthesizer uses the
// map-backed default.
func (t *Tag) SynthesizeWith(s mts.Synthesizer) (any, error) {
	if !t.IsPresent() {
		return nil, errors.Wrap(errors.ErrNotFound, "cannot synthesize a missing tag")
	}
	if !t.mapping.Synthesizable() {
		if t.mapping.Distance() == 0 {
			return t.rootInstance, nil
		}
		if inst := t.mapping.Instance(); inst != nil {
			return inst, nil
		}
	}
	if s == nil {
		s = synth.Synthesizer{}
	}
	values, err := t.AsMap()
	if err != nil {
		return nil, err
	}
	return s.Synthesize(t.Type(), values)
}
