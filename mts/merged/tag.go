// Package merged exposes resolved tag views: the values a tag type carries
// at one position of a mapping tree once aliases, conventions, and mirrors
// have been applied against the concrete instances of one aggregate.
//
// Tag is the single-view query surface; Tags collects the views over one
// scanned element's aggregates, in (aggregate index, distance) order. Both
// are cheap immutable values, safe to share for reading.
package merged

import (
	"fmt"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts/mapping"
	"github.com/teranos/tagx/mts/types"
)

// Tag is one merged view: a tag type at one mapping-tree position, bound to
// the concrete root instance of one aggregate. The zero value is unusable;
// use New, Tags accessors, or Missing.
type Tag struct {
	mapping        *mapping.Mapping
	source         any
	rootInstance   types.Instance
	aggregateIndex int

	useMerged  bool
	attrFilter func(name string) bool

	// Mirror winners, resolved against the concrete values at view creation.
	// Conflicted attribute indexes carry their error instead and surface it
	// on any read routed through them.
	resolvedRootMirrors []int
	resolvedMirrors     []int
	rootConflicts       map[int]error
	conflicts           map[int]error
}

var missingTag = &Tag{aggregateIndex: -1}

// Missing returns the first-class absent view: not present, distance and
// aggregate index -1, no readable attributes. Queries for tags that are not
// there return it instead of an error so lookups chain.
func Missing() *Tag {
	return missingTag
}

// New binds a mapping-tree position to the concrete instance at the tree's
// root. source names the scanned element for diagnostics; aggregateIndex is
// the element's hierarchy position. A nil mapping yields the missing view.
func New(m *mapping.Mapping, rootInstance types.Instance, source any, aggregateIndex int) *Tag {
	if m == nil {
		return Missing()
	}
	return newTag(m, source, rootInstance, aggregateIndex, nil, nil)
}

// newTag resolves the view's mirrors. Root mirror winners may be handed down
// from an existing view of the same aggregate (Root, MetaSource); passing
// nil resolves them here.
func newTag(m *mapping.Mapping, source any, rootInstance types.Instance, aggregateIndex int,
	rootMirrors []int, rootConflicts map[int]error) *Tag {

	t := &Tag{
		mapping:        m,
		source:         source,
		rootInstance:   rootInstance,
		aggregateIndex: aggregateIndex,
		useMerged:      true,
	}
	if rootMirrors == nil {
		rootMirrors, rootConflicts = m.Root().MirrorSets().Resolve(source,
			func(i int, attr types.Attribute) any {
				if rootInstance == nil {
					return nil
				}
				return types.InstanceValue(rootInstance, attr)
			})
	}
	t.resolvedRootMirrors, t.rootConflicts = rootMirrors, rootConflicts
	if m.Distance() == 0 {
		t.resolvedMirrors, t.conflicts = rootMirrors, rootConflicts
	} else {
		t.resolvedMirrors, t.conflicts = m.MirrorSets().Resolve(source, t.valueForMirrorResolution)
	}
	return t
}

// IsPresent reports whether a concrete instance exists at this view's
// position.
func (t *Tag) IsPresent() bool {
	return t.mapping != nil && t.rootInstance != nil
}

// IsDirectlyPresent reports presence at distance 0: the instance sits on the
// element itself, not on a meta-tag.
func (t *Tag) IsDirectlyPresent() bool {
	return t.IsPresent() && t.mapping.Distance() == 0
}

// IsMetaPresent reports presence through a meta-tag only.
func (t *Tag) IsMetaPresent() bool {
	return t.IsPresent() && t.mapping.Distance() > 0
}

// Distance returns how many meta-tag hops separate this view from the
// scanned element, or -1 for the missing view.
func (t *Tag) Distance() int {
	if t.mapping == nil {
		return -1
	}
	return t.mapping.Distance()
}

// AggregateIndex returns the hierarchy position of the aggregate this view
// was built from, or -1 for the missing view.
func (t *Tag) AggregateIndex() int {
	return t.aggregateIndex
}

// Type returns the viewed tag type, or nil for the missing view.
func (t *Tag) Type() *types.TagType {
	if t.mapping == nil {
		return nil
	}
	return t.mapping.Type()
}

// TypeName returns the qualified tag type name, or "" for the missing view.
func (t *Tag) TypeName() string {
	if t.mapping == nil {
		return ""
	}
	return t.mapping.Type().Name()
}

// MetaTypes returns the type-name path from the root to this view.
func (t *Tag) MetaTypes() []string {
	if t.mapping == nil {
		return nil
	}
	return t.mapping.MetaTypes()
}

// Source returns the scanned element the underlying instance was found on.
func (t *Tag) Source() any {
	return t.source
}

// Root returns the view at distance 0 of the same aggregate. Mirror winners
// already resolved against the root carry over unchanged.
func (t *Tag) Root() *Tag {
	if t.mapping == nil {
		return t
	}
	if t.mapping.Distance() == 0 {
		return t
	}
	return newTag(t.mapping.Root(), t.source, t.rootInstance, t.aggregateIndex,
		t.resolvedRootMirrors, t.rootConflicts)
}

// MetaSource returns the view one step closer to the root, or nil at the
// root itself.
func (t *Tag) MetaSource() *Tag {
	if t.mapping == nil || t.mapping.Source() == nil {
		return nil
	}
	return newTag(t.mapping.Source(), t.source, t.rootInstance, t.aggregateIndex,
		t.resolvedRootMirrors, t.rootConflicts)
}

// Value resolves the named attribute through the merge chain: alias routing
// to the root, convention fallback, mirror substitution, then the concrete
// instance the chain lands on, explicit value else declared default.
// Unknown and filtered names return an ErrNoSuchAttribute error.
func (t *Tag) Value(name string) (any, error) {
	i, err := t.attributeIndex(name)
	if err != nil {
		return nil, err
	}
	v, err := t.value(i, true, false)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = t.mapping.Attributes().Get(i).Default
	}
	return v, nil
}

// DefaultValue returns the attribute's declared default. ok is false for
// unknown or filtered names and for attributes without a default.
func (t *Tag) DefaultValue(name string) (any, bool) {
	i, err := t.attributeIndex(name)
	if err != nil {
		return nil, false
	}
	d := t.mapping.Attributes().Get(i).Default
	return d, d != nil
}

// HasDefaultValue reports whether the merged value of the named attribute is
// absent or equivalent to its declared default.
func (t *Tag) HasDefaultValue(name string) (bool, error) {
	i, err := t.attributeIndex(name)
	if err != nil {
		return false, err
	}
	v, err := t.value(i, true, false)
	if err != nil {
		return false, err
	}
	return v == nil || types.Equivalent(v, t.mapping.Attributes().Get(i).Default), nil
}

// HasNonDefaultValue reports whether the merged value differs from the
// declared default.
func (t *Tag) HasNonDefaultValue(name string) (bool, error) {
	hasDefault, err := t.HasDefaultValue(name)
	if err != nil {
		return false, err
	}
	return !hasDefault, nil
}

func (t *Tag) String() string {
	if t.mapping == nil {
		return "(missing tag)"
	}
	return fmt.Sprintf("@%s (distance %d, aggregate %d)",
		t.TypeName(), t.Distance(), t.aggregateIndex)
}

// attributeIndex locates an attribute by name, honoring the view's attribute
// filter. The missing view has no attributes.
func (t *Tag) attributeIndex(name string) (int, error) {
	if t.mapping == nil {
		return -1, errors.Wrapf(errors.ErrNoSuchAttribute, "missing tag has no attribute %q", name)
	}
	if t.attrFilter != nil && !t.attrFilter(name) {
		return -1, errors.WrapNoSuchAttribute(t.TypeName(), name)
	}
	i := t.mapping.Attributes().IndexOf(name)
	if i == -1 {
		return -1, errors.WrapNoSuchAttribute(t.TypeName(), name)
	}
	return i, nil
}

// value resolves attribute i through the merge chain. useConvention gates
// the convention-mapping fallback; forMirror skips mirror substitution while
// the mirrors themselves are being resolved.
func (t *Tag) value(i int, useConvention, forMirror bool) (any, error) {
	m := t.mapping
	if t.useMerged {
		mapped := m.AliasMapping(i)
		if mapped == -1 && useConvention {
			mapped = m.ConventionMapping(i)
		}
		if mapped != -1 {
			m = m.Root()
			i = mapped
		}
	}
	if !forMirror {
		if m.Distance() != 0 {
			if err := t.conflicts[i]; err != nil {
				return nil, err
			}
			i = t.resolvedMirrors[i]
		} else {
			if err := t.rootConflicts[i]; err != nil {
				return nil, err
			}
			i = t.resolvedRootMirrors[i]
		}
	}
	if i == -1 {
		return nil, nil
	}
	if m.Distance() == 0 {
		if t.rootInstance == nil {
			return nil, nil
		}
		return types.InstanceValue(t.rootInstance, m.Attributes().Get(i)), nil
	}
	return t.metaValue(m, i, forMirror), nil
}

// metaValue reads attribute i of a meta-level mapping: the recorded value
// source when one routes here, else the mapping's own declared instance.
func (t *Tag) metaValue(m *mapping.Mapping, i int, forMirror bool) any {
	var value any
	if t.useMerged || forMirror {
		if v, ok := m.MappedValue(i, forMirror); ok {
			value = v
		}
	}
	if value == nil {
		value = types.InstanceValue(m.Instance(), m.Attributes().Get(i))
	}
	return value
}

// valueForMirrorResolution feeds MirrorSets.Resolve. The value attribute
// skips convention routing here; named attributes follow it.
func (t *Tag) valueForMirrorResolution(i int, attr types.Attribute) any {
	v, _ := t.value(i, !attr.IsValueAttribute(), true)
	return v
}
