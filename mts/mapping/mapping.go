// Package mapping builds and validates the mapping trees at the heart of the
// merged tag system. One Mapping describes one tag type at one distance from
// a root type: how its attributes feed the root through explicit aliases and
// naming conventions, which of its attributes mirror each other, and where
// attribute values are authoritatively read from.
//
// Trees are built once per root type, validated, and never mutated again;
// the registry package caches them for concurrent readers.
package mapping

import (
	"fmt"

	"github.com/teranos/tagx/mts/types"
)

// attrRef identifies an attribute by owning tag type and index. Attribute
// identity is type-level: two mappings of the same type in different branches
// share refs, which is what lets alias chains recognize their members while
// walking a source chain.
type attrRef struct {
	typeName string
	index    int
}

// Mapping is one node of a mapping tree: one tag type at one distance from
// the root. Non-root mappings carry the concrete meta instance they were
// declared with. Mutable only during tree construction.
type Mapping struct {
	source             *Mapping
	root               *Mapping
	distance           int
	metaTypes          []string
	tagType            *types.TagType
	instance           types.Instance
	attrs              *types.AttributeSet
	aliasedBy          map[attrRef][]attrRef
	mirrorSets         *MirrorSets
	aliasMappings      []int
	conventionMappings []int
	valueMappings      []int
	valueSources       []*Mapping
	claimed            map[int]bool
	synthesizable      bool
	state              State
}

// Type returns the tag type this mapping describes.
func (m *Mapping) Type() *types.TagType {
	return m.tagType
}

// Attributes returns the tag type's attribute set.
func (m *Mapping) Attributes() *types.AttributeSet {
	return m.attrs
}

// Source returns the mapping one level closer to the root, or nil at the root.
func (m *Mapping) Source() *Mapping {
	return m.source
}

// Root returns the distance-0 mapping of this tree.
func (m *Mapping) Root() *Mapping {
	return m.root
}

// Distance returns how many meta levels separate this mapping from the root.
func (m *Mapping) Distance() int {
	return m.distance
}

// MetaTypes returns the qualified type names from the root to this mapping,
// inclusive.
func (m *Mapping) MetaTypes() []string {
	out := make([]string, len(m.metaTypes))
	copy(out, m.metaTypes)
	return out
}

// Instance returns the declared meta instance this mapping was grown from.
// Nil at the root: the root's concrete instance arrives per query.
func (m *Mapping) Instance() types.Instance {
	return m.instance
}

// AliasMapping returns the root attribute index that attribute i feeds
// through explicit aliasing, or -1.
func (m *Mapping) AliasMapping(i int) int {
	return m.aliasMappings[i]
}

// ConventionMapping returns the root attribute index that attribute i feeds
// through same-name convention, or -1. Lower precedence than AliasMapping.
func (m *Mapping) ConventionMapping(i int) int {
	return m.conventionMappings[i]
}

// ValueMapping returns the attribute index on ValueSource(i) that is the
// authoritative source for attribute i, or -1.
func (m *Mapping) ValueMapping(i int) int {
	return m.valueMappings[i]
}

// ValueSource returns the mapping whose declared instance authoritatively
// supplies attribute i's value, or nil.
func (m *Mapping) ValueSource(i int) *Mapping {
	return m.valueSources[i]
}

// MappedValue reads attribute i's value from its recorded value source.
// When metaOnly is set, values sourced from this mapping itself are skipped;
// mirror resolution uses that to avoid reading through itself.
func (m *Mapping) MappedValue(i int, metaOnly bool) (any, bool) {
	mapped := m.valueMappings[i]
	if mapped == -1 {
		return nil, false
	}
	source := m.valueSources[i]
	if source == m && metaOnly {
		return nil, false
	}
	return types.InstanceValue(source.instance, source.attrs.Get(mapped)), true
}

// MirrorSets returns this mapping's mirror groupings.
func (m *Mapping) MirrorSets() *MirrorSets {
	return m.mirrorSets
}

// Synthesizable reports whether materializing this mapping's merged view
// requires more than passing one underlying instance through.
func (m *Mapping) Synthesizable() bool {
	return m.synthesizable
}

// State returns the construction state. Published mappings are validated.
func (m *Mapping) State() State {
	return m.state
}

func (m *Mapping) String() string {
	return fmt.Sprintf("%s (distance %d)", m.typeName(), m.distance)
}

func (m *Mapping) typeName() string {
	return m.tagType.Name()
}

func (m *Mapping) ref(i int) attrRef {
	return attrRef{typeName: m.typeName(), index: i}
}

// processAliases expands the alias chain of every attribute and records the
// results along the source chain: aliasMappings toward the root, mirror
// groupings on every visited mapping, and value sources wherever a visited
// mapping carries a declared instance.
func (m *Mapping) processAliases() error {
	for i := 0; i < m.attrs.Size(); i++ {
		chain := []attrRef{m.ref(i)}
		chain = m.collectAliases(chain)
		if len(chain) > 1 {
			if err := m.processAliasChain(i, chain); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectAliases grows the chain with every attribute that aliases into a
// current member, level by level from this mapping toward the root. Members
// added at one level are probed against deeper levels only, mirroring how
// declarations can only target meta levels.
func (m *Mapping) collectAliases(chain []attrRef) []attrRef {
	for mapping := m; mapping != nil; mapping = mapping.source {
		size := len(chain)
		for j := 0; j < size; j++ {
			if additional, ok := mapping.aliasedBy[chain[j]]; ok {
				chain = append(chain, additional...)
			}
		}
	}
	return chain
}

func (m *Mapping) processAliasChain(attrIndex int, chain []attrRef) error {
	rootIndex := m.firstRootAttributeIndex(chain)
	for mapping := m; mapping != nil; mapping = mapping.source {
		if rootIndex != -1 && mapping != m.root {
			for i := 0; i < mapping.attrs.Size(); i++ {
				if chainContains(chain, mapping.ref(i)) {
					mapping.aliasMappings[i] = rootIndex
				}
			}
		}
		mapping.mirrorSets.updateFrom(chain)
		mapping.claimChain(chain)
		if mapping.instance != nil {
			inst := mapping.instance
			resolved, conflicts := mapping.mirrorSets.Resolve(inst.Source(), func(_ int, attr types.Attribute) any {
				return types.InstanceValue(inst, attr)
			})
			if len(conflicts) > 0 {
				return mapping.mirrorSets.firstConflict(conflicts)
			}
			for i := 0; i < mapping.attrs.Size(); i++ {
				if chainContains(chain, mapping.ref(i)) {
					m.valueMappings[attrIndex] = resolved[i]
					m.valueSources[attrIndex] = mapping
				}
			}
		}
	}
	return nil
}

// firstRootAttributeIndex returns the lowest root attribute index present in
// the chain, or -1.
func (m *Mapping) firstRootAttributeIndex(chain []attrRef) int {
	rootName := m.root.typeName()
	for i := 0; i < m.root.attrs.Size(); i++ {
		if chainContains(chain, attrRef{typeName: rootName, index: i}) {
			return i
		}
	}
	return -1
}

func (m *Mapping) claimChain(chain []attrRef) {
	for _, ref := range chain {
		if ref.typeName == m.typeName() {
			m.claimed[ref.index] = true
		}
	}
}

func chainContains(chain []attrRef, ref attrRef) bool {
	for _, member := range chain {
		if member == ref {
			return true
		}
	}
	return false
}

// addConventionMappings maps every non-root attribute whose name matches a
// root attribute to that root index. The conventional `value` name never
// participates. The mapping propagates to the attribute's mirror members so
// mirrors share the convention target.
func (m *Mapping) addConventionMappings() {
	if m.distance == 0 {
		return
	}
	rootAttrs := m.root.attrs
	for i := 0; i < m.attrs.Size(); i++ {
		name := m.attrs.Get(i).Name
		mapped := rootAttrs.IndexOf(name)
		if name == types.ValueAttribute || mapped == -1 {
			continue
		}
		m.conventionMappings[i] = mapped
		if mirrors := m.mirrorSets.Assigned(i); mirrors != nil {
			for j := 0; j < mirrors.Size(); j++ {
				m.conventionMappings[mirrors.Index(j)] = mapped
			}
		}
	}
}

// addConventionValues records, per attribute, the same-named attribute of an
// ancestor mapping as the value source when it beats the current one. The
// tie-break is asymmetric and deliberate: an attribute named `value` keeps
// its first (farthest) hit, every other name converges on the hit closest to
// the root.
func (m *Mapping) addConventionValues() {
	for i := 0; i < m.attrs.Size(); i++ {
		attr := m.attrs.Get(i)
		isValue := attr.IsValueAttribute()
		for mapping := m; mapping != nil && mapping.distance > 0; mapping = mapping.source {
			mapped := mapping.attrs.IndexOf(attr.Name)
			if mapped != -1 && m.isBetterConventionValue(i, isValue, mapping) {
				m.valueMappings[i] = mapped
				m.valueSources[i] = mapping
			}
		}
	}
}

func (m *Mapping) isBetterConventionValue(attrIndex int, isValueAttribute bool, candidate *Mapping) bool {
	if m.valueMappings[attrIndex] == -1 {
		return true
	}
	existingDistance := m.valueSources[attrIndex].distance
	return !isValueAttribute && existingDistance > candidate.distance
}
