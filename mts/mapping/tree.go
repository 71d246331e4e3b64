package mapping

import (
	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/logger"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/types"
)

// Builder grows mapping trees from a type resolver and a meta-tag source.
// Builders are stateless between calls and safe for concurrent use; callers
// wanting caching wrap one in a registry.Registry.
type Builder struct {
	resolver mts.TypeResolver
	meta     mts.MetaSource
	filter   mts.Filter
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithFilter sets the type-name filter consulted before any meta-tag is
// mapped. Defaults to mts.PlainFilter.
func WithFilter(f mts.Filter) BuilderOption {
	return func(b *Builder) {
		b.filter = f
	}
}

// NewBuilder returns a Builder resolving types through resolver and
// enumerating declared meta-tags through meta. A nil meta source means flat
// trees with a single root mapping.
func NewBuilder(resolver mts.TypeResolver, meta mts.MetaSource, opts ...BuilderOption) *Builder {
	b := &Builder{
		resolver: resolver,
		meta:     meta,
		filter:   mts.PlainFilter,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.meta == nil {
		b.meta = mts.NoOpMetaSource{}
	}
	if b.filter == nil {
		b.filter = mts.PlainFilter
	}
	return b
}

// Filter returns the active type-name filter.
func (b *Builder) Filter() mts.Filter {
	return b.filter
}

// Build resolves the named root tag type and grows its complete mapping
// tree: the root mapping plus one mapping per reachable meta-tag, breadth
// first. The returned tree is immutable.
//
// Misconfigured alias or mirror declarations anywhere in the tree fail the
// whole build; the same tag type will fail the same way every time.
func (b *Builder) Build(typeName string) (*Tree, error) {
	return b.build(typeName, map[string]bool{})
}

func (b *Builder) build(typeName string, visited map[string]bool) (*Tree, error) {
	rootType, err := b.resolver.ResolveType(typeName)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot map tag type %q", typeName)
	}
	root, err := b.newMapping(nil, rootType, nil, visited)
	if err != nil {
		return nil, err
	}
	tree := &Tree{rootType: rootType.Name()}
	queue := []*Mapping{root}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		tree.mappings = append(tree.mappings, m)
		children, err := b.metaMappings(m)
		if err != nil {
			return nil, err
		}
		queue = append(queue, children...)
	}
	for _, m := range tree.mappings {
		if err := b.validate(m); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// metaMappings constructs one child mapping per meta-tag instance declared
// on m's type, in declaration order.
func (b *Builder) metaMappings(m *Mapping) ([]*Mapping, error) {
	declared, err := b.meta.DeclaredTags(m.tagType)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot enumerate meta-tags of %s", m.typeName())
	}
	var children []*Mapping
	for _, inst := range declared {
		if inst == nil || inst.Type() == nil || !b.mappable(m, inst.Type().Name()) {
			continue
		}
		// Each meta mapping starts its own nested-type guard; only the
		// source chain walk in mappable spans levels.
		child, err := b.newMapping(m, inst.Type(), inst, map[string]bool{})
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// mappable gates tree growth: the candidate must survive the active filter,
// the declaring type must not itself be foundational, and the candidate type
// must not already occur on the source chain (self-tagged and mutually
// tagged types terminate here).
func (b *Builder) mappable(source *Mapping, typeName string) bool {
	return !b.filter.Excludes(typeName) &&
		!mts.PlainFilter.Excludes(source.typeName()) &&
		!isMapped(source, typeName)
}

func isMapped(source *Mapping, typeName string) bool {
	for m := source; m != nil; m = m.source {
		if m.typeName() == typeName {
			return true
		}
	}
	return false
}

// newMapping runs the full construction sequence for one node: alias target
// resolution, chain expansion, convention mapping, convention value sourcing
// and the synthesizable flag. instance is nil for the root mapping.
func (b *Builder) newMapping(source *Mapping, tagType *types.TagType, instance types.Instance, visited map[string]bool) (*Mapping, error) {
	m := &Mapping{
		source:   source,
		tagType:  tagType,
		instance: instance,
		attrs:    tagType.Attributes(),
		state:    StateConstructing,
	}
	m.root = m
	if source != nil {
		m.root = source.root
		m.distance = source.distance + 1
	}
	m.metaTypes = appendMetaType(source, tagType.Name())

	size := m.attrs.Size()
	m.mirrorSets = newMirrorSets(m)
	m.aliasMappings = filledIntSlice(size, -1)
	m.conventionMappings = filledIntSlice(size, -1)
	m.valueMappings = filledIntSlice(size, -1)
	m.valueSources = make([]*Mapping, size)
	m.claimed = make(map[int]bool)

	aliasedBy, err := m.resolveAliasedBy(b.resolver)
	if err != nil {
		return nil, err
	}
	m.aliasedBy = aliasedBy
	if err := m.processAliases(); err != nil {
		return nil, err
	}
	m.state = StateAliasesResolved

	m.addConventionMappings()
	m.addConventionValues()
	m.state = StateConventionsApplied

	synthesizable, err := b.computeSynthesizable(m, visited)
	if err != nil {
		return nil, err
	}
	m.synthesizable = synthesizable
	return m, nil
}

// computeSynthesizable reports whether m's merged view can ever differ from
// its plain declared instance: local aliases, inbound aliases, convention
// mappings, or a tag-typed attribute whose own tree is synthesizable. The
// visited set guards recursively tag-typed attributes.
func (b *Builder) computeSynthesizable(m *Mapping, visited map[string]bool) (bool, error) {
	visited[m.typeName()] = true
	for _, mapped := range m.aliasMappings {
		if mapped != -1 {
			return true, nil
		}
	}
	if len(m.aliasedBy) > 0 {
		return true, nil
	}
	for _, mapped := range m.conventionMappings {
		if mapped != -1 {
			return true, nil
		}
	}
	for i := 0; i < m.attrs.Size(); i++ {
		t := m.attrs.Get(i).Type
		if t.Kind != types.KindTag || visited[t.TagName] {
			continue
		}
		nested, err := b.build(t.TagName, visited)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				logger.Debugw("skipping unresolvable nested tag type",
					logger.FieldTagType, t.TagName,
					"declared_on", m.typeName())
				continue
			}
			return false, err
		}
		if nested.Root().Synthesizable() {
			return true, nil
		}
	}
	return false, nil
}

// validate runs the checks that need the finished tree: every alias
// declaration must have been claimed by some expanded chain, and mirror
// members must agree on defaults. Claim bookkeeping is discarded after.
func (b *Builder) validate(m *Mapping) error {
	if err := m.validateAliasesClaimed(b.resolver); err != nil {
		return err
	}
	for i := 0; i < m.mirrorSets.Size(); i++ {
		if err := m.validateMirrorSet(m.mirrorSets.Get(i)); err != nil {
			return err
		}
	}
	m.claimed = nil
	m.state = StateValidated
	return nil
}

func (m *Mapping) validateAliasesClaimed(resolver mts.TypeResolver) error {
	for i := 0; i < m.attrs.Size(); i++ {
		attr := m.attrs.Get(i)
		if attr.Alias == nil || m.claimed[i] {
			continue
		}
		target, err := m.resolveAliasTarget(resolver, i, attr, true)
		if err != nil {
			return err
		}
		return errors.Wrapf(errors.ErrUnclaimedAlias,
			"alias declared on %s declares an alias for %s which is not meta-present",
			describeAttr(m.typeName(), attr.Name),
			m.describeRef(resolver, target))
	}
	return nil
}

func (m *Mapping) validateMirrorSet(ms *MirrorSet) error {
	first := m.attrs.Get(ms.Index(0))
	for i := 1; i < ms.Size(); i++ {
		mirror := m.attrs.Get(ms.Index(i))
		if !first.HasDefault() || !mirror.HasDefault() {
			return errors.Wrapf(errors.ErrInconsistentMirrorDefaults,
				"misconfigured aliases: %s and %s must declare default values",
				describeAttr(m.typeName(), first.Name),
				describeAttr(m.typeName(), mirror.Name))
		}
		if !types.Equivalent(first.Default, mirror.Default) {
			return errors.Wrapf(errors.ErrInconsistentMirrorDefaults,
				"misconfigured aliases: %s and %s must declare the same default value",
				describeAttr(m.typeName(), first.Name),
				describeAttr(m.typeName(), mirror.Name))
		}
	}
	return nil
}

func appendMetaType(source *Mapping, typeName string) []string {
	if source == nil {
		return []string{typeName}
	}
	out := make([]string, 0, len(source.metaTypes)+1)
	out = append(out, source.metaTypes...)
	return append(out, typeName)
}

func filledIntSlice(size, value int) []int {
	s := make([]int, size)
	for i := range s {
		s[i] = value
	}
	return s
}

// Tree is the complete, immutable mapping set for one root tag type, in
// breadth-first order. Index 0 is always the root mapping (distance 0).
type Tree struct {
	rootType string
	mappings []*Mapping
}

// RootType returns the qualified name the tree was built for.
func (t *Tree) RootType() string {
	return t.rootType
}

// Root returns the distance-0 mapping.
func (t *Tree) Root() *Mapping {
	return t.mappings[0]
}

// Size returns the number of mappings in the tree.
func (t *Tree) Size() int {
	return len(t.mappings)
}

// Get returns the i-th mapping in breadth-first order.
func (t *Tree) Get(i int) *Mapping {
	return t.mappings[i]
}
