package mapping

import (
	"fmt"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/types"
)

// resolveAliasedBy resolves every explicit alias declaration on this type and
// inverts them: target attribute -> declaring attributes. Declaration
// legality is checked here, once, before any chain expansion.
func (m *Mapping) resolveAliasedBy(resolver mts.TypeResolver) (map[attrRef][]attrRef, error) {
	aliasedBy := make(map[attrRef][]attrRef)
	for i := 0; i < m.attrs.Size(); i++ {
		attr := m.attrs.Get(i)
		if attr.Alias == nil {
			continue
		}
		target, err := m.resolveAliasTarget(resolver, i, attr, true)
		if err != nil {
			return nil, err
		}
		aliasedBy[target] = append(aliasedBy[target], m.ref(i))
	}
	return aliasedBy, nil
}

// resolveAliasTarget determines the (type, attribute) an alias declaration
// points at. Target type defaults to the declaring type; target name to the
// Value synonym, then to the declaring attribute's own name. For a same-type
// pair carrying its own declaration, the first resolution pass requires the
// target to point straight back.
func (m *Mapping) resolveAliasTarget(resolver mts.TypeResolver, attrIndex int, attr types.Attribute, checkAliasPair bool) (attrRef, error) {
	spec := attr.Alias
	if spec.Attribute != "" && spec.Value != "" {
		return attrRef{}, errors.Wrapf(errors.ErrConflictingAliasSpecifiers,
			"in alias declared on %s, specifier 'attribute' and its synonym 'value' are present with %q and %q, but only one is permitted",
			describeAttr(m.typeName(), attr.Name), spec.Attribute, spec.Value)
	}

	targetTypeName := spec.Type
	if targetTypeName == "" {
		targetTypeName = m.typeName()
	}
	targetAttrName := spec.Attribute
	if targetAttrName == "" {
		targetAttrName = spec.Value
	}
	if targetAttrName == "" {
		targetAttrName = attr.Name
	}

	targetType := m.tagType
	if targetTypeName != m.typeName() {
		resolved, err := resolver.ResolveType(targetTypeName)
		if err != nil {
			return attrRef{}, errors.Wrapf(errors.ErrMissingAliasTarget,
				"alias declared on %s targets unknown type %q: %v",
				describeAttr(m.typeName(), attr.Name), targetTypeName, err)
		}
		targetType = resolved
	}

	targetIndex := targetType.Attributes().IndexOf(targetAttrName)
	if targetIndex == -1 {
		if targetTypeName == m.typeName() {
			return attrRef{}, errors.Wrapf(errors.ErrMissingAliasTarget,
				"alias declared on %s declares an alias for %q which is not present",
				describeAttr(m.typeName(), attr.Name), targetAttrName)
		}
		return attrRef{}, errors.Wrapf(errors.ErrMissingAliasTarget,
			"%s is declared as an alias for nonexistent %s",
			describeAttr(m.typeName(), attr.Name), describeAttr(targetTypeName, targetAttrName))
	}

	target := attrRef{typeName: targetTypeName, index: targetIndex}
	if target == m.ref(attrIndex) {
		return attrRef{}, errors.Wrapf(errors.ErrSelfReferentialAlias,
			"alias declared on %s points to itself; specify a target type to point to a same-named attribute on a meta-tag",
			describeAttr(m.typeName(), attr.Name))
	}

	targetAttr := targetType.Attributes().Get(targetIndex)
	if !attr.Type.CanAliasTo(targetAttr.Type) {
		return attrRef{}, errors.Wrapf(errors.ErrIncompatibleAliasTypes,
			"misconfigured aliases: %s (%s) and %s (%s) must declare the same value type",
			describeAttr(m.typeName(), attr.Name), attr.Type,
			describeAttr(targetTypeName, targetAttrName), targetAttr.Type)
	}

	// Same-type pairs must point back at each other when the target declares
	// an alias of its own. A target without a declaration is tolerated; its
	// chain still claims it.
	if checkAliasPair && targetTypeName == m.typeName() && targetAttr.Alias != nil {
		mirror, err := m.resolveAliasTarget(resolver, targetIndex, targetAttr, false)
		if err != nil {
			return attrRef{}, err
		}
		if mirror != m.ref(attrIndex) {
			return attrRef{}, errors.Wrapf(errors.ErrMisconfiguredAliasPair,
				"%s must be declared as an alias for %s, not %s",
				describeAttr(targetTypeName, targetAttrName),
				describeAttr(m.typeName(), attr.Name),
				m.describeRef(resolver, mirror))
		}
	}

	return target, nil
}

func describeAttr(typeName, attrName string) string {
	return fmt.Sprintf("attribute %q of %s", attrName, typeName)
}

// describeRef renders an attrRef for error messages, recovering the attribute
// name from the owning type. The mapping's own type is used directly since it
// may not be registered with the resolver.
func (m *Mapping) describeRef(resolver mts.TypeResolver, ref attrRef) string {
	t := m.tagType
	if ref.typeName != m.typeName() {
		resolved, err := resolver.ResolveType(ref.typeName)
		if err != nil {
			return fmt.Sprintf("attribute #%d of %s", ref.index, ref.typeName)
		}
		t = resolved
	}
	if ref.index < t.Attributes().Size() {
		return describeAttr(ref.typeName, t.Attributes().Get(ref.index).Name)
	}
	return fmt.Sprintf("attribute #%d of %s", ref.index, ref.typeName)
}
