// Package types defines the data model for the merged tag system: tag types
// with ordered attribute sets, alias declarations, declared value types, and
// concrete tag instances.
package types

import (
	"strings"
)

// ValueAttribute is the conventional single-element attribute name. It gets
// special treatment in alias defaulting and in convention mapping.
const ValueAttribute = "value"

// AliasSpec declares that an attribute's value is sourced from another
// attribute, either on the same tag type or on a meta-tag target type.
// Attribute and Value are synonyms for the target attribute name; declaring
// both is a configuration error.
type AliasSpec struct {
	Type      string `json:"type,omitempty"`      // Target tag type; empty means the declaring type
	Attribute string `json:"attribute,omitempty"` // Target attribute name
	Value     string `json:"value,omitempty"`     // Synonym for Attribute
}

// Attribute describes one named attribute of a tag type.
type Attribute struct {
	Name    string     `json:"name"`
	Type    ValueType  `json:"type"`
	Default any        `json:"default,omitempty"` // Canonical form, or nil when no default
	Alias   *AliasSpec `json:"alias,omitempty"`
	Doc     string     `json:"doc,omitempty"`
}

// HasDefault reports whether the attribute declares a default value.
func (a Attribute) HasDefault() bool {
	return a.Default != nil
}

// IsValueAttribute reports whether this is the conventional `value` attribute.
func (a Attribute) IsValueAttribute() bool {
	return a.Name == ValueAttribute
}

// AttributeSet is the ordered attribute list of one tag type. Order follows
// declaration order and is stable; mapping construction depends on index
// stability. Zero attributes is valid.
type AttributeSet struct {
	attrs  []Attribute
	byName map[string]int
}

// NewAttributeSet builds an AttributeSet preserving declaration order.
// On duplicate names the first declaration wins the name lookup.
func NewAttributeSet(attrs []Attribute) *AttributeSet {
	set := &AttributeSet{
		attrs:  make([]Attribute, len(attrs)),
		byName: make(map[string]int, len(attrs)),
	}
	copy(set.attrs, attrs)
	for i, attr := range set.attrs {
		if _, exists := set.byName[attr.Name]; !exists {
			set.byName[attr.Name] = i
		}
	}
	return set
}

// Size returns the number of attributes.
func (s *AttributeSet) Size() int {
	if s == nil {
		return 0
	}
	return len(s.attrs)
}

// Get returns the attribute at index i. Callers must pass a valid index.
func (s *AttributeSet) Get(i int) Attribute {
	return s.attrs[i]
}

// IndexOf returns the index of the named attribute, or -1 when absent.
func (s *AttributeSet) IndexOf(name string) int {
	if s == nil {
		return -1
	}
	if i, ok := s.byName[name]; ok {
		return i
	}
	return -1
}

// Names returns the attribute names in declaration order.
func (s *AttributeSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.attrs))
	for i, attr := range s.attrs {
		names[i] = attr.Name
	}
	return names
}

// TagType is a named, reusable metadata definition. Identity is the
// qualified name (dotted, e.g. "web.Route"). Immutable once built.
type TagType struct {
	name  string
	doc   string
	attrs *AttributeSet
}

// TagTypeOption customizes a TagType at construction.
type TagTypeOption func(*TagType)

// WithDoc attaches documentation text to the tag type.
func WithDoc(doc string) TagTypeOption {
	return func(t *TagType) {
		t.doc = doc
	}
}

// NewTagType builds a tag type with the given qualified name and attributes.
func NewTagType(name string, attrs []Attribute, opts ...TagTypeOption) *TagType {
	t := &TagType{
		name:  name,
		attrs: NewAttributeSet(attrs),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the qualified type name.
func (t *TagType) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Doc returns the documentation text, if any.
func (t *TagType) Doc() string {
	return t.doc
}

// Attributes returns the type's attribute set.
func (t *TagType) Attributes() *AttributeSet {
	if t == nil {
		return nil
	}
	return t.attrs
}

func (t *TagType) String() string {
	return t.Name()
}

// PackageOf returns the package portion of a qualified type name
// ("web.Route" -> "web"), or "" for an unqualified name.
func PackageOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ""
}
