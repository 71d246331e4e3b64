package types

import (
	"strings"

	"github.com/teranos/tagx/errors"
)

// Kind enumerates the value kinds an attribute may declare.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTypeRef // reference to a named type, held as a value
	KindTag     // nested tag instance
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTypeRef:
		return "type"
	case KindTag:
		return "tag"
	default:
		return "invalid"
	}
}

// TypeRef is a reference to a named type carried as an attribute value.
// It compares as equivalent to its qualified name string.
type TypeRef string

func (r TypeRef) String() string {
	return string(r)
}

// ValueType is the declared type of an attribute.
type ValueType struct {
	Kind    Kind   `json:"kind"`
	Slice   bool   `json:"slice,omitempty"`
	TagName string `json:"tag,omitempty"` // Qualified tag type name when Kind == KindTag
}

// Common scalar value types.
var (
	StringType  = ValueType{Kind: KindString}
	IntType     = ValueType{Kind: KindInt}
	FloatType   = ValueType{Kind: KindFloat}
	BoolType    = ValueType{Kind: KindBool}
	TypeRefType = ValueType{Kind: KindTypeRef}
)

// TagValueType returns the value type for a nested tag instance of the named
// tag type.
func TagValueType(name string) ValueType {
	return ValueType{Kind: KindTag, TagName: name}
}

// SliceOf returns the slice type of the given element type.
func SliceOf(elem ValueType) ValueType {
	elem.Slice = true
	return elem
}

// ParseValueType parses the textual form used in tag-set files: "string",
// "int", "float", "bool", "type", a qualified tag type name ("cache.Cacheable"),
// or any of these prefixed with "[]" for slices.
func ParseValueType(s string) (ValueType, error) {
	text := strings.TrimSpace(s)

	var vt ValueType
	if strings.HasPrefix(text, "[]") {
		vt.Slice = true
		text = text[2:]
	}

	switch text {
	case "string":
		vt.Kind = KindString
	case "int":
		vt.Kind = KindInt
	case "float":
		vt.Kind = KindFloat
	case "bool":
		vt.Kind = KindBool
	case "type":
		vt.Kind = KindTypeRef
	default:
		// Qualified names denote nested tag types
		if !strings.Contains(text, ".") {
			return ValueType{}, errors.Wrapf(errors.ErrAttributeType, "unknown value type %q", s)
		}
		vt.Kind = KindTag
		vt.TagName = text
	}
	return vt, nil
}

// String returns the textual form accepted by ParseValueType.
func (t ValueType) String() string {
	var b strings.Builder
	if t.Slice {
		b.WriteString("[]")
	}
	if t.Kind == KindTag {
		b.WriteString(t.TagName)
	} else {
		b.WriteString(t.Kind.String())
	}
	return b.String()
}

// Elem returns the element type of a slice type. For scalar types it returns
// the type itself.
func (t ValueType) Elem() ValueType {
	t.Slice = false
	return t
}

// IsZero reports whether the value type is the invalid zero value.
func (t ValueType) IsZero() bool {
	return t.Kind == KindInvalid
}

// CanAliasTo reports whether an attribute of this type may declare an alias
// targeting an attribute of the given type. The types must be identical, or
// the target a slice whose element type matches this scalar type.
func (t ValueType) CanAliasTo(target ValueType) bool {
	if t == target {
		return true
	}
	return target.Slice && !t.Slice && t == target.Elem()
}
