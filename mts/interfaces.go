package mts

import (
	"github.com/teranos/tagx/mts/types"
)

// TypeResolver resolves qualified tag type names to their definitions.
// Implementations include tagset.Index (definition files) and attrs.Registry
// (Go struct declarations).
type TypeResolver interface {
	// ResolveType returns the definition of the named tag type.
	// Returns an error marked errors.ErrNotFound when the name is unknown.
	ResolveType(name string) (*types.TagType, error)
}

// MetaSource enumerates the tag instances declared on a tag type itself.
// This is what grows a mapping tree: each declared instance becomes a child
// mapping one level farther from the root.
type MetaSource interface {
	// DeclaredTags returns the tag instances declared on the given tag type,
	// in declaration order. Returns an empty slice when the type carries no
	// meta-tags (not an error).
	DeclaredTags(t *types.TagType) ([]types.Instance, error)
}

// Scanner discovers the tag instances physically present on a program
// element. Each returned list is one hierarchy position: index 0 is the
// element itself, index 1 the next enclosing position, and so on.
type Scanner interface {
	Scan(element any) ([][]types.Instance, error)
}

// Synthesizer materializes a live tag-shaped object from a resolved view.
// The core computes which values the object must expose; how the object is
// built (generated adapter, map-backed value, ...) is the implementation's
// concern.
type Synthesizer interface {
	Synthesize(t *types.TagType, values map[string]any) (any, error)
}

// TypeResolverFunc adapts a function to the TypeResolver interface.
type TypeResolverFunc func(name string) (*types.TagType, error)

// ResolveType calls f(name).
func (f TypeResolverFunc) ResolveType(name string) (*types.TagType, error) {
	return f(name)
}

// MetaSourceFunc adapts a function to the MetaSource interface.
type MetaSourceFunc func(t *types.TagType) ([]types.Instance, error)

// DeclaredTags calls f(t).
func (f MetaSourceFunc) DeclaredTags(t *types.TagType) ([]types.Instance, error) {
	return f(t)
}

// ScannerFunc adapts a function to the Scanner interface.
type ScannerFunc func(element any) ([][]types.Instance, error)

// Scan calls f(element).
func (f ScannerFunc) Scan(element any) ([][]types.Instance, error) {
	return f(element)
}

// NoOpMetaSource reports no meta-tags for any type. Use for flat tag systems
// without hierarchy.
type NoOpMetaSource struct{}

// DeclaredTags returns no instances.
func (NoOpMetaSource) DeclaredTags(*types.TagType) ([]types.Instance, error) {
	return nil, nil
}

// NoOpScanner finds no instances on any element.
type NoOpScanner struct{}

// Scan returns no hierarchy positions.
func (NoOpScanner) Scan(any) ([][]types.Instance, error) {
	return nil, nil
}
