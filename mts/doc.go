// Package mts (Merged Tag System) resolves merged views of metadata tags
// attached, directly or through meta-tags, to program elements.
//
// # Overview
//
// A tag type declares named attributes with default values; concrete tag
// instances supply explicit values. Tags may be attached to other tag types,
// forming hierarchies of arbitrary depth. Attributes across a hierarchy may
// alias one another, explicitly or by naming convention, so a single logical
// value is visible through several attribute names at several levels.
//
// Given a root tag type, MTS builds a mapping tree describing how every
// attribute of every tag in the hierarchy feeds the root, then answers
// "what is the effective value of this attribute" for concrete instances,
// reconciling aliases, conventions, and mirrored-attribute consistency.
// Contradictory declarations are detected once, at tree construction, and
// reported deterministically.
//
// # Core Concepts
//
// Tag types and instances (mts/types):
//   - TagType: named definition with an ordered attribute set
//   - Attribute: name, declared value type, optional default, optional alias
//   - Instance: one concrete occurrence with explicit attribute values
//
// Mapping trees (mts/mapping):
//   - One TypeMapping per tag type occurrence, linked toward the root
//   - Alias chains expanded into equivalence classes and mirror sets
//   - Convention mappings for same-named attributes
//   - Built once per root type, immutable, cached by the registry
//
// Merged views (mts/merged):
//   - Tag: attribute queries against one mapping node plus one aggregate
//   - Tags: ordered collection across aggregates with stream/get/selectors
//   - Missing tags are first-class: distance and aggregate index report -1
//
// # Usage Example
//
//	import (
//	    "github.com/teranos/tagx/mts/merged"
//	    "github.com/teranos/tagx/mts/registry"
//	    "github.com/teranos/tagx/mts/tagset"
//	    "github.com/teranos/tagx/mts/types"
//	)
//
//	// Load tag type definitions
//	idx, _ := tagset.Load("tags.toml")
//	reg := registry.New(idx, idx)
//
//	// A concrete instance found on some element
//	route := types.NewInstance(idx.MustType("web.Route"),
//	    map[string]any{"value": "/users"})
//
//	// Resolve merged views
//	tags := merged.From(reg, merged.NewAggregate(0, route))
//	view := tags.Get("web.Route")
//	path, _ := view.GetString("path") // "/users" via the value<->path alias
//
// # Extensibility
//
// MTS consumes collaborators through interfaces:
//   - TypeResolver: qualified name -> tag type definition
//   - MetaSource: which tag instances are declared on a tag type
//   - Scanner: which tag instances are physically present on an element
//   - Synthesizer: materializes a live tag-shaped object from resolved values
//
// tagset.Index implements TypeResolver and MetaSource from TOML/YAML
// definition files or programmatic registration. Package attrs derives tag
// types from Go struct tags. Package synth provides the default Synthesizer.
//
// # Package Structure
//
//   - mts/          - Collaborator interfaces and type-name filters
//   - mts/types/    - Tag types, attributes, value types, instances
//   - mts/mapping/  - Mapping tree construction and validation
//   - mts/registry/ - Cached tree builder (one builder per key)
//   - mts/merged/   - Merged view query facades
//   - mts/tagset/   - Definition files, index, file watcher
//   - mts/attrs/    - Go struct tag bridge
//   - mts/synth/    - Map-backed synthesis adapter
//   - mts/typegen/  - Typed accessor code generation
package mts
