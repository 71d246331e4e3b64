package mts

import (
	"strings"
)

// Filter decides which tag types participate in merged-view resolution. It is
// consulted with the qualified type name before any mapping work happens for
// a candidate type, so deep foundational hierarchies are never resolved.
type Filter interface {
	// Excludes reports whether the named tag type is excluded from resolution.
	Excludes(typeName string) bool

	// Key identifies the filter for mapping-tree cache partitioning. Filters
	// reporting equal keys must exclude identical type sets.
	Key() string
}

var (
	// PlainFilter excludes the foundational namespaces (std.*, tagx.*) and
	// nothing else. This is the default filter.
	PlainFilter Filter = prefixFilter{key: "plain", prefixes: []string{"std.", "tagx."}}

	// AllFilter excludes every tag type.
	AllFilter Filter = allFilter{}

	// NoneFilter excludes nothing.
	NoneFilter Filter = noneFilter{}
)

// Packages returns a Filter excluding tag types declared under any of the
// given packages ("cache" excludes "cache.Cacheable" and "cache.impl.X").
func Packages(packages ...string) Filter {
	prefixes := make([]string, 0, len(packages))
	for _, pkg := range packages {
		pkg = strings.TrimSuffix(pkg, ".")
		if pkg == "" {
			continue
		}
		prefixes = append(prefixes, pkg+".")
	}
	return prefixFilter{
		key:      "packages:" + strings.Join(prefixes, ","),
		prefixes: prefixes,
	}
}

type prefixFilter struct {
	key      string
	prefixes []string
}

func (f prefixFilter) Excludes(typeName string) bool {
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(typeName, prefix) {
			return true
		}
	}
	return false
}

func (f prefixFilter) Key() string {
	return f.key
}

type allFilter struct{}

func (allFilter) Excludes(string) bool {
	return true
}

func (allFilter) Key() string {
	return "all"
}

type noneFilter struct{}

func (noneFilter) Excludes(string) bool {
	return false
}

func (noneFilter) Key() string {
	return "none"
}
