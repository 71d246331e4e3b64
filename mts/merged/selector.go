package merged

import (
	"github.com/teranos/tagx/mts/types"
)

// Selector decides which of two views of one tag type a Get should return.
type Selector interface {
	// IsBestCandidate reports whether the view cannot be beaten, letting the
	// search stop at it without changing the outcome.
	IsBestCandidate(t *Tag) bool
	// Select returns the preferred of the running best and the next
	// candidate.
	Select(existing, candidate *Tag) *Tag
}

// Nearest prefers the view closest to the scanned element. Ties keep the
// earlier candidate, so declaration order decides between equal distances.
// This is the default selector.
func Nearest() Selector {
	return nearest{}
}

type nearest struct{}

func (nearest) IsBestCandidate(t *Tag) bool {
	return t.Distance() == 0
}

func (nearest) Select(existing, candidate *Tag) *Tag {
	if candidate.Distance() < existing.Distance() {
		return candidate
	}
	return existing
}

// FirstDirectlyDeclared prefers the first directly declared view; when no
// candidate is directly declared, the first candidate wins regardless of
// distance.
func FirstDirectlyDeclared() Selector {
	return firstDirect{}
}

type firstDirect struct{}

func (firstDirect) IsBestCandidate(t *Tag) bool {
	return t.Distance() == 0
}

func (firstDirect) Select(existing, candidate *Tag) *Tag {
	if existing.Distance() > 0 && candidate.Distance() == 0 {
		return candidate
	}
	return existing
}

// Predicate filters candidate views during GetWith and Stream consumers.
// Predicates returned by FirstRunOf and Unique carry state; use each value
// for a single query.
type Predicate func(*Tag) bool

// FirstRunOf accepts candidates whose extracted value is equivalent to the
// value of the first candidate seen. Later candidates matching the first
// value are accepted even after a non-matching one, so pair it with the
// ordered Stream when a strict leading run is wanted.
func FirstRunOf(extract func(*Tag) any) Predicate {
	var first any
	seen := false
	return func(t *Tag) bool {
		v := extract(t)
		if !seen {
			seen = true
			first = v
			return true
		}
		return types.Equivalent(first, v)
	}
}

// Unique accepts the first candidate per extracted key. Keys must be
// comparable.
func Unique(key func(*Tag) any) Predicate {
	seen := make(map[any]bool)
	return func(t *Tag) bool {
		k := key(t)
		if seen[k] {
			return false
		}
		seen[k] = true
		return true
	}
}
