package attrs

import (
	"reflect"

	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/types"
)

// Tagged is implemented by program elements that carry their tags as Go
// struct values.
type Tagged interface {
	// Tags returns the element's tag struct values. Nil entries are skipped.
	Tags() []any
}

// Enclosing is implemented by elements nested inside a wider declaration,
// such as a handler registered on a router group. Scanning walks the chain
// outward; each enclosing element becomes the next aggregate.
type Enclosing interface {
	Enclosing() any
}

// Scanner returns an mts.Scanner that discovers tag instances on elements
// whose tag structs were declared through d. An element contributes the tags
// it reports through Tagged, or itself when it is a declared tag struct;
// Tagged wins when both apply. The Enclosing chain supplies the outer
// positions.
func (d *Declarer) Scanner() mts.Scanner {
	return scanner{d: d}
}

type scanner struct {
	d *Declarer
}

func (s scanner) Scan(element any) ([][]types.Instance, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	var positions [][]types.Instance
	seen := make(map[any]bool)
	for element != nil {
		// Guard against cyclic Enclosing chains. Uncomparable elements
		// cannot key the map; the chain must end on its own for those.
		if reflect.ValueOf(element).Comparable() {
			if seen[element] {
				break
			}
			seen[element] = true
		}
		instances, err := s.d.collect(element)
		if err != nil {
			return nil, err
		}
		positions = append(positions, instances)
		enc, ok := element.(Enclosing)
		if !ok {
			break
		}
		element = enc.Enclosing()
	}
	return positions, nil
}

// collect gathers the instances declared on one element. Caller holds the
// read lock.
func (d *Declarer) collect(element any) ([]types.Instance, error) {
	if tagged, ok := element.(Tagged); ok {
		var out []types.Instance
		for _, v := range tagged.Tags() {
			if v == nil {
				continue
			}
			inst, err := d.wrap(v)
			if err != nil {
				return nil, err
			}
			out = append(out, inst.WithSource(element))
		}
		return out, nil
	}
	// The element itself may be a declared tag struct.
	if _, typ, err := structValueOf(element); err == nil {
		if _, ok := d.plans[typ]; ok {
			inst, err := d.wrap(element)
			if err != nil {
				return nil, err
			}
			return []types.Instance{inst.WithSource(element)}, nil
		}
	}
	return nil, nil
}
