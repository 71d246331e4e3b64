package mapping

import (
	"fmt"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts/types"
)

// MirrorSets partitions one mapping's attribute indices into groups that must
// agree at read time. Groups grow as alias chains are processed; the assigned
// slice tracks, per attribute index, which group the attribute belongs to.
type MirrorSets struct {
	owner    *Mapping
	sets     []*MirrorSet
	assigned []*MirrorSet
}

func newMirrorSets(owner *Mapping) *MirrorSets {
	return &MirrorSets{
		owner:    owner,
		assigned: make([]*MirrorSet, owner.attrs.Size()),
	}
}

// Size returns the number of mirror groups.
func (s *MirrorSets) Size() int {
	return len(s.sets)
}

// Get returns the i-th mirror group.
func (s *MirrorSets) Get(i int) *MirrorSet {
	return s.sets[i]
}

// Assigned returns the group containing the given attribute index, or nil.
func (s *MirrorSets) Assigned(attrIndex int) *MirrorSet {
	return s.assigned[attrIndex]
}

// updateFrom groups this mapping's own attributes that appear together in an
// alias chain. Called once per qualifying chain during construction.
func (s *MirrorSets) updateFrom(chain []attrRef) {
	var mirrorSet *MirrorSet
	size := 0
	last := -1
	for i := 0; i < s.owner.attrs.Size(); i++ {
		if chainContains(chain, s.owner.ref(i)) {
			size++
			if size > 1 {
				if mirrorSet == nil {
					mirrorSet = &MirrorSet{sets: s}
					s.assigned[last] = mirrorSet
				}
				s.assigned[i] = mirrorSet
			}
			last = i
		}
	}
	if mirrorSet != nil {
		mirrorSet.update()
		s.rebuild()
	}
}

// rebuild rederives the group list from the assigned slice, dropping groups
// whose members were all reassigned by later chains.
func (s *MirrorSets) rebuild() {
	seen := make(map[*MirrorSet]bool, len(s.sets))
	var sets []*MirrorSet
	for _, ms := range s.assigned {
		if ms != nil && !seen[ms] {
			seen[ms] = true
			sets = append(sets, ms)
		}
	}
	s.sets = sets
}

// Extractor reads one attribute's effective value during mirror resolution.
type Extractor func(attrIndex int, attr types.Attribute) any

// Resolve computes, per attribute index, which index to actually read from
// once mirrors are reconciled: unmirrored attributes map to themselves,
// mirrored attributes to their group's winner. Groups whose members hold
// differing non-default values are reported in the conflicts map, keyed by
// member index; reads through those members must surface the error.
//
// source names the declaring element in conflict messages; may be nil.
func (s *MirrorSets) Resolve(source any, extract Extractor) ([]int, map[int]error) {
	result := make([]int, s.owner.attrs.Size())
	for i := range result {
		result[i] = i
	}
	var conflicts map[int]error
	for _, ms := range s.sets {
		resolved, err := ms.resolve(source, extract)
		for _, idx := range ms.indexes {
			if err != nil {
				if conflicts == nil {
					conflicts = make(map[int]error)
				}
				conflicts[idx] = err
				continue
			}
			result[idx] = resolved
		}
	}
	return result, conflicts
}

// firstConflict returns the conflict of the earliest declared group, keeping
// construction failures deterministic.
func (s *MirrorSets) firstConflict(conflicts map[int]error) error {
	for _, ms := range s.sets {
		if err, ok := conflicts[ms.indexes[0]]; ok {
			return err
		}
	}
	for _, err := range conflicts {
		return err
	}
	return nil
}

// MirrorSet is one group of mutually aliased attribute indices within a
// single mapping. Members are kept in attribute index order.
type MirrorSet struct {
	sets    *MirrorSets
	indexes []int
}

// Size returns the number of member attributes.
func (ms *MirrorSet) Size() int {
	return len(ms.indexes)
}

// Index returns the attribute index of member i.
func (ms *MirrorSet) Index(i int) int {
	return ms.indexes[i]
}

// Members returns the member attribute indices in order.
func (ms *MirrorSet) Members() []int {
	out := make([]int, len(ms.indexes))
	copy(out, ms.indexes)
	return out
}

// update recollects members from the assignment table.
func (ms *MirrorSet) update() {
	ms.indexes = ms.indexes[:0]
	for i, assigned := range ms.sets.assigned {
		if assigned == ms {
			ms.indexes = append(ms.indexes, i)
		}
	}
}

// resolve picks the member whose value wins for the whole group: the first
// member holding a non-default value. Members at their default have no
// opinion. Two members holding differing non-default values is a conflict.
// All-default groups resolve to the first member.
func (ms *MirrorSet) resolve(source any, extract Extractor) (int, error) {
	owner := ms.sets.owner
	result := -1
	var lastValue any
	for _, idx := range ms.indexes {
		attr := owner.attrs.Get(idx)
		value := extract(idx, attr)
		isDefault := value == nil || types.Equivalent(value, attr.Default)
		if isDefault || types.Equivalent(lastValue, value) {
			if result == -1 {
				result = idx
			}
			continue
		}
		if lastValue != nil && !types.Equivalent(lastValue, value) {
			on := ""
			if source != nil {
				on = fmt.Sprintf(" declared on %v", source)
			}
			return -1, errors.Wrapf(errors.ErrMirrorConflict,
				"different mirror values on %s%s; attribute %q and its alias %q are declared with values [%v] and [%v]",
				owner.typeName(), on,
				owner.attrs.Get(result).Name, attr.Name,
				lastValue, value)
		}
		result = idx
		lastValue = value
	}
	return result, nil
}
