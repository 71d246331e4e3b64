package merged

import (
	"sort"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/registry"
	"github.com/teranos/tagx/mts/types"
)

// Aggregate is one scanned hierarchy position: the tag instances declared
// there plus the position's index. Lower indexes sit closer to the queried
// element; index 0 is the element itself.
type Aggregate struct {
	index     int
	source    any
	instances []types.Instance
}

// NewAggregate builds an aggregate for one hierarchy position. source names
// the position for diagnostics.
func NewAggregate(index int, source any, instances ...types.Instance) Aggregate {
	return Aggregate{index: index, source: source, instances: instances}
}

// Index returns the hierarchy position.
func (a Aggregate) Index() int {
	return a.index
}

// Source returns the element the instances were found on.
func (a Aggregate) Source() any {
	return a.source
}

// Instances returns the instances declared at this position.
func (a Aggregate) Instances() []types.Instance {
	out := make([]types.Instance, len(a.instances))
	copy(out, a.instances)
	return out
}

// Tags combines the aggregates scanned from one element into a queryable
// collection. Mapping trees build lazily through the shared registry, once
// per tag type actually queried. A Tags value is immutable; Get, Stream and
// the presence checks may run concurrently.
type Tags struct {
	reg        *registry.Registry
	filter     mts.Filter
	source     any
	aggregates []Aggregate
	views      []*Tag // precomputed mode (Of); nil in aggregate mode
}

// From builds a collection over explicit aggregates. A nil registry uses the
// process-wide default; the default filter excludes the foundational
// namespaces. Aggregates are ordered by index, ties keeping the given order.
func From(reg *registry.Registry, source any, aggregates ...Aggregate) *Tags {
	if reg == nil {
		reg = registry.Default()
	}
	aggs := make([]Aggregate, len(aggregates))
	copy(aggs, aggregates)
	sort.SliceStable(aggs, func(i, j int) bool {
		return aggs[i].index < aggs[j].index
	})
	return &Tags{
		reg:        reg,
		filter:     mts.PlainFilter,
		source:     source,
		aggregates: aggs,
	}
}

// Scan discovers the element's instances through the scanner and wraps each
// hierarchy position as one aggregate. A nil scanner finds nothing.
func Scan(reg *registry.Registry, scanner mts.Scanner, element any) (*Tags, error) {
	if scanner == nil {
		scanner = mts.NoOpScanner{}
	}
	positions, err := scanner.Scan(element)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot scan %v", element)
	}
	aggregates := make([]Aggregate, 0, len(positions))
	for i, instances := range positions {
		aggregates = append(aggregates, NewAggregate(i, element, instances...))
	}
	return From(reg, element, aggregates...), nil
}

// Of wraps precomputed views. Nil and missing views are dropped; the rest
// are ordered by (aggregate index, distance), ties keeping the given order.
func Of(tags ...*Tag) *Tags {
	views := make([]*Tag, 0, len(tags))
	for _, t := range tags {
		if t == nil || !t.IsPresent() {
			continue
		}
		views = append(views, t)
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].aggregateIndex != views[j].aggregateIndex {
			return views[i].aggregateIndex < views[j].aggregateIndex
		}
		return views[i].Distance() < views[j].Distance()
	})
	return &Tags{filter: mts.NoneFilter, views: views}
}

// WithFilter returns a copy using the given filter for every later query.
// Nil restores the default.
func (ts *Tags) WithFilter(f mts.Filter) *Tags {
	if f == nil {
		f = mts.PlainFilter
	}
	out := *ts
	out.filter = f
	return &out
}

// Stream returns every present view of every tag type reachable from every
// aggregate, ordered by (aggregate index, distance) with ties in declaration
// order. The ordering is a contract; callers pair it with FirstRunOf.
func (ts *Tags) Stream() ([]*Tag, error) {
	return ts.stream("")
}

// StreamOf returns the present views of one tag type, in Stream order.
func (ts *Tags) StreamOf(typeName string) ([]*Tag, error) {
	if ts.filter.Excludes(typeName) {
		return nil, nil
	}
	return ts.stream(typeName)
}

func (ts *Tags) stream(typeName string) ([]*Tag, error) {
	if ts.views != nil {
		out := make([]*Tag, 0, len(ts.views))
		for _, v := range ts.views {
			if typeName != "" && v.TypeName() != typeName {
				continue
			}
			out = append(out, v)
		}
		return out, nil
	}
	var out []*Tag
	for _, agg := range ts.aggregates {
		views, err := ts.aggregateViews(agg, typeName)
		if err != nil {
			return nil, err
		}
		out = append(out, views...)
	}
	return out, nil
}

// aggregateViews builds the views contributed by one aggregate, optionally
// restricted to one tag type. Views come out ascending by distance; ties
// follow instance declaration order.
func (ts *Tags) aggregateViews(agg Aggregate, typeName string) ([]*Tag, error) {
	var out []*Tag
	for _, inst := range agg.instances {
		if inst == nil || inst.Type() == nil {
			continue
		}
		rootName := inst.Type().Name()
		if ts.filter.Excludes(rootName) {
			continue
		}
		tree, err := ts.reg.TreeFor(rootName, ts.filter)
		if err != nil {
			return nil, err
		}

		// Root mirror winners depend only on the instance, so the first
		// view built for it hands them to the rest of its tree.
		var rootMirrors []int
		var rootConflicts map[int]error
		for i := 0; i < tree.Size(); i++ {
			m := tree.Get(i)
			if typeName != "" && m.Type().Name() != typeName {
				continue
			}
			view := newTag(m, agg.source, inst, agg.index, rootMirrors, rootConflicts)
			rootMirrors, rootConflicts = view.resolvedRootMirrors, view.rootConflicts
			out = append(out, view)
		}
	}
	// Per-instance runs are already ascending, so a stable sort by distance
	// interleaves them while keeping declaration order within a distance.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance() < out[j].Distance()
	})
	return out, nil
}

// Get returns the nearest view of the named type, or the missing view.
func (ts *Tags) Get(typeName string) (*Tag, error) {
	return ts.GetWith(typeName, nil, nil)
}

// GetWith returns the best view of the named type among the candidates
// accepted by pred, judged by sel. A nil pred accepts everything; a nil sel
// means Nearest. Returns the missing view when nothing qualifies, and an
// error only when a mapping tree cannot be built.
func (ts *Tags) GetWith(typeName string, pred Predicate, sel Selector) (*Tag, error) {
	if ts.filter.Excludes(typeName) {
		return Missing(), nil
	}
	if sel == nil {
		sel = Nearest()
	}
	candidates, err := ts.stream(typeName)
	if err != nil {
		return nil, err
	}
	var best *Tag
	for _, c := range candidates {
		if pred != nil && !pred(c) {
			continue
		}
		// Unbeatable candidates end the search early; with a well-behaved
		// selector this cannot change the outcome.
		if sel.IsBestCandidate(c) {
			return c, nil
		}
		if best == nil {
			best = c
		} else {
			best = sel.Select(best, c)
		}
	}
	if best == nil {
		return Missing(), nil
	}
	return best, nil
}

// IsPresent reports whether the named type is reachable, directly or through
// meta-tags. Mapping failures read as absent; use Get to surface them.
func (ts *Tags) IsPresent(typeName string) bool {
	if ts.filter.Excludes(typeName) {
		return false
	}
	views, err := ts.stream(typeName)
	if err != nil {
		return false
	}
	return len(views) > 0
}

// IsDirectlyPresent reports whether an instance of the named type sits on a
// scanned position itself. No mapping work happens.
func (ts *Tags) IsDirectlyPresent(typeName string) bool {
	if ts.filter.Excludes(typeName) {
		return false
	}
	if ts.views != nil {
		for _, v := range ts.views {
			if v.IsDirectlyPresent() && v.TypeName() == typeName {
				return true
			}
		}
		return false
	}
	for _, agg := range ts.aggregates {
		for _, inst := range agg.instances {
			if inst != nil && inst.Type() != nil && inst.Type().Name() == typeName {
				return true
			}
		}
	}
	return false
}
