package types

import (
	"reflect"

	"github.com/teranos/tagx/errors"
)

// Normalize coerces a raw value to the canonical form for the declared type:
// string, int64, float64, bool, TypeRef, Instance, or a slice of these. A
// scalar supplied for a slice type widens to a single-element slice.
func Normalize(vt ValueType, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if vt.Slice {
		return normalizeSlice(vt, raw)
	}
	return normalizeScalar(vt, raw)
}

func normalizeScalar(vt ValueType, raw any) (any, error) {
	switch vt.Kind {
	case KindString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case KindInt:
		switch n := raw.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int16:
			return int64(n), nil
		case int8:
			return int64(n), nil
		case uint:
			return int64(n), nil
		case uint64:
			return int64(n), nil
		case uint32:
			return int64(n), nil
		case uint16:
			return int64(n), nil
		case uint8:
			return int64(n), nil
		}
	case KindFloat:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case KindBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case KindTypeRef:
		switch r := raw.(type) {
		case TypeRef:
			return r, nil
		case string:
			return TypeRef(r), nil
		}
	case KindTag:
		if inst, ok := raw.(Instance); ok {
			if vt.TagName != "" && inst.Type().Name() != vt.TagName {
				return nil, errors.Wrapf(errors.ErrAttributeType,
					"expected instance of %s, got %s", vt.TagName, inst.Type().Name())
			}
			return inst, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrAttributeType, "cannot use %T as %s", raw, vt)
}

func normalizeSlice(vt ValueType, raw any) (any, error) {
	elemType := vt.Elem()

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		elem, err := normalizeScalar(elemType, raw)
		if err != nil {
			return nil, err
		}
		return buildSlice(vt.Kind, []any{elem})
	}

	elems := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem, err := normalizeScalar(elemType, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elems[i] = elem
	}
	return buildSlice(vt.Kind, elems)
}

func buildSlice(kind Kind, elems []any) (any, error) {
	switch kind {
	case KindString:
		out := make([]string, len(elems))
		for i, e := range elems {
			out[i] = e.(string)
		}
		return out, nil
	case KindInt:
		out := make([]int64, len(elems))
		for i, e := range elems {
			out[i] = e.(int64)
		}
		return out, nil
	case KindFloat:
		out := make([]float64, len(elems))
		for i, e := range elems {
			out[i] = e.(float64)
		}
		return out, nil
	case KindBool:
		out := make([]bool, len(elems))
		for i, e := range elems {
			out[i] = e.(bool)
		}
		return out, nil
	case KindTypeRef:
		out := make([]TypeRef, len(elems))
		for i, e := range elems {
			out[i] = e.(TypeRef)
		}
		return out, nil
	case KindTag:
		out := make([]Instance, len(elems))
		for i, e := range elems {
			out[i] = e.(Instance)
		}
		return out, nil
	}
	return nil, errors.Wrapf(errors.ErrAttributeType, "cannot build slice of %s", kind)
}

// Equivalent reports whether two attribute values are interchangeable: equal
// as canonical values, a type reference matching its qualified name string
// (element-wise for slices), or two instances of the same type whose
// attributes are pairwise equivalent.
func Equivalent(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case string:
		switch bv := b.(type) {
		case string:
			return av == bv
		case TypeRef:
			return av == string(bv)
		}
		return false
	case TypeRef:
		switch bv := b.(type) {
		case TypeRef:
			return av == bv
		case string:
			return string(av) == bv
		}
		return false
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []string:
		return stringSliceEquivalent(av, b)
	case []TypeRef:
		return typeRefSliceEquivalent(av, b)
	case []int64:
		bv, ok := b.([]int64)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case []float64:
		bv, ok := b.([]float64)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case []bool:
		bv, ok := b.([]bool)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case []Instance:
		bv, ok := b.([]Instance)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equivalent(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Instance:
		bv, ok := b.(Instance)
		return ok && instancesEquivalent(av, bv)
	}
	return reflect.DeepEqual(a, b)
}

// InstanceValue reads an attribute from an instance the way callers see it:
// the explicitly declared value, else the attribute's default.
func InstanceValue(inst Instance, attr Attribute) any {
	if v, ok := inst.Value(attr.Name); ok {
		return v
	}
	return attr.Default
}

func instancesEquivalent(a, b Instance) bool {
	if a.Type().Name() != b.Type().Name() {
		return false
	}
	set := a.Type().Attributes()
	for i := 0; i < set.Size(); i++ {
		attr := set.Get(i)
		if !Equivalent(InstanceValue(a, attr), InstanceValue(b, attr)) {
			return false
		}
	}
	return true
}

func stringSliceEquivalent(a []string, b any) bool {
	switch bv := b.(type) {
	case []string:
		if len(a) != len(bv) {
			return false
		}
		for i := range a {
			if a[i] != bv[i] {
				return false
			}
		}
		return true
	case []TypeRef:
		if len(a) != len(bv) {
			return false
		}
		for i := range a {
			if a[i] != string(bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func typeRefSliceEquivalent(a []TypeRef, b any) bool {
	switch bv := b.(type) {
	case []TypeRef:
		if len(a) != len(bv) {
			return false
		}
		for i := range a {
			if a[i] != bv[i] {
				return false
			}
		}
		return true
	case []string:
		if len(a) != len(bv) {
			return false
		}
		for i := range a {
			if string(a[i]) != bv[i] {
				return false
			}
		}
		return true
	}
	return false
}
