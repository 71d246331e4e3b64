package merged

import (
	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts/types"
)

// Typed getters over Value. Values arrive in canonical form (string, int64,
// float64, bool, TypeRef, Instance, slices thereof); slice getters widen a
// scalar routed in from a scalar-typed alias, matching the declaration-side
// widening rule.

// GetString returns the named attribute as a string.
func (t *Tag) GetString(name string) (string, error) {
	v, err := t.Value(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", t.typeError(name, "string", v)
	}
	return s, nil
}

// GetStringSlice returns the named attribute as a string slice.
func (t *Tag) GetStringSlice(name string) ([]string, error) {
	v, err := t.Value(name)
	if err != nil {
		return nil, err
	}
	switch s := v.(type) {
	case []string:
		return s, nil
	case string:
		return []string{s}, nil
	}
	return nil, t.typeError(name, "[]string", v)
}

// GetInt returns the named attribute as an int64.
func (t *Tag) GetInt(name string) (int64, error) {
	v, err := t.Value(name)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, t.typeError(name, "int", v)
	}
	return n, nil
}

// GetIntSlice returns the named attribute as an int64 slice.
func (t *Tag) GetIntSlice(name string) ([]int64, error) {
	v, err := t.Value(name)
	if err != nil {
		return nil, err
	}
	switch n := v.(type) {
	case []int64:
		return n, nil
	case int64:
		return []int64{n}, nil
	}
	return nil, t.typeError(name, "[]int", v)
}

// GetFloat returns the named attribute as a float64.
func (t *Tag) GetFloat(name string) (float64, error) {
	v, err := t.Value(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, t.typeError(name, "float", v)
	}
	return f, nil
}

// GetBool returns the named attribute as a bool.
func (t *Tag) GetBool(name string) (bool, error) {
	v, err := t.Value(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, t.typeError(name, "bool", v)
	}
	return b, nil
}

// GetTypeRef returns the named attribute as a type reference. A plain string
// value is accepted as the referenced name.
func (t *Tag) GetTypeRef(name string) (types.TypeRef, error) {
	v, err := t.Value(name)
	if err != nil {
		return "", err
	}
	switch r := v.(type) {
	case types.TypeRef:
		return r, nil
	case string:
		return types.TypeRef(r), nil
	}
	return "", t.typeError(name, "type", v)
}

// GetTypeRefSlice returns the named attribute as a type reference slice.
func (t *Tag) GetTypeRefSlice(name string) ([]types.TypeRef, error) {
	v, err := t.Value(name)
	if err != nil {
		return nil, err
	}
	switch r := v.(type) {
	case []types.TypeRef:
		return r, nil
	case types.TypeRef:
		return []types.TypeRef{r}, nil
	case string:
		return []types.TypeRef{types.TypeRef(r)}, nil
	case []string:
		out := make([]types.TypeRef, len(r))
		for i, s := range r {
			out[i] = types.TypeRef(s)
		}
		return out, nil
	}
	return nil, t.typeError(name, "[]type", v)
}

// GetTag returns the named attribute as a nested tag instance.
func (t *Tag) GetTag(name string) (types.Instance, error) {
	v, err := t.Value(name)
	if err != nil {
		return nil, err
	}
	inst, ok := v.(types.Instance)
	if !ok {
		return nil, t.typeError(name, "tag instance", v)
	}
	return inst, nil
}

// GetTagSlice returns the named attribute as a slice of nested instances.
func (t *Tag) GetTagSlice(name string) ([]types.Instance, error) {
	v, err := t.Value(name)
	if err != nil {
		return nil, err
	}
	switch inst := v.(type) {
	case []types.Instance:
		return inst, nil
	case types.Instance:
		return []types.Instance{inst}, nil
	}
	return nil, t.typeError(name, "[]tag instance", v)
}

func (t *Tag) typeError(name, want string, got any) error {
	return errors.Wrapf(errors.ErrAttributeType,
		"attribute %s.%s holds %T, not %s", t.TypeName(), name, got, want)
}
