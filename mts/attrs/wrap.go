package attrs

import (
	"reflect"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts/types"
)

// Wrap turns a value of a declared tag struct into a tag instance. Zero
// fields read as unset, so they fall back to the attribute defaults on the
// merged read path; pointer fields distinguish an explicit zero (non-nil
// pointer) from an unset one (nil). Nested tag structs wrap recursively.
func (d *Declarer) Wrap(v any) (*types.MapInstance, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wrap(v)
}

// wrap is Wrap without locking, shared with Declare's meta handling and the
// scanner. Caller holds at least the read lock.
func (d *Declarer) wrap(v any) (*types.MapInstance, error) {
	rv, typ, err := structValueOf(v)
	if err != nil {
		return nil, err
	}
	plan, ok := d.plans[typ]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "tag struct %s is not declared", typ)
	}
	values := make(map[string]any, len(plan.fields))
	for _, f := range plan.fields {
		fv := rv.Field(f.index)
		if f.optional {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		} else if fv.IsZero() {
			continue
		}
		val, err := d.convert(f.vt, fv)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %s.%s", plan.name, f.attr)
		}
		values[f.attr] = val
	}
	return types.NewInstance(plan.typ, values), nil
}

// convert reads one field value in canonical form. Named types unwrap to
// their underlying kind, which is why this does not lean on Normalize alone.
func (d *Declarer) convert(vt types.ValueType, fv reflect.Value) (any, error) {
	if vt.Slice {
		if fv.Kind() != reflect.Slice {
			return nil, errors.Wrapf(errors.ErrAttributeType,
				"expected a slice, got %s", fv.Type())
		}
		elems := make([]any, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			ev := fv.Index(i)
			if ev.Kind() == reflect.Ptr {
				if ev.IsNil() {
					return nil, errors.NewConfigurationError("nil element at index %d", i)
				}
				ev = ev.Elem()
			}
			elem, err := d.convertScalar(vt.Elem(), ev)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return types.Normalize(vt, elems)
	}
	return d.convertScalar(vt, fv)
}

func (d *Declarer) convertScalar(vt types.ValueType, fv reflect.Value) (any, error) {
	switch vt.Kind {
	case types.KindString:
		return fv.String(), nil
	case types.KindInt:
		switch fv.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int64(fv.Uint()), nil
		}
		return fv.Int(), nil
	case types.KindFloat:
		return fv.Float(), nil
	case types.KindBool:
		return fv.Bool(), nil
	case types.KindTypeRef:
		return types.TypeRef(fv.String()), nil
	case types.KindTag:
		inst, err := d.wrap(fv.Interface())
		if err != nil {
			return nil, err
		}
		return inst, nil
	}
	return nil, errors.Wrapf(errors.ErrAttributeType, "cannot convert %s", fv.Type())
}

// structValueOf resolves a value to its struct form, unwrapping non-nil
// pointers.
func structValueOf(v any) (reflect.Value, reflect.Type, error) {
	if v == nil {
		return reflect.Value{}, nil, errors.NewConfigurationError("cannot wrap nil")
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, nil, errors.NewConfigurationError("cannot wrap nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, nil, errors.NewConfigurationError(
			"tag structs must be structs, got %T", v)
	}
	return rv, rv.Type(), nil
}
