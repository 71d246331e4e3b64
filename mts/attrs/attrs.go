// Package attrs bridges Go structs into the tag data model. A struct becomes
// a tag type: its exported fields declare attributes through `tagx` field
// tags, and values of the struct wrap as tag instances. It is the in-code
// counterpart of the tagset file format, for programs that define their tags
// as Go types rather than definition files.
//
// Field tag syntax:
//
//	type Route struct {
//		Path    string   `tagx:"path,default=/"`
//		Name    string   `tagx:"value,alias=path"`
//		Methods []string `tagx:"methods,default=GET|POST"`
//		Handler string   `tagx:"handler,type=type"`
//		scratch int      // unexported fields are ignored
//	}
//
// The first element names the attribute; when empty, or when the field
// carries no tag at all, the field name with its leading initialism lowered
// is used ("Path" becomes "path", "TTL" becomes "ttl"). A tag of "-" skips
// the field. default= parses against the field's type, slice elements
// separated by |. alias= declares a mirror partner (bare attribute name) or
// a meta-tag alias (qualified target, "cache.Cacheable.ttl"). type=
// reinterprets a string field, currently as a type reference.
//
// Struct fields of a previously declared tag struct become nested tag
// attributes; declare inner types first. Pointer fields mark optional
// attributes whose nil means "left to default", which is how an explicit
// zero is told apart from an unset one.
package attrs

import (
	"path"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/logger"
	"github.com/teranos/tagx/mts/tagset"
	"github.com/teranos/tagx/mts/types"
)

// Declarer turns Go structs into registered tag types and struct values into
// tag instances. Declared types land in the backing tagset.Index, so a single
// index may mix file-loaded and code-declared types. Safe for concurrent use.
type Declarer struct {
	mu    sync.RWMutex
	index *tagset.Index
	plans map[reflect.Type]*structPlan
}

// structPlan is the compiled bridge for one declared struct type.
type structPlan struct {
	name   string
	typ    *types.TagType
	fields []fieldPlan
}

type fieldPlan struct {
	index    int // struct field index
	attr     string
	vt       types.ValueType
	optional bool // pointer field; nil reads as unset
}

// NewDeclarer returns a declarer registering into the given index. A nil
// index gets a fresh one.
func NewDeclarer(index *tagset.Index) *Declarer {
	if index == nil {
		index = tagset.NewIndex()
	}
	return &Declarer{
		index: index,
		plans: make(map[reflect.Type]*structPlan),
	}
}

// Index returns the backing index, which implements the mapping contract.
func (d *Declarer) Index() *tagset.Index {
	return d.index
}

// declaration collects the per-Declare options.
type declaration struct {
	name string
	doc  string
	meta []any
}

// DeclareOption customizes one Declare call.
type DeclareOption func(*declaration)

// Named overrides the conventional qualified name, which is the struct's
// package base name joined to the struct name ("web.Route" for web.Route).
func Named(qualified string) DeclareOption {
	return func(decl *declaration) {
		decl.name = qualified
	}
}

// Doc attaches documentation text to the declared type.
func Doc(text string) DeclareOption {
	return func(decl *declaration) {
		decl.doc = text
	}
}

// Meta declares a meta-tag on the type being declared. The prototype must be
// a value of an already declared tag struct; its set fields become the
// declared attribute values.
func Meta(prototype any) DeclareOption {
	return func(decl *declaration) {
		decl.meta = append(decl.meta, prototype)
	}
}

// Declare registers the struct type of prototype as a tag type. The
// prototype's value is ignored; a nil pointer works. Declaring the same
// struct or the same qualified name twice is an error.
func (d *Declarer) Declare(prototype any, opts ...DeclareOption) (*types.TagType, error) {
	typ, err := structTypeOf(prototype)
	if err != nil {
		return nil, err
	}
	var decl declaration
	for _, opt := range opts {
		opt(&decl)
	}
	if decl.name == "" {
		decl.name = conventionalName(typ)
	}
	if decl.name == "" {
		return nil, errors.NewConfigurationError(
			"cannot derive a tag name for %s, use attrs.Named", typ)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.plans[typ]; ok {
		return nil, errors.Wrapf(errors.ErrAlreadyExists,
			"struct %s is declared as %s", typ, existing.name)
	}
	plan, attributes, err := d.compile(decl.name, typ)
	if err != nil {
		return nil, err
	}
	var topts []types.TagTypeOption
	if decl.doc != "" {
		topts = append(topts, types.WithDoc(decl.doc))
	}
	t := types.NewTagType(decl.name, attributes, topts...)
	if err := d.index.Register(t); err != nil {
		return nil, err
	}
	plan.typ = t
	d.plans[typ] = plan

	for _, proto := range decl.meta {
		inst, err := d.wrap(proto)
		if err != nil {
			return nil, errors.Wrapf(err, "meta-tag on %s", decl.name)
		}
		if err := d.index.AddMeta(decl.name, inst.WithSource(decl.name)); err != nil {
			return nil, err
		}
	}

	logger.Debugw("Tag type declared from struct",
		logger.FieldTagType, decl.name,
		"struct", typ.String(),
		logger.FieldCount, len(plan.fields))
	return t, nil
}

// MustDeclare is Declare panicking on error. Intended for package-level
// registration blocks, where a bad declaration is a programming error.
func (d *Declarer) MustDeclare(prototype any, opts ...DeclareOption) *types.TagType {
	t, err := d.Declare(prototype, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// TypeOf returns the declared tag type for a struct value or pointer.
func (d *Declarer) TypeOf(v any) (*types.TagType, error) {
	typ, err := structTypeOf(v)
	if err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	plan, ok := d.plans[typ]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "tag struct %s is not declared", typ)
	}
	return plan.typ, nil
}

// compile builds the field plan and attribute list for one struct type.
// Caller holds the write lock; nested tag fields resolve against the plans
// declared so far.
func (d *Declarer) compile(name string, typ reflect.Type) (*structPlan, []types.Attribute, error) {
	plan := &structPlan{name: name}
	attributes := make([]types.Attribute, 0, typ.NumField())
	seen := make(map[string]bool, typ.NumField())

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" || field.Anonymous {
			continue
		}
		spec, err := parseFieldTag(field)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "field %s.%s", typ, field.Name)
		}
		if spec.skip {
			continue
		}
		if spec.name == "" {
			spec.name = attrName(field.Name)
		}
		if seen[spec.name] {
			return nil, nil, errors.NewConfigurationError(
				"attribute %s.%s is declared twice", name, spec.name)
		}
		seen[spec.name] = true

		vt, optional, err := d.valueTypeOf(field.Type)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "field %s.%s", typ, field.Name)
		}
		if spec.typeOverride != "" {
			vt, err = overrideValueType(vt, spec.typeOverride)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "field %s.%s", typ, field.Name)
			}
		}

		attr := types.Attribute{Name: spec.name, Type: vt, Alias: spec.alias}
		if spec.defaultRaw != nil {
			attr.Default, err = parseDefault(vt, *spec.defaultRaw)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "default of %s.%s", name, spec.name)
			}
		}
		attributes = append(attributes, attr)
		plan.fields = append(plan.fields, fieldPlan{
			index:    i,
			attr:     spec.name,
			vt:       vt,
			optional: optional,
		})
	}
	return plan, attributes, nil
}

// fieldSpec is one parsed `tagx` field tag.
type fieldSpec struct {
	name         string
	defaultRaw   *string
	alias        *types.AliasSpec
	typeOverride string
	skip         bool
}

func parseFieldTag(field reflect.StructField) (fieldSpec, error) {
	var spec fieldSpec
	tag := field.Tag.Get("tagx")
	if tag == "-" {
		spec.skip = true
		return spec, nil
	}
	if tag == "" {
		return spec, nil
	}
	parts := strings.Split(tag, ",")
	spec.name = parts[0]
	for _, part := range parts[1:] {
		key, val, found := strings.Cut(part, "=")
		if !found {
			return spec, errors.NewConfigurationError("malformed tagx option %q", part)
		}
		switch key {
		case "default":
			v := val
			spec.defaultRaw = &v
		case "alias":
			if val == "" {
				return spec, errors.NewConfigurationError("alias option needs a target")
			}
			spec.alias = parseAlias(val)
		case "type":
			spec.typeOverride = val
		default:
			return spec, errors.NewConfigurationError("unknown tagx option %q", key)
		}
	}
	return spec, nil
}

// parseAlias reads an alias target: a qualified "type.attribute" splits on
// the last dot, a bare name targets the declaring type.
func parseAlias(target string) *types.AliasSpec {
	if i := strings.LastIndex(target, "."); i >= 0 {
		return &types.AliasSpec{Type: target[:i], Attribute: target[i+1:]}
	}
	return &types.AliasSpec{Attribute: target}
}

var typeRefType = reflect.TypeOf(types.TypeRef(""))

// valueTypeOf maps a Go field type to the declared value type. A pointer
// marks the attribute optional.
func (d *Declarer) valueTypeOf(t reflect.Type) (types.ValueType, bool, error) {
	optional := false
	if t.Kind() == reflect.Ptr {
		optional = true
		t = t.Elem()
	}
	vt, err := d.elemValueType(t, true)
	return vt, optional, err
}

func (d *Declarer) elemValueType(t reflect.Type, allowSlice bool) (types.ValueType, error) {
	if t == typeRefType {
		return types.TypeRefType, nil
	}
	switch t.Kind() {
	case reflect.String:
		return types.StringType, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return types.IntType, nil
	case reflect.Float32, reflect.Float64:
		return types.FloatType, nil
	case reflect.Bool:
		return types.BoolType, nil
	case reflect.Slice:
		if !allowSlice {
			return types.ValueType{}, errors.Wrapf(errors.ErrAttributeType,
				"nested slices are not supported")
		}
		elem := t.Elem()
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		evt, err := d.elemValueType(elem, false)
		if err != nil {
			return types.ValueType{}, err
		}
		return types.SliceOf(evt), nil
	case reflect.Struct:
		if plan, ok := d.plans[t]; ok {
			return types.TagValueType(plan.name), nil
		}
		return types.ValueType{}, errors.Wrapf(errors.ErrAttributeType,
			"struct %s is not a declared tag type", t)
	}
	return types.ValueType{}, errors.Wrapf(errors.ErrAttributeType,
		"unsupported field type %s", t)
}

// overrideValueType applies a type= option. Only reinterpretations the wrap
// path can honor are allowed, currently string fields as type references.
func overrideValueType(inferred types.ValueType, override string) (types.ValueType, error) {
	ovt, err := types.ParseValueType(override)
	if err != nil {
		return types.ValueType{}, err
	}
	if ovt == inferred {
		return ovt, nil
	}
	if inferred.Kind == types.KindString && ovt.Kind == types.KindTypeRef &&
		inferred.Slice == ovt.Slice {
		return ovt, nil
	}
	return types.ValueType{}, errors.Wrapf(errors.ErrAttributeType,
		"cannot reinterpret %s as %s", inferred, ovt)
}

// parseDefault parses a default= option against the declared type and
// returns the canonical value.
func parseDefault(vt types.ValueType, raw string) (any, error) {
	if vt.Slice {
		if raw == "" {
			return types.Normalize(vt, []any{})
		}
		parts := strings.Split(raw, "|")
		elems := make([]any, len(parts))
		for i, part := range parts {
			v, err := parseScalar(vt.Elem(), part)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return types.Normalize(vt, elems)
	}
	return parseScalar(vt, raw)
}

func parseScalar(vt types.ValueType, raw string) (any, error) {
	switch vt.Kind {
	case types.KindString:
		return raw, nil
	case types.KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrAttributeType, "invalid int default %q", raw)
		}
		return n, nil
	case types.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrAttributeType, "invalid float default %q", raw)
		}
		return f, nil
	case types.KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrAttributeType, "invalid bool default %q", raw)
		}
		return b, nil
	case types.KindTypeRef:
		return types.TypeRef(raw), nil
	}
	return nil, errors.Wrapf(errors.ErrAttributeType, "no textual default for %s", vt)
}

// structTypeOf resolves a prototype to its struct type, unwrapping pointers.
// Nil pointers are fine here, only the type matters.
func structTypeOf(v any) (reflect.Type, error) {
	if v == nil {
		return nil, errors.NewConfigurationError("cannot use nil as a tag struct")
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.NewConfigurationError("tag structs must be structs, got %T", v)
	}
	return t, nil
}

// conventionalName derives "web.Route" from a struct Route in a package
// whose import path ends in web. Unnamed or main-less types yield "".
func conventionalName(t reflect.Type) string {
	if t.Name() == "" || t.PkgPath() == "" {
		return ""
	}
	return path.Base(t.PkgPath()) + "." + t.Name()
}

// attrName lowers a field name's leading initialism: Path -> path,
// TTL -> ttl, HTTPTimeout -> httpTimeout.
func attrName(name string) string {
	runes := []rune(name)
	i := 0
	for i < len(runes) && unicode.IsUpper(runes[i]) {
		i++
	}
	if i > 1 && i < len(runes) {
		i--
	}
	for j := 0; j < i; j++ {
		runes[j] = unicode.ToLower(runes[j])
	}
	return string(runes)
}
