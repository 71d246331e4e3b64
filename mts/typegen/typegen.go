// Package typegen generates tag tooling from Go source: it scans packages
// for structs carrying `tagx` field tags and emits a tag-set definition file
// plus typed accessor adapters over merged views. The accessors are the
// build-time synthesis strategy: instead of a runtime proxy, each tag type
// gets a concrete struct loaded from a resolved view.
//
// Meta-tag declarations cannot be read from source (they are runtime
// attrs.Meta options); declare them in the emitted tag-set file.
package typegen

import (
	"go/ast"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/tools/go/packages"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts/tagset"
	"github.com/teranos/tagx/mts/types"
)

// Options configures a Generate run.
type Options struct {
	// Patterns are go/packages load patterns ("./...", import paths).
	Patterns []string

	// Dir is the working directory for package loading. Empty means cwd.
	Dir string
}

// Result holds everything generated from one run.
type Result struct {
	Packages []PackageResult
}

// PackageResult is the output for one scanned Go package.
type PackageResult struct {
	PkgName string
	PkgPath string
	Structs []TagStruct

	// Accessors is the generated Go source with typed adapters.
	Accessors []byte

	// Tagset is the generated tag-set definition file (TOML).
	Tagset []byte
}

// TagStruct describes one struct declared as a tag type.
type TagStruct struct {
	StructName string
	TagName    string // qualified tag type name, e.g. "web.Route"
	Doc        string
	Fields     []TagField
}

// TagField describes one attribute-bearing struct field.
type TagField struct {
	FieldName string
	AttrName  string
	Attr      types.Attribute
	Getter    string // merged.Tag accessor method name
	GoType    string // Go type of the generated accessor field
}

// Generate scans the configured packages and produces per-package output.
// Packages without tag structs are omitted from the result.
func Generate(opts Options) (*Result, error) {
	if len(opts.Patterns) == 0 {
		return nil, errors.New("typegen: no package patterns given")
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Dir: opts.Dir,
	}
	pkgs, err := packages.Load(cfg, opts.Patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "typegen: failed to load packages")
	}

	result := &Result{}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, errors.Newf("typegen: package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
		structs, err := scanPackage(pkg)
		if err != nil {
			return nil, err
		}
		if len(structs) == 0 {
			continue
		}
		pr := PackageResult{
			PkgName: pkg.Name,
			PkgPath: pkg.PkgPath,
			Structs: structs,
		}
		if pr.Accessors, err = renderAccessors(pkg.Name, structs); err != nil {
			return nil, err
		}
		if pr.Tagset, err = renderTagset(structs); err != nil {
			return nil, err
		}
		result.Packages = append(result.Packages, pr)
	}
	return result, nil
}

// scanPackage collects tag structs from one loaded package, in source order
// by struct name for deterministic output.
func scanPackage(pkg *packages.Package) ([]TagStruct, error) {
	var structs []TagStruct
	var scanErr error
	for _, file := range pkg.Syntax {
		ast.Inspect(file, func(n ast.Node) bool {
			if scanErr != nil {
				return false
			}
			decl, ok := n.(*ast.GenDecl)
			if !ok {
				return true
			}
			for _, spec := range decl.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok || !hasTagxFields(st) {
					continue
				}
				tagStruct, err := buildTagStruct(pkg.Name, ts, st, decl)
				if err != nil {
					scanErr = err
					return false
				}
				structs = append(structs, tagStruct)
			}
			return true
		})
	}
	if scanErr != nil {
		return nil, scanErr
	}
	sort.Slice(structs, func(i, j int) bool {
		return structs[i].StructName < structs[j].StructName
	})
	return structs, nil
}

func hasTagxFields(st *ast.StructType) bool {
	for _, field := range st.Fields.List {
		if field.Tag == nil {
			continue
		}
		if fieldTag(field) != "" {
			return true
		}
	}
	return false
}

func fieldTag(field *ast.Field) string {
	if field.Tag == nil {
		return ""
	}
	raw := strings.Trim(field.Tag.Value, "`")
	return reflect.StructTag(raw).Get("tagx")
}

func buildTagStruct(pkgName string, ts *ast.TypeSpec, st *ast.StructType, decl *ast.GenDecl) (TagStruct, error) {
	out := TagStruct{
		StructName: ts.Name.Name,
		TagName:    pkgName + "." + ts.Name.Name,
	}
	if decl.Doc != nil {
		out.Doc = strings.TrimSpace(decl.Doc.Text())
	}

	for _, field := range st.Fields.List {
		if len(field.Names) == 0 || !field.Names[0].IsExported() {
			continue
		}
		fieldName := field.Names[0].Name
		tag := fieldTag(field)
		if tag == "-" {
			continue
		}

		vt, ok := valueTypeOf(field.Type)
		if !ok {
			// Not a representable attribute type; tagging it is a mistake,
			// untagged it is just skipped like unexported fields.
			if tag != "" {
				return out, errors.NewConfigurationError(
					"typegen: field %s.%s has a tagx tag but an unsupported type", out.StructName, fieldName)
			}
			continue
		}

		tf, err := buildField(out.TagName, fieldName, tag, vt)
		if err != nil {
			return out, err
		}
		out.Fields = append(out.Fields, tf)
	}

	if len(out.Fields) == 0 {
		return out, errors.NewConfigurationError("typegen: struct %s declares no usable attributes", out.StructName)
	}
	return out, nil
}

func buildField(tagName, fieldName, tag string, vt types.ValueType) (TagField, error) {
	tf := TagField{
		FieldName: fieldName,
		AttrName:  lowerName(fieldName),
	}

	var defaultRaw *string
	if tag != "" {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			tf.AttrName = parts[0]
		}
		for _, part := range parts[1:] {
			key, val, found := strings.Cut(part, "=")
			if !found {
				return tf, errors.NewConfigurationError("typegen: malformed tagx option %q on %s.%s", part, tagName, fieldName)
			}
			switch key {
			case "default":
				v := val
				defaultRaw = &v
			case "alias":
				if val == "" {
					return tf, errors.NewConfigurationError("typegen: alias option needs a target on %s.%s", tagName, fieldName)
				}
				tf.Attr.Alias = parseAlias(val)
			case "type":
				if val != "type" || vt != types.StringType {
					return tf, errors.NewConfigurationError("typegen: unsupported type override %q on %s.%s", val, tagName, fieldName)
				}
				vt = types.TypeRefType
			default:
				return tf, errors.NewConfigurationError("typegen: unknown tagx option %q on %s.%s", key, tagName, fieldName)
			}
		}
	}

	tf.Attr.Name = tf.AttrName
	tf.Attr.Type = vt
	if defaultRaw != nil {
		def, err := parseDefault(vt, *defaultRaw)
		if err != nil {
			return tf, errors.Wrapf(err, "typegen: default for %s.%s", tagName, fieldName)
		}
		tf.Attr.Default = def
	}

	tf.Getter, tf.GoType = accessorFor(vt)
	if tf.Getter == "" {
		return tf, errors.NewConfigurationError("typegen: no typed accessor for %s on %s.%s", vt, tagName, fieldName)
	}
	return tf, nil
}

// parseAlias reads an alias target the same way the attrs bridge does:
// a qualified "type.attribute" splits on the last dot, a bare name targets
// the declaring type.
func parseAlias(target string) *types.AliasSpec {
	if i := strings.LastIndex(target, "."); i >= 0 {
		return &types.AliasSpec{Type: target[:i], Attribute: target[i+1:]}
	}
	return &types.AliasSpec{Attribute: target}
}

// valueTypeOf maps an AST field type to a declared value type. Pointer
// fields are optional attributes wrapping the element type.
func valueTypeOf(expr ast.Expr) (types.ValueType, bool) {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return valueTypeOf(t.X)
	case *ast.ArrayType:
		if t.Len != nil {
			return types.ValueType{}, false
		}
		elem, ok := scalarTypeOf(t.Elt)
		if !ok {
			return types.ValueType{}, false
		}
		return types.SliceOf(elem), true
	default:
		return scalarTypeOf(expr)
	}
}

func scalarTypeOf(expr ast.Expr) (types.ValueType, bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		switch t.Name {
		case "string":
			return types.StringType, true
		case "int", "int64":
			return types.IntType, true
		case "float64":
			return types.FloatType, true
		case "bool":
			return types.BoolType, true
		}
	case *ast.SelectorExpr:
		if pkg, ok := t.X.(*ast.Ident); ok && pkg.Name == "types" && t.Sel.Name == "TypeRef" {
			return types.TypeRefType, true
		}
	}
	return types.ValueType{}, false
}

func parseDefault(vt types.ValueType, raw string) (any, error) {
	if vt.Slice {
		if raw == "" {
			return types.Normalize(vt, []any{})
		}
		parts := strings.Split(raw, "|")
		elems := make([]any, 0, len(parts))
		for _, part := range parts {
			v, err := parseScalar(vt.Elem(), part)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
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
		return strconv.ParseInt(raw, 10, 64)
	case types.KindFloat:
		return strconv.ParseFloat(raw, 64)
	case types.KindBool:
		return strconv.ParseBool(raw)
	case types.KindTypeRef:
		return types.TypeRef(raw), nil
	}
	return nil, errors.NewConfigurationError("no default syntax for %s", vt)
}

func accessorFor(vt types.ValueType) (getter, goType string) {
	if vt.Slice {
		switch vt.Kind {
		case types.KindString:
			return "GetStringSlice", "[]string"
		case types.KindInt:
			return "GetIntSlice", "[]int64"
		case types.KindTypeRef:
			return "GetTypeRefSlice", "[]types.TypeRef"
		}
		return "", ""
	}
	switch vt.Kind {
	case types.KindString:
		return "GetString", "string"
	case types.KindInt:
		return "GetInt", "int64"
	case types.KindFloat:
		return "GetFloat", "float64"
	case types.KindBool:
		return "GetBool", "bool"
	case types.KindTypeRef:
		return "GetTypeRef", "types.TypeRef"
	}
	return "", ""
}

// renderTagset registers the scanned structs in a fresh index and encodes it
// as a tag-set definition file.
func renderTagset(structs []TagStruct) ([]byte, error) {
	index := tagset.NewIndex()
	for _, s := range structs {
		attrs := make([]types.Attribute, 0, len(s.Fields))
		for _, f := range s.Fields {
			attrs = append(attrs, f.Attr)
		}
		var opts []types.TagTypeOption
		if s.Doc != "" {
			opts = append(opts, types.WithDoc(s.Doc))
		}
		if err := index.Register(types.NewTagType(s.TagName, attrs, opts...)); err != nil {
			return nil, err
		}
	}
	return tagset.Encode(index)
}

// lowerName lowers a field name's leading initialism: Path -> path,
// TTL -> ttl, HTTPTimeout -> httpTimeout.
func lowerName(name string) string {
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
