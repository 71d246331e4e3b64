package tagset

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/logger"
	"github.com/teranos/tagx/mts/types"
)

// CurrentFormat is the document format version written by this release.
const CurrentFormat = "1.0.0"

// formatRange accepts any 1.x document.
var formatRange = mustConstraint("^1")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// document is the on-disk shape of a tag-set file, shared by the TOML and
// YAML readers.
type document struct {
	Format string              `toml:"format" yaml:"format"`
	Types  map[string]typeDecl `toml:"types" yaml:"types"`
}

type typeDecl struct {
	Doc   string     `toml:"doc" yaml:"doc"`
	Attrs []attrDecl `toml:"attrs" yaml:"attrs"`
	Meta  []metaDecl `toml:"meta" yaml:"meta"`
}

type attrDecl struct {
	Name    string     `toml:"name" yaml:"name"`
	Type    string     `toml:"type" yaml:"type"`
	Default any        `toml:"default" yaml:"default"`
	Alias   *aliasDecl `toml:"alias" yaml:"alias"`
	Doc     string     `toml:"doc" yaml:"doc"`
}

type aliasDecl struct {
	Type      string `toml:"type" yaml:"type"`
	Attribute string `toml:"attribute" yaml:"attribute"`
	Value     string `toml:"value" yaml:"value"`
}

type metaDecl struct {
	Type   string         `toml:"type" yaml:"type"`
	Values map[string]any `toml:"values" yaml:"values"`
}

// Load reads tag-set files into a fresh index. Every type from every file is
// registered before any meta-tag declaration is resolved, so files may
// reference each other's types regardless of load order.
func Load(paths ...string) (*Index, error) {
	x := NewIndex()
	if err := x.LoadFiles(paths...); err != nil {
		return nil, err
	}
	return x, nil
}

// LoadFiles reads tag-set files into the index. The file extension selects
// the reader: .toml, or .yaml/.yml.
func (x *Index) LoadFiles(paths ...string) error {
	docs := make([]*document, 0, len(paths))
	for _, path := range paths {
		doc, err := readFile(path)
		if err != nil {
			return errors.Wrapf(err, "cannot load tag set %s", path)
		}
		docs = append(docs, doc)
	}
	if err := x.apply(docs); err != nil {
		return err
	}
	logger.Debugw("Tag-set files loaded",
		logger.FieldCount, x.Size(),
		"files", len(paths))
	return nil
}

// LoadTOML reads one TOML document into the index.
func (x *Index) LoadTOML(data []byte) error {
	doc, err := decodeTOML(data)
	if err != nil {
		return err
	}
	return x.apply([]*document{doc})
}

// LoadYAML reads one YAML document into the index.
func (x *Index) LoadYAML(data []byte) error {
	doc, err := decodeYAML(data)
	if err != nil {
		return err
	}
	return x.apply([]*document{doc})
}

func readFile(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		return decodeTOML(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return nil, errors.NewConfigurationError("unsupported tag-set extension %q", ext)
	}
}

func decodeTOML(data []byte) (*document, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "malformed TOML")
	}
	if err := checkFormat(doc.Format); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeYAML(data []byte) (*document, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "malformed YAML")
	}
	if err := checkFormat(doc.Format); err != nil {
		return nil, err
	}
	return &doc, nil
}

func checkFormat(format string) error {
	if format == "" {
		return errors.NewConfigurationError(
			"tag-set file declares no format (current is %s)", CurrentFormat)
	}
	v, err := semver.NewVersion(format)
	if err != nil {
		return errors.Wrapf(errors.ErrConfiguration, "invalid tag-set format %q", format)
	}
	if !formatRange.Check(v) {
		return errors.Wrapf(errors.ErrConfiguration,
			"unsupported tag-set format %s, supported range is %s", format, formatRange)
	}
	return nil
}

// apply registers every type from every document, then resolves meta-tag
// declarations against the fully populated index. Type names are processed
// in sorted order so duplicate registrations fail deterministically.
func (x *Index) apply(docs []*document) error {
	for _, doc := range docs {
		for _, name := range sortedTypeNames(doc) {
			t, err := buildType(name, doc.Types[name])
			if err != nil {
				return err
			}
			if err := x.Register(t); err != nil {
				return err
			}
		}
	}
	for _, doc := range docs {
		for _, name := range sortedTypeNames(doc) {
			for i, m := range doc.Types[name].Meta {
				inst, err := x.buildMeta(name, i, m)
				if err != nil {
					return err
				}
				if err := x.AddMeta(name, inst); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func buildType(name string, decl typeDecl) (*types.TagType, error) {
	if name == "" {
		return nil, errors.NewConfigurationError("tag type with empty name")
	}
	attrs := make([]types.Attribute, 0, len(decl.Attrs))
	seen := make(map[string]bool, len(decl.Attrs))
	for _, a := range decl.Attrs {
		if a.Name == "" {
			return nil, errors.NewConfigurationError("attribute of %s has no name", name)
		}
		if seen[a.Name] {
			return nil, errors.NewConfigurationError("attribute %s.%s is declared twice", name, a.Name)
		}
		seen[a.Name] = true
		vt, err := types.ParseValueType(a.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %s.%s", name, a.Name)
		}
		attr := types.Attribute{Name: a.Name, Type: vt, Doc: a.Doc}
		if a.Default != nil {
			attr.Default, err = types.Normalize(vt, a.Default)
			if err != nil {
				return nil, errors.Wrapf(err, "default of %s.%s", name, a.Name)
			}
		}
		if a.Alias != nil {
			attr.Alias = &types.AliasSpec{
				Type:      a.Alias.Type,
				Attribute: a.Alias.Attribute,
				Value:     a.Alias.Value,
			}
		}
		attrs = append(attrs, attr)
	}
	var opts []types.TagTypeOption
	if decl.Doc != "" {
		opts = append(opts, types.WithDoc(decl.Doc))
	}
	return types.NewTagType(name, attrs, opts...), nil
}

// buildMeta resolves one meta-tag declaration. Values are checked strictly:
// unknown attributes and values that do not normalize to the declared
// attribute type fail the load rather than surfacing later as mapping
// surprises.
func (x *Index) buildMeta(on string, ord int, decl metaDecl) (types.Instance, error) {
	if decl.Type == "" {
		return nil, errors.NewConfigurationError("meta-tag %d on %s declares no type", ord, on)
	}
	target, err := x.ResolveType(decl.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "meta-tag @%s on %s", decl.Type, on)
	}
	values, err := x.resolveValues(on, decl, target)
	if err != nil {
		return nil, err
	}
	return types.NewInstance(target, values).WithSource(on), nil
}

// resolveValues validates declared values against the target type and
// materializes nested tag-typed values. A nested instance is expressed in
// the file as an inline table of attribute values.
func (x *Index) resolveValues(on string, decl metaDecl, target *types.TagType) (map[string]any, error) {
	if len(decl.Values) == 0 {
		return nil, nil
	}
	attrs := target.Attributes()
	out := make(map[string]any, len(decl.Values))
	for _, vname := range sortedValueNames(decl.Values) {
		i := attrs.IndexOf(vname)
		if i < 0 {
			return nil, errors.NewConfigurationError(
				"meta-tag @%s on %s sets unknown attribute %q", decl.Type, on, vname)
		}
		attr := attrs.Get(i)
		raw := decl.Values[vname]
		if attr.Type.Kind == types.KindTag {
			nested, err := x.materializeNested(on, attr, raw)
			if err != nil {
				return nil, err
			}
			raw = nested
		}
		if _, err := types.Normalize(attr.Type, raw); err != nil {
			return nil, errors.Wrapf(err, "meta-tag @%s on %s, attribute %q", decl.Type, on, vname)
		}
		out[vname] = raw
	}
	return out, nil
}

// materializeNested converts inline tables supplied for tag-typed attributes
// into instances of the attribute's declared tag type. Values of any other
// shape pass through and fail normalization with a precise message.
func (x *Index) materializeNested(on string, attr types.Attribute, raw any) (any, error) {
	build := func(v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		return x.buildMeta(on, -1, metaDecl{Type: attr.Type.TagName, Values: m})
	}
	if attr.Type.Slice {
		var elems []any
		switch s := raw.(type) {
		case []any:
			elems = s
		case []map[string]any:
			// The TOML reader yields this shape for arrays of tables.
			elems = make([]any, len(s))
			for i, m := range s {
				elems[i] = m
			}
		default:
			return build(raw)
		}
		out := make([]any, len(elems))
		for i, e := range elems {
			v, err := build(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return build(raw)
}

func sortedTypeNames(doc *document) []string {
	names := make([]string, 0, len(doc.Types))
	for name := range doc.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedValueNames(values map[string]any) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
