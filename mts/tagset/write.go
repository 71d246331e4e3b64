package tagset

import (
	"io"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts/types"
)

// Emission uses its own document shape: defaults must survive as explicit
// zero values ("" and 0 are real defaults), so presence rides on a pointer
// rather than omitempty.
type docOut struct {
	Format string             `toml:"format"`
	Types  map[string]typeOut `toml:"types"`
}

type typeOut struct {
	Doc   string    `toml:"doc,omitempty"`
	Attrs []attrOut `toml:"attrs,omitempty"`
	Meta  []metaOut `toml:"meta,omitempty"`
}

type attrOut struct {
	Name    string    `toml:"name"`
	Type    string    `toml:"type"`
	Default *any      `toml:"default,omitempty"`
	Alias   *aliasOut `toml:"alias,omitempty"`
	Doc     string    `toml:"doc,omitempty"`
}

type aliasOut struct {
	Type      string `toml:"type,omitempty"`
	Attribute string `toml:"attribute,omitempty"`
	Value     string `toml:"value,omitempty"`
}

type metaOut struct {
	Type   string         `toml:"type"`
	Values map[string]any `toml:"values,omitempty"`
}

// Write emits the index as a TOML tag-set document.
func Write(w io.Writer, x *Index) error {
	data, err := Encode(x)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "cannot write tag set")
	}
	return nil
}

// WriteFile emits the index to path, creating or truncating the file.
func WriteFile(path string, x *Index) error {
	data, err := Encode(x)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "cannot write tag set %s", path)
	}
	return nil
}

// Encode renders the index as a TOML document that Load accepts back.
func Encode(x *Index) ([]byte, error) {
	doc := docOut{
		Format: CurrentFormat,
		Types:  make(map[string]typeOut, x.Size()),
	}
	for _, name := range x.TypeNames() {
		t, err := x.ResolveType(name)
		if err != nil {
			return nil, err
		}
		decl := typeOut{Doc: t.Doc()}
		attrs := t.Attributes()
		for i := 0; i < attrs.Size(); i++ {
			a := attrs.Get(i)
			out := attrOut{Name: a.Name, Type: a.Type.String(), Doc: a.Doc}
			if a.HasDefault() {
				v := fileValue(a.Default)
				out.Default = &v
			}
			if a.Alias != nil {
				out.Alias = &aliasOut{
					Type:      a.Alias.Type,
					Attribute: a.Alias.Attribute,
					Value:     a.Alias.Value,
				}
			}
			decl.Attrs = append(decl.Attrs, out)
		}
		declared, err := x.DeclaredTags(t)
		if err != nil {
			return nil, err
		}
		for _, inst := range declared {
			decl.Meta = append(decl.Meta, metaOut{
				Type:   inst.Type().Name(),
				Values: explicitValues(inst),
			})
		}
		doc.Types[name] = decl
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode tag set")
	}
	return data, nil
}

// fileValue converts a canonical attribute value to its file representation.
// Instances become tables of their explicitly set values; the attribute's
// declared type names the tag type, so nothing is lost.
func fileValue(v any) any {
	switch t := v.(type) {
	case types.Instance:
		return explicitValues(t)
	case []types.Instance:
		out := make([]any, len(t))
		for i, inst := range t {
			out[i] = explicitValues(inst)
		}
		return out
	default:
		return v
	}
}

// explicitValues probes every declared attribute so any Instance
// implementation can be written, not only the map-backed one.
func explicitValues(inst types.Instance) map[string]any {
	attrs := inst.Type().Attributes()
	out := make(map[string]any, attrs.Size())
	for i := 0; i < attrs.Size(); i++ {
		name := attrs.Get(i).Name
		if v, ok := inst.Value(name); ok {
			out[name] = fileValue(v)
		}
	}
	return out
}
