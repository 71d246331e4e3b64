package typegen

import (
	"bytes"
	"go/format"
	"text/template"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts/types"
)

// accessorTemplate renders the typed adapter structs for one package. Each
// tag struct gets an XxxTag value type plus a LoadXxxTag constructor that
// reads every attribute through the merged view's typed getters.
var accessorTemplate = template.Must(template.New("accessors").Parse(`// Code generated by tagx gen. DO NOT EDIT.

package {{.PkgName}}

import (
	"github.com/teranos/tagx/mts/merged"
{{- if .NeedsTypes}}
	"github.com/teranos/tagx/mts/types"
{{- end}}
)

{{range .Structs}}
// {{.StructName}}Tag is the typed view of a merged {{.TagName}} tag.
type {{.StructName}}Tag struct {
{{- range .Fields}}
	{{.FieldName}} {{.GoType}}
{{- end}}
}

// Load{{.StructName}}Tag reads a merged view into a {{.StructName}}Tag.
func Load{{.StructName}}Tag(t *merged.Tag) ({{.StructName}}Tag, error) {
	var out {{.StructName}}Tag
	var err error
{{- range .Fields}}
	if out.{{.FieldName}}, err = t.{{.Getter}}({{printf "%q" .AttrName}}); err != nil {
		return out, err
	}
{{- end}}
	return out, nil
}
{{end}}`))

type accessorData struct {
	PkgName    string
	NeedsTypes bool
	Structs    []TagStruct
}

func renderAccessors(pkgName string, structs []TagStruct) ([]byte, error) {
	data := accessorData{PkgName: pkgName, Structs: structs}
	for _, s := range structs {
		for _, f := range s.Fields {
			if f.Attr.Type.Kind == types.KindTypeRef {
				data.NeedsTypes = true
			}
		}
	}

	var buf bytes.Buffer
	if err := accessorTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "typegen: accessor template failed")
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "typegen: generated accessors do not format")
	}
	return src, nil
}
