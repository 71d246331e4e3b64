package display

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/tagx/mts/mapping"
	"github.com/teranos/tagx/mts/types"
)

// TreeSummary is the JSON-friendly projection of a mapping tree.
type TreeSummary struct {
	RootType    string           `json:"root_type"`
	Fingerprint string           `json:"fingerprint"`
	Mappings    []MappingSummary `json:"mappings"`
}

// MappingSummary describes one node of a mapping tree.
type MappingSummary struct {
	Type          string             `json:"type"`
	Distance      int                `json:"distance"`
	MetaTypes     []string           `json:"meta_types,omitempty"`
	Synthesizable bool               `json:"synthesizable"`
	Attributes    []AttributeSummary `json:"attributes"`
	MirrorSets    [][]string         `json:"mirror_sets,omitempty"`
}

// AttributeSummary describes how one attribute routes during resolution.
type AttributeSummary struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Default     any    `json:"default,omitempty"`
	AliasTo     string `json:"alias_to,omitempty"`      // Root attribute fed by an explicit alias
	Convention  string `json:"convention_to,omitempty"` // Root attribute fed by name convention
	ValueSource string `json:"value_source,omitempty"`  // Ancestor type.attribute read for the value
}

// Summarize projects a built mapping tree into its displayable form.
func Summarize(t *mapping.Tree) TreeSummary {
	out := TreeSummary{
		RootType:    t.RootType(),
		Fingerprint: mapping.Fingerprint(t),
	}
	for i := 0; i < t.Size(); i++ {
		out.Mappings = append(out.Mappings, summarizeMapping(t.Get(i)))
	}
	return out
}

func summarizeMapping(m *mapping.Mapping) MappingSummary {
	attrs := m.Attributes()
	root := m.Root().Attributes()
	ms := MappingSummary{
		Type:          m.Type().Name(),
		Distance:      m.Distance(),
		MetaTypes:     m.MetaTypes(),
		Synthesizable: m.Synthesizable(),
	}
	for i := 0; i < attrs.Size(); i++ {
		attr := attrs.Get(i)
		as := AttributeSummary{
			Name:    attr.Name,
			Type:    attr.Type.String(),
			Default: attr.Default,
		}
		if j := m.AliasMapping(i); j >= 0 {
			as.AliasTo = root.Get(j).Name
		}
		if j := m.ConventionMapping(i); j >= 0 {
			as.Convention = root.Get(j).Name
		}
		if src := m.ValueSource(i); src != nil {
			as.ValueSource = fmt.Sprintf("%s.%s", src.Type().Name(), src.Attributes().Get(m.ValueMapping(i)).Name)
		}
		ms.Attributes = append(ms.Attributes, as)
	}
	sets := m.MirrorSets()
	for i := 0; i < sets.Size(); i++ {
		set := sets.Get(i)
		names := make([]string, 0, set.Size())
		for _, idx := range set.Members() {
			names = append(names, attrs.Get(idx).Name)
		}
		ms.MirrorSets = append(ms.MirrorSets, names)
	}
	return ms
}

// RenderTree prints a mapping tree for human consumption.
func RenderTree(t *mapping.Tree) {
	summary := Summarize(t)

	pterm.DefaultSection.Printf("%s", summary.RootType)
	pterm.Info.Printf("mappings: %d  fingerprint: %s\n", len(summary.Mappings), summary.Fingerprint)

	for _, m := range summary.Mappings {
		renderMapping(m)
	}
}

func renderMapping(m MappingSummary) {
	header := fmt.Sprintf("[%d] %s", m.Distance, m.Type)
	if m.Synthesizable {
		header += "  (synthesizable)"
	}
	pterm.Println()
	pterm.FgCyan.Println(header)
	if len(m.MetaTypes) > 1 {
		pterm.Printf("    path: %s\n", strings.Join(m.MetaTypes, " -> "))
	}

	rows := pterm.TableData{{"attribute", "type", "default", "routes"}}
	for _, a := range m.Attributes {
		rows = append(rows, []string{a.Name, a.Type, formatDefault(a.Default), routeColumn(a)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	for _, set := range m.MirrorSets {
		pterm.Printf("    mirrors: %s\n", strings.Join(set, " <-> "))
	}
}

func routeColumn(a AttributeSummary) string {
	var parts []string
	if a.AliasTo != "" {
		parts = append(parts, "alias->"+a.AliasTo)
	}
	if a.Convention != "" {
		parts = append(parts, "convention->"+a.Convention)
	}
	if a.ValueSource != "" {
		parts = append(parts, "value<-"+a.ValueSource)
	}
	return strings.Join(parts, "  ")
}

func formatDefault(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return fmt.Sprintf("%q", d)
	case types.TypeRef:
		return string(d)
	default:
		return fmt.Sprintf("%v", d)
	}
}
