// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

package schemasynth

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

const (
	// defaultOutlineTitle is used when caller does not provide custom title.
	defaultOutlineTitle = "schema outline"
	// defaultListMarker is used when caller does not provide list marker style.
	defaultListMarker = "*"
)

var (
	// ErrParseOutlineTemplate is returned when outline template parsing fails.
	ErrParseOutlineTemplate = errors.New("parse outline template")
	// ErrExecuteOutlineTemplate is returned when outline template execution fails.
	ErrExecuteOutlineTemplate = errors.New("execute outline template")
)

// outlineTemplateText is the built-in markdown outline template.
//
//go:embed templates/outline.md.gotmpl
var outlineTemplateText string

// DescribeOptions configures markdown outline rendering.
type DescribeOptions struct {
	// Title is the document heading.
	Title string
	// TemplateText replaces the built-in template when not empty.
	TemplateText string
	// ListMarker is "*" or "-".
	ListMarker string
}

// outlineView is the root view model passed to outline templates.
type outlineView struct {
	Title      string
	ListMarker string
	Fields     []outlineField
	Depth      int
}

// outlineField is one flattened schema property.
type outlineField struct {
	Path  string
	Type  string
	Depth int
}

// OutlineTemplate returns the built-in outline template text.
func OutlineTemplate() string {
	return outlineTemplateText
}

// Describe renders markdown table of every schema field with its dotted path and type.
func Describe(schema *Schema, opt DescribeOptions) (string, error) {
	title := strings.Join(strings.Fields(opt.Title), " ")
	if title == "" {
		title = defaultOutlineTitle
	}

	listMarker := strings.TrimSpace(opt.ListMarker)
	if listMarker != "-" {
		listMarker = defaultListMarker
	}

	view := outlineView{
		Title:      title,
		ListMarker: listMarker,
		Depth:      schema.Depth(),
		Fields:     collectOutlineFields(schema.root.Properties, "", 1, nil),
	}

	templateText := outlineTemplateText
	name := "outline"
	if text := strings.TrimSpace(opt.TemplateText); text != "" {
		templateText = text
		name = "custom"
	}

	parsed, err := template.New(name).Parse(templateText)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrParseOutlineTemplate, name, err)
	}

	var out strings.Builder
	if err := parsed.Execute(&out, view); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecuteOutlineTemplate, err)
	}

	return strings.TrimRight(out.String(), "\n") + "\n", nil
}

// collectOutlineFields flattens properties depth-first in declaration order.
func collectOutlineFields(properties []Property, prefix string, depth int, out []outlineField) []outlineField {
	for _, property := range properties {
		path := appendPath(prefix, property.Name)
		out = append(out, outlineField{
			Path:  escapeTableCode(path),
			Type:  property.Node.Kind.String(),
			Depth: depth,
		})

		if property.Node.Kind == KindObject {
			out = collectOutlineFields(property.Node.Properties, path, depth+1, out)
		}
	}

	return out
}

// escapeTableCode escapes characters that break inline code inside table cells.
func escapeTableCode(value string) string {
	value = strings.ReplaceAll(value, "`", "\\`")
	return strings.ReplaceAll(value, "|", "\\|")
}
