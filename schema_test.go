// SPDX-License-Identifier: AGPL-3.0-only
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

package schemasynth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const nestedSchemaJSON = `{
  "properties": {
    "name": { "type": "string" },
    "age": { "type": "integer" },
    "score": { "type": "number" },
    "active": { "type": "boolean" },
    "address": {
      "type": "object",
      "properties": {
        "city": { "type": "string" },
        "zip": { "type": "integer" }
      }
    }
  }
}`

func TestParseSchemaKeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	schema := mustParseSchema(t, nestedSchemaJSON)
	got := propertyNames(schema.Properties())
	want := "name,age,score,active,address"
	if got != want {
		t.Fatalf("property order = %s, want %s", got, want)
	}

	address := schema.Properties()[4].Node
	if address.Kind != KindObject {
		t.Fatalf("address kind = %s", address.Kind)
	}

	if got := propertyNames(address.Properties); got != "city,zip" {
		t.Fatalf("nested property order = %s", got)
	}

	if schema.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", schema.Depth())
	}
}

func TestParseSchemaKinds(t *testing.T) {
	t.Parallel()

	schema := mustParseSchema(t, nestedSchemaJSON)
	want := []Kind{KindString, KindInteger, KindNumber, KindBoolean, KindObject}
	for index, property := range schema.Properties() {
		if property.Node.Kind != want[index] {
			t.Fatalf("%s kind = %s, want %s", property.Name, property.Node.Kind, want[index])
		}
	}
}

func TestParseSchemaIgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	schema := mustParseSchema(t, `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "title": "ignored",
  "properties": {
    "id": { "type": "integer", "minimum": 10, "description": "ignored" }
  }
}`)

	if got := propertyNames(schema.Properties()); got != "id" {
		t.Fatalf("properties = %s", got)
	}
}

func TestParseSchemaEmptyProperties(t *testing.T) {
	t.Parallel()

	schema := mustParseSchema(t, `{"properties": {}}`)
	if len(schema.Properties()) != 0 {
		t.Fatalf("expected no properties, got %d", len(schema.Properties()))
	}

	if schema.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", schema.Depth())
	}
}

func TestParseSchemaDuplicateNameLastWins(t *testing.T) {
	t.Parallel()

	schema := mustParseSchema(t, `{
  "properties": {
    "a": { "type": "string" },
    "b": { "type": "boolean" },
    "a": { "type": "integer" }
  }
}`)

	properties := schema.Properties()
	if got := propertyNames(properties); got != "a,b" {
		t.Fatalf("properties = %s, want a,b", got)
	}

	if properties[0].Node.Kind != KindInteger {
		t.Fatalf("duplicate property kind = %s, want integer", properties[0].Node.Kind)
	}
}

func TestParseSchemaShapeErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		schema string
		path   string
		reason string
	}{
		"root without properties": {
			schema: `{"name": "value"}`,
			reason: "properties is missing",
		},
		"properties is array": {
			schema: `{"properties": []}`,
			reason: "properties is not an object",
		},
		"root is array": {
			schema: `[1, 2]`,
			reason: "schema node is not an object",
		},
		"nested object without properties": {
			schema: `{"properties": {"address": {"type": "object"}}}`,
			path:   "address",
			reason: "properties is missing",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseSchema([]byte(tc.schema), ParseOptions{Format: SchemaFormatJSON})
			if !errors.Is(err, ErrSchemaShape) {
				t.Fatalf("expected ErrSchemaShape, got %v", err)
			}

			var shapeErr *SchemaShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("expected *SchemaShapeError, got %T", err)
			}

			if shapeErr.Path != tc.path || shapeErr.Reason != tc.reason {
				t.Fatalf("shape error = %+v, want path %q reason %q", shapeErr, tc.path, tc.reason)
			}
		})
	}
}

func TestParseSchemaMissingType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"absent":     `{"properties": {"outer": {"type": "object", "properties": {"count": {"required": true}}}}}`,
		"not string": `{"properties": {"outer": {"type": "object", "properties": {"count": {"type": 7}}}}}`,
		"not object": `{"properties": {"outer": {"type": "object", "properties": {"count": "integer"}}}}`,
	}

	for name, schema := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseSchema([]byte(schema), ParseOptions{})
			var missing *MissingTypeError
			if !errors.As(err, &missing) {
				t.Fatalf("expected *MissingTypeError, got %v", err)
			}

			if missing.Field != "count" || missing.Path != "outer.count" {
				t.Fatalf("missing type error = %+v", missing)
			}

			if !errors.Is(err, ErrMissingType) {
				t.Fatalf("error should match ErrMissingType: %v", err)
			}
		})
	}
}

func TestParseSchemaUnsupportedType(t *testing.T) {
	t.Parallel()

	_, err := ParseSchema([]byte(`{"properties": {"id": {"type": "integer"}, "items": {"type": "array"}}}`), ParseOptions{})
	var unsupported *UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedTypeError, got %v", err)
	}

	if unsupported.Tag != "array" || unsupported.Field != "items" {
		t.Fatalf("unsupported type error = %+v", unsupported)
	}

	want := `unsupported type "array" for field "items" at items`
	if err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestParseSchemaDepthCeiling(t *testing.T) {
	t.Parallel()

	schema := deepSchema(5)
	if _, err := ParseSchema([]byte(schema), ParseOptions{MaxDepth: 6}); err != nil {
		t.Fatalf("schema within limit: %v", err)
	}

	_, err := ParseSchema([]byte(schema), ParseOptions{MaxDepth: 5})
	var tooDeep *SchemaTooDeepError
	if !errors.As(err, &tooDeep) {
		t.Fatalf("expected *SchemaTooDeepError, got %v", err)
	}

	if tooDeep.Limit != 5 || tooDeep.Path != "n.n.n.n.n" {
		t.Fatalf("too deep error = %+v", tooDeep)
	}
}

func TestParseSchemaDefaultDepthCeiling(t *testing.T) {
	t.Parallel()

	if _, err := ParseSchema([]byte(deepSchema(DefaultMaxDepth-1)), ParseOptions{}); err != nil {
		t.Fatalf("schema at default limit: %v", err)
	}

	_, err := ParseSchema([]byte(deepSchema(DefaultMaxDepth)), ParseOptions{})
	if !errors.Is(err, ErrSchemaTooDeep) {
		t.Fatalf("expected ErrSchemaTooDeep, got %v", err)
	}
}

func TestParseSchemaYAMLKeepsOrder(t *testing.T) {
	t.Parallel()

	schema, err := ParseSchema([]byte(`
properties:
  zeta:
    type: string
  alpha:
    type: object
    properties:
      second: {type: boolean}
      first: {type: number}
`), ParseOptions{})
	if err != nil {
		t.Fatalf("parse yaml schema: %v", err)
	}

	if got := propertyNames(schema.Properties()); got != "zeta,alpha" {
		t.Fatalf("property order = %s", got)
	}

	if got := propertyNames(schema.Properties()[1].Node.Properties); got != "second,first" {
		t.Fatalf("nested property order = %s", got)
	}
}

func TestParseSchemaYAMLAnchors(t *testing.T) {
	t.Parallel()

	schema, err := ParseSchema([]byte(`
properties:
  home: &address
    type: object
    properties:
      city: {type: string}
  work: *address
`), ParseOptions{Format: SchemaFormatYAML})
	if err != nil {
		t.Fatalf("parse yaml schema: %v", err)
	}

	work := schema.Properties()[1].Node
	if work.Kind != KindObject || propertyNames(work.Properties) != "city" {
		t.Fatalf("alias was not resolved: %+v", work)
	}
}

func TestParseSchemaDuplicateNameSkipsOverriddenValue(t *testing.T) {
	t.Parallel()

	schema := mustParseSchema(t, `{
  "properties": {
    "a": { "type": "uuid" },
    "b": { "type": "boolean" },
    "a": { "type": "string" }
  }
}`)

	properties := schema.Properties()
	if got := propertyNames(properties); got != "a,b" {
		t.Fatalf("properties = %s, want a,b", got)
	}

	if properties[0].Node.Kind != KindString {
		t.Fatalf("duplicate property kind = %s, want string", properties[0].Node.Kind)
	}
}

func TestParseSchemaYAMLAliasCycle(t *testing.T) {
	t.Parallel()

	_, err := ParseSchema([]byte("loop: &x {next: *x}\nproperties:\n  a: {type: integer}\n"), ParseOptions{Format: SchemaFormatYAML})
	if !errors.Is(err, ErrDecodeSchema) {
		t.Fatalf("expected ErrDecodeSchema, got %v", err)
	}

	assertContains(t, err.Error(), "refers to its own anchor")
}

func TestParseSchemaYAMLAliasExpansionLimit(t *testing.T) {
	t.Parallel()

	var text strings.Builder
	text.WriteString("a0: &a0 {type: string}\n")
	for level := 1; level <= 24; level++ {
		fmt.Fprintf(&text, "a%d: &a%d [*a%d, *a%d, *a%d, *a%d]\n", level, level, level-1, level-1, level-1, level-1)
	}

	text.WriteString("properties:\n  a: {type: integer}\n")

	_, err := ParseSchema([]byte(text.String()), ParseOptions{Format: SchemaFormatYAML})
	if !errors.Is(err, ErrDecodeSchema) {
		t.Fatalf("expected ErrDecodeSchema, got %v", err)
	}

	assertContains(t, err.Error(), "aliases expand to more than")
}

func TestParseSchemaDecodeErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]ParseOptions{
		`{"properties": {}} {"properties": {}}`: {Format: SchemaFormatJSON},
		`{"properties": {`:                      {},
		``:                                      {Format: SchemaFormatJSON},
		"properties: [":                         {Format: SchemaFormatYAML},
	}

	for input, opt := range cases {
		if _, err := ParseSchema([]byte(input), opt); !errors.Is(err, ErrDecodeSchema) {
			t.Fatalf("input %q: expected ErrDecodeSchema, got %v", input, err)
		}
	}
}

func TestParseSchemaRepair(t *testing.T) {
	t.Parallel()

	broken := `{"properties": {"name": {"type": "string"}, "age": {"type": "integer"},}}`
	if _, err := ParseSchema([]byte(broken), ParseOptions{}); !errors.Is(err, ErrDecodeSchema) {
		t.Fatalf("expected decode error without repair, got %v", err)
	}

	schema, err := ParseSchema([]byte(broken), ParseOptions{Repair: true})
	if err != nil {
		t.Fatalf("parse repaired schema: %v", err)
	}

	if got := propertyNames(schema.Properties()); got != "name,age" {
		t.Fatalf("property order = %s", got)
	}
}

func TestParseSchemaUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := ParseSchema([]byte(nestedSchemaJSON), ParseOptions{Format: "toml"})
	if !errors.Is(err, ErrUnknownSchemaFormat) {
		t.Fatalf("expected ErrUnknownSchemaFormat, got %v", err)
	}
}

func TestParseSchemaFileDetectsYAMLByExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.yml")
	if err := os.WriteFile(path, []byte("{properties: {flag: {type: boolean}}}\n"), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	schema, err := ParseSchemaFile(path, ParseOptions{})
	if err != nil {
		t.Fatalf("parse schema file: %v", err)
	}

	if schema.Properties()[0].Node.Kind != KindBoolean {
		t.Fatalf("unexpected kind: %s", schema.Properties()[0].Node.Kind)
	}
}

func TestParseSchemaFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ParseSchemaFile(filepath.Join(t.TempDir(), "missing.json"), ParseOptions{})
	if !errors.Is(err, ErrReadSchemaFile) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func TestSchemaPropertiesReturnsCopy(t *testing.T) {
	t.Parallel()

	schema := mustParseSchema(t, nestedSchemaJSON)
	properties := schema.Properties()
	properties[0].Name = "changed"

	if schema.Properties()[0].Name != "name" {
		t.Fatal("Properties exposes internal slice")
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	for tag, kind := range kindTags {
		if kind.String() != tag {
			t.Fatalf("kind %d string = %s, want %s", kind, kind, tag)
		}
	}

	if got := Kind(0).String(); got != "kind(0)" {
		t.Fatalf("zero kind string = %s", got)
	}
}

func mustParseSchema(t testing.TB, text string) *Schema {
	t.Helper()

	schema, err := ParseSchema([]byte(text), ParseOptions{})
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	return schema
}

func propertyNames(properties []Property) string {
	names := make([]string, 0, len(properties))
	for _, property := range properties {
		names = append(names, property.Name)
	}

	return strings.Join(names, ",")
}

// deepSchema returns schema with levels nested objects below root, each named "n".
func deepSchema(levels int) string {
	body := `"properties": {"leaf": {"type": "string"}}`
	for range levels {
		body = `"properties": {"n": {"type": "object", ` + body + `}}`
	}

	return "{" + body + "}"
}

func TestParseSchemaFailureScenarios(t *testing.T) {
	t.Parallel()

	_, err := ParseSchema([]byte(`{"type":"object","properties":{"a":{"type":"unknown"}}}`), ParseOptions{})
	var unsupported *UnsupportedTypeError
	if !errors.As(err, &unsupported) || unsupported.Tag != "unknown" || unsupported.Field != "a" {
		t.Fatalf("expected unsupported type error for a/unknown, got %v", err)
	}

	_, err = ParseSchema([]byte(`{"type":"object","properties":{"a":{}}}`), ParseOptions{})
	var missing *MissingTypeError
	if !errors.As(err, &missing) || missing.Field != "a" {
		t.Fatalf("expected missing type error for a, got %v", err)
	}

	_, err = ParseSchema([]byte(`{"type":"object"}`), ParseOptions{})
	var shape *SchemaShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected schema shape error, got %v", err)
	}
}
