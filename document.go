// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

package schemasynth

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Document is one generated value mirroring an object schema.
// Field values are int32, float32, bool, string or *Document.
// Documents are never modified after generation.
type Document struct {
	fields []Field
}

// Field is one named document value.
type Field struct {
	Name  string
	Value any
}

// Len returns number of fields.
func (doc *Document) Len() int {
	return len(doc.fields)
}

// Names returns field names in schema order.
func (doc *Document) Names() []string {
	out := make([]string, 0, len(doc.fields))
	for _, field := range doc.fields {
		out = append(out, field.Name)
	}

	return out
}

// Fields returns a copy of document fields in schema order.
func (doc *Document) Fields() []Field {
	out := make([]Field, len(doc.fields))
	copy(out, doc.fields)
	return out
}

// Get returns value of named field.
func (doc *Document) Get(name string) (any, bool) {
	for _, field := range doc.fields {
		if field.Name == name {
			return field.Value, true
		}
	}

	return nil, false
}

// Map converts document into plain nested maps.
func (doc *Document) Map() map[string]any {
	out := make(map[string]any, len(doc.fields))
	for _, field := range doc.fields {
		if nested, ok := field.Value.(*Document); ok {
			out[field.Name] = nested.Map()
			continue
		}

		out[field.Name] = field.Value
	}

	return out
}

// MarshalJSON encodes document as compact JSON object keeping field order.
func (doc *Document) MarshalJSON() ([]byte, error) {
	var out bytes.Buffer
	if err := doc.writeJSON(&out); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// writeJSON appends document JSON to out.
func (doc *Document) writeJSON(out *bytes.Buffer) error {
	out.WriteByte('{')
	for index, field := range doc.fields {
		if index > 0 {
			out.WriteByte(',')
		}

		key, err := gojson.Marshal(field.Name)
		if err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}

		out.Write(key)
		out.WriteByte(':')

		if err := writeJSONValue(out, field.Value); err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}
	}

	out.WriteByte('}')
	return nil
}

// writeJSONValue appends one field value to out.
func writeJSONValue(out *bytes.Buffer, value any) error {
	switch typed := value.(type) {
	case *Document:
		return typed.writeJSON(out)
	case int32:
		out.WriteString(strconv.FormatInt(int64(typed), 10))
	case float32:
		out.WriteString(formatNumber(typed))
	case bool:
		out.WriteString(strconv.FormatBool(typed))
	default:
		data, err := gojson.Marshal(typed)
		if err != nil {
			return err
		}

		out.Write(data)
	}

	return nil
}

// formatNumber renders float so it never reads back as an integer.
func formatNumber(value float32) string {
	text := strconv.FormatFloat(float64(value), 'g', -1, 32)
	if !strings.ContainsAny(text, ".eEnN") {
		text += ".0"
	}

	return text
}

// Synthesize builds one document using source for every scalar draw.
func (schema *Schema) Synthesize(source *rand.Rand) *Document {
	return synthesizeDocument(schema.root.Properties, source)
}

// synthesizeDocument resolves every property in order into a document field.
func synthesizeDocument(properties []Property, source *rand.Rand) *Document {
	doc := &Document{fields: make([]Field, 0, len(properties))}
	for _, property := range properties {
		doc.fields = append(doc.fields, Field{
			Name:  property.Name,
			Value: synthesizeValue(property.Node, source),
		})
	}

	return doc
}

// synthesizeValue dispatches on compiled kind.
func synthesizeValue(node *Node, source *rand.Rand) any {
	switch node.Kind {
	case KindInteger:
		return RandomInteger(source)
	case KindString:
		return RandomString(source)
	case KindBoolean:
		return RandomBoolean(source)
	case KindNumber:
		return RandomNumber(source)
	case KindObject:
		return synthesizeDocument(node.Properties, source)
	default:
		panic(fmt.Sprintf("schemasynth: uncompiled node kind %s", node.Kind))
	}
}
