// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

package schemasynth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxDepth is the object nesting ceiling used when ParseOptions.MaxDepth is not positive.
const DefaultMaxDepth = 64

const (
	// KindInteger produces 32-bit signed integers.
	KindInteger Kind = iota + 1
	// KindNumber produces 32-bit floats.
	KindNumber
	// KindBoolean produces booleans.
	KindBoolean
	// KindString produces 10-character alphanumeric strings.
	KindString
	// KindObject produces nested documents.
	KindObject
)

// Kind is the closed set of property types a schema may declare.
type Kind uint8

// kindTags maps schema "type" tags to kinds.
var kindTags = map[string]Kind{
	"integer": KindInteger,
	"number":  KindNumber,
	"boolean": KindBoolean,
	"string":  KindString,
	"object":  KindObject,
}

// String returns the schema "type" tag of kind.
func (kind Kind) String() string {
	switch kind {
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(kind))
	}
}

// Node is one compiled schema node. Properties is set only for KindObject.
type Node struct {
	Kind       Kind
	Properties []Property
}

// Property is one named child of an object node.
type Property struct {
	Name string
	Node *Node
}

// Schema is a compiled, read-only schema tree safe for concurrent use.
type Schema struct {
	root  *Node
	depth int
}

// ParseOptions configures schema decoding and compilation.
type ParseOptions struct {
	// Format selects schema decoder, auto when empty.
	Format SchemaFormat
	// Repair runs JSON repair on malformed JSON input before giving up.
	Repair bool
	// MaxDepth limits object nesting, DefaultMaxDepth when not positive.
	MaxDepth int
}

// Properties returns top-level properties in declaration order.
func (schema *Schema) Properties() []Property {
	out := make([]Property, len(schema.root.Properties))
	copy(out, schema.root.Properties)
	return out
}

// Depth returns the deepest object nesting level, 1 for a flat schema.
func (schema *Schema) Depth() int {
	return schema.depth
}

// ParseSchemaFile reads schema from file and compiles it.
// Files with .yaml or .yml extension are decoded as YAML when format is auto.
func ParseSchemaFile(path string, opt ParseOptions) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSchemaFile, err)
	}

	if format, _ := normalizeSchemaFormat(opt.Format); format == SchemaFormatAuto {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			opt.Format = SchemaFormatYAML
		case ".json":
			opt.Format = SchemaFormatJSON
		}
	}

	return ParseSchema(data, opt)
}

// ParseSchema decodes schema bytes and compiles them into a Schema.
// Type tags are resolved here, so a schema that parses can always be generated.
func ParseSchema(data []byte, opt ParseOptions) (*Schema, error) {
	tree, err := decodeSchemaTree(data, opt.Format, opt.Repair)
	if err != nil {
		return nil, err
	}

	maxDepth := opt.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	compiler := schemaCompiler{maxDepth: maxDepth}
	root, err := compiler.compileObject(tree, "", 1)
	if err != nil {
		return nil, err
	}

	return &Schema{root: root, depth: compiler.deepest}, nil
}

// schemaCompiler resolves raw tree into Node tree.
type schemaCompiler struct {
	maxDepth int
	deepest  int
}

// compileObject compiles properties of an object-shaped node at given nesting depth.
func (compiler *schemaCompiler) compileObject(raw any, path string, depth int) (*Node, error) {
	if depth > compiler.maxDepth {
		return nil, &SchemaTooDeepError{Path: path, Limit: compiler.maxDepth}
	}

	if depth > compiler.deepest {
		compiler.deepest = depth
	}

	members, err := propertiesOf(raw, path)
	if err != nil {
		return nil, err
	}

	node := &Node{
		Kind:       KindObject,
		Properties: make([]Property, 0, len(members)),
	}

	// duplicate names: last value wins, first position kept;
	// overridden values are never compiled
	resolved := make([]rawMember, 0, len(members))
	positions := make(map[string]int, len(members))
	for _, member := range members {
		if at, exists := positions[member.Key]; exists {
			resolved[at].Value = member.Value
			continue
		}

		positions[member.Key] = len(resolved)
		resolved = append(resolved, member)
	}

	for _, member := range resolved {
		child, err := compiler.compileProperty(member.Key, member.Value, appendPath(path, member.Key), depth)
		if err != nil {
			return nil, err
		}

		node.Properties = append(node.Properties, Property{Name: member.Key, Node: child})
	}

	return node, nil
}

// compileProperty resolves type tag of one property node.
func (compiler *schemaCompiler) compileProperty(name string, raw any, path string, depth int) (*Node, error) {
	tag, ok := typeTag(raw)
	if !ok {
		return nil, &MissingTypeError{Field: name, Path: path}
	}

	kind, known := kindTags[tag]
	if !known {
		return nil, &UnsupportedTypeError{Field: name, Path: path, Tag: tag}
	}

	if kind == KindObject {
		return compiler.compileObject(raw, path, depth+1)
	}

	return &Node{Kind: kind}, nil
}

// propertiesOf returns ordered "properties" members of an object-shaped schema node.
func propertiesOf(raw any, path string) ([]rawMember, error) {
	object, ok := raw.(*rawObject)
	if !ok {
		return nil, &SchemaShapeError{Path: path, Reason: "schema node is not an object"}
	}

	value, exists := object.lookup("properties")
	if !exists {
		return nil, &SchemaShapeError{Path: path, Reason: "properties is missing"}
	}

	properties, ok := value.(*rawObject)
	if !ok {
		return nil, &SchemaShapeError{Path: path, Reason: "properties is not an object"}
	}

	return properties.members, nil
}

// typeTag returns string "type" value of a raw schema node.
func typeTag(raw any) (string, bool) {
	object, ok := raw.(*rawObject)
	if !ok {
		return "", false
	}

	value, exists := object.lookup("type")
	if !exists {
		return "", false
	}

	tag, ok := value.(string)
	return tag, ok
}

// appendPath joins path segments with a dot while preserving empty root prefix.
func appendPath(base, segment string) string {
	if base == "" {
		return segment
	}

	return base + "." + segment
}
