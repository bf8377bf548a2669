// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

package schemasynth

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/kaptinlin/jsonrepair"
	"gopkg.in/yaml.v3"
)

const (
	// SchemaFormatAuto picks JSON when input starts with "{", YAML otherwise.
	SchemaFormatAuto SchemaFormat = "auto"
	// SchemaFormatJSON decodes schema as JSON.
	SchemaFormatJSON SchemaFormat = "json"
	// SchemaFormatYAML decodes schema as YAML.
	SchemaFormatYAML SchemaFormat = "yaml"
)

// SchemaFormat selects the decoder used for raw schema bytes.
type SchemaFormat string

// rawObject is a decoded mapping that keeps members in source order, duplicates included.
type rawObject struct {
	members []rawMember
}

// rawMember is one key/value pair of a decoded mapping.
type rawMember struct {
	Key   string
	Value any
}

// lookup returns the last value stored under key.
func (object *rawObject) lookup(key string) (any, bool) {
	for index := len(object.members) - 1; index >= 0; index-- {
		if object.members[index].Key == key {
			return object.members[index].Value, true
		}
	}

	return nil, false
}

// jsonFrame is one open container on the JSON token stack.
type jsonFrame struct {
	object *rawObject
	items  []any
	key    string
	hasKey bool
	array  bool
}

// normalizeSchemaFormat validates and normalizes caller format value.
func normalizeSchemaFormat(format SchemaFormat) (SchemaFormat, error) {
	normalized := SchemaFormat(strings.ToLower(strings.TrimSpace(string(format))))
	switch normalized {
	case "":
		return SchemaFormatAuto, nil
	case SchemaFormatAuto, SchemaFormatJSON, SchemaFormatYAML:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownSchemaFormat, format)
	}
}

// detectSchemaFormat resolves auto format from the first meaningful input byte.
func detectSchemaFormat(data []byte) SchemaFormat {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return SchemaFormatJSON
	}

	return SchemaFormatYAML
}

// decodeSchemaTree decodes schema bytes into an order-preserving raw tree.
func decodeSchemaTree(data []byte, format SchemaFormat, repair bool) (any, error) {
	format, err := normalizeSchemaFormat(format)
	if err != nil {
		return nil, err
	}

	if format == SchemaFormatAuto {
		format = detectSchemaFormat(data)
	}

	var tree any
	switch format {
	case SchemaFormatYAML:
		tree, err = decodeYAMLTree(data)
	default:
		tree, err = decodeJSONTree(data, repair)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeSchema, err)
	}

	return tree, nil
}

// decodeJSONTree validates JSON, optionally repairs it, and decodes the token stream.
func decodeJSONTree(data []byte, repair bool) (any, error) {
	if !gojson.Valid(data) {
		if !repair {
			return nil, errors.New("invalid json")
		}

		repaired, err := jsonrepair.JSONRepair(string(data))
		if err != nil {
			return nil, fmt.Errorf("repair json: %w", err)
		}

		data = []byte(repaired)
		if !gojson.Valid(data) {
			return nil, errors.New("invalid json after repair")
		}
	}

	return decodeJSONTokens(data)
}

// decodeJSONTokens builds raw tree from go-json tokens without recursion.
func decodeJSONTokens(data []byte) (any, error) {
	decoder := gojson.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var (
		stack    []*jsonFrame
		root     any
		haveRoot bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		var value any
		switch typed := token.(type) {
		case gojson.Delim:
			switch typed {
			case '{':
				stack = append(stack, &jsonFrame{object: &rawObject{}})
				continue
			case '[':
				stack = append(stack, &jsonFrame{array: true, items: []any{}})
				continue
			default:
				if len(stack) == 0 {
					return nil, fmt.Errorf("unexpected %q", rune(typed))
				}

				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.array {
					value = top.items
				} else {
					value = top.object
				}
			}
		case string:
			if n := len(stack); n > 0 && !stack[n-1].array && !stack[n-1].hasKey {
				stack[n-1].key = typed
				stack[n-1].hasKey = true
				continue
			}

			value = typed
		default:
			value = typed
		}

		if len(stack) == 0 {
			if haveRoot {
				return nil, errors.New("unexpected trailing data")
			}

			root = value
			haveRoot = true
			continue
		}

		top := stack[len(stack)-1]
		if top.array {
			top.items = append(top.items, value)
			continue
		}

		top.object.members = append(top.object.members, rawMember{Key: top.key, Value: value})
		top.hasKey = false
	}

	if !haveRoot {
		return nil, errors.New("empty document")
	}

	return root, nil
}

// decodeYAMLTree decodes YAML into node tree and converts it preserving mapping order.
func decodeYAMLTree(data []byte) (any, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, err
	}

	if document.Kind == 0 || len(document.Content) == 0 {
		return nil, errors.New("empty document")
	}

	walker := yamlTreeWalker{active: make(map[*yaml.Node]bool)}
	return walker.value(&document, 0)
}

const (
	// maxYAMLNesting matches the nesting limit of the yaml.v3 parser.
	maxYAMLNesting = 10000

	// maxYAMLNodes caps converted nodes of one document, aliases expanded.
	maxYAMLNodes = 100000
)

// yamlTreeWalker converts yaml.Node trees, rejecting alias cycles and
// alias expansion beyond maxYAMLNodes.
type yamlTreeWalker struct {
	active map[*yaml.Node]bool
	nodes  int
}

// value converts one yaml.Node into raw tree value.
func (walker *yamlTreeWalker) value(node *yaml.Node, depth int) (any, error) {
	if depth > maxYAMLNesting {
		return nil, fmt.Errorf("line %d: nesting exceeds %d levels", node.Line, maxYAMLNesting)
	}

	walker.nodes++
	if walker.nodes > maxYAMLNodes {
		return nil, fmt.Errorf("line %d: aliases expand to more than %d nodes", node.Line, maxYAMLNodes)
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}

		return walker.value(node.Content[0], depth)

	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, nil
		}

		if walker.active[node.Alias] {
			return nil, fmt.Errorf("line %d: alias %q refers to its own anchor", node.Line, node.Value)
		}

		return walker.value(node.Alias, depth)

	case yaml.MappingNode:
		walker.active[node] = true
		defer delete(walker.active, node)

		object := &rawObject{members: make([]rawMember, 0, len(node.Content)/2)}
		for index := 0; index+1 < len(node.Content); index += 2 {
			value, err := walker.value(node.Content[index+1], depth+1)
			if err != nil {
				return nil, err
			}

			object.members = append(object.members, rawMember{Key: node.Content[index].Value, Value: value})
		}

		return object, nil

	case yaml.SequenceNode:
		walker.active[node] = true
		defer delete(walker.active, node)

		items := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := walker.value(item, depth+1)
			if err != nil {
				return nil, err
			}

			items = append(items, value)
		}

		return items, nil

	default:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}

		return value, nil
	}
}
