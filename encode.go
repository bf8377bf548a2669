// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

package schemasynth

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DocumentFormatJSON encodes document as single-line JSON.
	DocumentFormatJSON DocumentFormat = "json"
	// DocumentFormatYAML encodes document as YAML.
	DocumentFormatYAML DocumentFormat = "yaml"
)

// DocumentFormat configures output format for generated documents.
type DocumentFormat string

// ParseDocumentFormat validates and normalizes format name.
func ParseDocumentFormat(format string) (DocumentFormat, error) {
	normalized := DocumentFormat(strings.ToLower(strings.TrimSpace(format)))
	switch normalized {
	case DocumentFormatJSON, DocumentFormatYAML:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownDocumentFormat, format)
	}
}

// EncodeDocument returns document encoded in selected format.
// JSON output has no trailing newline; YAML output ends with one.
func EncodeDocument(doc *Document, format DocumentFormat) ([]byte, error) {
	format, err := ParseDocumentFormat(string(format))
	if err != nil {
		return nil, err
	}

	switch format {
	case DocumentFormatYAML:
		data, err := marshalDocumentYAML(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodeDocumentYAML, err)
		}

		return data, nil
	default:
		data, err := doc.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodeDocumentJSON, err)
		}

		return data, nil
	}
}

// marshalDocumentYAML serializes document as YAML mapping keeping field order.
func marshalDocumentYAML(doc *Document) ([]byte, error) {
	root, err := yamlNodeForValue(doc)
	if err != nil {
		return nil, err
	}

	document := &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{root},
	}

	var out bytes.Buffer
	encoder := yaml.NewEncoder(&out)
	encoder.SetIndent(2)

	if err := encoder.Encode(document); err != nil {
		return nil, err
	}

	if err := encoder.Close(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// yamlNodeForValue builds yaml.Node tree from document value.
func yamlNodeForValue(value any) (*yaml.Node, error) {
	switch typed := value.(type) {
	case *Document:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, field := range typed.fields {
			valueNode, err := yamlNodeForValue(field.Value)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", field.Name, err)
			}

			node.Content = append(node.Content, yamlScalarNode("!!str", field.Name), valueNode)
		}

		return node, nil

	case bool:
		return yamlScalarNode("!!bool", strconv.FormatBool(typed)), nil

	case string:
		return yamlScalarNode("!!str", typed), nil

	case int32:
		return yamlScalarNode("!!int", strconv.FormatInt(int64(typed), 10)), nil

	case float32:
		return yamlScalarNode("!!float", formatNumber(typed)), nil

	default:
		return nil, fmt.Errorf("unsupported document value %T", value)
	}
}

// yamlScalarNode creates one scalar yaml.Node with explicit tag.
func yamlScalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   tag,
		Value: value,
	}
}
