// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

package schemasynth

import (
	"errors"
	"fmt"
)

var (
	// ErrReadSchemaFile is returned when schema file loading fails.
	ErrReadSchemaFile = errors.New("read schema file")
	// ErrDecodeSchema is returned when schema bytes cannot be decoded.
	ErrDecodeSchema = errors.New("decode schema")
	// ErrUnknownSchemaFormat is returned when schema input format is not supported.
	ErrUnknownSchemaFormat = errors.New("unknown schema format")
	// ErrUnknownDocumentFormat is returned when document output format is not supported.
	ErrUnknownDocumentFormat = errors.New("unknown document format")
	// ErrEncodeDocumentJSON is returned when generated document JSON encoding fails.
	ErrEncodeDocumentJSON = errors.New("encode document json")
	// ErrEncodeDocumentYAML is returned when generated document YAML encoding fails.
	ErrEncodeDocumentYAML = errors.New("encode document yaml")
	// ErrNegativeCount is returned when a negative document count is requested.
	ErrNegativeCount = errors.New("document count must not be negative")

	// ErrSchemaShape matches every *SchemaShapeError.
	ErrSchemaShape = errors.New("schema shape")
	// ErrMissingType matches every *MissingTypeError.
	ErrMissingType = errors.New("missing type")
	// ErrUnsupportedType matches every *UnsupportedTypeError.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrSchemaTooDeep matches every *SchemaTooDeepError.
	ErrSchemaTooDeep = errors.New("schema too deep")
)

// SchemaShapeError reports a node that must carry an object-shaped "properties" mapping but does not.
type SchemaShapeError struct {
	// Path is the dotted property path of the node, empty for the root.
	Path string
	// Reason describes what is wrong with the node.
	Reason string
}

func (err *SchemaShapeError) Error() string {
	return fmt.Sprintf("%s at %s: %s", ErrSchemaShape, displayPath(err.Path), err.Reason)
}

// Is reports whether target is ErrSchemaShape.
func (err *SchemaShapeError) Is(target error) bool {
	return target == ErrSchemaShape
}

// MissingTypeError reports a property node without a string "type" tag.
type MissingTypeError struct {
	Field string
	Path  string
}

func (err *MissingTypeError) Error() string {
	return fmt.Sprintf("%s for field %q at %s", ErrMissingType, err.Field, displayPath(err.Path))
}

// Is reports whether target is ErrMissingType.
func (err *MissingTypeError) Is(target error) bool {
	return target == ErrMissingType
}

// UnsupportedTypeError reports a property node whose "type" tag is not one of the known kinds.
type UnsupportedTypeError struct {
	Field string
	Path  string
	Tag   string
}

func (err *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s %q for field %q at %s", ErrUnsupportedType, err.Tag, err.Field, displayPath(err.Path))
}

// Is reports whether target is ErrUnsupportedType.
func (err *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// SchemaTooDeepError reports object nesting beyond the configured depth ceiling.
type SchemaTooDeepError struct {
	Path  string
	Limit int
}

func (err *SchemaTooDeepError) Error() string {
	return fmt.Sprintf("%s at %s: nesting exceeds %d levels", ErrSchemaTooDeep, displayPath(err.Path), err.Limit)
}

// Is reports whether target is ErrSchemaTooDeep.
func (err *SchemaTooDeepError) Is(target error) bool {
	return target == ErrSchemaTooDeep
}

// displayPath renders an empty path as the schema root marker.
func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}

	return path
}
