// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

/*
Package schemasynth generates random documents whose shape follows a small
JSON Schema subset.

A schema is an object with a "properties" mapping. Every property declares a
"type" of "integer", "number", "boolean", "string" or "object"; objects carry
their own "properties" and nest. Other keywords are ignored. Schemas are
compiled once by ParseSchema, which reports every structural problem, so a
compiled Schema always generates.

Parse a schema and generate documents:

	schema, err := schemasynth.ParseSchemaFile("schema.json", schemasynth.ParseOptions{})
	if err != nil {
		return err
	}

	docs, err := schemasynth.Generate(ctx, schema, 100)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		data, err := schemasynth.EncodeDocument(doc, schemasynth.DocumentFormatJSON)
		if err != nil {
			return err
		}

		fmt.Println(string(data))
	}

Reproducible output, independent of worker count:

	generator := schemasynth.NewGenerator(schema,
		schemasynth.WithSeed(42),
		schemasynth.WithWorkers(4),
		schemasynth.WithLogger(slog.Default()),
	)

	docs, err := generator.Generate(ctx, 1000)

YAML schemas keep declaration order too:

	schema, err := schemasynth.ParseSchema([]byte(`
	properties:
	  name: {type: string}
	  age: {type: integer}
	`), schemasynth.ParseOptions{Format: schemasynth.SchemaFormatYAML})

Inspect schema errors:

	_, err := schemasynth.ParseSchema(data, schemasynth.ParseOptions{})

	var unsupported *schemasynth.UnsupportedTypeError
	if errors.As(err, &unsupported) {
		fmt.Printf("field %s uses %q\n", unsupported.Path, unsupported.Tag)
	}

Render a markdown outline of schema fields:

	md, err := schemasynth.Describe(schema, schemasynth.DescribeOptions{Title: "Person"})

Generated values: integers span the full int32 range, strings are
StringLength alphanumeric characters, booleans are fair coin flips and numbers
are finite float32 values that often have no fractional part.
*/
package schemasynth
