// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

package schemasynth

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const instrumentationName = "github.com/woozymasta/schemasynth"

// Option configures a Generator.
type Option func(*generatorConfig)

type generatorConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	logger         *slog.Logger
	seed           *uint64
	workers        int
}

// WithWorkers limits parallel document generation. Values below 1 use GOMAXPROCS.
func WithWorkers(workers int) Option {
	return func(c *generatorConfig) {
		c.workers = workers
	}
}

// WithSeed makes generation reproducible: document i always uses the same source.
func WithSeed(seed uint64) Option {
	return func(c *generatorConfig) {
		c.seed = &seed
	}
}

// WithLogger sets structured logger for generation passes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *generatorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *generatorConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *generatorConfig) {
		c.meterProvider = mp
	}
}

// Generator produces documents from one compiled schema.
type Generator struct {
	schema    *Schema
	logger    *slog.Logger
	seed      *uint64
	tracer    trace.Tracer
	generated metric.Int64Counter
	duration  metric.Float64Histogram
	workers   int
}

// NewGenerator creates generator for schema.
func NewGenerator(schema *Schema, opts ...Option) *Generator {
	cfg := &generatorConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.workers < 1 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}

	meter := cfg.meterProvider.Meter(instrumentationName)
	generated, _ := meter.Int64Counter(
		"schemasynth.documents.generated",
		metric.WithDescription("Total number of generated documents"),
		metric.WithUnit("{document}"),
	)

	duration, _ := meter.Float64Histogram(
		"schemasynth.generate.duration",
		metric.WithDescription("Duration of generation passes"),
		metric.WithUnit("ms"),
	)

	return &Generator{
		schema:    schema,
		logger:    cfg.logger,
		seed:      cfg.seed,
		tracer:    cfg.tracerProvider.Tracer(instrumentationName),
		generated: generated,
		duration:  duration,
		workers:   cfg.workers,
	}
}

// Generate is shorthand for NewGenerator(schema, opts...).Generate(ctx, count).
func Generate(ctx context.Context, schema *Schema, count int, opts ...Option) ([]*Document, error) {
	return NewGenerator(schema, opts...).Generate(ctx, count)
}

// Generate produces count independent documents in index order.
//
// When ctx is canceled no further documents are scheduled; documents finished
// so far are returned together with the context error.
func (generator *Generator) Generate(ctx context.Context, count int) ([]*Document, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, count)
	}

	ctx, span := generator.tracer.Start(ctx, "schemasynth.generate",
		trace.WithAttributes(
			attribute.Int("schemasynth.count", count),
			attribute.Int("schemasynth.workers", generator.workers),
			attribute.Bool("schemasynth.seeded", generator.seed != nil),
		),
	)
	defer span.End()

	start := time.Now()
	generator.logger.DebugContext(ctx, "generation pass started",
		slog.Int("count", count),
		slog.Int("workers", generator.workers),
	)

	documents := make([]*Document, count)

	var group errgroup.Group
	group.SetLimit(generator.workers)
	for index := range count {
		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			documents[index] = generator.schema.Synthesize(newDocumentSource(generator.seed, index))
			return nil
		})
	}

	// workers never fail; cancellation is read from ctx below
	_ = group.Wait()

	elapsed := time.Since(start)
	err := ctx.Err()
	if err != nil {
		documents = compactDocuments(documents)
	}

	generator.generated.Add(ctx, int64(len(documents)))
	generator.duration.Record(ctx, float64(elapsed.Microseconds())/1000)
	span.SetAttributes(attribute.Int("schemasynth.generated", len(documents)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		generator.logger.WarnContext(ctx, "generation pass interrupted",
			slog.Int("generated", len(documents)),
			slog.Int("requested", count),
			slog.Any("error", err),
		)

		return documents, fmt.Errorf("generate documents: %w", err)
	}

	generator.logger.DebugContext(ctx, "generation pass finished",
		slog.Int("generated", len(documents)),
		slog.Duration("duration", elapsed),
	)

	return documents, nil
}

// compactDocuments drops slots of documents that were never generated.
func compactDocuments(documents []*Document) []*Document {
	out := make([]*Document, 0, len(documents))
	for _, doc := range documents {
		if doc != nil {
			out = append(out, doc)
		}
	}

	return out
}
