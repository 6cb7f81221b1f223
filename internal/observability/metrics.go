// Package observability provides metrics instrumentation for patch execution.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PatchMetrics holds custom metrics for write-path operations.
type PatchMetrics struct {
	patchDuration    metric.Float64Histogram
	patchCounter     metric.Int64Counter
	errorCounter     metric.Int64Counter
	instructionCount metric.Int64Histogram
}

// InitPatchMetrics initializes write-path metrics.
func InitPatchMetrics() (*PatchMetrics, error) {
	meter := otel.Meter("cql-rowpatch")

	patchDuration, err := meter.Float64Histogram(
		"rowpatch.patch.duration",
		metric.WithDescription("Duration of row patch statements in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create patch duration histogram: %w", err)
	}

	patchCounter, err := meter.Int64Counter(
		"rowpatch.patches.total",
		metric.WithDescription("Total number of row patch statements executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create patch counter: %w", err)
	}

	errorCounter, err := meter.Int64Counter(
		"rowpatch.errors.total",
		metric.WithDescription("Total number of failed storage statements"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	instructionCount, err := meter.Int64Histogram(
		"rowpatch.patch.instructions",
		metric.WithDescription("Number of primitive instructions per patch statement"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create instruction histogram: %w", err)
	}

	return &PatchMetrics{
		patchDuration:    patchDuration,
		patchCounter:     patchCounter,
		errorCounter:     errorCounter,
		instructionCount: instructionCount,
	}, nil
}

// RecordPatch records one executed patch statement.
func (m *PatchMetrics) RecordPatch(ctx context.Context, table string, instructions int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("table", table))
	m.patchCounter.Add(ctx, 1, attrs)
	m.patchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.instructionCount.Record(ctx, int64(instructions), attrs)
	if err != nil {
		m.errorCounter.Add(ctx, 1, attrs)
	}
}

// RecordStatement records one non-patch storage statement (insert, select, delete).
func (m *PatchMetrics) RecordStatement(ctx context.Context, table, kind string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.errorCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("table", table),
			attribute.String("kind", kind),
		))
	}
}
