// SPDX-License-Identifier: MIT
// Package observe holds the listener's OpenTelemetry instruments and the
// Prometheus bridge that exposes them on /metrics.
//
// Tests should build Metrics with NewMetrics over a ManualReader-backed
// provider instead of touching the global provider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all listener metrics.
const meterName = "wakeup"

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	// Frames counts processed frames. Attribute: mode.
	Frames metric.Int64Counter

	// FrameDuration tracks per-frame processing time, excluding the read.
	FrameDuration metric.Float64Histogram

	// Claps counts registered single claps.
	Claps metric.Int64Counter

	// Patterns counts matched clap patterns. Attribute: pattern.
	Patterns metric.Int64Counter

	// Transitions counts mode changes. Attributes: from, to, trigger.
	Transitions metric.Int64Counter

	// Dispatches counts side-effect calls. Attributes: call, status.
	Dispatches metric.Int64Counter

	// LaunchFailures counts failures reported after a dispatch returned.
	// Attribute: call.
	LaunchFailures metric.Int64Counter

	// ClassifierErrors counts per-frame wake word failures.
	ClassifierErrors metric.Int64Counter

	// StreamErrors counts frame read failures that did not stop the loop.
	StreamErrors metric.Int64Counter

	// Mode reports the current mode as 0 idle, 1 active, 2 triple wait.
	Mode metric.Int64Gauge
}

// frameBuckets are histogram boundaries in seconds. A 512-sample frame at
// 16 kHz lasts 32ms, so processing must stay well under that.
var frameBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.032,
}

// NewMetrics creates all instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Frames, err = m.Int64Counter("wakeup.frames",
		metric.WithDescription("Frames processed by mode."),
	); err != nil {
		return nil, err
	}
	if met.FrameDuration, err = m.Float64Histogram("wakeup.frame.duration",
		metric.WithDescription("Time spent processing one frame."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(frameBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Claps, err = m.Int64Counter("wakeup.claps",
		metric.WithDescription("Registered claps."),
	); err != nil {
		return nil, err
	}
	if met.Patterns, err = m.Int64Counter("wakeup.patterns",
		metric.WithDescription("Matched clap patterns by pattern."),
	); err != nil {
		return nil, err
	}
	if met.Transitions, err = m.Int64Counter("wakeup.transitions",
		metric.WithDescription("Mode transitions by from, to and trigger."),
	); err != nil {
		return nil, err
	}
	if met.Dispatches, err = m.Int64Counter("wakeup.dispatches",
		metric.WithDescription("Dispatched actions by call and status."),
	); err != nil {
		return nil, err
	}
	if met.LaunchFailures, err = m.Int64Counter("wakeup.launch.failures",
		metric.WithDescription("Failures reported after a dispatch returned, by call."),
	); err != nil {
		return nil, err
	}
	if met.ClassifierErrors, err = m.Int64Counter("wakeup.classifier.errors",
		metric.WithDescription("Wake word classifier failures."),
	); err != nil {
		return nil, err
	}
	if met.StreamErrors, err = m.Int64Counter("wakeup.stream.errors",
		metric.WithDescription("Recoverable audio read failures."),
	); err != nil {
		return nil, err
	}
	if met.Mode, err = m.Int64Gauge("wakeup.mode",
		metric.WithDescription("Current mode: 0 idle, 1 active, 2 triple wait."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordFrame counts one frame in mode and its processing time.
func (m *Metrics) RecordFrame(ctx context.Context, mode string, d time.Duration) {
	m.Frames.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
	m.FrameDuration.Record(ctx, d.Seconds())
}

// RecordTransition counts a transition and updates the mode gauge.
func (m *Metrics) RecordTransition(ctx context.Context, from, to, trigger string, toCode int64) {
	m.Transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
		attribute.String("trigger", trigger),
	))
	m.Mode.Record(ctx, toCode)
}

// RecordDispatch counts a dispatch call as ok or error.
func (m *Metrics) RecordDispatch(ctx context.Context, call string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Dispatches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("call", call),
		attribute.String("status", status),
	))
}

// RecordLaunchFailure counts a failure reported after the dispatch call
// already returned, such as one app of a background launch not starting.
// The call's own outcome is in Dispatches.
func (m *Metrics) RecordLaunchFailure(ctx context.Context, call string) {
	m.LaunchFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("call", call)))
}

// RecordPattern counts a matched pattern.
func (m *Metrics) RecordPattern(ctx context.Context, pattern string) {
	m.Patterns.Add(ctx, 1, metric.WithAttributes(attribute.String("pattern", pattern)))
}
