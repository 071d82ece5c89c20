package obs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/vaak-ai/voxengine"

// latencyBuckets are histogram bucket boundaries in seconds, covering the
// low-hundred-millisecond turn budget down to sub-10ms retrieval stages.
var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.5, 1, 2, 5}

// Metrics holds every OpenTelemetry instrument the process records.
// Instruments are safe for concurrent use; callers obtain one Metrics at
// process start and pass it down rather than constructing per request.
type Metrics struct {
	TurnDuration        metric.Float64Histogram
	RetrievalDuration   metric.Float64Histogram
	SpeculativeDuration metric.Float64Histogram
	ToolDuration        metric.Float64Histogram

	TurnsTotal           metric.Int64Counter
	SpeculativeFallbacks metric.Int64Counter
	ToolCalls            metric.Int64Counter
	ErrorsTotal          metric.Int64Counter

	ActiveSessions metric.Int64UpDownCounter
	ActiveWS       metric.Int64UpDownCounter
	ActiveWebRTC   metric.Int64UpDownCounter
}

// NewMetrics creates every instrument against mp's default meter. Returns
// the first instrument-creation error encountered, if any.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TurnDuration, err = m.Float64Histogram("voxengine.turn.duration",
		metric.WithDescription("End-to-end per-turn processing latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RetrievalDuration, err = m.Float64Histogram("voxengine.retrieval.duration",
		metric.WithDescription("Hybrid retrieval search latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SpeculativeDuration, err = m.Float64Histogram("voxengine.speculative.duration",
		metric.WithDescription("Speculative SLM/LLM dispatch latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ToolDuration, err = m.Float64Histogram("voxengine.tool.duration",
		metric.WithDescription("Tool invocation latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.TurnsTotal, err = m.Int64Counter("voxengine.turns.total",
		metric.WithDescription("Total turns processed, by outcome."),
	); err != nil {
		return nil, err
	}
	if met.SpeculativeFallbacks, err = m.Int64Counter("voxengine.speculative.fallbacks",
		metric.WithDescription("Total speculative dispatches that fell back from SLM to LLM."),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("voxengine.tool.calls",
		metric.WithDescription("Total tool invocations, by tool name and outcome."),
	); err != nil {
		return nil, err
	}
	if met.ErrorsTotal, err = m.Int64Counter("voxengine.errors.total",
		metric.WithDescription("Total errors surfaced to a transport, by voxerr kind."),
	); err != nil {
		return nil, err
	}

	if met.ActiveSessions, err = m.Int64UpDownCounter("voxengine.sessions.active",
		metric.WithDescription("Number of sessions currently held in memory."),
	); err != nil {
		return nil, err
	}
	if met.ActiveWS, err = m.Int64UpDownCounter("voxengine.websocket.active",
		metric.WithDescription("Number of currently attached WebSocket connections."),
	); err != nil {
		return nil, err
	}
	if met.ActiveWebRTC, err = m.Int64UpDownCounter("voxengine.webrtc.active",
		metric.WithDescription("Number of currently negotiated WebRTC peer connections."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordTurn records one completed turn's latency and outcome.
func (m *Metrics) RecordTurn(ctx context.Context, seconds float64, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.TurnDuration.Record(ctx, seconds)
	m.TurnsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordToolCall records one tool invocation's latency and outcome.
func (m *Metrics) RecordToolCall(ctx context.Context, tool string, seconds float64, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.ToolDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("tool", tool)))
	m.ToolCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", tool), attribute.String("status", status)))
}

// RecordError increments the error counter for the given voxerr kind.
func (m *Metrics) RecordError(ctx context.Context, kind string) {
	m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
