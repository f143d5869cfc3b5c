package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

var (
	initMetricsOnce     sync.Once
	chatTurnsCounter    metric.Int64Counter
	llmDuration         metric.Float64Histogram
	documentsCounter    metric.Int64Counter
	uploadsCounter      metric.Int64Counter
	enquiriesCounter    metric.Int64Counter
	sseConnectionsGauge metric.Int64ObservableGauge
	sseEventsCounter    metric.Int64Counter
	sseConnections      int64
	sseConnectionsMu    sync.Mutex
)

// InitMetrics creates the meter instruments. Safe to call multiple times; only runs once.
// Call after InitMeterProvider.
func InitMetrics(ctx context.Context) error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		chatTurnsCounter, err = m.Int64Counter("agents_store_chat_turns_total", metric.WithDescription("Total chat turns handled, by mode and fallback"))
		if err != nil {
			return
		}
		llmDuration, err = m.Float64Histogram("agents_store_llm_request_duration_seconds", metric.WithDescription("LLM chat completion latency in seconds"))
		if err != nil {
			return
		}
		documentsCounter, err = m.Int64Counter("agents_store_documents_generated_total", metric.WithDescription("Total requirement documents generated"))
		if err != nil {
			return
		}
		uploadsCounter, err = m.Int64Counter("agents_store_uploads_total", metric.WithDescription("Total media uploads, by folder"))
		if err != nil {
			return
		}
		enquiriesCounter, err = m.Int64Counter("agents_store_enquiries_total", metric.WithDescription("Total enquiries submitted"))
		if err != nil {
			return
		}
		sseEventsCounter, err = m.Int64Counter("agents_store_sse_events_total", metric.WithDescription("Total SSE events published"))
		if err != nil {
			return
		}
		sseConnectionsGauge, err = m.Int64ObservableGauge("agents_store_sse_connections", metric.WithDescription("Current SSE subscriber count"))
		if err != nil {
			return
		}
		_, err = m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			sseConnectionsMu.Lock()
			n := sseConnections
			sseConnectionsMu.Unlock()
			o.ObserveInt64(sseConnectionsGauge, n)
			return nil
		}, sseConnectionsGauge)
		if err != nil {
			return
		}
	})
	return err
}

// RecordChatTurn records one handled chat turn.
func RecordChatTurn(ctx context.Context, mode string, fallback bool) {
	if chatTurnsCounter == nil {
		return
	}
	fb := "no"
	if fallback {
		fb = "yes"
	}
	chatTurnsCounter.Add(ctx, 1, metric.WithAttributes(AttrMode.String(mode), AttrFallback.String(fb)))
}

// RecordLLMRequest records one chat completion round trip.
func RecordLLMRequest(ctx context.Context, duration time.Duration, status string) {
	if llmDuration != nil {
		llmDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(AttrStatus.String(status)))
	}
}

// RecordDocumentGenerated records one generated BRD.
func RecordDocumentGenerated(ctx context.Context) {
	if documentsCounter != nil {
		documentsCounter.Add(ctx, 1)
	}
}

// RecordUpload records one media upload.
func RecordUpload(ctx context.Context, folder string) {
	if uploadsCounter != nil {
		uploadsCounter.Add(ctx, 1, metric.WithAttributes(AttrFolder.String(folder)))
	}
}

// RecordEnquiry records one submitted enquiry.
func RecordEnquiry(ctx context.Context) {
	if enquiriesCounter != nil {
		enquiriesCounter.Add(ctx, 1)
	}
}

// RecordSSEEvent records one SSE event published.
func RecordSSEEvent(ctx context.Context) {
	if sseEventsCounter != nil {
		sseEventsCounter.Add(ctx, 1)
	}
}

// AddSSEConnection adds 1 to the SSE connection gauge (call on subscribe).
func AddSSEConnection() {
	sseConnectionsMu.Lock()
	sseConnections++
	sseConnectionsMu.Unlock()
}

// RemoveSSEConnection subtracts 1 from the SSE connection gauge (call on unsubscribe).
func RemoveSSEConnection() {
	sseConnectionsMu.Lock()
	sseConnections--
	if sseConnections < 0 {
		sseConnections = 0
	}
	sseConnectionsMu.Unlock()
}

// AgentCountFunc returns (approved, pending) agent counts. Used for the
// agents_store_agents_total gauge.
type AgentCountFunc func() (approved, pending int64)

// InitMetricsWithAgentCount creates instruments and optionally registers a callback for the agent gauge.
// Call after InitMeterProvider. If agentCount is nil, the gauge is not reported.
func InitMetricsWithAgentCount(ctx context.Context, agentCount AgentCountFunc) error {
	if err := InitMetrics(ctx); err != nil {
		return err
	}
	if agentCount == nil {
		return nil
	}
	m := Meter()
	agentsGauge, err := m.Float64ObservableGauge("agents_store_agents_total", metric.WithDescription("Number of catalog agents by approval status"))
	if err != nil {
		return err
	}
	_, err = m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		approved, pending := agentCount()
		o.ObserveFloat64(agentsGauge, float64(approved), metric.WithAttributes(AttrStatus.String("approved")))
		o.ObserveFloat64(agentsGauge, float64(pending), metric.WithAttributes(AttrStatus.String("pending")))
		return nil
	}, agentsGauge)
	return err
}
