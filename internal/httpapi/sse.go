package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vigneshgurumohan/agents-store/internal/otel"
)

// Marketplace event types delivered on /events.
const (
	EventConnected        = "connected"
	EventAgentCreated     = "agent_created"
	EventAgentUpdated     = "agent_updated"
	EventEnquiryCreated   = "enquiry_created"
	EventDemoAssetCreated = "demo_asset_created"
	EventRequirementSaved = "requirement_saved"
	EventDocumentReady    = "document_ready"
)

// Event is one marketplace notification: a catalog change, a new
// enquiry, or document generation progress. Only the fields that apply
// to the event type are set.
type Event struct {
	Type          string `json:"type"`
	AgentID       string `json:"agent_id,omitempty"`
	EnquiryID     string `json:"enquiry_id,omitempty"`
	DemoAssetID   string `json:"demo_asset_id,omitempty"`
	RequirementID string `json:"requirement_id,omitempty"`
	Path          string `json:"path,omitempty"`
}

// SSEHub fans marketplace events out to connected event-stream clients.
type SSEHub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewSSEHub() *SSEHub {
	return &SSEHub{subs: make(map[chan Event]struct{})}
}

func (h *SSEHub) Subscribe() chan Event {
	ch := make(chan Event, 256)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	otel.AddSSEConnection()
	return ch
}

func (h *SSEHub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
		otel.RemoveSSEConnection()
	}
	h.mu.Unlock()
}

// Publish delivers ev to every subscriber without blocking.
func (h *SSEHub) Publish(ev Event) {
	otel.RecordSSEEvent(context.Background())
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Drop if subscriber is too slow; prevents global backpressure.
		}
	}
}

func (h *SSEHub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		ch := h.Subscribe()
		defer h.Unsubscribe(ch)

		writeEvent := func(ev Event) {
			b, err := json.Marshal(ev)
			if err != nil {
				return
			}
			_, _ = fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
		}

		// Initial ping so clients know the stream is live.
		writeEvent(Event{Type: EventConnected})

		keepalive := time.NewTicker(30 * time.Second)
		defer keepalive.Stop()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepalive.C:
				// Comment keepalive.
				_, _ = fmt.Fprint(w, ": keepalive\n\n")
				flusher.Flush()
			case ev, ok := <-ch:
				if !ok {
					return
				}
				writeEvent(ev)
			}
		}
	}
}
