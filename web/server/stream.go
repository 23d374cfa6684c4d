package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "tick", "console", "dropped", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleStream ticks the system on an interval and streams each snapshot via SSE
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ticks, err := parseIntParam(r.URL.Query(), "ticks", 10, 1, 10000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	intervalMs, err := parseIntParam(r.URL.Query(), "intervalMs", 100, 0, 10000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.setSSEHeaders(w)
	ctx := r.Context()

	// Single writer goroutine; the handler must not return before it does
	sseEventChan := make(chan SSEEvent, 16)
	done := make(chan struct{})
	go func() {
		s.writeSSEEvents(ctx, w, sseEventChan)
		close(done)
	}()

	s.runTicks(ctx, sseEventChan, ticks, time.Duration(intervalMs)*time.Millisecond)
	close(sseEventChan)
	<-done
}

func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// runTicks advances the system and queues one tick event per step, followed
// by any console output and a final complete event
func (s *Server) runTicks(ctx context.Context, sseEventChan chan<- SSEEvent, ticks int, interval time.Duration) {
	for i := 0; i < ticks; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return
			}
		}

		s.sys.Tick()
		data, err := json.Marshal(snapshotResponse(s.sys.Snapshot()))
		if err != nil {
			sendEvent(ctx, sseEventChan, SSEEvent{Type: "error", Data: fmt.Sprintf("encode snapshot: %v", err)})
			return
		}
		if !sendEvent(ctx, sseEventChan, SSEEvent{Type: "tick", Data: string(data)}) {
			return
		}
		s.streamConsoleMessages(ctx, sseEventChan)
	}
	sendEvent(ctx, sseEventChan, SSEEvent{Type: "complete", Data: fmt.Sprintf("%d ticks", ticks)})
}

// streamConsoleMessages forwards buffered log output as console events. If
// the console overflowed since the last drain, a "dropped" event comes first.
func (s *Server) streamConsoleMessages(ctx context.Context, sseEventChan chan<- SSEEvent) {
	console := s.drainConsole()
	if console.Dropped > 0 {
		if !sendEvent(ctx, sseEventChan, SSEEvent{Type: "dropped", Data: fmt.Sprintf("%d", console.Dropped)}) {
			return
		}
	}
	for _, msg := range console.Messages {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if !sendEvent(ctx, sseEventChan, SSEEvent{Type: "console", Data: string(data)}) {
			return
		}
	}
}

func sendEvent(ctx context.Context, sseEventChan chan<- SSEEvent, event SSEEvent) bool {
	select {
	case sseEventChan <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write; drain so the producer never blocks
				for range sseEventChan {
				}
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}
