package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// InteractionRecord is one completed query/response pair. Records are
// immutable once created and live only for the lifetime of the session.
type InteractionRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Route     Route     `json:"route"`
	Rationale string    `json:"rationale"`
	Errored   bool      `json:"errored,omitempty"`
}

// History is the session-owned, append-only interaction log. The session
// appends between queries; in-flight queries only ever see bounded copies via
// Window. The lock exists for hosts that read history concurrently (the HTTP
// adapter); it is not a license to mutate during a query.
type History struct {
	mu      sync.RWMutex
	records []InteractionRecord
}

// NewHistory returns an empty log.
func NewHistory() *History {
	return &History{}
}

// Append adds a completed interaction.
func (h *History) Append(rec InteractionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
}

// Clear discards all records.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}

// Len reports the number of recorded interactions.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Window returns a copy of the last k records in chronological order.
// It returns fewer than k only when the log is shorter than k.
// Each consumer states its own k; there is no global window size.
func (h *History) Window(k int) []InteractionRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if k <= 0 || len(h.records) == 0 {
		return nil
	}
	start := len(h.records) - k
	if start < 0 {
		start = 0
	}
	out := make([]InteractionRecord, len(h.records)-start)
	copy(out, h.records[start:])
	return out
}

// All returns a copy of the full log in chronological order.
func (h *History) All() []InteractionRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]InteractionRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Summary renders a numbered digest of the log for display.
func (h *History) Summary() string {
	records := h.All()
	if len(records) == 0 {
		return "No conversation history yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation History (%d interactions)\n", len(records))
	b.WriteString(strings.Repeat("=", 80))
	for i, rec := range records {
		fmt.Fprintf(&b, "\n#%d [%s]\n", i+1, rec.Timestamp.Format("15:04:05"))
		fmt.Fprintf(&b, "Q: %s\n", rec.Query)
		fmt.Fprintf(&b, "Route: %s (Reason: %s)\n", rec.Route, rec.Rationale)
		fmt.Fprintf(&b, "A: %s\n", truncate(rec.Response, 200))
		b.WriteString(strings.Repeat("-", 80))
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
