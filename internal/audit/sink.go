package audit

import (
	"context"
	"time"
)

// Record is one audit entry per webhook request. The request body is never
// part of a record.
type Record struct {
	Time      time.Time `json:"time"`
	RequestID string    `json:"request_id"`
	Outcome   string    `json:"outcome"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	LatencyMs float64   `json:"latency_ms"`
	MessageID string    `json:"message_id,omitempty"`
	Dup       *bool     `json:"dup,omitempty"`
	Fields    []string  `json:"fields,omitempty"`
}

// Sink receives audit records. Implementations must be safe for concurrent
// use; callers treat Emit errors as best-effort.
type Sink interface {
	Emit(ctx context.Context, rec Record) error
	Close() error
}

// publishTimeout bounds a single remote publish.
const publishTimeout = 2 * time.Second

type Noop struct{}

func NewNoop() *Noop                               { return &Noop{} }
func (n *Noop) Emit(context.Context, Record) error { return nil }
func (n *Noop) Close() error                       { return nil }
