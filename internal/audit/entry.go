package audit

import (
	"context"
	"time"
)

// Entry is one audit record describing an operator action.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor,omitempty"`
	Action    string    `json:"action"`
	OrderID   string    `json:"order_id,omitempty"`
	Customer  string    `json:"customer,omitempty"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
}

// Log accepts audit entries. The manager implements it; Nop discards
// entries for contexts where no audit pipeline is wired.
type Log interface {
	LogEntry(ctx context.Context, entry Entry)
}

type Nop struct{}

func (Nop) LogEntry(context.Context, Entry) {}
