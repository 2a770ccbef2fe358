package ports

import "context"

// Message is the validated domain record for one inbound SMS event.
// Text is nil when the sender omitted it; an empty string is kept as such.
type Message struct {
	MessageID  string
	FromMSISDN string
	ToMSISDN   string
	Ts         string
	Text       *string
	CreatedAt  string
}

// InsertResult classifies an idempotent insert.
type InsertResult int

const (
	Created InsertResult = iota + 1
	Duplicate
)

func (r InsertResult) String() string {
	switch r {
	case Created:
		return "created"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// MessageQuery selects a page of messages. Empty filter strings are ignored;
// all set filters apply conjunctively.
type MessageQuery struct {
	Limit        int
	Offset       int
	From         string
	Since        string
	TextContains string
}

// SenderCount is one row of the per-sender breakdown.
type SenderCount struct {
	From  string
	Count int64
}

// Summary aggregates the whole store. FirstTs and LastTs are nil when empty.
type Summary struct {
	TotalMessages     int64
	SendersCount      int64
	MessagesPerSender []SenderCount
	FirstTs           *string
	LastTs            *string
}

// MessagesRepository persists messages idempotently by MessageID.
type MessagesRepository interface {
	Insert(ctx context.Context, m *Message) (InsertResult, error)
	Query(ctx context.Context, q MessageQuery) ([]*Message, int64, error)
	Stats(ctx context.Context) (*Summary, error)
	Get(ctx context.Context, messageID string) (*Message, error)
	Ping(ctx context.Context) error
}
