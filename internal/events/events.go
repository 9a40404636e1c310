package events

import (
	"context"
	"log/slog"
	"time"
)

// TransactionCompleted is emitted after a ledger operation has durably
// committed. Amounts are in minor units.
type TransactionCompleted struct {
	TxID        string    `json:"tx_id"`
	FromAccount string    `json:"from_account,omitempty"`
	ToAccount   string    `json:"to_account,omitempty"`
	Amount      int64     `json:"amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher delivers transaction events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event TransactionCompleted) error
}

// LogPublisher writes events to the structured logger. Used when no broker is
// configured and in tests.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a logging publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish writes the event to the logger.
func (p *LogPublisher) Publish(_ context.Context, event TransactionCompleted) error {
	if p == nil || p.logger == nil {
		return nil
	}
	p.logger.Info("transaction completed",
		"tx_id", event.TxID,
		"from_account", event.FromAccount,
		"to_account", event.ToAccount,
		"amount", event.Amount,
	)
	return nil
}
