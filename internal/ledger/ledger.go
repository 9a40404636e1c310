package ledger

import (
	"context"
	"time"
)

// Account is a balance-bearing account owned by a user. Balances are in
// minor units and never observed negative.
type Account struct {
	AccountNumber string
	OwnerID       string
	Type          string
	Balance       int64
	CreatedAt     time.Time
}

// Record is an immutable audit entry documenting one committed balance
// mutation. FromAccount is empty for deposits, ToAccount is empty for
// withdrawals, both are set for transfers.
type Record struct {
	TxID        string
	FromAccount string
	ToAccount   string
	Amount      int64
	CreatedAt   time.Time
}

// Store is the durable mapping from account number to balance plus the
// append-only audit log. AdjustBalance is the serialization point: it applies
// the delta as a single atomic read-modify-write and rejects any result below
// zero, so a sufficiency decision can never go stale between check and write.
type Store interface {
	CreateAccount(ctx context.Context, account Account) error
	Account(ctx context.Context, number string) (Account, error)
	AccountsByOwner(ctx context.Context, ownerID string) ([]Account, error)
	AdjustBalance(ctx context.Context, number string, delta int64) (int64, error)
	AppendRecord(ctx context.Context, record Record) error
	RecordsByAccount(ctx context.Context, number string) ([]Record, error)
}
