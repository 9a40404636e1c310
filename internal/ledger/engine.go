package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/minibank/minibank/internal/events"
)

// DefaultLockTimeout bounds how long an operation waits for account locks
// before failing with ErrContention.
const DefaultLockTimeout = 5 * time.Second

// OpResult captures the outcome of a single-account operation.
type OpResult struct {
	TxID       string
	NewBalance int64
}

// TransferResult captures the outcome of a two-account transfer.
type TransferResult struct {
	TxID        string
	FromBalance int64
	ToBalance   int64
}

// Engine implements deposits, withdrawals and transfers as atomic units
// against a Store. Each successful operation appends exactly one audit
// record; a failed operation leaves every balance as it found it and
// appends nothing.
type Engine struct {
	store     Store
	locks     *lockTable
	publisher events.Publisher
	logger    *slog.Logger
}

// NewEngine builds a ledger engine on top of the given store. The publisher
// may be nil when no event delivery is wanted; lockTimeout <= 0 falls back
// to DefaultLockTimeout.
func NewEngine(store Store, publisher events.Publisher, logger *slog.Logger, lockTimeout time.Duration) *Engine {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     store,
		locks:     newLockTable(lockTimeout),
		publisher: publisher,
		logger:    logger,
	}
}

// Deposit credits the account and appends a record with only the destination
// side set.
func (e *Engine) Deposit(ctx context.Context, account string, amount int64) (OpResult, error) {
	if amount <= 0 {
		return OpResult{}, ErrInvalidAmount
	}

	release, err := e.locks.acquire(ctx, account)
	if err != nil {
		return OpResult{}, err
	}
	defer release()

	balance, err := e.store.AdjustBalance(ctx, account, amount)
	if err != nil {
		return OpResult{}, err
	}

	record := Record{
		TxID:      uuid.NewString(),
		ToAccount: account,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.AppendRecord(ctx, record); err != nil {
		e.compensate(account, -amount)
		return OpResult{}, fmt.Errorf("append deposit record: %w", err)
	}

	e.publish(record)
	return OpResult{TxID: record.TxID, NewBalance: balance}, nil
}

// Withdraw debits the account and appends a record with only the source side
// set. Sufficiency is enforced by AdjustBalance itself, inside the same
// atomic step as the decrement.
func (e *Engine) Withdraw(ctx context.Context, account string, amount int64) (OpResult, error) {
	if amount <= 0 {
		return OpResult{}, ErrInvalidAmount
	}

	release, err := e.locks.acquire(ctx, account)
	if err != nil {
		return OpResult{}, err
	}
	defer release()

	balance, err := e.store.AdjustBalance(ctx, account, -amount)
	if err != nil {
		return OpResult{}, err
	}

	record := Record{
		TxID:        uuid.NewString(),
		FromAccount: account,
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.store.AppendRecord(ctx, record); err != nil {
		e.compensate(account, amount)
		return OpResult{}, fmt.Errorf("append withdrawal record: %w", err)
	}

	e.publish(record)
	return OpResult{TxID: record.TxID, NewBalance: balance}, nil
}

// Transfer debits from and credits to as one atomic unit, appending a single
// record carrying both sides. Locks for both accounts are taken up front in
// canonical order and held until the record is appended or the rollback is
// complete, so no reader ever observes one leg without the other.
// Self-transfers are allowed and net to zero.
func (e *Engine) Transfer(ctx context.Context, from, to string, amount int64) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}

	release, err := e.locks.acquire(ctx, from, to)
	if err != nil {
		return TransferResult{}, err
	}
	defer release()

	// Both accounts must exist before either side is touched.
	if _, err := e.store.Account(ctx, from); err != nil {
		return TransferResult{}, err
	}
	if _, err := e.store.Account(ctx, to); err != nil {
		return TransferResult{}, err
	}

	fromBalance, err := e.store.AdjustBalance(ctx, from, -amount)
	if err != nil {
		return TransferResult{}, err
	}

	if err := ctx.Err(); err != nil {
		e.compensate(from, amount)
		return TransferResult{}, err
	}

	toBalance, err := e.store.AdjustBalance(ctx, to, amount)
	if err != nil {
		e.compensate(from, amount)
		return TransferResult{}, err
	}

	record := Record{
		TxID:        uuid.NewString(),
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.store.AppendRecord(ctx, record); err != nil {
		e.compensate(to, -amount)
		e.compensate(from, amount)
		return TransferResult{}, fmt.Errorf("append transfer record: %w", err)
	}

	if from == to {
		// Both legs land on one account; the credit result is the final balance.
		fromBalance = toBalance
	}

	e.publish(record)
	return TransferResult{TxID: record.TxID, FromBalance: fromBalance, ToBalance: toBalance}, nil
}

// ReadBalance returns the current balance. It takes the account lock so a
// transfer in flight is either fully visible or not at all.
func (e *Engine) ReadBalance(ctx context.Context, account string) (int64, error) {
	release, err := e.locks.acquire(ctx, account)
	if err != nil {
		return 0, err
	}
	defer release()

	acct, err := e.store.Account(ctx, account)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// Transactions lists the audit records touching the account, most recent
// first. Unknown accounts fail with ErrAccountNotFound.
func (e *Engine) Transactions(ctx context.Context, account string) ([]Record, error) {
	release, err := e.locks.acquire(ctx, account)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := e.store.Account(ctx, account); err != nil {
		return nil, err
	}
	return e.store.RecordsByAccount(ctx, account)
}

// compensate reverses an already-applied delta during rollback. It runs on a
// fresh context because the caller's context may already be cancelled.
func (e *Engine) compensate(account string, delta int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := e.store.AdjustBalance(ctx, account, delta); err != nil {
		e.logger.Error("rollback failed, balance inconsistent",
			"account", account,
			"delta", delta,
			"error", err,
		)
	}
}

func (e *Engine) publish(record Record) {
	if e.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := e.publisher.Publish(ctx, events.TransactionCompleted{
		TxID:        record.TxID,
		FromAccount: record.FromAccount,
		ToAccount:   record.ToAccount,
		Amount:      record.Amount,
		OccurredAt:  record.CreatedAt,
	})
	if err != nil {
		e.logger.Warn("publish transaction event", "tx_id", record.TxID, "error", err)
	}
}
