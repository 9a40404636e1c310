package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/minibank/minibank/internal/logging"
)

func newTestEngine(t *testing.T) (*Engine, Store) {
	t.Helper()
	store := NewMemoryStore()
	engine := NewEngine(store, nil, logging.Discard(), time.Second)
	return engine, store
}

func mustCreate(t *testing.T, store Store, number string, balance int64) {
	t.Helper()
	if err := store.CreateAccount(context.Background(), Account{
		AccountNumber: number,
		OwnerID:       "owner-1",
		Type:          "Savings",
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create account %s: %v", number, err)
	}
	if balance > 0 {
		SeedBalance(store, number, balance)
	}
}

func TestDepositAppendsOneRecord(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 0)

	res, err := engine.Deposit(ctx, "ACC1", 250)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if res.NewBalance != 250 {
		t.Fatalf("expected balance 250, got %d", res.NewBalance)
	}
	if res.TxID == "" {
		t.Fatalf("expected a transaction id")
	}

	records, err := engine.Transactions(ctx, "ACC1")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.FromAccount != "" || rec.ToAccount != "ACC1" || rec.Amount != 250 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 100)

	if _, err := engine.Deposit(ctx, "ACC1", -5); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := engine.Deposit(ctx, "ACC1", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	balance, err := engine.ReadBalance(ctx, "ACC1")
	if err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("balance changed on rejected deposit: %d", balance)
	}
	records, _ := engine.Transactions(ctx, "ACC1")
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestDepositUnknownAccount(t *testing.T) {
	engine, _ := newTestEngine(t)
	if _, err := engine.Deposit(context.Background(), "ACC404", 10); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestWithdrawToZero(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 100)

	res, err := engine.Withdraw(ctx, "ACC1", 100)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if res.NewBalance != 0 {
		t.Fatalf("expected balance 0, got %d", res.NewBalance)
	}

	records, _ := engine.Transactions(ctx, "ACC1")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.FromAccount != "ACC1" || rec.ToAccount != "" || rec.Amount != 100 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 50)

	if _, err := engine.Withdraw(ctx, "ACC1", 51); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	balance, _ := engine.ReadBalance(ctx, "ACC1")
	if balance != 50 {
		t.Fatalf("balance changed on failed withdrawal: %d", balance)
	}
	records, _ := engine.Transactions(ctx, "ACC1")
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestTransferConservesTotal(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 100)
	mustCreate(t, store, "ACC2", 0)

	res, err := engine.Transfer(ctx, "ACC1", "ACC2", 60)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if res.FromBalance != 40 || res.ToBalance != 60 {
		t.Fatalf("unexpected balances: %+v", res)
	}

	records, _ := engine.Transactions(ctx, "ACC2")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.FromAccount != "ACC1" || rec.ToAccount != "ACC2" || rec.Amount != 60 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestTransferInsufficientFundsLeavesStateUntouched(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 100)
	mustCreate(t, store, "ACC2", 0)

	if _, err := engine.Transfer(ctx, "ACC1", "ACC2", 150); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	fromBal, _ := engine.ReadBalance(ctx, "ACC1")
	toBal, _ := engine.ReadBalance(ctx, "ACC2")
	if fromBal != 100 || toBal != 0 {
		t.Fatalf("balances moved on failed transfer: %d/%d", fromBal, toBal)
	}
	records, _ := engine.Transactions(ctx, "ACC1")
	if len(records) != 0 {
		t.Fatalf("expected no records after failed transfer, got %d", len(records))
	}
}

func TestTransferUnknownDestination(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 100)

	if _, err := engine.Transfer(ctx, "ACC1", "ACC404", 10); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	balance, _ := engine.ReadBalance(ctx, "ACC1")
	if balance != 100 {
		t.Fatalf("source balance moved: %d", balance)
	}
}

func TestSelfTransferNetsToZero(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 100)

	res, err := engine.Transfer(ctx, "ACC1", "ACC1", 10)
	if err != nil {
		t.Fatalf("self transfer: %v", err)
	}
	if res.FromBalance != 100 || res.ToBalance != 100 {
		t.Fatalf("self transfer changed balance: %+v", res)
	}

	records, _ := engine.Transactions(ctx, "ACC1")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].FromAccount != "ACC1" || records[0].ToAccount != "ACC1" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestSelfTransferStillChecksFunds(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 5)

	if _, err := engine.Transfer(ctx, "ACC1", "ACC1", 10); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestConcurrentDepositsAreNotLost(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 0)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.Deposit(ctx, "ACC1", 1); err != nil {
				t.Errorf("deposit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	balance, err := engine.ReadBalance(ctx, "ACC1")
	if err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if balance != workers {
		t.Fatalf("lost updates: expected %d, got %d", workers, balance)
	}
	records, _ := engine.Transactions(ctx, "ACC1")
	if len(records) != workers {
		t.Fatalf("expected %d records, got %d", workers, len(records))
	}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.TxID]; dup {
			t.Fatalf("duplicate tx id %s", r.TxID)
		}
		seen[r.TxID] = struct{}{}
	}
}

func TestOpposingTransfersDoNotDeadlock(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 10_000)
	mustCreate(t, store, "ACC2", 10_000)

	const rounds = 25
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := engine.Transfer(ctx, "ACC1", "ACC2", 10); err != nil {
				t.Errorf("transfer a->b: %v", err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := engine.Transfer(ctx, "ACC2", "ACC1", 10); err != nil {
				t.Errorf("transfer b->a: %v", err)
			}
		}
	}()
	wg.Wait()

	a, _ := engine.ReadBalance(ctx, "ACC1")
	b, _ := engine.ReadBalance(ctx, "ACC2")
	if a+b != 20_000 {
		t.Fatalf("total not conserved: %d", a+b)
	}
}

func TestLockContentionTimesOut(t *testing.T) {
	store := NewMemoryStore()
	engine := NewEngine(store, nil, logging.Discard(), 50*time.Millisecond)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 100)

	release, err := engine.locks.acquire(ctx, "ACC1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	if _, err := engine.Deposit(ctx, "ACC1", 10); !errors.Is(err, ErrContention) {
		t.Fatalf("expected ErrContention, got %v", err)
	}
}

func TestCancelledContextLeavesNoPartialState(t *testing.T) {
	engine, store := newTestEngine(t)
	mustCreate(t, store, "ACC1", 100)
	mustCreate(t, store, "ACC2", 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Transfer(ctx, "ACC1", "ACC2", 10); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	a, _ := engine.ReadBalance(context.Background(), "ACC1")
	b, _ := engine.ReadBalance(context.Background(), "ACC2")
	if a != 100 || b != 0 {
		t.Fatalf("balances moved after cancellation: %d/%d", a, b)
	}
}

func TestTransactionsMostRecentFirst(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, store, "ACC1", 0)

	first, err := engine.Deposit(ctx, "ACC1", 10)
	if err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	second, err := engine.Deposit(ctx, "ACC1", 20)
	if err != nil {
		t.Fatalf("second deposit: %v", err)
	}

	records, err := engine.Transactions(ctx, "ACC1")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].TxID != second.TxID || records[1].TxID != first.TxID {
		t.Fatalf("records not most-recent-first: %+v", records)
	}
}

func TestTransactionsUnknownAccount(t *testing.T) {
	engine, _ := newTestEngine(t)
	if _, err := engine.Transactions(context.Background(), "ACC404"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

// failingStore wraps a Store and fails AppendRecord to exercise rollback.
type failingStore struct {
	Store
	failAppend bool
}

func (f *failingStore) AppendRecord(ctx context.Context, record Record) error {
	if f.failAppend {
		return errors.New("disk full")
	}
	return f.Store.AppendRecord(ctx, record)
}

func TestTransferRollsBackWhenAppendFails(t *testing.T) {
	inner := NewMemoryStore()
	store := &failingStore{Store: inner, failAppend: true}
	engine := NewEngine(store, nil, logging.Discard(), time.Second)
	ctx := context.Background()
	mustCreate(t, inner, "ACC1", 100)
	mustCreate(t, inner, "ACC2", 0)

	if _, err := engine.Transfer(ctx, "ACC1", "ACC2", 40); err == nil {
		t.Fatalf("expected append failure to surface")
	}

	a, _ := engine.ReadBalance(ctx, "ACC1")
	b, _ := engine.ReadBalance(ctx, "ACC2")
	if a != 100 || b != 0 {
		t.Fatalf("rollback incomplete: %d/%d", a, b)
	}
	records, _ := inner.RecordsByAccount(ctx, "ACC1")
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestDepositRollsBackWhenAppendFails(t *testing.T) {
	inner := NewMemoryStore()
	store := &failingStore{Store: inner, failAppend: true}
	engine := NewEngine(store, nil, logging.Discard(), time.Second)
	ctx := context.Background()
	mustCreate(t, inner, "ACC1", 100)

	if _, err := engine.Deposit(ctx, "ACC1", 40); err == nil {
		t.Fatalf("expected append failure to surface")
	}
	balance, _ := engine.ReadBalance(ctx, "ACC1")
	if balance != 100 {
		t.Fatalf("rollback incomplete: %d", balance)
	}
}
