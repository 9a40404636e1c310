package ledger

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
	records  []Record
}

// NewMemoryStore creates a concurrency-safe in-memory store used in tests and
// when the service runs without a database.
func NewMemoryStore() Store {
	return &memoryStore{accounts: make(map[string]Account)}
}

func (s *memoryStore) CreateAccount(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.AccountNumber]; exists {
		return ErrAccountExists
	}
	s.accounts[account.AccountNumber] = account
	return nil
}

func (s *memoryStore) Account(_ context.Context, number string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[number]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acct, nil
}

func (s *memoryStore) AccountsByOwner(_ context.Context, ownerID string) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Account
	for _, acct := range s.accounts {
		if acct.OwnerID == ownerID {
			out = append(out, acct)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	return out, nil
}

func (s *memoryStore) AdjustBalance(_ context.Context, number string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[number]
	if !ok {
		return 0, ErrAccountNotFound
	}
	next := acct.Balance + delta
	if next < 0 {
		return 0, ErrInsufficientFunds
	}
	acct.Balance = next
	s.accounts[number] = acct
	return next, nil
}

func (s *memoryStore) AppendRecord(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *memoryStore) RecordsByAccount(_ context.Context, number string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.FromAccount == number || r.ToAccount == number {
			out = append(out, r)
		}
	}
	return out, nil
}
