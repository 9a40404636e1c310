package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minibank/minibank/internal/ledger"
)

const (
	defaultType = "Savings"

	// account number collisions are rare; a handful of retries is plenty.
	maxNumberAttempts = 5
)

// ErrOwnerRequired indicates the creation request carried no owner.
var ErrOwnerRequired = errors.New("owner id is required")

// Service provisions accounts against the ledger store. Accounts open with a
// zero balance; only the ledger engine mutates them afterwards.
type Service struct {
	store ledger.Store
}

// NewService builds an account service.
func NewService(store ledger.Store) *Service {
	return &Service{store: store}
}

// Create provisions a new account for the owner. The account type defaults
// to Savings, matching the original product.
func (s *Service) Create(ctx context.Context, ownerID, accountType string) (ledger.Account, error) {
	if ownerID == "" {
		return ledger.Account{}, ErrOwnerRequired
	}
	if accountType == "" {
		accountType = defaultType
	}

	var lastErr error
	for i := 0; i < maxNumberAttempts; i++ {
		acct := ledger.Account{
			AccountNumber: newAccountNumber(),
			OwnerID:       ownerID,
			Type:          accountType,
			Balance:       0,
			CreatedAt:     time.Now().UTC(),
		}
		err := s.store.CreateAccount(ctx, acct)
		if err == nil {
			return acct, nil
		}
		if !errors.Is(err, ledger.ErrAccountExists) {
			return ledger.Account{}, err
		}
		lastErr = err
	}
	return ledger.Account{}, fmt.Errorf("allocate account number: %w", lastErr)
}

// ListByOwner returns all accounts belonging to a user.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]ledger.Account, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	return s.store.AccountsByOwner(ctx, ownerID)
}

// newAccountNumber produces an ACC-prefixed number with eight decimal digits
// drawn from uuid entropy.
func newAccountNumber() string {
	id := uuid.New()
	digits := make([]byte, 8)
	for i := range digits {
		digits[i] = '0' + id[i]%10
	}
	return "ACC" + string(digits)
}
