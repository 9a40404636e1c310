package statement

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minibank/minibank/internal/ledger"
)

// minorUnitScale converts stored minor units to major units for display.
const minorUnitScale = 2

// Service renders transaction history for an account.
type Service struct {
	engine *ledger.Engine
}

// NewService builds a statement service on top of the ledger engine.
func NewService(engine *ledger.Engine) *Service {
	return &Service{engine: engine}
}

// Entry is one row of an account statement.
type Entry struct {
	TxID        string `json:"tx_id"`
	FromAccount string `json:"from"`
	ToAccount   string `json:"to"`
	Amount      string `json:"amount"`
	Time        string `json:"time"`
}

// Transactions returns the statement entries for an account, most recent
// first, with amounts rendered in major units.
func (s *Service) Transactions(ctx context.Context, account string) ([]Entry, error) {
	records, err := s.engine.Transactions(ctx, account)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{
			TxID:        rec.TxID,
			FromAccount: rec.FromAccount,
			ToAccount:   rec.ToAccount,
			Amount:      majorUnits(rec.Amount),
			Time:        rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return entries, nil
}

// ExportCSV streams the account statement as CSV.
func (s *Service) ExportCSV(ctx context.Context, account string, w io.Writer) error {
	entries, err := s.Transactions(ctx, account)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tx_id", "from", "to", "amount", "time"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.TxID, e.FromAccount, e.ToAccount, e.Amount, e.Time}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func majorUnits(minor int64) string {
	return decimal.New(minor, -minorUnitScale).StringFixed(minorUnitScale)
}
