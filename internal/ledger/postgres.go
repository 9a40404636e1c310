package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists accounts and audit records in PostgreSQL.
//
// Schema:
//
//	accounts     (account_number text primary key, owner_id uuid, account_type text,
//	              balance bigint not null check (balance >= 0), created_at timestamptz)
//	transactions (id bigserial primary key, tx_id uuid unique, from_account text,
//	              to_account text, amount bigint not null check (amount > 0),
//	              created_at timestamptz) -- append-only, never updated or deleted
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateAccount inserts a new account row with its opening balance.
func (s *PostgresStore) CreateAccount(ctx context.Context, account Account) error {
	_, err := s.db.Exec(ctx, `INSERT INTO accounts (account_number, owner_id, account_type, balance, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		account.AccountNumber, account.OwnerID, account.Type, account.Balance, account.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAccountExists
	}
	return err
}

// Account fetches one account row by number.
func (s *PostgresStore) Account(ctx context.Context, number string) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT account_number, owner_id, account_type, balance, created_at
        FROM accounts WHERE account_number = $1`, number)
	var acct Account
	if err := row.Scan(&acct.AccountNumber, &acct.OwnerID, &acct.Type, &acct.Balance, &acct.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return acct, nil
}

// AccountsByOwner lists the accounts belonging to a user.
func (s *PostgresStore) AccountsByOwner(ctx context.Context, ownerID string) ([]Account, error) {
	rows, err := s.db.Query(ctx, `SELECT account_number, owner_id, account_type, balance, created_at
        FROM accounts WHERE owner_id = $1 ORDER BY account_number`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var acct Account
		if err := rows.Scan(&acct.AccountNumber, &acct.OwnerID, &acct.Type, &acct.Balance, &acct.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, rows.Err()
}

// AdjustBalance applies the delta as one conditional UPDATE so the
// sufficiency check and the write cannot be separated by a concurrent
// adjustment on the same row.
func (s *PostgresStore) AdjustBalance(ctx context.Context, number string, delta int64) (int64, error) {
	row := s.db.QueryRow(ctx, `UPDATE accounts SET balance = balance + $1
        WHERE account_number = $2 AND balance + $1 >= 0
        RETURNING balance`, delta, number)
	var balance int64
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the account is unknown or the debit would go negative.
			if _, acctErr := s.Account(ctx, number); acctErr != nil {
				return 0, acctErr
			}
			return 0, ErrInsufficientFunds
		}
		return 0, fmt.Errorf("adjust balance: %w", err)
	}
	return balance, nil
}

// AppendRecord inserts one immutable audit row. Empty account references are
// stored as NULL.
func (s *PostgresStore) AppendRecord(ctx context.Context, record Record) error {
	_, err := s.db.Exec(ctx, `INSERT INTO transactions (tx_id, from_account, to_account, amount, created_at)
        VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)`,
		record.TxID, record.FromAccount, record.ToAccount, record.Amount, record.CreatedAt.UTC())
	return err
}

// RecordsByAccount returns the audit rows touching the account, most recent
// first.
func (s *PostgresStore) RecordsByAccount(ctx context.Context, number string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `SELECT tx_id, COALESCE(from_account, ''), COALESCE(to_account, ''), amount, created_at
        FROM transactions WHERE from_account = $1 OR to_account = $1 ORDER BY id DESC`, number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.TxID, &rec.FromAccount, &rec.ToAccount, &rec.Amount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
