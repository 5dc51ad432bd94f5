package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/owaste/rewards-service/internal/domain"
)

// LedgerRepository stores point-affecting events.
type LedgerRepository interface {
	// Record moves the member's balance by txn.Amount and appends the entry in
	// one atomic step. Negative amounts fail with ErrInsufficientBalance
	// without touching state when the balance does not cover them.
	Record(ctx context.Context, txn *domain.Transaction) (int, error)
	// Settle sets the final status of an entry. Settling a spend as failed
	// gives its points back in the same step; settling twice is a no-op.
	Settle(ctx context.Context, userID, txnID string, status domain.TransactionStatus) (int, error)
	// Append stores an entry without moving the balance. Used for imports.
	Append(ctx context.Context, txn *domain.Transaction) error
	// ListByUser returns a member's entries, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
}

// NewTransactionID returns a ledger entry identifier.
func NewTransactionID() string {
	return "txn_" + uuid.NewString()
}

func stamp(txn *domain.Transaction) {
	if txn.ID == "" {
		txn.ID = NewTransactionID()
	}
	if txn.OccurredAt.IsZero() {
		txn.OccurredAt = time.Now().UTC()
	}
}

type ledgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository returns a Postgres-backed implementation.
func NewLedgerRepository(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepository{pool: pool}
}

func (r *ledgerRepository) Record(ctx context.Context, txn *domain.Transaction) (int, error) {
	if txn.Amount == 0 {
		return 0, domain.ErrInvalidAmount
	}
	stamp(txn)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var balance int
	if txn.Amount > 0 {
		const credit = `
            UPDATE users SET points = points + $1, updated_at=NOW()
            WHERE id=$2
            RETURNING points`
		err = tx.QueryRow(ctx, credit, txn.Amount, txn.UserID).Scan(&balance)
	} else {
		const debit = `
            UPDATE users SET points = points - $1, updated_at=NOW()
            WHERE id=$2 AND points >= $1
            RETURNING points`
		err = tx.QueryRow(ctx, debit, -txn.Amount, txn.UserID).Scan(&balance)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		var current int
		err := tx.QueryRow(ctx, `SELECT points FROM users WHERE id=$1`, txn.UserID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		if err != nil {
			return 0, err
		}
		return current, domain.ErrInsufficientBalance
	}
	if err != nil {
		return 0, err
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *ledgerRepository) Settle(ctx context.Context, userID, txnID string, status domain.TransactionStatus) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var (
		amount   int
		previous domain.TransactionStatus
	)
	err = tx.QueryRow(ctx,
		`SELECT amount, status FROM transactions WHERE id=$1 AND user_id=$2 FOR UPDATE`,
		txnID, userID,
	).Scan(&amount, &previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var balance int
	if status == domain.StatusFailed && previous != domain.StatusFailed && amount < 0 {
		err = tx.QueryRow(ctx,
			`UPDATE users SET points = points + $1, updated_at=NOW() WHERE id=$2 RETURNING points`,
			-amount, userID,
		).Scan(&balance)
	} else {
		err = tx.QueryRow(ctx, `SELECT points FROM users WHERE id=$1`, userID).Scan(&balance)
	}
	if err != nil {
		return 0, err
	}
	if previous != domain.StatusFailed {
		if _, err := tx.Exec(ctx, `UPDATE transactions SET status=$1 WHERE id=$2`, status, txnID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *ledgerRepository) Append(ctx context.Context, txn *domain.Transaction) error {
	stamp(txn)
	return insertTransaction(ctx, r.pool, txn)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertTransaction(ctx context.Context, db execer, txn *domain.Transaction) error {
	const query = `
        INSERT INTO transactions (id, user_id, type, category, amount, description, location,
            occurred_at, status, waste_type, reward_id, cash_amount)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),$11,$12::numeric)`

	var cash *string
	if txn.CashAmount != nil {
		s := txn.CashAmount.String()
		cash = &s
	}
	_, err := db.Exec(ctx, query,
		txn.ID,
		txn.UserID,
		txn.Type,
		txn.Category,
		txn.Amount,
		txn.Description,
		txn.Location,
		txn.OccurredAt,
		txn.Status,
		txn.WasteType,
		txn.RewardID,
		cash,
	)
	return err
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	const query = `
        SELECT id, user_id, type, category, amount, description, location, occurred_at, status,
               COALESCE(waste_type, ''), reward_id, cash_amount::text
        FROM transactions WHERE user_id=$1
        ORDER BY occurred_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var (
			txn  domain.Transaction
			cash *string
		)
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.Type,
			&txn.Category,
			&txn.Amount,
			&txn.Description,
			&txn.Location,
			&txn.OccurredAt,
			&txn.Status,
			&txn.WasteType,
			&txn.RewardID,
			&cash,
		); err != nil {
			return nil, err
		}
		if cash != nil {
			d, err := decimal.NewFromString(*cash)
			if err != nil {
				return nil, fmt.Errorf("transaction %s cash amount: %w", txn.ID, err)
			}
			txn.CashAmount = &d
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
