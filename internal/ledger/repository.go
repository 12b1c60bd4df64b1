package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errInsufficientFunds = errors.New("insufficient funds")
	errAccountNotFound   = errors.New("account not found")
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Debit locks the account row, verifies the balance covers amount, and
// deducts it. Call within a transaction; the row lock is held until commit,
// so a concurrent debit on the same account cannot pass the balance check
// against a stale read.
func (r *Repository) Debit(ctx context.Context, tx pgx.Tx, email string, amount float64) (float64, error) {
	var balance float64
	err := tx.QueryRow(ctx, `SELECT money FROM account WHERE email = $1 FOR UPDATE`, email).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errAccountNotFound
	}
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return 0, errInsufficientFunds
	}
	var newBalance float64
	err = tx.QueryRow(ctx, `
		UPDATE account SET money = money - $1 WHERE email = $2
		RETURNING money
	`, amount, email).Scan(&newBalance)
	return newBalance, err
}

// Credit adds amount to the account in a single atomic UPDATE and returns
// the post-credit balance.
func (r *Repository) Credit(ctx context.Context, tx pgx.Tx, email string, amount float64) (float64, error) {
	var newBalance float64
	err := tx.QueryRow(ctx, `
		UPDATE account SET money = money + $1 WHERE email = $2
		RETURNING money
	`, amount, email).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errAccountNotFound
	}
	return newBalance, err
}

// Balance is a point read with no side effect.
func (r *Repository) Balance(ctx context.Context, email string) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `SELECT money FROM account WHERE email = $1`, email).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errAccountNotFound
	}
	return balance, err
}
