package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Service interface {
	Debit(ctx context.Context, tx pgx.Tx, email string, amount float64) (float64, error)
	Credit(ctx context.Context, tx pgx.Tx, email string, amount float64) (float64, error)
	Balance(ctx context.Context, email string) (float64, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

var _ Service = (*service)(nil)

func (s *service) Debit(ctx context.Context, tx pgx.Tx, email string, amount float64) (float64, error) {
	return s.repo.Debit(ctx, tx, email, amount)
}

func (s *service) Credit(ctx context.Context, tx pgx.Tx, email string, amount float64) (float64, error) {
	return s.repo.Credit(ctx, tx, email, amount)
}

func (s *service) Balance(ctx context.Context, email string) (float64, error) {
	return s.repo.Balance(ctx, email)
}

// ErrInsufficientFunds is returned when the account balance is too low for a debit.
var ErrInsufficientFunds = errInsufficientFunds

// ErrAccountNotFound is returned when the debited or credited account does not exist.
var ErrAccountNotFound = errAccountNotFound
