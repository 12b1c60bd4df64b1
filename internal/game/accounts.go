package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/config"
	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/ledger"
	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/models"
)

// usernameProbeLimit bounds username allocation: base#0000 .. base#9999.
const usernameProbeLimit = 10000

// UserStore is the account repository surface the manager needs.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, email string) (*models.User, error)
	UpdateUsername(ctx context.Context, email, username string) (bool, error)
	CycleWeather(ctx context.Context, email string) (int, error)
	IncreasePlantLimit(ctx context.Context, tx pgx.Tx, email string, increment int) (int, error)
	Delete(ctx context.Context, tx pgx.Tx, email string) (bool, error)
}

// PlantPurger deletes all of an owner's plants (account deletion cascade).
type PlantPurger interface {
	DeleteByOwner(ctx context.Context, tx pgx.Tx, email string) error
}

// AccountService manages accounts and the purchasable plant capacity.
type AccountService struct {
	db     TxBeginner
	users  UserStore
	plants PlantPurger
	ledger ledger.Service
	cfg    *config.Game
	log    *slog.Logger
}

func NewAccountService(db TxBeginner, users UserStore, plants PlantPurger, led ledger.Service, cfg *config.Game, log *slog.Logger) *AccountService {
	if log == nil {
		log = slog.Default()
	}
	return &AccountService{db: db, users: users, plants: plants, ledger: led, cfg: cfg, log: log}
}

// Create allocates an account for the verified email. The username is the
// email's local part plus the first free #NNNN suffix; the unique constraint
// is the collision detector, so concurrent creations can never share a name.
func (s *AccountService) Create(ctx context.Context, email string) (*models.User, error) {
	base, _, found := strings.Cut(email, "@")
	if !found || base == "" {
		return nil, fmt.Errorf("%w: malformed email %q", ErrInvalidInput, email)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	for i := 0; i < usernameProbeLimit; i++ {
		u := &models.User{
			Email:      email,
			Username:   fmt.Sprintf("%s#%04d", base, i),
			Money:      s.cfg.InitialMoney,
			PlantLimit: s.cfg.InitialPlantLimit,
			Weather:    s.cfg.InitialWeather,
		}
		err := s.users.Insert(ctx, u)
		if err == nil {
			s.log.Info("account created", "email", email, "username", u.Username)
			return u, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") || strings.Contains(pgErr.ConstraintName, "pkey") {
				return nil, ErrDuplicateAccount
			}
			continue // username taken, try the next suffix
		}
		return nil, err
	}
	return nil, ErrCapacityExhausted
}

func (s *AccountService) Get(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, asNotFound(err)
	}
	return u, nil
}

func (s *AccountService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, asNotFound(err)
	}
	return u, nil
}

func (s *AccountService) List(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// Rename changes the display username, keeping uniqueness.
func (s *AccountService) Rename(ctx context.Context, email, username string) error {
	if username == "" {
		return fmt.Errorf("%w: username must not be empty", ErrInvalidInput)
	}
	ok, err := s.users.UpdateUsername(ctx, email, username)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUsernameTaken
		}
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// AdjustMoney credits a positive amount or debits a negative one. Debits go
// through the funds-gated ledger path so the balance can never drop below
// zero.
func (s *AccountService) AdjustMoney(ctx context.Context, email string, amount float64) (float64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var newBalance float64
	if amount >= 0 {
		newBalance, err = s.ledger.Credit(ctx, tx, email, amount)
	} else {
		newBalance, err = s.ledger.Debit(ctx, tx, email, -amount)
	}
	if err != nil {
		return 0, asNotFound(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}

type LimitUpgrade struct {
	CostPaid        int
	NewBalance      float64
	NewPlantLimit   int
	NextUpgradeCost int
}

// IncreasePlantLimit prices the upgrade from the account's current limit,
// debits it, and bumps the limit by the fixed increment — all in one
// transaction. Returns the cost paid and the price of the next upgrade.
func (s *AccountService) IncreasePlantLimit(ctx context.Context, email string) (*LimitUpgrade, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	user, err := s.users.GetForUpdate(ctx, tx, email)
	if err != nil {
		return nil, asNotFound(err)
	}

	cost := UpgradeCost(user.PlantLimit, s.cfg.InitialPlantLimit, s.cfg.PlantLimitIncrease, s.cfg.PlantLimitBaseCost, s.cfg.PlantLimitCostMultiplier)
	newBalance, err := s.ledger.Debit(ctx, tx, email, float64(cost))
	if err != nil {
		return nil, asNotFound(err)
	}

	newLimit, err := s.users.IncreasePlantLimit(ctx, tx, email, s.cfg.PlantLimitIncrease)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	next := UpgradeCost(newLimit, s.cfg.InitialPlantLimit, s.cfg.PlantLimitIncrease, s.cfg.PlantLimitBaseCost, s.cfg.PlantLimitCostMultiplier)
	s.log.Info("plant limit increased", "email", email, "new_limit", newLimit, "cost", cost)
	return &LimitUpgrade{CostPaid: cost, NewBalance: newBalance, NewPlantLimit: newLimit, NextUpgradeCost: next}, nil
}

// CycleWeather advances the weather enum mod 3. No economic effect.
func (s *AccountService) CycleWeather(ctx context.Context, email string) (previous, current int, err error) {
	current, err = s.users.CycleWeather(ctx, email)
	if err != nil {
		return 0, 0, asNotFound(err)
	}
	previous = (current + models.WeatherStates - 1) % models.WeatherStates
	return previous, current, nil
}

// Delete removes the account and all its plants in one atomic scope.
func (s *AccountService) Delete(ctx context.Context, email string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.plants.DeleteByOwner(ctx, tx, email); err != nil {
		return err
	}
	ok, err := s.users.Delete(ctx, tx, email)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.log.Info("account deleted", "email", email)
	return nil
}
