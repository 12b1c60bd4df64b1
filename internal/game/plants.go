package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/config"
	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/ledger"
	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/models"
)

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PlantStore is the plant repository surface the lifecycle machine needs.
type PlantStore interface {
	Insert(ctx context.Context, tx pgx.Tx, p *models.Plant) error
	Get(ctx context.Context, email string, id uuid.UUID) (*models.Plant, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, email string, id uuid.UUID) (*models.Plant, error)
	ListByOwner(ctx context.Context, email string) ([]*models.Plant, error)
	CountByOwner(ctx context.Context, tx pgx.Tx, email string) (int, error)
	SetPosition(ctx context.Context, email string, id uuid.UUID, x, y float64) (bool, error)
	SetGrowth(ctx context.Context, tx pgx.Tx, id uuid.UUID, stage int, growthTimeRemaining, fertilizerRemaining *int) error
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// AccountLocker locks the owner's account row so capacity checks serialize.
type AccountLocker interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, email string) (*models.User, error)
}

// PlantService is the plant lifecycle state machine. Every transition runs
// the precondition reads and the writes inside one transaction; no operation
// partially applies its effect.
type PlantService struct {
	db     TxBeginner
	plants PlantStore
	users  AccountLocker
	ledger ledger.Service
	cfg    *config.Game
	roller *Roller
	log    *slog.Logger
}

func NewPlantService(db TxBeginner, plants PlantStore, users AccountLocker, led ledger.Service, cfg *config.Game, roller *Roller, log *slog.Logger) *PlantService {
	if log == nil {
		log = slog.Default()
	}
	return &PlantService{db: db, plants: plants, users: users, ledger: led, cfg: cfg, roller: roller, log: log}
}

type CreatePlantResult struct {
	Plant      *models.Plant
	MoneySpent float64
	NewBalance float64
}

// Create debits the plant cost, rolls rarity/species/size and inserts the
// plant at stage 0. The account row is locked first so a concurrent create
// cannot exceed the plant limit or overdraw funds.
func (s *PlantService) Create(ctx context.Context, email, plantType string, x, y float64) (*CreatePlantResult, error) {
	if _, ok := s.cfg.Species[plantType]; !ok {
		return nil, fmt.Errorf("%w: unknown plant_type %q", ErrInvalidInput, plantType)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	user, err := s.users.GetForUpdate(ctx, tx, email)
	if err != nil {
		return nil, asNotFound(err)
	}

	count, err := s.plants.CountByOwner(ctx, tx, email)
	if err != nil {
		return nil, err
	}
	if count >= user.PlantLimit {
		return nil, fmt.Errorf("%w: plant limit reached (%d/%d)", ErrInvalidState, count, user.PlantLimit)
	}

	newBalance, err := s.ledger.Debit(ctx, tx, email, s.cfg.PlantCost)
	if err != nil {
		return nil, asNotFound(err)
	}

	rarity := s.roller.Rarity(s.cfg.RarityWeights)
	species, err := s.roller.Species(s.cfg.Species, plantType, rarity)
	if err != nil {
		return nil, err
	}

	p := &models.Plant{
		ID:         uuid.New(),
		OwnerEmail: email,
		Type:       plantType,
		Species:    species,
		Rarity:     rarity,
		Size:       s.roller.Size(),
		Stage:      models.StageSeedling,
		X:          x,
		Y:          y,
	}
	if err := s.plants.Insert(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.log.Info("plant created", "email", email, "plant_id", p.ID, "species", species, "rarity", rarity)
	return &CreatePlantResult{Plant: p, MoneySpent: s.cfg.PlantCost, NewBalance: newBalance}, nil
}

func (s *PlantService) Get(ctx context.Context, email string, id uuid.UUID) (*models.Plant, error) {
	p, err := s.plants.Get(ctx, email, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	return p, nil
}

func (s *PlantService) List(ctx context.Context, email string) ([]*models.Plant, error) {
	return s.plants.ListByOwner(ctx, email)
}

// Move repositions the plant. Orthogonal to lifecycle state, always legal.
func (s *PlantService) Move(ctx context.Context, email string, id uuid.UUID, x, y float64) error {
	ok, err := s.plants.SetPosition(ctx, email, id, x, y)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

type WaterResult struct {
	Cost                float64
	NewBalance          float64
	GrowthTimeRemaining int
}

// Water starts the stage-0 growth timer. Legal only at stage 0 with no timer
// already running; debits the water cost.
func (s *PlantService) Water(ctx context.Context, email string, id uuid.UUID) (*WaterResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := s.plants.GetForUpdate(ctx, tx, email, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	if p.Stage != models.StageSeedling {
		return nil, fmt.Errorf("%w: can only water plants at stage 0", ErrInvalidState)
	}
	if p.GrowthTimeRemaining != nil {
		return nil, fmt.Errorf("%w: plant is already growing and doesn't need water", ErrInvalidState)
	}

	newBalance, err := s.ledger.Debit(ctx, tx, email, s.cfg.WaterCost)
	if err != nil {
		return nil, asNotFound(err)
	}

	growth := s.cfg.Stage0GrowthTime
	if err := s.plants.SetGrowth(ctx, tx, p.ID, p.Stage, &growth, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &WaterResult{Cost: s.cfg.WaterCost, NewBalance: newBalance, GrowthTimeRemaining: growth}, nil
}

type FertilizeResult struct {
	Cost                float64
	NewBalance          float64
	FertilizerRemaining *int
	GrowthTimeRemaining *int
}

// Fertilize decrements the fertilizer counter. Legal only at stage 1 with
// fertilizer still required and no timer running; debits the fertilizer
// cost. The application that exhausts the counter starts the rarity-indexed
// stage-1 growth timer.
func (s *PlantService) Fertilize(ctx context.Context, email string, id uuid.UUID) (*FertilizeResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := s.plants.GetForUpdate(ctx, tx, email, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	if p.Stage != models.StageSprout {
		return nil, fmt.Errorf("%w: can only fertilize plants at stage 1", ErrInvalidState)
	}
	if p.FertilizerRemaining == nil || *p.FertilizerRemaining == 0 {
		return nil, fmt.Errorf("%w: plant doesn't need fertilizer", ErrInvalidState)
	}
	if p.GrowthTimeRemaining != nil {
		return nil, fmt.Errorf("%w: plant is already growing and doesn't need fertilizer", ErrInvalidState)
	}

	newBalance, err := s.ledger.Debit(ctx, tx, email, s.cfg.FertilizerCost)
	if err != nil {
		return nil, asNotFound(err)
	}

	res := &FertilizeResult{Cost: s.cfg.FertilizerCost, NewBalance: newBalance}
	remaining := *p.FertilizerRemaining - 1
	if remaining == 0 {
		growth := s.cfg.Stage1GrowthTimes[p.Rarity]
		if err := s.plants.SetGrowth(ctx, tx, p.ID, p.Stage, &growth, nil); err != nil {
			return nil, err
		}
		res.GrowthTimeRemaining = &growth
	} else {
		if err := s.plants.SetGrowth(ctx, tx, p.ID, p.Stage, nil, &remaining); err != nil {
			return nil, err
		}
		res.FertilizerRemaining = &remaining
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

type GrowResult struct {
	GrowthTimeRemaining *int
	NewStage            *int
	StageAdvanced       bool
}

// Grow counts the client-supplied elapsed time against the growth timer.
// When the timer reaches zero the plant advances one stage: 0->1 seeds the
// rarity-indexed fertilizer counter, 1->2 reaches the terminal mature state.
func (s *PlantService) Grow(ctx context.Context, email string, id uuid.UUID, elapsed int) (*GrowResult, error) {
	if elapsed < 0 {
		return nil, fmt.Errorf("%w: elapsed time must be non-negative", ErrInvalidInput)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := s.plants.GetForUpdate(ctx, tx, email, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	if p.GrowthTimeRemaining == nil {
		return nil, fmt.Errorf("%w: plant is not currently growing", ErrInvalidState)
	}

	remaining := *p.GrowthTimeRemaining - elapsed
	if remaining < 0 {
		remaining = 0
	}

	if remaining > 0 {
		if err := s.plants.SetGrowth(ctx, tx, p.ID, p.Stage, &remaining, p.FertilizerRemaining); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return &GrowResult{GrowthTimeRemaining: &remaining}, nil
	}

	if p.Stage >= models.StageMature {
		return nil, fmt.Errorf("%w: plant is already at maximum stage", ErrInvalidState)
	}

	newStage := p.Stage + 1
	if newStage == models.StageSprout {
		fertilizer := s.cfg.FertilizerNeeds[p.Rarity]
		if err := s.plants.SetGrowth(ctx, tx, p.ID, newStage, nil, &fertilizer); err != nil {
			return nil, err
		}
	} else {
		if err := s.plants.SetGrowth(ctx, tx, p.ID, newStage, nil, nil); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &GrowResult{NewStage: &newStage, StageAdvanced: true}, nil
}

type SellResult struct {
	MoneyEarned float64
	NewBalance  float64
}

// Sell deletes the plant and credits the stage/rarity-indexed payout.
// Stage-0 plants sell for nothing. Always succeeds if the plant exists and
// is owned by the caller.
func (s *PlantService) Sell(ctx context.Context, email string, id uuid.UUID) (*SellResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := s.plants.GetForUpdate(ctx, tx, email, id)
	if err != nil {
		return nil, asNotFound(err)
	}

	var payout float64
	switch p.Stage {
	case models.StageSeedling:
		payout = 0
	case models.StageSprout:
		payout = float64(s.cfg.Stage1SellValues[p.Rarity])
	default:
		payout = float64(s.cfg.Stage2SellValues[p.Rarity])
	}

	if err := s.plants.Delete(ctx, tx, p.ID); err != nil {
		return nil, err
	}

	var newBalance float64
	if payout > 0 {
		newBalance, err = s.ledger.Credit(ctx, tx, email, payout)
		if err != nil {
			return nil, asNotFound(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	if payout == 0 {
		newBalance, err = s.ledger.Balance(ctx, email)
		if err != nil {
			return nil, asNotFound(err)
		}
	}

	s.log.Info("plant sold", "email", email, "plant_id", p.ID, "stage", p.Stage, "payout", payout)
	return &SellResult{MoneyEarned: payout, NewBalance: newBalance}, nil
}

// asNotFound maps store-level row and account misses onto the taxonomy.
func asNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ledger.ErrAccountNotFound) {
		return ErrNotFound
	}
	return err
}
