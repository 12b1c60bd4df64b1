package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/models"
)

const plantColumns = `plant_id, owner_email, plant_type, plant_species, rarity, size, stage, growth_time_remaining, fertilizer_remaining, x, y`

type PlantRepo struct {
	pool *pgxpool.Pool
}

func NewPlantRepo(pool *pgxpool.Pool) *PlantRepo {
	return &PlantRepo{pool: pool}
}

func scanPlant(row pgx.Row) (*models.Plant, error) {
	var p models.Plant
	err := row.Scan(&p.ID, &p.OwnerEmail, &p.Type, &p.Species, &p.Rarity, &p.Size,
		&p.Stage, &p.GrowthTimeRemaining, &p.FertilizerRemaining, &p.X, &p.Y)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert adds a plant row inside the caller's transaction.
func (r *PlantRepo) Insert(ctx context.Context, tx pgx.Tx, p *models.Plant) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO plant (`+plantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID, p.OwnerEmail, p.Type, p.Species, p.Rarity, p.Size,
		p.Stage, p.GrowthTimeRemaining, p.FertilizerRemaining, p.X, p.Y)
	return err
}

func (r *PlantRepo) Get(ctx context.Context, email string, id uuid.UUID) (*models.Plant, error) {
	return scanPlant(r.pool.QueryRow(ctx, `
		SELECT `+plantColumns+` FROM plant WHERE plant_id = $1 AND owner_email = $2
	`, id, email))
}

// GetForUpdate locks the plant row for the duration of the transaction so a
// concurrent transition on the same plant waits for this one to commit.
func (r *PlantRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, email string, id uuid.UUID) (*models.Plant, error) {
	return scanPlant(tx.QueryRow(ctx, `
		SELECT `+plantColumns+` FROM plant WHERE plant_id = $1 AND owner_email = $2 FOR UPDATE
	`, id, email))
}

func (r *PlantRepo) ListByOwner(ctx context.Context, email string) ([]*models.Plant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+plantColumns+` FROM plant WHERE owner_email = $1
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Plant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CountByOwner counts the owner's plants inside the caller's transaction.
// Call after locking the owner's account row so racing creates serialize.
func (r *PlantRepo) CountByOwner(ctx context.Context, tx pgx.Tx, email string) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM plant WHERE owner_email = $1`, email).Scan(&n)
	return n, err
}

// SetPosition repositions the plant in a single atomic UPDATE. Reports
// whether the plant existed.
func (r *PlantRepo) SetPosition(ctx context.Context, email string, id uuid.UUID, x, y float64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE plant SET x = $3, y = $4 WHERE plant_id = $1 AND owner_email = $2
	`, id, email, x, y)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetGrowth writes the stage and both lifecycle counters inside the caller's
// transaction. Passing nil clears a counter.
func (r *PlantRepo) SetGrowth(ctx context.Context, tx pgx.Tx, id uuid.UUID, stage int, growthTimeRemaining, fertilizerRemaining *int) error {
	_, err := tx.Exec(ctx, `
		UPDATE plant SET stage = $2, growth_time_remaining = $3, fertilizer_remaining = $4
		WHERE plant_id = $1
	`, id, stage, growthTimeRemaining, fertilizerRemaining)
	return err
}

// Delete removes one plant inside the caller's transaction.
func (r *PlantRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM plant WHERE plant_id = $1`, id)
	return err
}

// DeleteByOwner removes all of an owner's plants inside the caller's
// transaction (account deletion cascade).
func (r *PlantRepo) DeleteByOwner(ctx context.Context, tx pgx.Tx, email string) error {
	_, err := tx.Exec(ctx, `DELETE FROM plant WHERE owner_email = $1`, email)
	return err
}
