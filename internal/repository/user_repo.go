package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XDTerminated/pomopatch-hackwashu-2025/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Insert(ctx context.Context, u *models.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO account (email, username, money, plant_limit, weather)
		VALUES ($1, $2, $3, $4, $5)
	`, u.Email, u.Username, u.Money, u.PlantLimit, u.Weather)
	return err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT email, username, money, plant_limit, weather
		FROM account WHERE email = $1
	`, email).Scan(&u.Email, &u.Username, &u.Money, &u.PlantLimit, &u.Weather)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT email, username, money, plant_limit, weather
		FROM account WHERE username = $1
	`, username).Scan(&u.Email, &u.Username, &u.Money, &u.PlantLimit, &u.Weather)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT email, username, money, plant_limit, weather
		FROM account ORDER BY money DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Email, &u.Username, &u.Money, &u.PlantLimit, &u.Weather); err != nil {
			return nil, err
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// GetForUpdate locks the account row. Call within a transaction.
func (r *UserRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, email string) (*models.User, error) {
	var u models.User
	err := tx.QueryRow(ctx, `
		SELECT email, username, money, plant_limit, weather
		FROM account WHERE email = $1 FOR UPDATE
	`, email).Scan(&u.Email, &u.Username, &u.Money, &u.PlantLimit, &u.Weather)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUsername renames the account. Reports whether a row was updated;
// a unique violation surfaces as a pgconn.PgError.
func (r *UserRepo) UpdateUsername(ctx context.Context, email, username string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE account SET username = $2 WHERE email = $1`, email, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CycleWeather advances the weather enum in a single atomic UPDATE and
// returns the new value.
func (r *UserRepo) CycleWeather(ctx context.Context, email string) (int, error) {
	var weather int
	err := r.pool.QueryRow(ctx, `
		UPDATE account SET weather = (weather + 1) % $2 WHERE email = $1
		RETURNING weather
	`, email, models.WeatherStates).Scan(&weather)
	return weather, err
}

// IncreasePlantLimit bumps the limit inside the caller's transaction and
// returns the new limit. Call after GetForUpdate on the same row.
func (r *UserRepo) IncreasePlantLimit(ctx context.Context, tx pgx.Tx, email string, increment int) (int, error) {
	var limit int
	err := tx.QueryRow(ctx, `
		UPDATE account SET plant_limit = plant_limit + $2 WHERE email = $1
		RETURNING plant_limit
	`, email, increment).Scan(&limit)
	return limit, err
}

// Delete removes the account row inside the caller's transaction.
func (r *UserRepo) Delete(ctx context.Context, tx pgx.Tx, email string) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM account WHERE email = $1`, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
