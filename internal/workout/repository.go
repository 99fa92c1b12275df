package workout

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type Store interface {
	ListByMonth(ctx context.Context, gymID string, year, month int) ([]Workout, error)
	Upsert(ctx context.Context, gymID string, date time.Time, text string) (*Workout, error)
	UpdateText(ctx context.Context, id, text string) (*Workout, error)
	Delete(ctx context.Context, id string) error
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ListByMonth returns a gym's workouts ordered by date. Year and month zero
// mean no date filter.
func (r *Repository) ListByMonth(ctx context.Context, gymID string, year, month int) ([]Workout, error) {
	query := `
		SELECT id, gym_id, workout_date, workout_text, created_at, updated_at
		FROM daily_workouts
		WHERE gym_id = $1
	`
	args := []interface{}{gymID}

	if year > 0 && month > 0 {
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		query += ` AND workout_date >= $2 AND workout_date <= $3`
		args = append(args, start, end)
	}
	query += ` ORDER BY workout_date ASC`

	workouts := []Workout{}
	if err := r.db.SelectContext(ctx, &workouts, query, args...); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *Repository) Upsert(ctx context.Context, gymID string, date time.Time, text string) (*Workout, error) {
	var w Workout
	err := r.db.GetContext(ctx, &w, `
		INSERT INTO daily_workouts (gym_id, workout_date, workout_text)
		VALUES ($1, $2, $3)
		ON CONFLICT (gym_id, workout_date)
		DO UPDATE SET workout_text = EXCLUDED.workout_text, updated_at = NOW()
		RETURNING id, gym_id, workout_date, workout_text, created_at, updated_at
	`, gymID, date, text)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) UpdateText(ctx context.Context, id, text string) (*Workout, error) {
	var w Workout
	err := r.db.GetContext(ctx, &w, `
		UPDATE daily_workouts
		SET workout_text = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, gym_id, workout_date, workout_text, created_at, updated_at
	`, id, text)
	if err == sql.ErrNoRows {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM daily_workouts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}
