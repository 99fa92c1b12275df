package gym

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrGymNotFound   = errors.New("gym not found")
	ErrAdminNotFound = errors.New("administrator not found")
)

const gymColumns = `id, name, address, phone, email, monthly_fee, sinpe_phone, is_active, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type CreateGymParams struct {
	Name       string
	Address    string
	Phone      *string
	Email      *string
	MonthlyFee float64
	SinpePhone string
}

// Create inserts a gym. New gyms start inactive until billing confirms.
func (r *Repository) Create(ctx context.Context, p CreateGymParams) (*Gym, error) {
	var g Gym
	err := r.db.GetContext(ctx, &g, `
		INSERT INTO gyms (name, address, phone, email, monthly_fee, sinpe_phone, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING `+gymColumns+`
	`, p.Name, p.Address, p.Phone, p.Email, p.MonthlyFee, p.SinpePhone)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Gym, error) {
	var g Gym
	err := r.db.GetContext(ctx, &g, `
		SELECT `+gymColumns+`
		FROM gyms
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

func (r *Repository) SetActive(ctx context.Context, id string, active bool) (*Gym, error) {
	var g Gym
	err := r.db.GetContext(ctx, &g, `
		UPDATE gyms
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+gymColumns+`
	`, id, active)
	if err == sql.ErrNoRows {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM gyms WHERE id = $1`, id)
	return err
}

func (r *Repository) CreateAdmin(ctx context.Context, gymID, email, passwordHash, firstName, lastName, role string) (*Administrator, error) {
	var a Administrator
	err := r.db.GetContext(ctx, &a, `
		INSERT INTO gym_administrators (gym_id, email, password_hash, first_name, last_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id, gym_id, email, password_hash, first_name, last_name, role, is_active, created_at
	`, gymID, email, passwordHash, firstName, lastName, role)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *Repository) FindAdminByEmail(ctx context.Context, email string) (*Administrator, error) {
	var a Administrator
	err := r.db.GetContext(ctx, &a, `
		SELECT id, gym_id, email, password_hash, first_name, last_name, role, is_active, created_at
		FROM gym_administrators
		WHERE email = $1 AND is_active = true
	`, email)
	if err == sql.ErrNoRows {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// SetResetToken stamps a one-time password reset token on the admin row.
// Issuing a new token invalidates any earlier one.
func (r *Repository) SetResetToken(ctx context.Context, adminID, token string, expiresAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE gym_administrators
		SET reset_token = $2, reset_token_expires_at = $3
		WHERE id = $1
	`, adminID, token, expiresAt)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *Repository) FindAdminByResetToken(ctx context.Context, token string) (*Administrator, error) {
	var a Administrator
	err := r.db.GetContext(ctx, &a, `
		SELECT id, gym_id, email, password_hash, first_name, last_name, role, is_active, created_at
		FROM gym_administrators
		WHERE reset_token = $1 AND reset_token_expires_at > NOW() AND is_active = true
	`, token)
	if err == sql.ErrNoRows {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// UpdateAdminPassword replaces the password hash and burns the reset token.
func (r *Repository) UpdateAdminPassword(ctx context.Context, adminID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE gym_administrators
		SET password_hash = $2, reset_token = NULL, reset_token_expires_at = NULL
		WHERE id = $1
	`, adminID, passwordHash)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *Repository) AdminEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM gym_administrators WHERE email = $1)`, email)
	return exists, err
}
