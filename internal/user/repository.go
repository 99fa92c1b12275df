package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, uid, email, first_name, last_name, phone, date_of_birth, profile_image_url, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type CreateParams struct {
	UID             *string
	Email           string
	FirstName       string
	LastName        string
	Phone           *string
	DateOfBirth     *time.Time
	ProfileImageURL *string
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `
		INSERT INTO users (uid, email, first_name, last_name, phone, date_of_birth, profile_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns+`
	`, p.UID, p.Email, p.FirstName, p.LastName, p.Phone, p.DateOfBirth, p.ProfileImageURL)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *Repository) Update(ctx context.Context, id string, p CreateParams) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `
		UPDATE users
		SET uid = COALESCE($2, uid),
		    first_name = COALESCE($3, first_name),
		    last_name = COALESCE($4, last_name),
		    phone = COALESCE($5, phone),
		    date_of_birth = COALESCE($6, date_of_birth),
		    profile_image_url = COALESCE($7, profile_image_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, p.UID, nullable(p.FirstName), nullable(p.LastName), p.Phone, p.DateOfBirth, p.ProfileImageURL)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// List returns users newest first, optionally restricted to members of a
// gym.
func (r *Repository) List(ctx context.Context, gymID string, limit, offset int) ([]User, error) {
	users := []User{}

	if gymID == "" {
		err := r.db.SelectContext(ctx, &users, `
			SELECT `+userColumns+`
			FROM users
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
		return users, err
	}

	err := r.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+`
		FROM users
		WHERE id IN (SELECT user_id FROM memberships WHERE gym_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, gymID, limit, offset)
	return users, err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
