package notification

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	TypeMembershipExpired = "membership_expired"
	TypeGracePeriodEnding = "grace_period_ending"
)

// Notification is a queued message record emitted by lifecycle transitions.
type Notification struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	MembershipID string    `db:"membership_id" json:"membership_id"`
	Type         string    `db:"type" json:"type"`
	Title        string    `db:"title" json:"title"`
	Message      string    `db:"message" json:"message"`
	Status       string    `db:"status" json:"status"`
	ScheduledFor time.Time `db:"scheduled_for" json:"scheduled_for"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Store interface {
	Create(ctx context.Context, userID, membershipID, ntype, title, message string) error
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, userID, membershipID, ntype, title, message string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, membership_id, type, title, message, status, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, 'pending', NOW())
	`, userID, membershipID, ntype, title, message)
	return err
}
