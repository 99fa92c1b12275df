package payment

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrPaymentNotFound = errors.New("payment not found")

const paymentColumns = `
	p.id, p.membership_id, p.amount, p.payment_method, p.sinpe_reference,
	p.sinpe_phone, p.payment_proof_url, p.status, p.payment_date,
	p.approved_date, p.approved_by, p.rejection_reason, p.notes,
	p.created_at, p.updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type CreateParams struct {
	MembershipID    string
	Amount          float64
	SinpeReference  *string
	SinpePhone      *string
	PaymentProofURL *string
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (*Payment, error) {
	var pay Payment
	err := r.db.GetContext(ctx, &pay, `
		INSERT INTO payments (membership_id, amount, payment_method, sinpe_reference, sinpe_phone, payment_proof_url, status)
		VALUES ($1, $2, 'sinpe', $3, $4, $5, 'pending')
		RETURNING `+bareColumns()+`
	`, p.MembershipID, p.Amount, p.SinpeReference, p.SinpePhone, p.PaymentProofURL)
	if err != nil {
		return nil, err
	}

	return &pay, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Payment, error) {
	var pay Payment
	err := r.db.GetContext(ctx, &pay, `
		SELECT `+bareColumns()+`
		FROM payments
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	return &pay, nil
}

// LatestForMembership returns the newest payment row for a membership.
func (r *Repository) LatestForMembership(ctx context.Context, membershipID string) (*Payment, error) {
	var pay Payment
	err := r.db.GetContext(ctx, &pay, `
		SELECT `+bareColumns()+`
		FROM payments
		WHERE membership_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, membershipID)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	return &pay, nil
}

type ListFilter struct {
	GymID        string
	Status       string
	MembershipID string
	Limit        int
	Offset       int
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]Detail, error) {
	query := `
		SELECT ` + paymentColumns + `,
			m.status AS membership_status,
			m.start_date AS membership_start_date,
			m.end_date AS membership_end_date,
			m.monthly_fee,
			u.id AS user_id,
			u.email AS user_email,
			u.first_name AS user_first_name,
			u.last_name AS user_last_name,
			u.phone AS user_phone
		FROM payments p
		JOIN memberships m ON m.id = p.membership_id
		JOIN users u ON u.id = m.user_id
		WHERE m.gym_id = $1`
	args := []interface{}{f.GymID}

	n := 2
	if f.Status != "" {
		query += ` AND p.status = $` + itoa(n)
		args = append(args, f.Status)
		n++
	}
	if f.MembershipID != "" {
		query += ` AND p.membership_id = $` + itoa(n)
		args = append(args, f.MembershipID)
		n++
	}

	query += ` ORDER BY p.created_at DESC LIMIT $` + itoa(n) + ` OFFSET $` + itoa(n+1)
	args = append(args, f.Limit, f.Offset)

	payments := []Detail{}
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, err
	}

	return payments, nil
}

type StatusUpdate struct {
	Status          Status
	Notes           *string
	ApprovedDate    *time.Time
	ApprovedBy      *string
	RejectionReason *string
}

// UpdateStatus applies a status stamp. Approval clears rejection fields and
// rejection clears approval fields; any other status leaves the existing
// approval and rejection metadata untouched.
func (r *Repository) UpdateStatus(ctx context.Context, id string, u StatusUpdate) (*Payment, error) {
	query := `
		UPDATE payments
		SET status = $2,
		    notes = $3,
		    updated_at = NOW()`
	args := []interface{}{id, u.Status, u.Notes}

	switch u.Status {
	case StatusApproved:
		query += `,
		    approved_date = $4,
		    approved_by = $5,
		    rejection_reason = NULL`
		args = append(args, u.ApprovedDate, u.ApprovedBy)
	case StatusRejected:
		query += `,
		    rejection_reason = $4,
		    approved_date = NULL,
		    approved_by = NULL`
		args = append(args, u.RejectionReason)
	}

	query += `
		WHERE id = $1
		RETURNING ` + bareColumns()

	var pay Payment
	err := r.db.GetContext(ctx, &pay, query, args...)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	return &pay, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	return err
}

func bareColumns() string {
	return `id, membership_id, amount, payment_method, sinpe_reference, sinpe_phone,
		payment_proof_url, status, payment_date, approved_date, approved_by,
		rejection_reason, notes, created_at, updated_at`
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
