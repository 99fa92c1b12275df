package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrMembershipNotFound = errors.New("membership not found")

const detailColumns = `
	m.id, m.user_id, m.gym_id, m.status, m.start_date, m.end_date,
	m.grace_period_end, m.monthly_fee, m.created_at, m.updated_at,
	u.email AS user_email, u.first_name AS user_first_name,
	u.last_name AS user_last_name, u.phone AS user_phone,
	g.name AS gym_name, g.sinpe_phone AS gym_sinpe_phone`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, userID, gymID string, monthlyFee float64, endDate time.Time) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m, `
		INSERT INTO memberships (user_id, gym_id, status, end_date, monthly_fee)
		VALUES ($1, $2, 'pending_payment', $3, $4)
		RETURNING id, user_id, gym_id, status, start_date, end_date, grace_period_end, monthly_fee, created_at, updated_at
	`, userID, gymID, endDate, monthlyFee)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m, `
		SELECT id, user_id, gym_id, status, start_date, end_date, grace_period_end, monthly_fee, created_at, updated_at
		FROM memberships
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *Repository) GetDetail(ctx context.Context, id string) (*Detail, error) {
	var d Detail
	err := r.db.GetContext(ctx, &d, `
		SELECT `+detailColumns+`
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		JOIN gyms g ON g.id = m.gym_id
		WHERE m.id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func (r *Repository) ListByGym(ctx context.Context, gymID, status string, limit, offset int) ([]Detail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		JOIN gyms g ON g.id = m.gym_id
		WHERE m.gym_id = $1`
	args := []interface{}{gymID}

	if status != "" {
		query += ` AND m.status = $2`
		args = append(args, status)
	}

	query += ` ORDER BY m.created_at DESC`
	args = append(args, limit, offset)
	if status != "" {
		query += ` LIMIT $3 OFFSET $4`
	} else {
		query += ` LIMIT $2 OFFSET $3`
	}

	memberships := []Detail{}
	if err := r.db.SelectContext(ctx, &memberships, query, args...); err != nil {
		return nil, err
	}

	return memberships, nil
}

// LatestPaymentsFor returns the most recent payment per membership, keyed by
// membership id.
func (r *Repository) LatestPaymentsFor(ctx context.Context, membershipIDs []string) (map[string]*LatestPayment, error) {
	if len(membershipIDs) == 0 {
		return map[string]*LatestPayment{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT DISTINCT ON (membership_id)
			id, membership_id, amount, payment_method, sinpe_reference, sinpe_phone,
			payment_proof_url, status, payment_date, approved_date, notes, created_at
		FROM payments
		WHERE membership_id IN (?)
		ORDER BY membership_id, created_at DESC
	`, membershipIDs)
	if err != nil {
		return nil, err
	}

	payments := []LatestPayment{}
	if err := r.db.SelectContext(ctx, &payments, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	latest := make(map[string]*LatestPayment, len(payments))
	for i := range payments {
		p := payments[i]
		latest[p.MembershipID] = &p
	}

	return latest, nil
}

// Activate stamps the renewal window on a membership after a payment is
// approved. Prior dates are overwritten unconditionally.
func (r *Repository) Activate(ctx context.Context, id string, startDate, endDate, gracePeriodEnd time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET status = 'active',
		    start_date = $2,
		    end_date = $3,
		    grace_period_end = $4,
		    updated_at = NOW()
		WHERE id = $1
	`, id, startDate, endDate, gracePeriodEnd)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}

	return requireRow(res)
}

// ListActiveExpiring returns active memberships with an end date, for the
// sweep's first pass.
func (r *Repository) ListActiveExpiring(ctx context.Context) ([]Detail, error) {
	memberships := []Detail{}
	err := r.db.SelectContext(ctx, &memberships, `
		SELECT `+detailColumns+`
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		JOIN gyms g ON g.id = m.gym_id
		WHERE m.status = 'active' AND m.end_date IS NOT NULL
		ORDER BY m.end_date
	`)
	return memberships, err
}

// ListExpiredInGrace returns expired memberships with a grace period end,
// for the sweep's second pass.
func (r *Repository) ListExpiredInGrace(ctx context.Context) ([]Detail, error) {
	memberships := []Detail{}
	err := r.db.SelectContext(ctx, &memberships, `
		SELECT `+detailColumns+`
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		JOIN gyms g ON g.id = m.gym_id
		WHERE m.status = 'expired' AND m.grace_period_end IS NOT NULL
		ORDER BY m.grace_period_end
	`)
	return memberships, err
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}
