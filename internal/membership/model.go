package membership

import "time"

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusActive         Status = "active"
	StatusExpired        Status = "expired"
	StatusInactive       Status = "inactive"
	StatusCancelled      Status = "cancelled"
)

type Membership struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	GymID          string     `db:"gym_id" json:"gym_id"`
	Status         Status     `db:"status" json:"status"`
	StartDate      *time.Time `db:"start_date" json:"start_date"`
	EndDate        *time.Time `db:"end_date" json:"end_date"`
	GracePeriodEnd *time.Time `db:"grace_period_end" json:"grace_period_end"`
	MonthlyFee     float64    `db:"monthly_fee" json:"monthly_fee"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Detail joins the member and gym columns needed for responses and
// notifications.
type Detail struct {
	Membership
	UserEmail     string  `db:"user_email" json:"user_email"`
	UserFirstName string  `db:"user_first_name" json:"user_first_name"`
	UserLastName  string  `db:"user_last_name" json:"user_last_name"`
	UserPhone     *string `db:"user_phone" json:"user_phone,omitempty"`
	GymName       string  `db:"gym_name" json:"gym_name"`
	GymSinpePhone string  `db:"gym_sinpe_phone" json:"gym_sinpe_phone"`
}

// LatestPayment is the most recent payment row attached to a membership in
// list responses. There is no payment history versioning; latest wins by
// creation time.
type LatestPayment struct {
	ID              string     `db:"id" json:"id"`
	MembershipID    string     `db:"membership_id" json:"membership_id"`
	Amount          float64    `db:"amount" json:"amount"`
	PaymentMethod   string     `db:"payment_method" json:"payment_method"`
	SinpeReference  *string    `db:"sinpe_reference" json:"sinpe_reference"`
	SinpePhone      *string    `db:"sinpe_phone" json:"sinpe_phone"`
	PaymentProofURL *string    `db:"payment_proof_url" json:"payment_proof_url"`
	Status          string     `db:"status" json:"status"`
	PaymentDate     *time.Time `db:"payment_date" json:"payment_date"`
	ApprovedDate    *time.Time `db:"approved_date" json:"approved_date"`
	Notes           *string    `db:"notes" json:"notes"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	GymID       string `json:"gym_id" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Phone       string `json:"phone" binding:"omitempty,crc_phone"`
	DateOfBirth string `json:"date_of_birth"`
}
