package payment

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is a known payment status. Anything else is
// a client error, not a silent write.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type Payment struct {
	ID              string     `db:"id" json:"id"`
	MembershipID    string     `db:"membership_id" json:"membership_id"`
	Amount          float64    `db:"amount" json:"amount"`
	PaymentMethod   string     `db:"payment_method" json:"payment_method"`
	SinpeReference  *string    `db:"sinpe_reference" json:"sinpe_reference"`
	SinpePhone      *string    `db:"sinpe_phone" json:"sinpe_phone"`
	PaymentProofURL *string    `db:"payment_proof_url" json:"payment_proof_url"`
	Status          Status     `db:"status" json:"status"`
	PaymentDate     *time.Time `db:"payment_date" json:"payment_date"`
	ApprovedDate    *time.Time `db:"approved_date" json:"approved_date"`
	ApprovedBy      *string    `db:"approved_by" json:"approved_by"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason"`
	Notes           *string    `db:"notes" json:"notes"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Detail joins membership and member columns for the back-office listing.
type Detail struct {
	Payment
	MembershipStatus    string     `db:"membership_status" json:"membership_status"`
	MembershipStartDate *time.Time `db:"membership_start_date" json:"membership_start_date"`
	MembershipEndDate   *time.Time `db:"membership_end_date" json:"membership_end_date"`
	MonthlyFee          float64    `db:"monthly_fee" json:"monthly_fee"`
	UserID              string     `db:"user_id" json:"user_id"`
	UserEmail           string     `db:"user_email" json:"user_email"`
	UserFirstName       string     `db:"user_first_name" json:"user_first_name"`
	UserLastName        string     `db:"user_last_name" json:"user_last_name"`
	UserPhone           *string    `db:"user_phone" json:"user_phone,omitempty"`
}

type UpdateStatusRequest struct {
	PaymentID       string `json:"paymentId" binding:"required"`
	Status          string `json:"status" binding:"required"`
	RejectionReason string `json:"rejectionReason"`
	Notes           string `json:"notes"`
	ApprovedBy      string `json:"approvedBy"`
}
