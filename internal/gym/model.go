package gym

import "time"

type Gym struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Address    string    `db:"address" json:"address"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Email      *string   `db:"email" json:"email,omitempty"`
	MonthlyFee float64   `db:"monthly_fee" json:"monthly_fee"`
	SinpePhone string    `db:"sinpe_phone" json:"sinpe_phone"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Administrator is a gym owner or staff login for the dashboard.
type Administrator struct {
	ID           string    `db:"id" json:"id"`
	GymID        string    `db:"gym_id" json:"gym_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type SignupRequest struct {
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8"`
	FirstName  string  `json:"first_name" binding:"required"`
	LastName   string  `json:"last_name" binding:"required"`
	GymName    string  `json:"gym_name" binding:"required"`
	GymAddress string  `json:"gym_address" binding:"required"`
	GymPhone   string  `json:"gym_phone"`
	GymEmail   string  `json:"gym_email"`
	MonthlyFee float64 `json:"monthly_fee" binding:"required,gt=0"`
	SinpePhone string  `json:"sinpe_phone" binding:"required,crc_phone"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

