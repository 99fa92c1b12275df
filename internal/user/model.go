package user

import "time"

type User struct {
	ID              string     `db:"id" json:"id"`
	UID             *string    `db:"uid" json:"uid,omitempty"`
	Email           string     `db:"email" json:"email"`
	FirstName       string     `db:"first_name" json:"first_name"`
	LastName        string     `db:"last_name" json:"last_name"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth     *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	ProfileImageURL *string    `db:"profile_image_url" json:"profile_image_url,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type CreateUserRequest struct {
	UID             string `json:"uid"`
	Email           string `json:"email" binding:"required,email"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone"`
	DateOfBirth     string `json:"date_of_birth"`
	ProfileImageURL string `json:"profile_image_url"`
}

type UpdateUserRequest struct {
	UID             *string `json:"uid"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Phone           *string `json:"phone"`
	DateOfBirth     *string `json:"date_of_birth"`
	ProfileImageURL *string `json:"profile_image_url"`
}
