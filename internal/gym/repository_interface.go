package gym

import (
	"context"
	"time"
)

type Store interface {
	Create(ctx context.Context, p CreateGymParams) (*Gym, error)
	GetByID(ctx context.Context, id string) (*Gym, error)
	SetActive(ctx context.Context, id string, active bool) (*Gym, error)
	Delete(ctx context.Context, id string) error
	CreateAdmin(ctx context.Context, gymID, email, passwordHash, firstName, lastName, role string) (*Administrator, error)
	FindAdminByEmail(ctx context.Context, email string) (*Administrator, error)
	AdminEmailExists(ctx context.Context, email string) (bool, error)
	SetResetToken(ctx context.Context, adminID, token string, expiresAt time.Time) error
	FindAdminByResetToken(ctx context.Context, token string) (*Administrator, error)
	UpdateAdminPassword(ctx context.Context, adminID, passwordHash string) error
}
