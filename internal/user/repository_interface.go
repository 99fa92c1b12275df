package user

import "context"

type Store interface {
	Create(ctx context.Context, p CreateParams) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id string, p CreateParams) (*User, error)
	List(ctx context.Context, gymID string, limit, offset int) ([]User, error)
	Delete(ctx context.Context, id string) error
}
