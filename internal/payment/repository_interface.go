package payment

import "context"

type Store interface {
	Create(ctx context.Context, p CreateParams) (*Payment, error)
	GetByID(ctx context.Context, id string) (*Payment, error)
	LatestForMembership(ctx context.Context, membershipID string) (*Payment, error)
	List(ctx context.Context, f ListFilter) ([]Detail, error)
	UpdateStatus(ctx context.Context, id string, u StatusUpdate) (*Payment, error)
	Delete(ctx context.Context, id string) error
}
