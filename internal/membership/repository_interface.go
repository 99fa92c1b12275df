package membership

import (
	"context"
	"time"
)

type Store interface {
	Create(ctx context.Context, userID, gymID string, monthlyFee float64, endDate time.Time) (*Membership, error)
	GetByID(ctx context.Context, id string) (*Membership, error)
	GetDetail(ctx context.Context, id string) (*Detail, error)
	ListByGym(ctx context.Context, gymID, status string, limit, offset int) ([]Detail, error)
	LatestPaymentsFor(ctx context.Context, membershipIDs []string) (map[string]*LatestPayment, error)
	Activate(ctx context.Context, id string, startDate, endDate, gracePeriodEnd time.Time) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	ListActiveExpiring(ctx context.Context) ([]Detail, error)
	ListExpiredInGrace(ctx context.Context) ([]Detail, error)
}
