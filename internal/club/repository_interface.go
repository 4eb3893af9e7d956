package club

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, ownerID int, req CreateClubRequest) (*Club, error)
	GetByID(ctx context.Context, id int) (*Club, error)
	ListActive(ctx context.Context) ([]Club, error)
	ListAll(ctx context.Context) ([]Club, error)
	Suspend(ctx context.Context, id int, until time.Time) error

	// ReactivateLapsed flips active back on for clubs whose suspension
	// window has passed. Returns rows affected.
	ReactivateLapsed(ctx context.Context, now time.Time) (int64, error)
}
