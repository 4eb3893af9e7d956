package discount

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, clubID int, code string, percent int, expiresAt time.Time) (*Discount, error)
	GetActiveByCode(ctx context.Context, clubID int, code string) (*Discount, error)
	ListByClub(ctx context.Context, clubID int) ([]Discount, error)

	// DeactivateExpired flips active off for codes past their expiry.
	// Returns rows affected; the nightly purge job drives it.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
