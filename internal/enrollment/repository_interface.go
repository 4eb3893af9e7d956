package enrollment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e *Enrollment) (*Enrollment, error)
	GetByID(ctx context.Context, id int) (*Enrollment, error)
	ListByUser(ctx context.Context, userID int) ([]Enrollment, error)
	ListByClub(ctx context.Context, clubID int) ([]Enrollment, error)
	FindByMemberCode(ctx context.Context, clubID int, code string) ([]Enrollment, error)

	SetFrozen(ctx context.Context, id int, endDate, frozenUntil time.Time) error
	ClearFrozen(ctx context.Context, id int, endDate time.Time) error
	Renew(ctx context.Context, id int, start, end time.Time) error

	// SweepExpired marks enrollments whose end date has passed. Returns
	// rows affected; idempotent.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)

	// SweepLapsedFreezes clears the frozen flag once the freeze window has
	// elapsed. Returns rows affected; idempotent.
	SweepLapsedFreezes(ctx context.Context, now time.Time) (int64, error)
}
