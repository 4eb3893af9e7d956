package plan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Plan) (*Plan, error)
	GetByID(ctx context.Context, id int) (*Plan, error)
	ListByClub(ctx context.Context, clubID int) ([]Plan, error)
	ListSlotPlanIDs(ctx context.Context, clubID int) ([]int, error)

	// ConsumeSeat atomically decrements a slot plan's seat counter with a
	// floor-at-zero guard and returns the remaining count. ErrSlotFull when
	// no seat was available.
	ConsumeSeat(ctx context.Context, planID int) (int, error)

	// ReleaseSeat gives back one seat, capped at seats_total. Compensates a
	// ConsumeSeat whose booking did not complete.
	ReleaseSeat(ctx context.Context, planID int) error

	// ZeroContainedSlots zeroes seats of every other slot plan of the club
	// whose window lies inside [start, end]. Returns rows affected.
	ZeroContainedSlots(ctx context.Context, clubID, planID int, start, end time.Time) (int64, error)

	// ConsumeFreezeCredit atomically decrements the plan's shared freeze
	// allowance. ErrFreezeExhausted when it already reached zero.
	ConsumeFreezeCredit(ctx context.Context, planID int) error

	// AdvanceSlotDay moves a slot plan's window forward one calendar day
	// and restores its seats.
	AdvanceSlotDay(ctx context.Context, planID int) error
}
