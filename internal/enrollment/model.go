package enrollment

import "time"

// Enrollment is one user's active instance of a plan. The end date is
// computed once at creation or renewal; the sweep keeps the expired and
// frozen flags truthful afterwards.
type Enrollment struct {
	ID         int    `db:"id" json:"id"`
	UserID     int    `db:"user_id" json:"user_id"`
	ClubID     int    `db:"club_id" json:"club_id"`
	PlanID     int    `db:"plan_id" json:"plan_id"`
	MemberCode string `db:"member_code" json:"member_code"`

	StartDate   time.Time  `db:"start_date" json:"start_date"`
	EndDate     time.Time  `db:"end_date" json:"end_date"`
	Expired     bool       `db:"expired" json:"expired"`
	Frozen      bool       `db:"frozen" json:"frozen"`
	FrozenUntil *time.Time `db:"frozen_until" json:"frozen_until,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type EnrollRequest struct {
	DiscountCode *string `json:"discount_code,omitempty"`
}

type EnrollResponse struct {
	Enrollment  *Enrollment `json:"enrollment"`
	PaidWith    string      `json:"paid_with" example:"wallet"`
	AmountCents int64       `json:"amount_cents" example:"10000"`
}

type FreezeRequest struct {
	Days int `json:"days" binding:"required"`
}

type FreezeResponse struct {
	EndDate     time.Time `json:"end_date"`
	FrozenUntil time.Time `json:"frozen_until"`
}
