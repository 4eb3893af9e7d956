package club

import "time"

// Club is a tenant. HoursFrom/HoursTo are opening and closing hours of
// day (0-23); a club without explicit hours rolls its slots over at
// 23:59:59.
type Club struct {
	ID            int        `db:"id" json:"id"`
	OwnerID       int        `db:"owner_id" json:"owner_id"`
	Name          string     `db:"name" json:"name"`
	Location      string     `db:"location" json:"location"`
	HoursFrom     *int       `db:"hours_from" json:"hours_from,omitempty"`
	HoursTo       *int       `db:"hours_to" json:"hours_to,omitempty"`
	Active        bool       `db:"active" json:"active"`
	InactiveUntil *time.Time `db:"inactive_until" json:"inactive_until,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateClubRequest struct {
	Name      string `json:"name" validate:"required"`
	Location  string `json:"location" validate:"required"`
	HoursFrom *int   `json:"hours_from" validate:"omitempty,min=0,max=23"`
	HoursTo   *int   `json:"hours_to" validate:"omitempty,min=0,max=23"`
}

type SuspendClubRequest struct {
	Until string `json:"until" binding:"required"`
}
