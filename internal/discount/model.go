package discount

import "time"

type Discount struct {
	ID        int       `db:"id" json:"id"`
	ClubID    int       `db:"club_id" json:"club_id"`
	Code      string    `db:"code" json:"code"`
	Percent   int       `db:"percent" json:"percent"`
	Active    bool      `db:"active" json:"active"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateDiscountRequest struct {
	Code      string `json:"code" binding:"required"`
	Percent   int    `json:"percent" binding:"required,min=1,max=100"`
	ExpiresAt string `json:"expires_at" binding:"required"`
}

// Apply returns the price after the discount percentage.
func (d *Discount) Apply(priceCents int64) int64 {
	return priceCents - priceCents*int64(d.Percent)/100
}
