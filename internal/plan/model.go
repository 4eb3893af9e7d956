package plan

import (
	"errors"
	"time"
)

// TermKind discriminates the two families of plan terms: rolling periods
// and fixed calendar slots.
type TermKind string

const (
	KindPeriod TermKind = "period"
	KindSlot   TermKind = "slot"
)

type PeriodUnit string

const (
	UnitHourly  PeriodUnit = "hourly"
	UnitDaily   PeriodUnit = "daily"
	UnitWeekly  PeriodUnit = "weekly"
	UnitMonthly PeriodUnit = "monthly"
	UnitYearly  PeriodUnit = "yearly"
)

// SlotLength is the bookable window length in minutes.
type SlotLength int

const (
	Slot30  SlotLength = 30
	Slot60  SlotLength = 60
	Slot90  SlotLength = 90
	Slot120 SlotLength = 120
)

var (
	ErrMalformedTerm   = errors.New("plan has malformed term data")
	ErrPlanNotFound    = errors.New("plan not found")
	ErrSlotFull        = errors.New("slot has no seats left")
	ErrFreezeExhausted = errors.New("freeze allowance exhausted")
)

// Term is a closed set: PeriodTerm or SlotTerm. Each variant carries only
// the fields its kind needs.
type Term interface {
	Kind() TermKind
}

type PeriodTerm struct {
	Unit  PeriodUnit
	Count int
}

func (PeriodTerm) Kind() TermKind { return KindPeriod }

type SlotTerm struct {
	Minutes SlotLength
	Start   time.Time
	End     time.Time
}

func (SlotTerm) Kind() TermKind { return KindSlot }

// Plan is a club-defined subscription offering. Period plans fill the
// period_* columns; slot plans fill the slot_* and seat columns. One slot
// plan row exists per bookable window per day.
type Plan struct {
	ID         int      `db:"id" json:"id"`
	ClubID     int      `db:"club_id" json:"club_id"`
	Name       string   `db:"name" json:"name"`
	PriceCents int64    `db:"price_cents" json:"price_cents"`
	Kind       TermKind `db:"kind" json:"kind"`

	PeriodUnit  *PeriodUnit `db:"period_unit" json:"period_unit,omitempty"`
	PeriodCount *int        `db:"period_count" json:"period_count,omitempty"`

	SlotMinutes *int       `db:"slot_minutes" json:"slot_minutes,omitempty"`
	SlotStart   *time.Time `db:"slot_start" json:"slot_start,omitempty"`
	SlotEnd     *time.Time `db:"slot_end" json:"slot_end,omitempty"`
	SeatsLeft   *int       `db:"seats_left" json:"seats_left,omitempty"`
	SeatsTotal  *int       `db:"seats_total" json:"seats_total,omitempty"`

	FreezeDaysMax       int `db:"freeze_days_max" json:"freeze_days_max"`
	FreezeAllowanceLeft int `db:"freeze_allowance_left" json:"freeze_allowance_left"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func validPeriodUnit(u PeriodUnit) bool {
	switch u {
	case UnitHourly, UnitDaily, UnitWeekly, UnitMonthly, UnitYearly:
		return true
	}
	return false
}

func validSlotLength(m int) bool {
	switch SlotLength(m) {
	case Slot30, Slot60, Slot90, Slot120:
		return true
	}
	return false
}

// Term builds the typed variant from the row. An unrecognized or
// incomplete combination is a data-integrity fault, never defaulted.
func (p *Plan) Term() (Term, error) {
	switch p.Kind {
	case KindPeriod:
		if p.PeriodUnit == nil || !validPeriodUnit(*p.PeriodUnit) {
			return nil, ErrMalformedTerm
		}
		count := 1
		if p.PeriodCount != nil {
			count = *p.PeriodCount
		}
		// The hourly special case ignores the count entirely.
		if count < 1 && *p.PeriodUnit != UnitHourly {
			return nil, ErrMalformedTerm
		}
		return PeriodTerm{Unit: *p.PeriodUnit, Count: count}, nil

	case KindSlot:
		if p.SlotMinutes == nil || !validSlotLength(*p.SlotMinutes) {
			return nil, ErrMalformedTerm
		}
		if p.SlotStart == nil || p.SlotEnd == nil || !p.SlotEnd.After(*p.SlotStart) {
			return nil, ErrMalformedTerm
		}
		if p.SeatsLeft == nil || p.SeatsTotal == nil || *p.SeatsLeft < 0 || *p.SeatsLeft > *p.SeatsTotal {
			return nil, ErrMalformedTerm
		}
		return SlotTerm{
			Minutes: SlotLength(*p.SlotMinutes),
			Start:   *p.SlotStart,
			End:     *p.SlotEnd,
		}, nil
	}
	return nil, ErrMalformedTerm
}

type CreatePeriodPlanRequest struct {
	Name          string `json:"name" binding:"required"`
	PriceCents    int64  `json:"price_cents" binding:"required,gt=0"`
	PeriodUnit    string `json:"period_unit" binding:"required"`
	PeriodCount   int    `json:"period_count" binding:"required,min=1"`
	FreezeDaysMax int    `json:"freeze_days_max" binding:"min=0"`
	FreezeCount   int    `json:"freeze_count" binding:"min=0"`
}

type CreateSlotPlanRequest struct {
	Name        string `json:"name" binding:"required"`
	PriceCents  int64  `json:"price_cents" binding:"required,gt=0"`
	SlotMinutes int    `json:"slot_minutes" binding:"required"`
	SlotStart   string `json:"slot_start" binding:"required"`
	SlotEnd     string `json:"slot_end" binding:"required"`
	Seats       int    `json:"seats" binding:"required,min=1"`
}
