package plan

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const planColumns = `id, club_id, name, price_cents, kind, period_unit, period_count,
	slot_minutes, slot_start, slot_end, seats_left, seats_total,
	freeze_days_max, freeze_allowance_left, created_at, updated_at`

func (r *repository) Create(ctx context.Context, p *Plan) (*Plan, error) {
	created := &Plan{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO plans (club_id, name, price_cents, kind, period_unit, period_count,
			slot_minutes, slot_start, slot_end, seats_left, seats_total,
			freeze_days_max, freeze_allowance_left)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+planColumns+`
	`, p.ClubID, p.Name, p.PriceCents, p.Kind, p.PeriodUnit, p.PeriodCount,
		p.SlotMinutes, p.SlotStart, p.SlotEnd, p.SeatsLeft, p.SeatsTotal,
		p.FreezeDaysMax, p.FreezeAllowanceLeft).StructScan(created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Plan, error) {
	p := &Plan{}
	err := r.db.GetContext(ctx, p, `
		SELECT `+planColumns+`
		FROM plans
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) ListByClub(ctx context.Context, clubID int) ([]Plan, error) {
	plans := []Plan{}
	err := r.db.SelectContext(ctx, &plans, `
		SELECT `+planColumns+`
		FROM plans
		WHERE club_id = $1
		ORDER BY kind, slot_start NULLS FIRST, created_at DESC
	`, clubID)
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) ListSlotPlanIDs(ctx context.Context, clubID int) ([]int, error) {
	ids := []int{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id
		FROM plans
		WHERE club_id = $1 AND kind = 'slot'
		ORDER BY id
	`, clubID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Seat and freeze counters are shared between concurrent requests, so both
// are only ever mutated through single-statement conditional updates.

func (r *repository) ConsumeSeat(ctx context.Context, planID int) (int, error) {
	var remaining int
	err := r.db.GetContext(ctx, &remaining, `
		UPDATE plans
		SET seats_left = seats_left - 1, updated_at = NOW()
		WHERE id = $1 AND kind = 'slot' AND seats_left > 0
		RETURNING seats_left
	`, planID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSlotFull
	}
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *repository) ReleaseSeat(ctx context.Context, planID int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE plans
		SET seats_left = seats_left + 1, updated_at = NOW()
		WHERE id = $1 AND kind = 'slot' AND seats_left < seats_total
	`, planID)
	return err
}

func (r *repository) ZeroContainedSlots(ctx context.Context, clubID, planID int, start, end time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE plans
		SET seats_left = 0, updated_at = NOW()
		WHERE club_id = $1
		  AND kind = 'slot'
		  AND id <> $2
		  AND slot_start >= $3
		  AND slot_end <= $4
		  AND seats_left > 0
	`, clubID, planID, start, end)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) ConsumeFreezeCredit(ctx context.Context, planID int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE plans
		SET freeze_allowance_left = freeze_allowance_left - 1, updated_at = NOW()
		WHERE id = $1 AND freeze_allowance_left > 0
	`, planID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFreezeExhausted
	}
	return nil
}

func (r *repository) AdvanceSlotDay(ctx context.Context, planID int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE plans
		SET slot_start = slot_start + INTERVAL '1 day',
		    slot_end = slot_end + INTERVAL '1 day',
		    seats_left = seats_total,
		    updated_at = NOW()
		WHERE id = $1 AND kind = 'slot'
	`, planID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPlanNotFound
	}
	return nil
}
