package plan

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupPlanMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func planRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "club_id", "name", "price_cents", "kind", "period_unit", "period_count",
		"slot_minutes", "slot_start", "slot_end", "seats_left", "seats_total",
		"freeze_days_max", "freeze_allowance_left", "created_at", "updated_at",
	})
}

func TestGetByID(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT `+planColumns+`
		FROM plans
		WHERE id = $1
	`)).
		WithArgs(10).
		WillReturnRows(planRows().AddRow(
			10, 3, "monthly", 10000, "period", "monthly", 1,
			nil, nil, nil, nil, nil,
			14, 2, now, now,
		))

	p, err := repo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 10, p.ID)
	require.Equal(t, KindPeriod, p.Kind)
	require.Equal(t, UnitMonthly, *p.PeriodUnit)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT `+planColumns+`
		FROM plans
		WHERE id = $1
	`)).
		WithArgs(99).
		WillReturnRows(planRows())

	_, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestConsumeSeat(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`
		UPDATE plans
		SET seats_left = seats_left - 1, updated_at = NOW()
		WHERE id = $1 AND kind = 'slot' AND seats_left > 0
		RETURNING seats_left
	`)).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"seats_left"}).AddRow(4))

	remaining, err := repo.ConsumeSeat(context.Background(), 20)
	require.NoError(t, err)
	require.Equal(t, 4, remaining)
}

func TestConsumeSeat_Full(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	// The guard clause means a depleted plan matches no row, so the counter
	// can never go negative.
	mock.ExpectQuery(regexp.QuoteMeta(`
		UPDATE plans
		SET seats_left = seats_left - 1, updated_at = NOW()
		WHERE id = $1 AND kind = 'slot' AND seats_left > 0
		RETURNING seats_left
	`)).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"seats_left"}))

	_, err := repo.ConsumeSeat(context.Background(), 20)
	require.ErrorIs(t, err, ErrSlotFull)
}

func TestReleaseSeat(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	// Capped at seats_total so a double release cannot overfill the slot.
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE plans
		SET seats_left = seats_left + 1, updated_at = NOW()
		WHERE id = $1 AND kind = 'slot' AND seats_left < seats_total
	`)).
		WithArgs(20).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReleaseSeat(context.Background(), 20)
	require.NoError(t, err)
}

func TestZeroContainedSlots(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	start := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE plans
		SET seats_left = 0, updated_at = NOW()
		WHERE club_id = $1
		  AND kind = 'slot'
		  AND id <> $2
		  AND slot_start >= $3
		  AND slot_end <= $4
		  AND seats_left > 0
	`)).
		WithArgs(3, 20, start, end).
		WillReturnResult(sqlmock.NewResult(0, 3))

	zeroed, err := repo.ZeroContainedSlots(context.Background(), 3, 20, start, end)
	require.NoError(t, err)
	require.Equal(t, int64(3), zeroed)
}

func TestConsumeFreezeCredit(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE plans
		SET freeze_allowance_left = freeze_allowance_left - 1, updated_at = NOW()
		WHERE id = $1 AND freeze_allowance_left > 0
	`)).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ConsumeFreezeCredit(context.Background(), 10)
	require.NoError(t, err)
}

func TestConsumeFreezeCredit_Exhausted(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE plans
		SET freeze_allowance_left = freeze_allowance_left - 1, updated_at = NOW()
		WHERE id = $1 AND freeze_allowance_left > 0
	`)).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ConsumeFreezeCredit(context.Background(), 10)
	require.ErrorIs(t, err, ErrFreezeExhausted)
}

func TestAdvanceSlotDay(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE plans
		SET slot_start = slot_start + INTERVAL '1 day',
		    slot_end = slot_end + INTERVAL '1 day',
		    seats_left = seats_total,
		    updated_at = NOW()
		WHERE id = $1 AND kind = 'slot'
	`)).
		WithArgs(20).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AdvanceSlotDay(context.Background(), 20)
	require.NoError(t, err)
}

func TestAdvanceSlotDay_UnknownPlan(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE plans
		SET slot_start = slot_start + INTERVAL '1 day',
		    slot_end = slot_end + INTERVAL '1 day',
		    seats_left = seats_total,
		    updated_at = NOW()
		WHERE id = $1 AND kind = 'slot'
	`)).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AdvanceSlotDay(context.Background(), 99)
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestListSlotPlanIDs(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id
		FROM plans
		WHERE club_id = $1 AND kind = 'slot'
		ORDER BY id
	`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20).AddRow(21))

	ids, err := repo.ListSlotPlanIDs(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, []int{20, 21}, ids)
}
