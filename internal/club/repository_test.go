package club

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupClubMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func clubRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "name", "location", "hours_from", "hours_to",
		"active", "inactive_until", "created_at", "updated_at",
	})
}

func TestCreateClub(t *testing.T) {
	repo, mock, close := setupClubMock(t)
	defer close()

	now := time.Now()
	from, to := 6, 22

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO clubs (owner_id, name, location, hours_from, hours_to)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+clubColumns+`
	`)).
		WithArgs(9, "Iron Works", "Riyadh", &from, &to).
		WillReturnRows(clubRows().AddRow(
			3, 9, "Iron Works", "Riyadh", from, to, true, nil, now, now,
		))

	c, err := repo.Create(context.Background(), 9, CreateClubRequest{
		Name: "Iron Works", Location: "Riyadh", HoursFrom: &from, HoursTo: &to,
	})
	require.NoError(t, err)
	require.Equal(t, 3, c.ID)
	require.True(t, c.Active)
	require.Equal(t, 22, *c.HoursTo)
}

func TestGetClubByID_NotFound(t *testing.T) {
	repo, mock, close := setupClubMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT `+clubColumns+`
		FROM clubs
		WHERE id = $1
	`)).
		WithArgs(99).
		WillReturnRows(clubRows())

	_, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrClubNotFound)
}

func TestSuspendClub(t *testing.T) {
	repo, mock, close := setupClubMock(t)
	defer close()

	until := time.Now().AddDate(0, 0, 30)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE clubs
		SET active = false, inactive_until = $2, updated_at = NOW()
		WHERE id = $1
	`)).
		WithArgs(3, until).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Suspend(context.Background(), 3, until)
	require.NoError(t, err)
}

func TestReactivateLapsed(t *testing.T) {
	repo, mock, close := setupClubMock(t)
	defer close()

	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE clubs
		SET active = true, inactive_until = NULL, updated_at = NOW()
		WHERE NOT active AND inactive_until IS NOT NULL AND inactive_until <= $1
	`)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.ReactivateLapsed(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestListActive(t *testing.T) {
	repo, mock, close := setupClubMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT `+clubColumns+`
		FROM clubs
		WHERE active
		ORDER BY created_at DESC
	`)).
		WillReturnRows(clubRows().
			AddRow(3, 9, "Iron Works", "Riyadh", nil, nil, true, nil, now, now).
			AddRow(4, 9, "Steel City", "Jeddah", 6, 23, true, nil, now, now))

	clubs, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	require.Nil(t, clubs[0].HoursTo)
}
