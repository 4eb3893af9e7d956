package club

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrClubNotFound = errors.New("club not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const clubColumns = `id, owner_id, name, location, hours_from, hours_to, active, inactive_until, created_at, updated_at`

func (r *repository) Create(ctx context.Context, ownerID int, req CreateClubRequest) (*Club, error) {
	c := &Club{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO clubs (owner_id, name, location, hours_from, hours_to)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+clubColumns+`
	`, ownerID, req.Name, req.Location, req.HoursFrom, req.HoursTo).StructScan(c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Club, error) {
	c := &Club{}
	err := r.db.GetContext(ctx, c, `
		SELECT `+clubColumns+`
		FROM clubs
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClubNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Club, error) {
	clubs := []Club{}
	err := r.db.SelectContext(ctx, &clubs, `
		SELECT `+clubColumns+`
		FROM clubs
		WHERE active
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Club, error) {
	clubs := []Club{}
	err := r.db.SelectContext(ctx, &clubs, `
		SELECT `+clubColumns+`
		FROM clubs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *repository) Suspend(ctx context.Context, id int, until time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clubs
		SET active = false, inactive_until = $2, updated_at = NOW()
		WHERE id = $1
	`, id, until)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrClubNotFound
	}
	return nil
}

func (r *repository) ReactivateLapsed(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clubs
		SET active = true, inactive_until = NULL, updated_at = NOW()
		WHERE NOT active AND inactive_until IS NOT NULL AND inactive_until <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
