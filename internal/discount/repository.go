package discount

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrDiscountNotFound = errors.New("discount not found or inactive")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const discountColumns = `id, club_id, code, percent, active, expires_at, created_at`

func (r *repository) Create(ctx context.Context, clubID int, code string, percent int, expiresAt time.Time) (*Discount, error) {
	d := &Discount{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO discounts (club_id, code, percent, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+discountColumns+`
	`, clubID, code, percent, expiresAt).StructScan(d)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) GetActiveByCode(ctx context.Context, clubID int, code string) (*Discount, error) {
	d := &Discount{}
	err := r.db.GetContext(ctx, d, `
		SELECT `+discountColumns+`
		FROM discounts
		WHERE club_id = $1 AND code = $2 AND active AND expires_at > NOW()
	`, clubID, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) ListByClub(ctx context.Context, clubID int) ([]Discount, error) {
	list := []Discount{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT `+discountColumns+`
		FROM discounts
		WHERE club_id = $1
		ORDER BY created_at DESC
	`, clubID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE discounts
		SET active = false
		WHERE active AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
