package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrEnrollmentNotFound = errors.New("enrollment not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const enrollmentColumns = `id, user_id, club_id, plan_id, member_code, start_date, end_date,
	expired, frozen, frozen_until, created_at, updated_at`

func (r *repository) Create(ctx context.Context, e *Enrollment) (*Enrollment, error) {
	created := &Enrollment{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO enrollments (user_id, club_id, plan_id, member_code, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+enrollmentColumns+`
	`, e.UserID, e.ClubID, e.PlanID, e.MemberCode, e.StartDate, e.EndDate).StructScan(created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Enrollment, error) {
	e := &Enrollment{}
	err := r.db.GetContext(ctx, e, `
		SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEnrollmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Enrollment, error) {
	list := []Enrollment{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) ListByClub(ctx context.Context, clubID int) ([]Enrollment, error) {
	list := []Enrollment{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE club_id = $1
		ORDER BY created_at DESC
	`, clubID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) FindByMemberCode(ctx context.Context, clubID int, code string) ([]Enrollment, error) {
	list := []Enrollment{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE club_id = $1 AND member_code = $2
		ORDER BY created_at DESC
	`, clubID, code)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) SetFrozen(ctx context.Context, id int, endDate, frozenUntil time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE enrollments
		SET end_date = $2, frozen = true, frozen_until = $3, updated_at = NOW()
		WHERE id = $1
	`, id, endDate, frozenUntil)
	if err != nil {
		return err
	}
	return checkFound(res)
}

func (r *repository) ClearFrozen(ctx context.Context, id int, endDate time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE enrollments
		SET end_date = $2, frozen = false, frozen_until = NULL, updated_at = NOW()
		WHERE id = $1
	`, id, endDate)
	if err != nil {
		return err
	}
	return checkFound(res)
}

func (r *repository) Renew(ctx context.Context, id int, start, end time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE enrollments
		SET start_date = $2, end_date = $3, expired = false,
		    frozen = false, frozen_until = NULL, updated_at = NOW()
		WHERE id = $1
	`, id, start, end)
	if err != nil {
		return err
	}
	return checkFound(res)
}

func (r *repository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE enrollments
		SET expired = true, updated_at = NOW()
		WHERE NOT expired AND end_date < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) SweepLapsedFreezes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE enrollments
		SET frozen = false, updated_at = NOW()
		WHERE frozen AND COALESCE(frozen_until, $1) <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func checkFound(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}
