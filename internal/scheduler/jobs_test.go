package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubsub/internal/club"
	"clubsub/internal/discount"
	"clubsub/internal/enrollment"
	"clubsub/internal/plan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockClubRepo struct{ mock.Mock }
type MockPlanRepo struct{ mock.Mock }
type MockEnrollmentRepo struct{ mock.Mock }
type MockDiscountRepo struct{ mock.Mock }

func (m *MockClubRepo) Create(ctx context.Context, ownerID int, req club.CreateClubRequest) (*club.Club, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*club.Club), args.Error(1)
}

func (m *MockClubRepo) GetByID(ctx context.Context, id int) (*club.Club, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*club.Club), args.Error(1)
}

func (m *MockClubRepo) ListActive(ctx context.Context) ([]club.Club, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]club.Club), args.Error(1)
}

func (m *MockClubRepo) ListAll(ctx context.Context) ([]club.Club, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]club.Club), args.Error(1)
}

func (m *MockClubRepo) Suspend(ctx context.Context, id int, until time.Time) error {
	return m.Called(ctx, id, until).Error(0)
}

func (m *MockClubRepo) ReactivateLapsed(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlanRepo) Create(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Plan), args.Error(1)
}

func (m *MockPlanRepo) GetByID(ctx context.Context, id int) (*plan.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Plan), args.Error(1)
}

func (m *MockPlanRepo) ListByClub(ctx context.Context, clubID int) ([]plan.Plan, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]plan.Plan), args.Error(1)
}

func (m *MockPlanRepo) ListSlotPlanIDs(ctx context.Context, clubID int) ([]int, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockPlanRepo) ConsumeSeat(ctx context.Context, planID int) (int, error) {
	args := m.Called(ctx, planID)
	return args.Int(0), args.Error(1)
}

func (m *MockPlanRepo) ReleaseSeat(ctx context.Context, planID int) error {
	return m.Called(ctx, planID).Error(0)
}

func (m *MockPlanRepo) ZeroContainedSlots(ctx context.Context, clubID, planID int, start, end time.Time) (int64, error) {
	args := m.Called(ctx, clubID, planID, start, end)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlanRepo) ConsumeFreezeCredit(ctx context.Context, planID int) error {
	return m.Called(ctx, planID).Error(0)
}

func (m *MockPlanRepo) AdvanceSlotDay(ctx context.Context, planID int) error {
	return m.Called(ctx, planID).Error(0)
}

func (m *MockEnrollmentRepo) Create(ctx context.Context, e *enrollment.Enrollment) (*enrollment.Enrollment, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) GetByID(ctx context.Context, id int) (*enrollment.Enrollment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) ListByUser(ctx context.Context, userID int) ([]enrollment.Enrollment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]enrollment.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) ListByClub(ctx context.Context, clubID int) ([]enrollment.Enrollment, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]enrollment.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) FindByMemberCode(ctx context.Context, clubID int, code string) ([]enrollment.Enrollment, error) {
	args := m.Called(ctx, clubID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]enrollment.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) SetFrozen(ctx context.Context, id int, endDate, frozenUntil time.Time) error {
	return m.Called(ctx, id, endDate, frozenUntil).Error(0)
}

func (m *MockEnrollmentRepo) ClearFrozen(ctx context.Context, id int, endDate time.Time) error {
	return m.Called(ctx, id, endDate).Error(0)
}

func (m *MockEnrollmentRepo) Renew(ctx context.Context, id int, start, end time.Time) error {
	return m.Called(ctx, id, start, end).Error(0)
}

func (m *MockEnrollmentRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEnrollmentRepo) SweepLapsedFreezes(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDiscountRepo) Create(ctx context.Context, clubID int, code string, percent int, expiresAt time.Time) (*discount.Discount, error) {
	args := m.Called(ctx, clubID, code, percent, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discount.Discount), args.Error(1)
}

func (m *MockDiscountRepo) GetActiveByCode(ctx context.Context, clubID int, code string) (*discount.Discount, error) {
	args := m.Called(ctx, clubID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discount.Discount), args.Error(1)
}

func (m *MockDiscountRepo) ListByClub(ctx context.Context, clubID int) ([]discount.Discount, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]discount.Discount), args.Error(1)
}

func (m *MockDiscountRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestDailyAt(t *testing.T) {
	loc := time.UTC
	next := dailyAt(loc, 23, 59, 59)

	t.Run("before the mark fires today", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 10, 0, 0, 0, loc)
		got := next(now)
		assert.Equal(t, time.Date(2024, 1, 1, 23, 59, 59, 0, loc), got)
	})

	t.Run("after the mark fires tomorrow", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 23, 59, 59, 500, loc)
		got := next(now)
		assert.Equal(t, time.Date(2024, 1, 2, 23, 59, 59, 0, loc), got)
	})

	t.Run("respects the location", func(t *testing.T) {
		riyadh := time.FixedZone("AST", 3*3600)
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		got := dailyAt(riyadh, 22, 0, 0)(now)
		assert.Equal(t, time.Date(2024, 1, 1, 22, 0, 0, 0, riyadh).Unix(), got.Unix())
	})
}

func TestClubRollover_Next(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, loc)

	closeHour := 22
	j := &ClubRollover{ClubID: 1, CloseHour: &closeHour, Loc: loc}
	assert.Equal(t, time.Date(2024, 1, 1, 22, 0, 0, 0, loc), j.Next(now))

	// No explicit closing hour falls back to end of day.
	j = &ClubRollover{ClubID: 1, Loc: loc}
	assert.Equal(t, time.Date(2024, 1, 1, 23, 59, 59, 0, loc), j.Next(now))
}

func TestClubRollover_Run_FailureIsolation(t *testing.T) {
	plans := new(MockPlanRepo)
	plans.On("ListSlotPlanIDs", mock.Anything, 1).Return([]int{20, 21, 22}, nil)
	plans.On("AdvanceSlotDay", mock.Anything, 20).Return(nil)
	plans.On("AdvanceSlotDay", mock.Anything, 21).Return(errors.New("db down"))
	plans.On("AdvanceSlotDay", mock.Anything, 22).Return(nil)

	j := &ClubRollover{ClubID: 1, Loc: time.UTC, Plans: plans}
	j.Run(context.Background())

	// The failed middle plan must not stop the remaining ones.
	plans.AssertNumberOfCalls(t, "AdvanceSlotDay", 3)
}

func TestClubSync_SchedulesNewClubsOnce(t *testing.T) {
	hoursTo := 22
	clubs := new(MockClubRepo)
	clubs.On("ListAll", mock.Anything).Return([]club.Club{
		{ID: 1, HoursTo: &hoursTo},
		{ID: 2},
	}, nil).Once()
	clubs.On("ListAll", mock.Anything).Return([]club.Club{
		{ID: 1, HoursTo: &hoursTo},
		{ID: 2},
		{ID: 3},
	}, nil).Once()

	s := New()
	j := &ClubSync{Clubs: clubs, Plans: new(MockPlanRepo), Loc: time.UTC, Scheduler: s, Interval: time.Hour}

	j.Run(context.Background())
	assert.Equal(t, 2, s.Len())

	// The second pass only schedules the club it has not seen.
	j.Run(context.Background())
	assert.Equal(t, 3, s.Len())
}

func TestExpirySweep_Run(t *testing.T) {
	enrollments := new(MockEnrollmentRepo)
	enrollments.On("SweepExpired", mock.Anything, mock.Anything).Return(int64(4), nil)
	enrollments.On("SweepLapsedFreezes", mock.Anything, mock.Anything).Return(int64(1), nil)

	j := &ExpirySweep{Enrollments: enrollments, Interval: time.Minute}
	j.Run(context.Background())

	enrollments.AssertExpectations(t)
}

func TestExpirySweep_ExpiryFailureStillUnfreezes(t *testing.T) {
	enrollments := new(MockEnrollmentRepo)
	enrollments.On("SweepExpired", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
	enrollments.On("SweepLapsedFreezes", mock.Anything, mock.Anything).Return(int64(1), nil)

	j := &ExpirySweep{Enrollments: enrollments, Interval: time.Minute}
	j.Run(context.Background())

	enrollments.AssertCalled(t, "SweepLapsedFreezes", mock.Anything, mock.Anything)
}

func TestDiscountPurge_Run(t *testing.T) {
	discounts := new(MockDiscountRepo)
	discounts.On("DeactivateExpired", mock.Anything, mock.Anything).Return(int64(2), nil)

	j := &DiscountPurge{Discounts: discounts, Loc: time.UTC}
	j.Run(context.Background())

	discounts.AssertExpectations(t)
}

func TestSetup_QueuesStandardJobs(t *testing.T) {
	clubs := new(MockClubRepo)
	clubs.On("ListAll", mock.Anything).Return([]club.Club{{ID: 1}}, nil)

	s := New()
	Setup(s, clubs, new(MockPlanRepo), new(MockEnrollmentRepo), new(MockDiscountRepo), time.UTC, time.Minute)

	// One rollover seeded by the initial sync, plus sync, sweep and the
	// two nightly cleanups.
	assert.Equal(t, 5, s.Len())
}
