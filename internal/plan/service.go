package plan

import (
	"context"
	"errors"
	"time"

	"clubsub/internal/club"
)

var (
	ErrInvalidPeriodUnit = errors.New("invalid period unit")
	ErrInvalidSlotLength = errors.New("slot length must be 30, 60, 90 or 120 minutes")
	ErrInvalidSlotWindow = errors.New("slot end must be after slot start")
)

type Service interface {
	CreatePeriodPlan(ctx context.Context, clubID int, req CreatePeriodPlanRequest) (*Plan, error)
	CreateSlotPlan(ctx context.Context, clubID int, req CreateSlotPlanRequest) (*Plan, error)
	GetByID(ctx context.Context, id int) (*Plan, error)
	ListByClub(ctx context.Context, clubID int) ([]Plan, error)
}

type service struct {
	repo     Repository
	clubRepo club.Repository
}

func NewService(repo Repository, clubRepo club.Repository) Service {
	return &service{
		repo:     repo,
		clubRepo: clubRepo,
	}
}

func (s *service) CreatePeriodPlan(ctx context.Context, clubID int, req CreatePeriodPlanRequest) (*Plan, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, club.ErrClubNotFound
	}

	unit := PeriodUnit(req.PeriodUnit)
	if !validPeriodUnit(unit) {
		return nil, ErrInvalidPeriodUnit
	}

	count := req.PeriodCount
	p := &Plan{
		ClubID:              clubID,
		Name:                req.Name,
		PriceCents:          req.PriceCents,
		Kind:                KindPeriod,
		PeriodUnit:          &unit,
		PeriodCount:         &count,
		FreezeDaysMax:       req.FreezeDaysMax,
		FreezeAllowanceLeft: req.FreezeCount,
	}
	return s.repo.Create(ctx, p)
}

func (s *service) CreateSlotPlan(ctx context.Context, clubID int, req CreateSlotPlanRequest) (*Plan, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, club.ErrClubNotFound
	}

	if !validSlotLength(req.SlotMinutes) {
		return nil, ErrInvalidSlotLength
	}

	start, err := time.Parse(time.RFC3339, req.SlotStart)
	if err != nil {
		return nil, ErrInvalidSlotWindow
	}
	end, err := time.Parse(time.RFC3339, req.SlotEnd)
	if err != nil {
		return nil, ErrInvalidSlotWindow
	}
	if !end.After(start) {
		return nil, ErrInvalidSlotWindow
	}
	if end.Sub(start) != time.Duration(req.SlotMinutes)*time.Minute {
		return nil, ErrInvalidSlotWindow
	}

	minutes := req.SlotMinutes
	seats := req.Seats
	seatsLeft := req.Seats
	p := &Plan{
		ClubID:      clubID,
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		Kind:        KindSlot,
		SlotMinutes: &minutes,
		SlotStart:   &start,
		SlotEnd:     &end,
		SeatsLeft:   &seatsLeft,
		SeatsTotal:  &seats,
	}
	return s.repo.Create(ctx, p)
}

func (s *service) GetByID(ctx context.Context, id int) (*Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByClub(ctx context.Context, clubID int) ([]Plan, error) {
	return s.repo.ListByClub(ctx, clubID)
}
