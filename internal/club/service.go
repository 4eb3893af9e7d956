package club

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidHours = errors.New("closing hour must come after opening hour")

type Service interface {
	Create(ctx context.Context, ownerID int, req CreateClubRequest) (*Club, error)
	GetByID(ctx context.Context, id int) (*Club, error)
	ListActive(ctx context.Context) ([]Club, error)
	Suspend(ctx context.Context, id int, req SuspendClubRequest) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, ownerID int, req CreateClubRequest) (*Club, error) {
	if req.HoursFrom != nil && req.HoursTo != nil && *req.HoursTo <= *req.HoursFrom {
		return nil, ErrInvalidHours
	}
	return s.repo.Create(ctx, ownerID, req)
}

func (s *service) GetByID(ctx context.Context, id int) (*Club, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListActive(ctx context.Context) ([]Club, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) Suspend(ctx context.Context, id int, req SuspendClubRequest) error {
	until, err := time.Parse(time.RFC3339, req.Until)
	if err != nil {
		return errors.New("until must be RFC3339")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Suspend(ctx, id, until)
}
