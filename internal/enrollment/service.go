package enrollment

import (
	"context"
	"errors"
	"time"

	"clubsub/internal/club"
	"clubsub/internal/discount"
	"clubsub/internal/email"
	"clubsub/internal/logger"
	"clubsub/internal/metrics"
	"clubsub/internal/plan"
	"clubsub/internal/user"
)

var (
	ErrInvalidFreezeDuration = errors.New("freeze duration must be a positive number of days")
	ErrFreezeTooLong         = errors.New("freeze duration exceeds the plan's allowance")
	ErrClubInactive          = errors.New("club is not active")
)

// WalletRepository is the slice of the wallet the enrollment flow needs.
type WalletRepository interface {
	AddTransaction(ctx context.Context, userID int, amountCents int64, txType string) error
}

type Service interface {
	Enroll(ctx context.Context, userID, planID int, req EnrollRequest) (*EnrollResponse, error)
	Freeze(ctx context.Context, userID, enrollmentID, days int) (*FreezeResponse, error)
	Unfreeze(ctx context.Context, userID, enrollmentID int) (*Enrollment, error)
	Renew(ctx context.Context, userID, enrollmentID int) (*Enrollment, error)
	ListByUser(ctx context.Context, userID int) ([]Enrollment, error)
	ListByClub(ctx context.Context, clubID int) ([]Enrollment, error)
	FindByMemberCode(ctx context.Context, clubID int, code string) ([]Enrollment, error)
}

type service struct {
	repo         Repository
	planRepo     plan.Repository
	clubRepo     club.Repository
	userRepo     user.Repository
	walletRepo   WalletRepository
	discountRepo discount.Repository
	emailService *email.Service
}

func NewService(
	repo Repository,
	planRepo plan.Repository,
	clubRepo club.Repository,
	userRepo user.Repository,
	walletRepo WalletRepository,
	discountRepo discount.Repository,
	emailService *email.Service,
) Service {
	return &service{
		repo:         repo,
		planRepo:     planRepo,
		clubRepo:     clubRepo,
		userRepo:     userRepo,
		walletRepo:   walletRepo,
		discountRepo: discountRepo,
		emailService: emailService,
	}
}

func (s *service) Enroll(ctx context.Context, userID, planID int, req EnrollRequest) (*EnrollResponse, error) {
	p, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	owningClub, err := s.clubRepo.GetByID(ctx, p.ClubID)
	if err != nil {
		return nil, err
	}
	if !owningClub.Active {
		return nil, ErrClubInactive
	}

	term, err := p.Term()
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	price := p.PriceCents
	if req.DiscountCode != nil {
		d, err := s.discountRepo.GetActiveByCode(ctx, p.ClubID, *req.DiscountCode)
		if err != nil {
			return nil, err
		}
		price = d.Apply(price)
	}

	start, end, err := Window(time.Now(), term)
	if err != nil {
		return nil, err
	}

	// Seat consumption happens before payment so a full slot never charges
	// the wallet. The seat is given back if the booking does not complete,
	// and the depletion cascade only fires for a completed booking.
	slot, isSlot := term.(plan.SlotTerm)
	remaining := 0
	if isSlot {
		remaining, err = s.planRepo.ConsumeSeat(ctx, planID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.walletRepo.AddTransaction(ctx, userID, -price, "enrollment_payment"); err != nil {
		if isSlot {
			s.releaseSeat(ctx, planID)
		}
		return nil, err
	}

	e, err := s.repo.Create(ctx, &Enrollment{
		UserID:     userID,
		ClubID:     p.ClubID,
		PlanID:     planID,
		MemberCode: u.MemberCode,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		if isSlot {
			s.releaseSeat(ctx, planID)
		}
		s.refund(ctx, userID, price, "enrollment_refund")
		return nil, err
	}

	if isSlot && remaining == 0 {
		s.cascadeDepletion(ctx, p.ClubID, planID, slot)
	}

	metrics.RecordEnrollment(string(term.Kind()))
	if s.emailService != nil {
		s.emailService.SendEnrollmentConfirmation(ctx, u.Email, u.Name, owningClub.Name, e.EndDate)
	}

	return &EnrollResponse{
		Enrollment:  e,
		PaidWith:    "wallet",
		AmountCents: price,
	}, nil
}

func (s *service) Freeze(ctx context.Context, userID, enrollmentID, days int) (*FreezeResponse, error) {
	if days <= 0 {
		metrics.RecordFreeze("invalid_duration")
		return nil, ErrInvalidFreezeDuration
	}

	e, err := s.owned(ctx, userID, enrollmentID)
	if err != nil {
		metrics.RecordFreeze("not_found")
		return nil, err
	}

	p, err := s.planRepo.GetByID(ctx, e.PlanID)
	if err != nil {
		return nil, err
	}

	if days > p.FreezeDaysMax {
		metrics.RecordFreeze("too_long")
		return nil, ErrFreezeTooLong
	}

	// The allowance lives on the plan and is shared by every enrollee;
	// the conditional decrement is the only mutation path.
	if err := s.planRepo.ConsumeFreezeCredit(ctx, e.PlanID); err != nil {
		if errors.Is(err, plan.ErrFreezeExhausted) {
			metrics.RecordFreeze("exhausted")
		}
		return nil, err
	}

	newEnd := e.EndDate.AddDate(0, 0, days)
	frozenUntil := time.Now().AddDate(0, 0, days)

	if err := s.repo.SetFrozen(ctx, e.ID, newEnd, frozenUntil); err != nil {
		return nil, err
	}

	metrics.RecordFreeze("ok")
	if s.emailService != nil {
		if u, err := s.userRepo.FindByID(ctx, userID); err == nil {
			s.emailService.SendFreezeNotice(ctx, u.Email, u.Name, frozenUntil, newEnd)
		}
	}

	return &FreezeResponse{EndDate: newEnd, FrozenUntil: frozenUntil}, nil
}

// Unfreeze recomputes the end date from the original start date instead of
// subtracting the extension, so repeated freeze/unfreeze cycles cannot
// drift. The consumed freeze credit is not restored.
func (s *service) Unfreeze(ctx context.Context, userID, enrollmentID int) (*Enrollment, error) {
	e, err := s.owned(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}

	p, err := s.planRepo.GetByID(ctx, e.PlanID)
	if err != nil {
		return nil, err
	}
	term, err := p.Term()
	if err != nil {
		return nil, err
	}

	end, err := ComputeEndDate(e.StartDate, term)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ClearFrozen(ctx, e.ID, end); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, e.ID)
}

func (s *service) Renew(ctx context.Context, userID, enrollmentID int) (*Enrollment, error) {
	e, err := s.owned(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}

	p, err := s.planRepo.GetByID(ctx, e.PlanID)
	if err != nil {
		return nil, err
	}
	term, err := p.Term()
	if err != nil {
		return nil, err
	}

	start, end, err := Window(time.Now(), term)
	if err != nil {
		return nil, err
	}

	// A slot-plan renewal is a fresh booking of the plan's current window,
	// so it goes through the same seat accounting as Enroll.
	slot, isSlot := term.(plan.SlotTerm)
	remaining := 0
	if isSlot {
		remaining, err = s.planRepo.ConsumeSeat(ctx, e.PlanID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.walletRepo.AddTransaction(ctx, userID, -p.PriceCents, "renewal_payment"); err != nil {
		if isSlot {
			s.releaseSeat(ctx, e.PlanID)
		}
		return nil, err
	}

	if err := s.repo.Renew(ctx, e.ID, start, end); err != nil {
		if isSlot {
			s.releaseSeat(ctx, e.PlanID)
		}
		s.refund(ctx, userID, p.PriceCents, "renewal_refund")
		return nil, err
	}

	if isSlot && remaining == 0 {
		s.cascadeDepletion(ctx, p.ClubID, e.PlanID, slot)
	}

	return s.repo.GetByID(ctx, e.ID)
}

// releaseSeat compensates a consumed seat when the surrounding booking
// fails. A failure here self-heals at the next rollover, so it is logged
// rather than propagated.
func (s *service) releaseSeat(ctx context.Context, planID int) {
	if err := s.planRepo.ReleaseSeat(ctx, planID); err != nil {
		logger.Error("seat release failed", "plan_id", planID, "error", err)
	}
}

func (s *service) refund(ctx context.Context, userID int, amountCents int64, txType string) {
	if err := s.walletRepo.AddTransaction(ctx, userID, amountCents, txType); err != nil {
		logger.Error("refund failed", "user_id", userID, "amount_cents", amountCents, "error", err)
	}
}

// cascadeDepletion zeroes every slot window contained in the one that just
// sold out.
func (s *service) cascadeDepletion(ctx context.Context, clubID, planID int, slot plan.SlotTerm) {
	zeroed, err := s.planRepo.ZeroContainedSlots(ctx, clubID, planID, slot.Start, slot.End)
	if err != nil {
		logger.Error("cascade failed after slot depletion", "plan_id", planID, "error", err)
		return
	}
	if zeroed > 0 {
		logger.Info("slot depletion cascaded", "plan_id", planID, "contained_zeroed", zeroed)
	}
}

func (s *service) ListByUser(ctx context.Context, userID int) ([]Enrollment, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListByClub(ctx context.Context, clubID int) ([]Enrollment, error) {
	return s.repo.ListByClub(ctx, clubID)
}

func (s *service) FindByMemberCode(ctx context.Context, clubID int, code string) ([]Enrollment, error) {
	return s.repo.FindByMemberCode(ctx, clubID, code)
}

// owned resolves an enrollment and hides other users' records behind
// not-found.
func (s *service) owned(ctx context.Context, userID, enrollmentID int) (*Enrollment, error) {
	e, err := s.repo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, ErrEnrollmentNotFound
	}
	return e, nil
}
