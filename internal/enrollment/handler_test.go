package enrollment

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clubsub/internal/plan"
	"clubsub/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct{ mock.Mock }

func (m *MockService) Enroll(ctx context.Context, userID, planID int, req EnrollRequest) (*EnrollResponse, error) {
	args := m.Called(ctx, userID, planID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EnrollResponse), args.Error(1)
}

func (m *MockService) Freeze(ctx context.Context, userID, enrollmentID, days int) (*FreezeResponse, error) {
	args := m.Called(ctx, userID, enrollmentID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FreezeResponse), args.Error(1)
}

func (m *MockService) Unfreeze(ctx context.Context, userID, enrollmentID int) (*Enrollment, error) {
	args := m.Called(ctx, userID, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Enrollment), args.Error(1)
}

func (m *MockService) Renew(ctx context.Context, userID, enrollmentID int) (*Enrollment, error) {
	args := m.Called(ctx, userID, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Enrollment), args.Error(1)
}

func (m *MockService) ListByUser(ctx context.Context, userID int) ([]Enrollment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Enrollment), args.Error(1)
}

func (m *MockService) ListByClub(ctx context.Context, clubID int) ([]Enrollment, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Enrollment), args.Error(1)
}

func (m *MockService) FindByMemberCode(ctx context.Context, clubID int, code string) ([]Enrollment, error) {
	args := m.Called(ctx, clubID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Enrollment), args.Error(1)
}

func setupHandlerRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{service: svc}

	router := gin.New()
	authed := router.Group("/", func(c *gin.Context) {
		c.Set("user_id", 1)
	})
	authed.POST("/plans/:planID/enroll", h.Enroll)
	authed.POST("/enrollments/:enrollmentID/freeze", h.Freeze)
	authed.POST("/enrollments/:enrollmentID/unfreeze", h.Unfreeze)
	authed.GET("/enrollments", h.ListMine)
	authed.GET("/admin/clubs/:clubID/checkin", h.CheckIn)
	return router
}

func TestHandler_Enroll(t *testing.T) {
	svc := new(MockService)
	svc.On("Enroll", mock.Anything, 1, 10, EnrollRequest{}).Return(&EnrollResponse{
		Enrollment:  &Enrollment{ID: 55},
		PaidWith:    "wallet",
		AmountCents: 10000,
	}, nil)

	router := setupHandlerRouter(svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/plans/10/enroll", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "wallet")
}

func TestHandler_Enroll_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"slot full", plan.ErrSlotFull, http.StatusConflict},
		{"plan missing", plan.ErrPlanNotFound, http.StatusNotFound},
		{"club suspended", ErrClubInactive, http.StatusConflict},
		{"empty wallet", wallet.ErrInsufficientBalance, http.StatusPaymentRequired},
		{"corrupt term", plan.ErrMalformedTerm, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Enroll", mock.Anything, 1, 10, EnrollRequest{}).Return(nil, tt.err)

			router := setupHandlerRouter(svc)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/plans/10/enroll", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandler_Enroll_BadPlanID(t *testing.T) {
	router := setupHandlerRouter(new(MockService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/plans/abc/enroll", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Freeze(t *testing.T) {
	svc := new(MockService)
	endDate := time.Date(2024, 3, 8, 10, 59, 59, 0, time.UTC)
	svc.On("Freeze", mock.Anything, 1, 5, 7).Return(&FreezeResponse{EndDate: endDate}, nil)

	router := setupHandlerRouter(svc)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"days": 7}`)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments/5/freeze", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Freeze_Exhausted(t *testing.T) {
	svc := new(MockService)
	svc.On("Freeze", mock.Anything, 1, 5, 7).Return(nil, plan.ErrFreezeExhausted)

	router := setupHandlerRouter(svc)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"days": 7}`)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments/5/freeze", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_Freeze_MissingDays(t *testing.T) {
	router := setupHandlerRouter(new(MockService))

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{}`)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments/5/freeze", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Unfreeze(t *testing.T) {
	svc := new(MockService)
	svc.On("Unfreeze", mock.Anything, 1, 5).Return(&Enrollment{ID: 5, Frozen: false}, nil)

	router := setupHandlerRouter(svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/enrollments/5/unfreeze", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_CheckIn_RequiresCode(t *testing.T) {
	router := setupHandlerRouter(new(MockService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/clubs/3/checkin", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CheckIn(t *testing.T) {
	svc := new(MockService)
	svc.On("FindByMemberCode", mock.Anything, 3, "MC-1").Return([]Enrollment{{ID: 5}}, nil)

	router := setupHandlerRouter(svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/clubs/3/checkin?code=MC-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
