package enrollment

import (
	"errors"
	"net/http"
	"strconv"

	"clubsub/internal/auth"
	"clubsub/internal/club"
	"clubsub/internal/discount"
	"clubsub/internal/email"
	"clubsub/internal/plan"
	"clubsub/internal/user"
	"clubsub/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB, emailService *email.Service) *Handler {
	return &Handler{
		service: NewService(
			NewRepository(db),
			plan.NewRepository(db),
			club.NewRepository(db),
			user.NewRepository(db),
			wallet.NewRepository(db),
			discount.NewRepository(db),
			emailService,
		),
	}
}

// Enroll godoc
// @Summary      Enroll in a plan
// @Description  Creates an enrollment paid from the wallet. Slot plans consume a seat.
// @Tags         enrollments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        planID   path      int            true   "Plan ID"
// @Param        request  body      EnrollRequest  false  "Optional discount code"
// @Success      201      {object}  EnrollResponse
// @Failure      400      {object}  gin.H
// @Failure      402      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /plans/{planID}/enroll [post]
func (h *Handler) Enroll(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID"})
		return
	}

	var req EnrollRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	resp, err := h.service.Enroll(c.Request.Context(), userID, planID, req)
	if err != nil {
		writeEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Freeze godoc
// @Summary      Freeze enrollment
// @Description  Extends the end date by the given days and consumes one of the plan's shared freeze credits.
// @Tags         enrollments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        enrollmentID  path      int            true  "Enrollment ID"
// @Param        request       body      FreezeRequest  true  "Freeze days"
// @Success      200           {object}  FreezeResponse
// @Failure      400           {object}  gin.H
// @Failure      404           {object}  gin.H
// @Failure      409           {object}  gin.H
// @Router       /enrollments/{enrollmentID}/freeze [post]
func (h *Handler) Freeze(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	enrollmentID, err := strconv.Atoi(c.Param("enrollmentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid enrollment ID"})
		return
	}

	var req FreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive number"})
		return
	}

	resp, err := h.service.Freeze(c.Request.Context(), userID, enrollmentID, req.Days)
	if err != nil {
		writeEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Unfreeze godoc
// @Summary      Unfreeze enrollment
// @Description  Recomputes the end date from the original start date and clears the frozen flag.
// @Tags         enrollments
// @Security     BearerAuth
// @Produce      json
// @Param        enrollmentID  path      int  true  "Enrollment ID"
// @Success      200           {object}  Enrollment
// @Failure      400           {object}  gin.H
// @Failure      404           {object}  gin.H
// @Router       /enrollments/{enrollmentID}/unfreeze [post]
func (h *Handler) Unfreeze(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	enrollmentID, err := strconv.Atoi(c.Param("enrollmentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid enrollment ID"})
		return
	}

	e, err := h.service.Unfreeze(c.Request.Context(), userID, enrollmentID)
	if err != nil {
		writeEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Renew godoc
// @Summary      Renew enrollment
// @Description  Pays the plan price again and restarts the window from now.
// @Tags         enrollments
// @Security     BearerAuth
// @Produce      json
// @Param        enrollmentID  path      int  true  "Enrollment ID"
// @Success      200           {object}  Enrollment
// @Failure      402           {object}  gin.H
// @Failure      404           {object}  gin.H
// @Router       /enrollments/{enrollmentID}/renew [post]
func (h *Handler) Renew(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	enrollmentID, err := strconv.Atoi(c.Param("enrollmentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid enrollment ID"})
		return
	}

	e, err := h.service.Renew(c.Request.Context(), userID, enrollmentID)
	if err != nil {
		writeEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// ListMine godoc
// @Summary      List my enrollments
// @Tags         enrollments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Enrollment
// @Failure      500  {object}  gin.H
// @Router       /enrollments [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	list, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch enrollments"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListByClub godoc
// @Summary      List enrollments of a club
// @Tags         enrollments
// @Security     BearerAuth
// @Produce      json
// @Param        clubID  path      int  true  "Club ID"
// @Success      200     {array}   Enrollment
// @Failure      400     {object}  gin.H
// @Router       /admin/clubs/{clubID}/enrollments [get]
func (h *Handler) ListByClub(c *gin.Context) {
	clubID, err := strconv.Atoi(c.Param("clubID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	list, err := h.service.ListByClub(c.Request.Context(), clubID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch enrollments"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// CheckIn godoc
// @Summary      Look up enrollments by member code
// @Description  Club-side check-in lookup.
// @Tags         enrollments
// @Security     BearerAuth
// @Produce      json
// @Param        clubID  path      int     true  "Club ID"
// @Param        code    query     string  true  "Member code"
// @Success      200     {array}   Enrollment
// @Failure      400     {object}  gin.H
// @Router       /admin/clubs/{clubID}/checkin [get]
func (h *Handler) CheckIn(c *gin.Context) {
	clubID, err := strconv.Atoi(c.Param("clubID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code parameter required"})
		return
	}

	list, err := h.service.FindByMemberCode(c.Request.Context(), clubID, code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch enrollments"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func writeEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEnrollmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
	case errors.Is(err, plan.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
	case errors.Is(err, club.ErrClubNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Club not found"})
	case errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, discount.ErrDiscountNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount code is invalid or expired"})
	case errors.Is(err, ErrInvalidFreezeDuration):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrFreezeTooLong):
		c.JSON(http.StatusConflict, gin.H{"error": "Freeze duration exceeds the plan's allowance"})
	case errors.Is(err, plan.ErrFreezeExhausted):
		c.JSON(http.StatusConflict, gin.H{"error": "No freeze operations left on this plan"})
	case errors.Is(err, plan.ErrSlotFull):
		c.JSON(http.StatusConflict, gin.H{"error": "Slot has no seats left"})
	case errors.Is(err, ErrClubInactive):
		c.JSON(http.StatusConflict, gin.H{"error": "Club is not active"})
	case errors.Is(err, wallet.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient wallet balance"})
	case errors.Is(err, plan.ErrMalformedTerm):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Plan term data is corrupt"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
