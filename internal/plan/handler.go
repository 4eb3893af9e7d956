package plan

import (
	"errors"
	"net/http"
	"strconv"

	"clubsub/internal/club"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		service: NewService(NewRepository(db), club.NewRepository(db)),
	}
}

// ListPlans godoc
// @Summary      List plans of a club
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        clubID  path      int  true  "Club ID"
// @Success      200     {array}   Plan
// @Failure      400     {object}  gin.H
// @Failure      500     {object}  gin.H
// @Router       /clubs/{clubID}/plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	clubID, err := strconv.Atoi(c.Param("clubID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	plans, err := h.service.ListByClub(c.Request.Context(), clubID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// CreatePeriodPlan godoc
// @Summary      Create period plan
// @Description  Creates a rolling period plan (hourly/daily/weekly/monthly/yearly) for a club.
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        clubID   path      int                      true  "Club ID"
// @Param        request  body      CreatePeriodPlanRequest  true  "Plan data"
// @Success      201      {object}  Plan
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /admin/clubs/{clubID}/plans/period [post]
func (h *Handler) CreatePeriodPlan(c *gin.Context) {
	clubID, err := strconv.Atoi(c.Param("clubID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	var req CreatePeriodPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.CreatePeriodPlan(c.Request.Context(), clubID, req)
	if err != nil {
		writePlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// CreateSlotPlan godoc
// @Summary      Create slot plan
// @Description  Materializes one bookable duration-slot window with seat capacity.
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        clubID   path      int                    true  "Club ID"
// @Param        request  body      CreateSlotPlanRequest  true  "Slot data"
// @Success      201      {object}  Plan
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /admin/clubs/{clubID}/plans/slot [post]
func (h *Handler) CreateSlotPlan(c *gin.Context) {
	clubID, err := strconv.Atoi(c.Param("clubID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	var req CreateSlotPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.CreateSlotPlan(c.Request.Context(), clubID, req)
	if err != nil {
		writePlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func writePlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, club.ErrClubNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Club not found"})
	case errors.Is(err, ErrInvalidPeriodUnit),
		errors.Is(err, ErrInvalidSlotLength),
		errors.Is(err, ErrInvalidSlotWindow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan"})
	}
}
