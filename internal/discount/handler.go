package discount

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// CreateDiscount godoc
// @Summary      Create discount code
// @Tags         discounts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        clubID   path      int                    true  "Club ID"
// @Param        request  body      CreateDiscountRequest  true  "Discount data"
// @Success      201      {object}  Discount
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/clubs/{clubID}/discounts [post]
func (h *Handler) CreateDiscount(c *gin.Context) {
	clubID, err := strconv.Atoi(c.Param("clubID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	var req CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expires_at must be RFC3339"})
		return
	}

	d, err := h.repo.Create(c.Request.Context(), clubID, req.Code, req.Percent, expiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create discount"})
		return
	}
	c.JSON(http.StatusCreated, d)
}

// ListDiscounts godoc
// @Summary      List discount codes of a club
// @Tags         discounts
// @Security     BearerAuth
// @Produce      json
// @Param        clubID  path      int  true  "Club ID"
// @Success      200     {array}   Discount
// @Failure      400     {object}  gin.H
// @Failure      500     {object}  gin.H
// @Router       /admin/clubs/{clubID}/discounts [get]
func (h *Handler) ListDiscounts(c *gin.Context) {
	clubID, err := strconv.Atoi(c.Param("clubID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	list, err := h.repo.ListByClub(c.Request.Context(), clubID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch discounts"})
		return
	}
	c.JSON(http.StatusOK, list)
}
