package club

import (
	"errors"
	"net/http"
	"strconv"

	"clubsub/internal/api"
	"clubsub/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{service: NewService(NewRepository(db))}
}

// ListClubs godoc
// @Summary      List active clubs
// @Tags         clubs
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Club
// @Failure      500  {object}  gin.H
// @Router       /clubs [get]
func (h *Handler) ListClubs(c *gin.Context) {
	clubs, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clubs"})
		return
	}
	c.JSON(http.StatusOK, clubs)
}

// GetClub godoc
// @Summary      Get club by ID
// @Tags         clubs
// @Security     BearerAuth
// @Produce      json
// @Param        clubID  path      int  true  "Club ID"
// @Success      200     {object}  Club
// @Failure      404     {object}  gin.H
// @Router       /clubs/{clubID} [get]
func (h *Handler) GetClub(c *gin.Context) {
	clubID, err := strconv.Atoi(c.Param("clubID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	club, err := h.service.GetByID(c.Request.Context(), clubID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Club not found"})
		return
	}
	c.JSON(http.StatusOK, club)
}

// CreateClub godoc
// @Summary      Create club
// @Description  Registers a new club owned by the current user. Admin or owner only.
// @Tags         clubs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateClubRequest  true  "Club data"
// @Success      201      {object}  Club
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/clubs [post]
func (h *Handler) CreateClub(c *gin.Context) {
	ownerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	club, err := h.service.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidHours) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create club"})
		return
	}

	c.JSON(http.StatusCreated, club)
}

// SuspendClub godoc
// @Summary      Suspend club
// @Description  Deactivates a club until the given instant. The nightly sweep reactivates it.
// @Tags         clubs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        clubID   path      int                true  "Club ID"
// @Param        request  body      SuspendClubRequest true  "Suspension window"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /admin/clubs/{clubID}/suspend [post]
func (h *Handler) SuspendClub(c *gin.Context) {
	clubID, err := strconv.Atoi(c.Param("clubID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	var req SuspendClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Suspend(c.Request.Context(), clubID, req); err != nil {
		if errors.Is(err, ErrClubNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Club not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Club suspended"})
}
