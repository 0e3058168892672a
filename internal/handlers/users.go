package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/repositories"
)

// UserHandler manages public profiles and profile updates.
type UserHandler struct {
	users repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// GetProfile returns a user's public profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	id, ok := parseUUIDParam(c, "user_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile updates the caller's own profile fields.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		FirstName   string   `json:"first_name" binding:"required"`
		LastName    string   `json:"last_name" binding:"required"`
		Bio         string   `json:"bio"`
		Title       string   `json:"title"`
		CompanyName string   `json:"company_name"`
		Skills      []string `json:"skills"`
		HourlyRate  *float64 `json:"hourly_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Bio = req.Bio
	user.Title = req.Title
	user.CompanyName = req.CompanyName
	user.Skills = pq.StringArray(req.Skills)
	user.HourlyRate = req.HourlyRate

	if err := h.users.UpdateProfile(c.Request.Context(), &user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListFreelancers returns active freelancers, optionally filtered by skill.
func (h *UserHandler) ListFreelancers(c *gin.Context) {
	page, limit := parsePagination(c, 20)

	users, err := h.users.ListFreelancers(c.Request.Context(), c.Query("skill"), (page-1)*limit, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load freelancers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"freelancers": users, "page": page, "limit": limit})
}
