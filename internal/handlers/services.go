package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/repositories"
)

// ServiceHandler manages productized service listings.
type ServiceHandler struct {
	services repositories.ServiceRepository
}

// NewServiceHandler builds a ServiceHandler.
func NewServiceHandler(services repositories.ServiceRepository) *ServiceHandler {
	return &ServiceHandler{services: services}
}

// CreateService publishes a listing for the authenticated freelancer.
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req struct {
		Title         string   `json:"title" binding:"required"`
		Description   string   `json:"description" binding:"required"`
		ServiceType   string   `json:"service_type" binding:"required"`
		StartingPrice float64  `json:"starting_price" binding:"required,gt=0"`
		DeliveryDays  int      `json:"delivery_days" binding:"required,gt=0"`
		Revisions     int      `json:"revisions"`
		Tags          []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := models.Service{
		ID:            uuid.New(),
		FreelancerID:  userIDFromContext(c),
		Title:         req.Title,
		Slug:          slugify(req.Title),
		Description:   req.Description,
		ServiceType:   req.ServiceType,
		StartingPrice: req.StartingPrice,
		DeliveryDays:  req.DeliveryDays,
		Revisions:     req.Revisions,
		Tags:          pq.StringArray(req.Tags),
		Status:        models.ServiceActive,
	}
	if err := h.services.Create(c.Request.Context(), &svc); err != nil {
		if errors.Is(err, repositories.ErrSlugTaken) {
			// Retry once with a random suffix before surfacing the conflict.
			svc.Slug = svc.Slug + "-" + uuid.NewString()[:8]
			if err := h.services.Create(c.Request.Context(), &svc); err == nil {
				c.JSON(http.StatusCreated, gin.H{"service": svc})
				return
			}
			c.JSON(http.StatusConflict, gin.H{"error": "a service with this title already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create service"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service": svc})
}

// ListServices returns active listings, optionally filtered by type.
func (h *ServiceHandler) ListServices(c *gin.Context) {
	page, limit := parsePagination(c, 20)

	services, err := h.services.List(c.Request.Context(), c.Query("type"), (page-1)*limit, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load services"})
		return
	}
	if services == nil {
		services = []models.Service{}
	}
	c.JSON(http.StatusOK, gin.H{"services": services, "page": page, "limit": limit})
}

// GetService returns one listing and counts the view.
func (h *ServiceHandler) GetService(c *gin.Context) {
	id, ok := parseUUIDParam(c, "service_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	svc, err := h.services.GetByID(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrServiceNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "service not found"})
		return
	}

	_ = h.services.IncrementViews(c.Request.Context(), id)
	svc.ViewCount++

	c.JSON(http.StatusOK, gin.H{"service": svc})
}

// slugify turns a listing title into a URL-safe slug.
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
