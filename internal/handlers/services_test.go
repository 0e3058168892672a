package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/mocks"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
)

func setupServiceRouter(services *mocks.ServiceRepositoryMock, callerID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewServiceHandler(services)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", callerID)
		c.Next()
	})
	r.POST("/services", handler.CreateService)
	r.GET("/services", handler.ListServices)
	r.GET("/services/:service_id", handler.GetService)
	return r
}

func TestCreateServiceSuccess(t *testing.T) {
	services := new(mocks.ServiceRepositoryMock)
	router := setupServiceRouter(services, testFreelancerID)

	services.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Service) bool {
		return s.FreelancerID == testFreelancerID && s.Slug == "logo-design-package" && s.Status == models.ServiceActive
	})).Return(nil).Once()

	body := `{"title":"Logo Design Package","description":"...","service_type":"design","starting_price":150,"delivery_days":3}`
	req := httptest.NewRequest(http.MethodPost, "/services", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	services.AssertExpectations(t)
}

func TestGetServiceCountsView(t *testing.T) {
	services := new(mocks.ServiceRepositoryMock)
	router := setupServiceRouter(services, testFreelancerID)

	svc := models.Service{ID: uuid.New(), ViewCount: 4, Status: models.ServiceActive}
	services.On("GetByID", mock.Anything, svc.ID).Return(svc, nil).Once()
	services.On("IncrementViews", mock.Anything, svc.ID).Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/services/"+svc.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	services.AssertExpectations(t)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "logo-design-package", slugify("Logo Design Package"))
	assert.Equal(t, "react-next-js-app", slugify("React & Next.js App!"))
	assert.Equal(t, "a-b", slugify("  a   b  "))
	assert.Equal(t, "", slugify("!!!"))
}
