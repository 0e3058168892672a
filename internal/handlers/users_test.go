package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/mocks"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/repositories"
)

func setupUserRouter(users *mocks.UserRepositoryMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewUserHandler(users)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", testFreelancerID)
		c.Next()
	})
	r.GET("/users/:user_id", handler.GetProfile)
	r.PUT("/users/me", handler.UpdateProfile)
	r.GET("/freelancers", handler.ListFreelancers)
	return r
}

func TestGetProfileNotFound(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupUserRouter(users)

	users.On("GetByID", mock.Anything, testClientID).Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/"+testClientID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	users.AssertExpectations(t)
}

func TestUpdateProfileSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupUserRouter(users)

	existing := models.User{
		ID:     testFreelancerID,
		Email:  "fred@example.com",
		Role:   models.RoleFreelancer,
		Status: models.UserActive,
	}
	users.On("GetByID", mock.Anything, testFreelancerID).Return(existing, nil).Once()
	users.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == testFreelancerID &&
			u.Title == "Backend Engineer" &&
			len(u.Skills) == 2
	})).Return(nil).Once()

	body := `{"first_name":"Fred","last_name":"Ngo","title":"Backend Engineer","skills":["go","postgres"]}`
	req := httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestListFreelancersPassesSkillFilter(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupUserRouter(users)

	users.On("ListFreelancers", mock.Anything, "go", 0, 20).
		Return([]models.User{{ID: testFreelancerID, Role: models.RoleFreelancer}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/freelancers?skill=go", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Freelancers []models.User `json:"freelancers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Freelancers, 1)
	users.AssertExpectations(t)
}
