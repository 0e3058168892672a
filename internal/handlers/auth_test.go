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

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/auth"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/mocks"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/repositories"
)

func setupAuthRouter(users *mocks.UserRepositoryMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(users, auth.NewTokenManager("test-secret"))
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	return r
}

func TestRegisterSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(users)

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "ann@example.com" && u.Role == models.RoleFreelancer && u.PasswordHash != "secret-pass"
	})).Return(nil).Once()

	body := `{"email":"ann@example.com","password":"secret-pass","first_name":"Ann","last_name":"Lee","role":"freelancer"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["token"])
	users.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(users)

	users.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrEmailTaken).Once()

	body := `{"email":"ann@example.com","password":"secret-pass","first_name":"Ann","last_name":"Lee","role":"client"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	users.AssertExpectations(t)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	router := setupAuthRouter(new(mocks.UserRepositoryMock))

	body := `{"email":"ann@example.com","password":"secret-pass","first_name":"Ann","last_name":"Lee","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(users)

	hash, err := auth.HashPassword("secret-pass")
	require.NoError(t, err)
	user := models.User{
		ID:           testClientID,
		Email:        "bob@example.com",
		PasswordHash: hash,
		Role:         models.RoleClient,
		Status:       models.UserActive,
	}
	users.On("GetByEmail", mock.Anything, "bob@example.com").Return(user, nil).Once()

	body := `{"email":"bob@example.com","password":"secret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(users)

	hash, err := auth.HashPassword("secret-pass")
	require.NoError(t, err)
	user := models.User{Email: "bob@example.com", PasswordHash: hash, Status: models.UserActive}
	users.On("GetByEmail", mock.Anything, "bob@example.com").Return(user, nil).Once()

	body := `{"email":"bob@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertExpectations(t)
}

func TestLoginSuspendedAccount(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(users)

	hash, err := auth.HashPassword("secret-pass")
	require.NoError(t, err)
	user := models.User{Email: "bob@example.com", PasswordHash: hash, Status: models.UserSuspended}
	users.On("GetByEmail", mock.Anything, "bob@example.com").Return(user, nil).Once()

	body := `{"email":"bob@example.com","password":"secret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	users.AssertExpectations(t)
}
