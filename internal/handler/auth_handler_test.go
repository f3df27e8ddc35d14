package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpc-qa/inspection-api/internal/dto"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
)

type authServiceMock struct {
	registerErr error
	loginErr    error
}

func (m *authServiceMock) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserProfile, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &dto.UserProfile{ID: "u1", Email: req.Email, FullName: req.FullName}, nil
}

func (m *authServiceMock) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &dto.LoginResponse{Token: "token", User: dto.UserProfile{ID: "u1", Email: req.Email}}, nil
}

func authTestContext(t *testing.T, target string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestAuthHandlerRegister(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})
	c, w := authTestContext(t, "/auth/register", dto.RegisterRequest{
		Email:    "inspector@example.com",
		FullName: "Lead Inspector",
		Password: "password123",
	})

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data dto.UserProfile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "u1", envelope.Data.ID)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{loginErr: appErrors.ErrInvalidCredentials})
	c, w := authTestContext(t, "/auth/login", dto.LoginRequest{Email: "inspector@example.com", Password: "wrong"})

	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLoginBadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&authServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("not-json")))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
