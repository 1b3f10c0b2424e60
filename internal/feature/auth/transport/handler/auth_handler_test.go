package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronicle_backend/internal/feature/auth/domain"
	"chronicle_backend/internal/feature/auth/domain/entity"
	"chronicle_backend/internal/feature/auth/usecase"
	"chronicle_backend/internal/platform/http/middleware"
	"chronicle_backend/internal/platform/identity"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	RegisterFunc func(ctx context.Context, email, password, nickname string) (string, error)
	LoginFunc    func(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	MeFunc       func(ctx context.Context, userID, email string) (*entity.User, error)
}

func (m *mockAuthUsecase) Register(ctx context.Context, email, password, nickname string) (string, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, nickname)
	}
	return "", errors.New("not expected")
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string) (*usecase.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, errors.New("not expected")
}

func (m *mockAuthUsecase) Me(ctx context.Context, userID, email string) (*entity.User, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, userID, email)
	}
	return nil, errors.New("not expected")
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, gin.H) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp gin.H
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		registerFunc   func(ctx context.Context, email, password, nickname string) (string, error)
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name: "success",
			body: gin.H{"email": "a@b.com", "password": "secret1", "nickname": "Anna"},
			registerFunc: func(ctx context.Context, email, password, nickname string) (string, error) {
				assert.Equal(t, "Anna", nickname)
				return "uid-1", nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   gin.H{"message": "Registration successful", "userId": "uid-1"},
		},
		{
			name:           "missing nickname",
			body:           gin.H{"email": "a@b.com", "password": "secret1"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Email, password, and nickname are required"},
		},
		{
			name:           "empty email",
			body:           gin.H{"email": "", "password": "secret1", "nickname": "Anna"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Email, password, and nickname are required"},
		},
		{
			name:           "malformed json",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Email, password, and nickname are required"},
		},
		{
			name: "duplicate email surfaces provider message",
			body: gin.H{"email": "a@b.com", "password": "secret1", "nickname": "Anna"},
			registerFunc: func(ctx context.Context, email, password, nickname string) (string, error) {
				return "", &identity.ProviderError{Kind: identity.KindDuplicate, Message: "A user with this email address has already been registered"}
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "A user with this email address has already been registered"},
		},
		{
			name: "upstream failure",
			body: gin.H{"email": "a@b.com", "password": "secret1", "nickname": "Anna"},
			registerFunc: func(ctx context.Context, email, password, nickname string) (string, error) {
				return "", domain.ErrProfileUnavailable
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "Registration failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthUsecase{RegisterFunc: tt.registerFunc})
			router := gin.New()
			router.POST("/auth/register", h.Register)

			w, resp := doJSON(t, router, http.MethodPost, "/auth/register", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, resp)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		loginFunc      func(ctx context.Context, email, password string) (*usecase.LoginResult, error)
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name: "success",
			body: gin.H{"email": "a@b.com", "password": "secret1"},
			loginFunc: func(ctx context.Context, email, password string) (*usecase.LoginResult, error) {
				return &usecase.LoginResult{
					AccessToken: "tok",
					User:        entity.User{ID: "uid-1", Email: "a@b.com", Nickname: "Anna"},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: gin.H{
				"accessToken": "tok",
				"user":        map[string]any{"id": "uid-1", "email": "a@b.com", "nickname": "Anna"},
			},
		},
		{
			name:           "missing password",
			body:           gin.H{"email": "a@b.com"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Email and password are required"},
		},
		{
			name: "invalid credentials",
			body: gin.H{"email": "a@b.com", "password": "wrong"},
			loginFunc: func(ctx context.Context, email, password string) (*usecase.LoginResult, error) {
				return nil, domain.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   gin.H{"error": "Invalid email or password"},
		},
		{
			name: "upstream failure",
			body: gin.H{"email": "a@b.com", "password": "secret1"},
			loginFunc: func(ctx context.Context, email, password string) (*usecase.LoginResult, error) {
				return nil, errors.New("provider unreachable")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "Login failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthUsecase{LoginFunc: tt.loginFunc})
			router := gin.New()
			router.POST("/auth/login", h.Login)

			w, resp := doJSON(t, router, http.MethodPost, "/auth/login", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, resp)
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	withUser := func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "uid-1")
		c.Set(middleware.ContextUserEmail, "a@b.com")
		c.Next()
	}

	t.Run("success", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthUsecase{
			MeFunc: func(ctx context.Context, userID, email string) (*entity.User, error) {
				assert.Equal(t, "uid-1", userID)
				assert.Equal(t, "a@b.com", email)
				return &entity.User{ID: userID, Email: email, Nickname: "Anna"}, nil
			},
		})
		router := gin.New()
		router.GET("/auth/me", withUser, h.Me)

		w, resp := doJSON(t, router, http.MethodGet, "/auth/me", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, gin.H{"user": map[string]any{"id": "uid-1", "email": "a@b.com", "nickname": "Anna"}}, resp)
	})

	t.Run("failure", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthUsecase{
			MeFunc: func(ctx context.Context, userID, email string) (*entity.User, error) {
				return nil, errors.New("kv down")
			},
		})
		router := gin.New()
		router.GET("/auth/me", withUser, h.Me)

		w, resp := doJSON(t, router, http.MethodGet, "/auth/me", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, gin.H{"error": "Failed to get user info"}, resp)
	})
}
