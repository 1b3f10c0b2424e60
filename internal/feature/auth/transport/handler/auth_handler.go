// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chronicle_backend/internal/feature/auth/domain"
	"chronicle_backend/internal/feature/auth/domain/entity"
	"chronicle_backend/internal/feature/auth/transport/http/dto"
	"chronicle_backend/internal/feature/auth/usecase"
	"chronicle_backend/internal/platform/http/middleware"
	"chronicle_backend/internal/platform/identity"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, email, password, nickname string) (string, error)
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	Me(ctx context.Context, userID, email string) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 必須項目の欠落は400
// - IDプロバイダーの拒否（重複メール等）はプロバイダーのメッセージで400
// - その他の失敗は500
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email, password, and nickname are required"})
		return
	}

	userID, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Nickname)
	if err != nil {
		var pe *identity.ProviderError
		if errors.As(err, &pe) {
			level := slog.LevelWarn
			if identity.IsDuplicate(err) {
				// 既存アカウントへの再登録は想定内の操作
				level = slog.LevelInfo
			}
			slog.Log(c.Request.Context(), level, "register rejected by identity provider", "kind", pe.Kind, "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, gin.H{"error": pe.Message})
			return
		}
		slog.Error("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	slog.Info("user registered", "user_id", userID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.RegisterResp{Message: "Registration successful", UserID: userID})
}

// Login はユーザーログインAPIエンドポイントを処理します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		slog.Error("login error", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginResp{AccessToken: res.AccessToken, User: res.User})
}

// Me は認証済みユーザーの情報を返します。
// トークンの検証は middleware.AuthRequired が行います。
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), c.GetString(middleware.ContextUserID), c.GetString(middleware.ContextUserEmail))
	if err != nil {
		slog.Error("get user info failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user info"})
		return
	}
	c.JSON(http.StatusOK, dto.MeResp{User: *user})
}
