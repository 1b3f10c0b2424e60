// Package router はGinエンジンの構築とルーティングを行います。
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "chronicle_backend/internal/feature/auth/transport/handler"
	ratingshandler "chronicle_backend/internal/feature/ratings/transport/handler"
	"chronicle_backend/internal/platform/http/handler"
	"chronicle_backend/internal/platform/http/middleware"
)

// Deps はルーターが必要とするハンドラーと依存関係です。
type Deps struct {
	// Prefix はすべてのルートの前に付くパスです（例: "/make-server-081848af"）。空でも構いません。
	Prefix   string
	Logger   *slog.Logger
	Auth     *authhandler.AuthHandler
	Ratings  *ratingshandler.RatingHandler
	Resolver middleware.TokenResolver
}

// CORSConfig はブラウザのフロントエンドから呼び出すためのCORS設定を返します。
func CORSConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          600 * time.Second,
	}
}

// NewRouter はミドルウェアとルートを設定したGinエンジンを返します。
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	// RequestLogger wraps Recovery so panicking requests still get logged.
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.New(CORSConfig()))

	g := r.Group(d.Prefix)

	// 認証不要
	// 導通確認用
	g.GET("/health", handler.Health)
	g.HEAD("/health", handler.Health)
	g.POST("/auth/register", d.Auth.Register)
	g.POST("/auth/login", d.Auth.Login)
	g.GET("/ratings/averages", d.Ratings.Averages)
	g.GET("/ratings/:poiId", d.Ratings.List)
	g.GET("/ratings/:poiId/average", d.Ratings.Average)

	// 認証必須のルート
	// リクエストごとにIDプロバイダーでトークンを検証する
	g.GET("/auth/me", middleware.AuthRequired(d.Resolver, "No access token provided"), d.Auth.Me)
	g.POST("/ratings", middleware.AuthRequired(d.Resolver, "Authentication required"), d.Ratings.Submit)

	return r
}
