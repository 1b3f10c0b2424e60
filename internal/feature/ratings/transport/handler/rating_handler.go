// Package handler はratingsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chronicle_backend/internal/feature/ratings/domain"
	"chronicle_backend/internal/feature/ratings/domain/entity"
	"chronicle_backend/internal/feature/ratings/transport/http/dto"
	"chronicle_backend/internal/platform/http/middleware"
)

// RatingsUsecase は評価操作のユースケースを定義します。
type RatingsUsecase interface {
	Submit(ctx context.Context, userID, poiID string, value int, text string) (*entity.Rating, error)
	List(ctx context.Context, poiID string) ([]entity.Rating, error)
	Average(ctx context.Context, poiID string, round bool) (*entity.Average, error)
	Averages(ctx context.Context, round bool) (map[string]string, error)
}

// RatingHandler は評価のHTTPリクエストを処理します。
type RatingHandler struct {
	ratings RatingsUsecase
}

// NewRatingHandler はRatingHandlerの新しいインスタンスを生成します。
func NewRatingHandler(ratings RatingsUsecase) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// Submit は評価投稿APIエンドポイントを処理します。認証は middleware.AuthRequired が行います。
// - poiId / rating の欠落は400
// - 範囲外の rating、長すぎる text は400
// - 保存失敗は500
func (h *RatingHandler) Submit(c *gin.Context) {
	var req dto.SubmitRatingReq
	if err := c.ShouldBindJSON(&req); err != nil || req.PoiID == "" || req.Rating == nil {
		slog.Warn("rating validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "POI ID and rating are required"})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	rating, err := h.ratings.Submit(c.Request.Context(), userID, req.PoiID, *req.Rating, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRatingOutOfRange), errors.Is(err, domain.ErrTextTooLong), errors.Is(err, domain.ErrMissingPoiID):
			slog.Warn("rating rejected", "error", err, "poi_id", req.PoiID, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("save rating failed", "error", err, "poi_id", req.PoiID, "user_id", userID, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rating"})
		}
		return
	}

	slog.Info("rating saved", "poi_id", rating.PoiID, "rating_id", rating.ID, "user_id", userID)
	c.JSON(http.StatusOK, dto.SubmitRatingResp{Message: "Rating saved successfully", Rating: *rating})
}

// List は指定POIの評価一覧を返します。
func (h *RatingHandler) List(c *gin.Context) {
	poiID := c.Param("poiId")
	list, err := h.ratings.List(c.Request.Context(), poiID)
	if err != nil {
		slog.Error("get ratings failed", "error", err, "poi_id", poiID, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get ratings"})
		return
	}
	c.JSON(http.StatusOK, dto.RatingListResp{Ratings: list})
}

// Average は指定POIの平均評価を返します。?round=true で0.5単位に丸めます。
func (h *RatingHandler) Average(c *gin.Context) {
	var q dto.AverageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "round must be a boolean"})
		return
	}

	poiID := c.Param("poiId")
	avg, err := h.ratings.Average(c.Request.Context(), poiID, q.Round)
	if err != nil {
		slog.Error("get average failed", "error", err, "poi_id", poiID, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get ratings"})
		return
	}
	c.JSON(http.StatusOK, dto.AverageResp{PoiID: avg.PoiID, Average: avg.Average, Count: avg.Count, Stars: avg.Stars})
}

// Averages はすべてのPOIの平均評価を返します。
func (h *RatingHandler) Averages(c *gin.Context) {
	var q dto.AverageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "round must be a boolean"})
		return
	}

	avgs, err := h.ratings.Averages(c.Request.Context(), q.Round)
	if err != nil {
		slog.Error("get averages failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get ratings"})
		return
	}
	c.JSON(http.StatusOK, dto.AveragesResp{Averages: avgs})
}
