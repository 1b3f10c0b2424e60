// Package usecase はratingsフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chronicle_backend/internal/feature/ratings/domain"
	"chronicle_backend/internal/feature/ratings/domain/entity"
	"chronicle_backend/internal/platform/events"
)

// RatingRepository は評価リストの永続化層を抽象化します。
type RatingRepository interface {
	// List はPOIの評価を新しい順で返します。存在しない場合は空スライスです。
	List(ctx context.Context, poiID string) ([]entity.Rating, error)
	// Prepend は評価をリストの先頭に追加して保存します。
	Prepend(ctx context.Context, rating entity.Rating) error
	// ListAll は保存されているすべての評価リストをPOI IDごとに返します。
	ListAll(ctx context.Context) (map[string][]entity.Rating, error)
}

// AuthorLookup はユーザーIDから投稿者名（ニックネーム）を解決します。
type AuthorLookup interface {
	Nickname(ctx context.Context, userID string) (string, error)
}

// EventPublisher は評価投稿イベントを配信します。
type EventPublisher interface {
	PublishRatingSubmitted(ctx context.Context, ev events.RatingSubmitted) error
}

// ratingsUsecase は評価のビジネスロジックを実装します。
type ratingsUsecase struct {
	repo      RatingRepository
	authors   AuthorLookup
	publisher EventPublisher
	now       func() time.Time
}

// NewRatingsUsecase はratingsUsecaseの新しいインスタンスを生成します。
// publisher が nil の場合、イベントは破棄されます。
func NewRatingsUsecase(repo RatingRepository, authors AuthorLookup, publisher EventPublisher) *ratingsUsecase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ratingsUsecase{
		repo:      repo,
		authors:   authors,
		publisher: publisher,
		now:       time.Now,
	}
}

// Submit は評価を検証し、投稿者のニックネームを付けてリストの先頭に保存します。
// 保存後のイベント配信はベストエフォートで、失敗してもエラーにはなりません。
func (u *ratingsUsecase) Submit(ctx context.Context, userID, poiID string, value int, text string) (*entity.Rating, error) {
	if err := domain.Validate(poiID, value, text); err != nil {
		return nil, err
	}

	author, err := u.authors.Nickname(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve author: %w", err)
	}

	ms := u.now().UnixMilli()
	rating := entity.Rating{
		ID:     ms,
		UserID: userID,
		PoiID:  poiID,
		Author: author,
		Rating: value,
		Text:   text,
		Date:   ms,
	}
	if err := u.repo.Prepend(ctx, rating); err != nil {
		return nil, fmt.Errorf("submit rating: %w", err)
	}

	ev := events.RatingSubmitted{
		RatingID:    rating.ID,
		PoiID:       rating.PoiID,
		UserID:      rating.UserID,
		Author:      rating.Author,
		Rating:      rating.Rating,
		SubmittedAt: rating.Date,
	}
	if err := u.publisher.PublishRatingSubmitted(ctx, ev); err != nil {
		slog.Warn("publish rating event failed", "error", err, "poi_id", poiID, "rating_id", rating.ID)
	}

	return &rating, nil
}

// List はPOIの評価を新しい順で返します。
func (u *ratingsUsecase) List(ctx context.Context, poiID string) ([]entity.Rating, error) {
	return u.repo.List(ctx, poiID)
}

// Average はPOIの平均評価を小数第1位で返します。round が true の場合は0.5単位に丸めます。
func (u *ratingsUsecase) Average(ctx context.Context, poiID string, round bool) (*entity.Average, error) {
	list, err := u.repo.List(ctx, poiID)
	if err != nil {
		return nil, err
	}
	return &entity.Average{
		PoiID:   poiID,
		Average: domain.FormatAverage(list, round),
		Count:   len(list),
		Stars:   domain.RenderStars(domain.RoundHalf(domain.Mean(list))),
	}, nil
}

// Averages はすべてのPOIの平均評価をまとめて返します。
func (u *ratingsUsecase) Averages(ctx context.Context, round bool) (map[string]string, error) {
	all, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(all))
	for poiID, list := range all {
		out[poiID] = domain.FormatAverage(list, round)
	}
	return out, nil
}
