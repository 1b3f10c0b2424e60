// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chronicle_backend/internal/feature/auth/domain"
	"chronicle_backend/internal/feature/auth/domain/entity"
	"chronicle_backend/internal/platform/identity"
)

// IdentityProvider はアカウント作成と資格情報検証を外部のIDプロバイダーに委譲します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/identity）ではなくコンシューマー（usecase）が定義します。
type IdentityProvider interface {
	// CreateAccount はメール確認済みのアカウントを作成し、ユーザーIDを返します。
	CreateAccount(ctx context.Context, email, password string) (string, error)
	// VerifyCredentials はメールアドレスとパスワードを検証し、アクセストークンを発行します。
	VerifyCredentials(ctx context.Context, email, password string) (*identity.Session, error)
}

// ProfileRepository はプロフィールの永続化層を抽象化します。
type ProfileRepository interface {
	// Create はプロフィールを保存します。既存のプロフィールは上書きされます。
	Create(ctx context.Context, profile *entity.Profile) error
	// FindByUserID はプロフィールを取得します。存在しない場合は nil, nil を返します。
	FindByUserID(ctx context.Context, userID string) (*entity.Profile, error)
}

// LoginResult はログイン成功時の結果です。
type LoginResult struct {
	AccessToken string
	User        entity.User
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	identity IdentityProvider
	profiles ProfileRepository
	now      func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(idp IdentityProvider, profiles ProfileRepository) *authUsecase {
	return &authUsecase{
		identity: idp,
		profiles: profiles,
		now:      time.Now,
	}
}

// Register はIDプロバイダーにアカウントを作成し、成功した場合のみプロフィールを作成します。
// プロバイダーの拒否（重複メール等）は *identity.ProviderError のまま返します。
// プロフィールにはプロバイダーと同じく正規化済みのメールアドレスを保存します。
func (u *authUsecase) Register(ctx context.Context, email, password, nickname string) (string, error) {
	email = identity.NormalizeEmail(email)
	userID, err := u.identity.CreateAccount(ctx, email, password)
	if err != nil {
		return "", err
	}

	profile := &entity.Profile{
		UserID:    userID,
		Email:     email,
		Nickname:  nickname,
		CreatedAt: u.now().UTC().Truncate(time.Millisecond),
	}
	if err := u.profiles.Create(ctx, profile); err != nil {
		return "", fmt.Errorf("%w: user %s: %w", domain.ErrProfileUnavailable, userID, err)
	}
	return userID, nil
}

// Login は資格情報を検証し、アクセストークンとプロフィールのニックネームを返します。
// プロフィールが存在しない場合は "Unknown User" を使います。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	session, err := u.identity.VerifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	profile, err := u.profiles.FindByUserID(ctx, session.Identity.ID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	return &LoginResult{
		AccessToken: session.AccessToken,
		User: entity.User{
			ID:       session.Identity.ID,
			Email:    session.Identity.Email,
			Nickname: profile.DisplayName(),
		},
	}, nil
}

// Me は認証済みユーザーの情報をプロフィールと合わせて返します。
func (u *authUsecase) Me(ctx context.Context, userID, email string) (*entity.User, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	profile, err := u.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &entity.User{ID: userID, Email: email, Nickname: profile.DisplayName()}, nil
}

// Nickname はユーザーの表示名を返します。評価投稿時の author に使われます。
func (u *authUsecase) Nickname(ctx context.Context, userID string) (string, error) {
	profile, err := u.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}
	return profile.DisplayName(), nil
}
