package di

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"chronicle_backend/internal/app/config"
	authusecase "chronicle_backend/internal/feature/auth/usecase"
	infrahttp "chronicle_backend/internal/platform/http"
	"chronicle_backend/internal/platform/http/middleware"
	"chronicle_backend/internal/platform/identity"
	jwtmw "chronicle_backend/internal/platform/jwt"
	"chronicle_backend/internal/shared/ratelimiter"
)

// IdentityProvider is everything the HTTP layer needs from the identity provider.
type IdentityProvider interface {
	authusecase.IdentityProvider
	middleware.TokenResolver
}

var (
	_ IdentityProvider = (*identity.Local)(nil)
	_ IdentityProvider = (*identity.GoTrue)(nil)
)

// NewIdentityProvider creates the configured identity provider.
// The local provider needs db for its users table.
func NewIdentityProvider(cfg config.Config, db *gorm.DB) (IdentityProvider, error) {
	switch cfg.IdentityProvider {
	case config.IdentityLocal, "":
		if db == nil {
			return nil, fmt.Errorf("local identity provider: %w", ErrBackendUnavailable)
		}
		secret := cfg.JWTSecret
		if secret == "" {
			slog.Warn("JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
			secret = randomSecret()
		}
		return identity.NewLocal(db, jwtmw.NewGenerator(secret, cfg.JWTExpiration)), nil

	case config.IdentityGoTrue:
		if cfg.AuthURL == "" || cfg.AuthServiceKey == "" {
			return nil, errors.New("gotrue identity provider requires AUTH_URL and AUTH_SERVICE_ROLE_KEY")
		}
		gcfg := identity.GoTrueConfig{
			BaseURL:        cfg.AuthURL,
			ServiceRoleKey: cfg.AuthServiceKey,
			AnonKey:        cfg.AuthAnonKey,
			Timeout:        cfg.IdentityTimeout,
		}
		client := infrahttp.NewIdentityClient(cfg.IdentityTimeout)
		limiter := ratelimiter.NewRateLimiter(cfg.IdentityRateLimit, time.Minute)
		return identity.NewGoTrue(gcfg, client, limiter), nil

	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.IdentityProvider)
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
