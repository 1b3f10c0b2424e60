package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	jwtmw "chronicle_backend/internal/platform/jwt"
)

// MinPasswordLength mirrors the managed provider's default password policy.
const MinPasswordLength = 6

// dummyHash keeps the login path's cost constant when the email is unknown.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	jwtmw.Generator
	jwtmw.Parser
}

// Local is a self-hosted identity provider: bcrypt password hashes in SQL, HS256 bearer tokens.
type Local struct {
	users  *userGorm
	tokens TokenIssuer
	cost   int
	now    func() time.Time
}

// NewLocal creates a Local provider. The users table must exist; see AutoMigrate.
func NewLocal(db *gorm.DB, tokens TokenIssuer) *Local {
	return &Local{
		users:  newUserGorm(db),
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

// AutoMigrate creates the users table when it is missing.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{})
}

// CreateAccount registers a new, pre-confirmed user and returns its id.
func (p *Local) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", &ProviderError{Kind: KindInvalid, Message: "Unable to validate email address: invalid format"}
	}
	if len(password) < MinPasswordLength {
		return "", &ProviderError{Kind: KindInvalid, Message: fmt.Sprintf("Password should be at least %d characters.", MinPasswordLength)}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := p.now()
	u := &UserModel{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     string(hashed),
		EmailConfirmedAt: &now,
	}
	if err := p.users.Create(ctx, u); err != nil {
		if errors.Is(err, errEmailTaken) {
			return "", &ProviderError{Kind: KindDuplicate, Message: "A user with this email address has already been registered"}
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	return u.ID, nil
}

// VerifyCredentials checks email and password and issues an access token.
func (p *Local) VerifyCredentials(ctx context.Context, email, password string) (*Session, error) {
	u, err := p.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, errUserNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	// タイミング攻撃防止のため、ユーザーが存在しない場合もbcrypt比較を実行
	hash := dummyHash
	if u != nil {
		hash = u.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if u == nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := p.tokens.GenerateToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Session{Identity: Identity{ID: u.ID, Email: u.Email}, AccessToken: token}, nil
}

// ResolveToken verifies the token and confirms the user still exists.
func (p *Local) ResolveToken(ctx context.Context, token string) (*Identity, error) {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := p.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &Identity{ID: u.ID, Email: u.Email}, nil
}

// NormalizeEmail trims and lowercases an address; accounts are keyed on the result.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
