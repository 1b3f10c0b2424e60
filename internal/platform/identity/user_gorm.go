package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// errUserNotFound is returned by userGorm lookups when no row matches.
var errUserNotFound = errors.New("user not found")

// errEmailTaken is returned by userGorm.Create on a unique email violation.
var errEmailTaken = errors.New("email already exists")

// UserModel is the credential record owned by the local provider.
type UserModel struct {
	// ID is an opaque UUID string.
	ID string `gorm:"primaryKey;size:36"`

	// Email is unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is a bcrypt hash; plaintext is never stored.
	PasswordHash string `gorm:"size:255;not null"`

	// EmailConfirmedAt is set at creation because no confirmation flow exists.
	EmailConfirmedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name.
func (UserModel) TableName() string { return "users" }

// userGorm persists UserModel rows with GORM.
type userGorm struct {
	db *gorm.DB
}

func newUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create inserts u. A duplicate email yields errEmailTaken.
func (r *userGorm) Create(ctx context.Context, u *UserModel) error {
	// the existence check keeps the error portable between SQLite and Postgres;
	// the unique index still guards concurrent inserts
	if _, err := r.FindByEmail(ctx, u.Email); err == nil {
		return errEmailTaken
	} else if !errors.Is(err, errUserNotFound) {
		return err
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return errEmailTaken
		}
		return err
	}
	return nil
}

// FindByEmail returns the user with the given email.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*UserModel, error) {
	var u UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID returns the user with the given id.
func (r *userGorm) FindByID(ctx context.Context, id string) (*UserModel, error) {
	var u UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
