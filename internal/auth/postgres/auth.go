package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/auth"
	userDatamodel "github.com/frahmantamala/hr-directory/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(ctx context.Context, username string) (*auth.Credentials, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "password_hash", "is_active").
		Where("username = ?", username).
		Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	return &auth.Credentials{
		UserID:       u.ID,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}, nil
}

func (r *Repository) GetPrincipal(ctx context.Context, userID int64) (*auth.Principal, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	// membership order decides the effective role
	var groups []string
	err := r.db.WithContext(ctx).
		Table("groups").
		Select("groups.name").
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		Order("user_groups.id ASC").
		Pluck("groups.name", &groups).Error
	if err != nil {
		return nil, err
	}

	return &auth.Principal{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Superuser: u.IsSuperuser,
		Staff:     u.IsStaff,
		Active:    u.IsActive,
		LastLogin: u.LastLogin,
		Groups:    groups,
	}, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("last_login", at).Error
}
