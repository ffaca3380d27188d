package auth

import (
	"errors"
	"time"

	"github.com/dayflow-hq/dayflow/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(user *auth.User) error {
	return r.db.Create(user).Error
}

func (r *Repository) GetByID(id int64) (*auth.User, error) {
	var user auth.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByEmail(email string) (*auth.User, error) {
	var user auth.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByEmployeeCode(code string) (*auth.User, error) {
	var user auth.User
	if err := r.db.First(&user, "employee_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByVerificationToken(tokenHash string, now time.Time) (*auth.User, error) {
	var user auth.User
	err := r.db.
		Where("email_verification_token = ? AND email_verification_exp > ?", tokenHash, now).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByResetToken(tokenHash string, now time.Time) (*auth.User, error) {
	var user auth.User
	err := r.db.
		Where("password_reset_token = ? AND password_reset_exp > ?", tokenHash, now).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) Update(user *auth.User) error {
	// Save with Select("*") so cleared token pointers are written as NULL.
	return r.db.Model(user).Select("*").Omit("id", "created_at").Updates(user).Error
}

func (r *Repository) FindActiveByRoles(roles []auth.Role) ([]*auth.User, error) {
	var users []*auth.User
	err := r.db.
		Where("role IN ? AND is_active = true", roles).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
