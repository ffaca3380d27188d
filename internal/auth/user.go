package auth

import (
	"context"
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee Role = "Employee"
	RoleHR       Role = "HR"
	RoleAdmin    Role = "Admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleEmployee, RoleHR, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// User is the identity record: credentials, role and the transient
// verification/reset token state.
type User struct {
	ID                     int64      `json:"id" gorm:"primaryKey"`
	EmployeeCode           string     `json:"employee_code" gorm:"column:employee_code;uniqueIndex;not null"`
	Email                  string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash           string     `json:"-" gorm:"column:password_hash;not null"`
	Role                   Role       `json:"role" gorm:"default:Employee"`
	IsActive               bool       `json:"is_active" gorm:"column:is_active;default:true"`
	IsEmailVerified        bool       `json:"is_email_verified" gorm:"column:is_email_verified;default:false"`
	EmailVerificationToken *string    `json:"-" gorm:"column:email_verification_token"`
	EmailVerificationExp   *time.Time `json:"-" gorm:"column:email_verification_expires"`
	PasswordResetToken     *string    `json:"-" gorm:"column:password_reset_token"`
	PasswordResetExp       *time.Time `json:"-" gorm:"column:password_reset_expires"`
	LastLoginAt            *time.Time `json:"last_login_at,omitempty" gorm:"column:last_login_at"`
	CreatedAt              time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt              time.Time  `json:"updated_at" gorm:"column:updated_at"`

	// Derived from Role at load time, never persisted.
	Permissions []string `json:"permissions,omitempty" gorm:"-"`
}

func (User) TableName() string {
	return "users"
}

// NormalizeIdentity applies the storage conventions: employee codes are
// uppercase, emails lowercase.
func (u *User) NormalizeIdentity() {
	u.EmployeeCode = strings.ToUpper(strings.TrimSpace(u.EmployeeCode))
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions ...string) bool {
	for _, userPerm := range u.Permissions {
		for _, requiredPerm := range permissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type userCtxKey struct{}

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*User)
	return user, ok
}
