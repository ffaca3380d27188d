package auth

import (
	"errors"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type SignUpDTO struct {
	EmployeeCode string `json:"employee_code"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
}

func (dto SignUpDTO) Validate() error {
	if strings.TrimSpace(dto.EmployeeCode) == "" {
		return errors.New("employee code is required")
	}
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if !emailPattern.MatchString(dto.Email) {
		return errors.New("please provide a valid email")
	}
	if len(dto.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if dto.Role != "" {
		if _, ok := ParseRole(dto.Role); !ok {
			return errors.New("role must be one of Employee, HR, Admin")
		}
	}
	return nil
}

type SignInDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto SignInDTO) Validate() error {
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if dto.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (dto RefreshTokenDTO) Validate() error {
	if dto.RefreshToken == "" {
		return errors.New("refresh token is required")
	}
	return nil
}

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

func (dto ForgotPasswordDTO) Validate() error {
	if dto.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

type ResetPasswordDTO struct {
	Password string `json:"password"`
}

func (dto ResetPasswordDTO) Validate() error {
	if len(dto.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}
