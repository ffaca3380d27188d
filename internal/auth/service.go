package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dayflow-hq/dayflow/internal"
	"github.com/dayflow-hq/dayflow/internal/core/events"
	"golang.org/x/crypto/bcrypt"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
)

// Repository defines the data access methods for identity records.
type Repository interface {
	Create(user *User) error
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByEmployeeCode(code string) (*User, error)
	GetByVerificationToken(tokenHash string, now time.Time) (*User, error)
	GetByResetToken(tokenHash string, now time.Time) (*User, error)
	Update(user *User) error
	FindActiveByRoles(roles []Role) ([]*User, error)
}

// ProfileCreator lets signup create the employee profile without this
// package depending on the employee package.
type ProfileCreator interface {
	CreateForUser(userID int64, firstName, lastName string) error
}

// Publisher is the slice of the event bus the auth flows need.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service performs authentication and identity lifecycle logic.
type Service struct {
	repo           Repository
	tokenGenerator TokenGenerator
	profiles       ProfileCreator
	publisher      Publisher
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo Repository, tokenGen TokenGenerator, profiles ProfileCreator, publisher Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		profiles:       profiles,
		publisher:      publisher,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

type SignUpResult struct {
	User   *User      `json:"user"`
	Tokens AuthTokens `json:"tokens"`
}

// SignUp registers a new identity. The verification email and the optional
// employee profile are side effects; only identity creation itself can fail
// the call.
func (s *Service) SignUp(ctx context.Context, dto SignUpDTO) (*SignUpResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	user := &User{
		EmployeeCode: dto.EmployeeCode,
		Email:        dto.Email,
		Role:         RoleEmployee,
		IsActive:     true,
	}
	user.NormalizeIdentity()

	if dto.Role != "" {
		role, ok := ParseRole(dto.Role)
		if !ok {
			return nil, internal.NewValidationError("invalid role", internal.ErrCodeValidationFailed)
		}
		user.Role = role
	}

	if existing, err := s.repo.GetByEmail(user.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if existing, err := s.repo.GetByEmployeeCode(user.EmployeeCode); err == nil && existing != nil {
		return nil, ErrEmployeeCodeTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	verificationToken, tokenHash, err := generateHashedToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}
	expires := time.Now().Add(verificationTokenTTL)
	user.EmailVerificationToken = &tokenHash
	user.EmailVerificationExp = &expires

	if err := s.repo.Create(user); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", user.Email)
		return nil, err
	}

	if dto.FirstName != "" && dto.LastName != "" && s.profiles != nil {
		if err := s.profiles.CreateForUser(user.ID, dto.FirstName, dto.LastName); err != nil {
			s.logger.Error("failed to create employee profile at signup", "error", err, "user_id", user.ID)
		}
	}

	if s.publisher != nil {
		name := dto.FirstName
		if name == "" {
			name = user.EmployeeCode
		}
		_ = s.publisher.Publish(ctx, events.NewUserRegisteredEvent(user.Email, name, verificationToken))
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, err
	}

	user.Permissions = PermissionsForRole(user.Role)

	s.logger.Info("new user registered", "user_id", user.ID, "email", user.Email, "role", user.Role)

	return &SignUpResult{User: user, Tokens: tokens}, nil
}

// SignIn validates credentials and returns tokens
func (s *Service) SignIn(dto SignInDTO) (*User, AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, AuthTokens{}, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	user, err := s.repo.GetByEmail(dto.Email)
	if err != nil || user == nil {
		return nil, AuthTokens{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, AuthTokens{}, ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, AuthTokens{}, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.repo.Update(user); err != nil {
		s.logger.Warn("failed to stamp last login", "error", err, "user_id", user.ID)
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, AuthTokens{}, err
	}

	user.Permissions = PermissionsForRole(user.Role)

	s.logger.Info("user logged in", "user_id", user.ID, "email", user.Email)

	return user, tokens, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}

	user, err := s.repo.GetByID(userID)
	if err != nil || user == nil {
		return AuthTokens{}, ErrInvalidToken
	}
	if !user.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(user.ID)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// GetUserWithPermissions loads a user and expands its role into the
// permission set used by route guards.
func (s *Service) GetUserWithPermissions(userID int64) (*User, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	user.Permissions = PermissionsForRole(user.Role)
	return user, nil
}

// VerifyEmail consumes a verification token. Tokens are stored hashed and
// single-use.
func (s *Service) VerifyEmail(token string) error {
	user, err := s.repo.GetByVerificationToken(hashToken(token), time.Now())
	if err != nil || user == nil {
		return ErrVerifyTokenInvalid
	}

	user.IsEmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationExp = nil

	if err := s.repo.Update(user); err != nil {
		return err
	}

	s.logger.Info("email verified", "user_id", user.ID, "email", user.Email)
	return nil
}

// ForgotPassword issues a reset token. It never reveals whether the email
// exists.
func (s *Service) ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	user, err := s.repo.GetByEmail(dto.Email)
	if err != nil || user == nil {
		return nil
	}

	resetToken, tokenHash, err := generateHashedToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expires := time.Now().Add(resetTokenTTL)
	user.PasswordResetToken = &tokenHash
	user.PasswordResetExp = &expires

	if err := s.repo.Update(user); err != nil {
		return err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.NewPasswordResetEvent(user.Email, user.EmployeeCode, resetToken))
	}

	s.logger.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset token and replaces the password hash.
func (s *Service) ResetPassword(token string, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	user, err := s.repo.GetByResetToken(hashToken(token), time.Now())
	if err != nil || user == nil {
		return ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.PasswordResetToken = nil
	user.PasswordResetExp = nil

	if err := s.repo.Update(user); err != nil {
		return err
	}

	s.logger.Info("password reset completed", "user_id", user.ID)
	return nil
}

// UserEmail resolves a user ID to its email address.
func (s *Service) UserEmail(userID int64) (string, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil || user == nil {
		return "", ErrUserNotFound
	}
	return user.Email, nil
}

// ActiveReviewers returns the active HR and Admin identities, used to fan
// out leave notifications.
func (s *Service) ActiveReviewers() ([]*User, error) {
	return s.repo.FindActiveByRoles([]Role{RoleHR, RoleAdmin})
}

func (s *Service) issueTokens(userID int64) (AuthTokens, error) {
	id := strconv.FormatInt(userID, 10)

	accessToken, err := s.tokenGenerator.GenerateAccessToken(id)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(id)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// generateHashedToken returns a random token and the sha256 hex digest that
// gets persisted.
func generateHashedToken() (token, tokenHash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(bytes)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
