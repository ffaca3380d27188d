package auth_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dayflow-hq/dayflow/internal/auth"
	"github.com/dayflow-hq/dayflow/internal/core/events"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	users       map[int64]*auth.User
	nextID      int64
	createError error
	updateError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[int64]*auth.User),
		nextID: 1,
	}
}

func (m *mockUserRepository) Create(user *auth.User) error {
	if m.createError != nil {
		return m.createError
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByID(id int64) (*auth.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepository) GetByEmail(email string) (*auth.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) GetByEmployeeCode(code string) (*auth.User, error) {
	for _, u := range m.users {
		if u.EmployeeCode == code {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) GetByVerificationToken(tokenHash string, now time.Time) (*auth.User, error) {
	for _, u := range m.users {
		if u.EmailVerificationToken != nil && *u.EmailVerificationToken == tokenHash &&
			u.EmailVerificationExp != nil && u.EmailVerificationExp.After(now) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) GetByResetToken(tokenHash string, now time.Time) (*auth.User, error) {
	for _, u := range m.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == tokenHash &&
			u.PasswordResetExp != nil && u.PasswordResetExp.After(now) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) Update(user *auth.User) error {
	if m.updateError != nil {
		return m.updateError
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindActiveByRoles(roles []auth.Role) ([]*auth.User, error) {
	var out []*auth.User
	for _, u := range m.users {
		if !u.IsActive {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

// Mock profile creator for testing
type mockProfileCreator struct {
	created map[int64]string
	err     error
}

func (m *mockProfileCreator) CreateForUser(userID int64, firstName, lastName string) error {
	if m.err != nil {
		return m.err
	}
	m.created[userID] = firstName + " " + lastName
	return nil
}

// Mock publisher capturing events for testing
type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockPublisher) lastToken(key string) string {
	if len(m.published) == 0 {
		return ""
	}
	data, ok := m.published[len(m.published)-1].Payload().(map[string]interface{})
	if !ok {
		return ""
	}
	token, _ := data[key].(string)
	return token
}

var _ = Describe("AuthService", func() {
	var (
		service   *auth.Service
		mockRepo  *mockUserRepository
		profiles  *mockProfileCreator
		publisher *mockPublisher
	)

	ctx := context.Background()

	signUpDTO := func() auth.SignUpDTO {
		return auth.SignUpDTO{
			EmployeeCode: "EMP001",
			Email:        "priya@dayflow.local",
			Password:     "secret123",
			FirstName:    "Priya",
			LastName:     "Sharma",
		}
	}

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		profiles = &mockProfileCreator{created: make(map[int64]string)}
		publisher = &mockPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		tokenGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
		service = auth.NewService(mockRepo, tokenGen, profiles, publisher, 4, logger)
	})

	Describe("SignUp", func() {
		It("should create an active employee account with tokens", func() {
			result, err := service.SignUp(ctx, signUpDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.User.ID).To(BeNumerically(">", 0))
			Expect(result.User.Role).To(Equal(auth.RoleEmployee))
			Expect(result.User.IsActive).To(BeTrue())
			Expect(result.User.IsEmailVerified).To(BeFalse())
			Expect(result.Tokens.AccessToken).ToNot(BeEmpty())
			Expect(result.Tokens.RefreshToken).ToNot(BeEmpty())
			// Self-service is gated by authentication alone; employees
			// carry no cross-employee permissions.
			Expect(result.User.Permissions).To(BeEmpty())
		})

		It("should normalize the employee code and email", func() {
			dto := signUpDTO()
			dto.EmployeeCode = "emp001"
			dto.Email = "Priya@Dayflow.Local"

			result, err := service.SignUp(ctx, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.User.EmployeeCode).To(Equal("EMP001"))
			Expect(result.User.Email).To(Equal("priya@dayflow.local"))
		})

		It("should not store the plain password", func() {
			result, err := service.SignUp(ctx, signUpDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.User.PasswordHash).ToNot(Equal("secret123"))
			Expect(result.User.PasswordHash).ToNot(BeEmpty())
		})

		It("should create the employee profile", func() {
			result, err := service.SignUp(ctx, signUpDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(profiles.created[result.User.ID]).To(Equal("Priya Sharma"))
		})

		It("should still sign up when profile creation fails", func() {
			profiles.err = errors.New("db unavailable")

			result, err := service.SignUp(ctx, signUpDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.User.ID).To(BeNumerically(">", 0))
		})

		It("should publish a registration event carrying the plain token", func() {
			result, err := service.SignUp(ctx, signUpDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventUserRegistered))

			token := publisher.lastToken("verification_token")
			Expect(token).ToNot(BeEmpty())
			// Only the hash is persisted.
			Expect(*result.User.EmailVerificationToken).ToNot(Equal(token))
		})

		It("should reject a duplicate email", func() {
			_, err := service.SignUp(ctx, signUpDTO())
			Expect(err).ToNot(HaveOccurred())

			dto := signUpDTO()
			dto.EmployeeCode = "EMP002"
			_, err = service.SignUp(ctx, dto)

			Expect(err).To(MatchError(auth.ErrEmailTaken))
		})

		It("should reject a duplicate employee code", func() {
			_, err := service.SignUp(ctx, signUpDTO())
			Expect(err).ToNot(HaveOccurred())

			dto := signUpDTO()
			dto.Email = "other@dayflow.local"
			_, err = service.SignUp(ctx, dto)

			Expect(err).To(MatchError(auth.ErrEmployeeCodeTaken))
		})

		It("should reject a short password", func() {
			dto := signUpDTO()
			dto.Password = "short"

			_, err := service.SignUp(ctx, dto)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("password"))
		})

		It("should honor an explicit role", func() {
			dto := signUpDTO()
			dto.Role = "HR"

			result, err := service.SignUp(ctx, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.User.Role).To(Equal(auth.RoleHR))
			Expect(result.User.Permissions).To(ContainElement(auth.PermLeaveReview))
			Expect(result.User.Permissions).ToNot(ContainElement(auth.PermEmployeeDelete))
		})

		It("should reject an unknown role", func() {
			dto := signUpDTO()
			dto.Role = "Superuser"

			_, err := service.SignUp(ctx, dto)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SignIn", func() {
		BeforeEach(func() {
			_, err := service.SignUp(ctx, signUpDTO())
			Expect(err).ToNot(HaveOccurred())
		})

		It("should return the user with tokens for valid credentials", func() {
			user, tokens, err := service.SignIn(auth.SignInDTO{
				Email:    "priya@dayflow.local",
				Password: "secret123",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(user.LastLoginAt).ToNot(BeNil())
			Expect(tokens.AccessToken).ToNot(BeEmpty())
		})

		It("should reject a wrong password", func() {
			_, _, err := service.SignIn(auth.SignInDTO{
				Email:    "priya@dayflow.local",
				Password: "wrong",
			})

			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("should reject an unknown email", func() {
			_, _, err := service.SignIn(auth.SignInDTO{
				Email:    "nobody@dayflow.local",
				Password: "secret123",
			})

			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("should reject a deactivated account", func() {
			user, _ := mockRepo.GetByEmail("priya@dayflow.local")
			user.IsActive = false

			_, _, err := service.SignIn(auth.SignInDTO{
				Email:    "priya@dayflow.local",
				Password: "secret123",
			})

			Expect(err).To(MatchError(auth.ErrUserInactive))
		})
	})

	Describe("RefreshTokens", func() {
		It("should issue a new pair for a valid refresh token", func() {
			result, err := service.SignUp(ctx, signUpDTO())
			Expect(err).ToNot(HaveOccurred())

			tokens, err := service.RefreshTokens(result.Tokens.RefreshToken)

			Expect(err).ToNot(HaveOccurred())
			Expect(tokens.AccessToken).ToNot(BeEmpty())
			Expect(tokens.RefreshToken).ToNot(BeEmpty())
		})

		It("should reject garbage", func() {
			_, err := service.RefreshTokens("not-a-token")

			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should reject tokens of deactivated users", func() {
			result, err := service.SignUp(ctx, signUpDTO())
			Expect(err).ToNot(HaveOccurred())
			mockRepo.users[result.User.ID].IsActive = false

			_, err = service.RefreshTokens(result.Tokens.RefreshToken)

			Expect(err).To(MatchError(auth.ErrUserInactive))
		})
	})

	Describe("VerifyEmail", func() {
		It("should consume the token exactly once", func() {
			result, err := service.SignUp(ctx, signUpDTO())
			Expect(err).ToNot(HaveOccurred())
			token := publisher.lastToken("verification_token")

			Expect(service.VerifyEmail(token)).To(Succeed())
			Expect(mockRepo.users[result.User.ID].IsEmailVerified).To(BeTrue())
			Expect(mockRepo.users[result.User.ID].EmailVerificationToken).To(BeNil())

			Expect(service.VerifyEmail(token)).To(MatchError(auth.ErrVerifyTokenInvalid))
		})

		It("should reject an unknown token", func() {
			Expect(service.VerifyEmail("bogus")).To(MatchError(auth.ErrVerifyTokenInvalid))
		})

		It("should reject an expired token", func() {
			result, err := service.SignUp(ctx, signUpDTO())
			Expect(err).ToNot(HaveOccurred())
			token := publisher.lastToken("verification_token")

			past := time.Now().Add(-time.Minute)
			mockRepo.users[result.User.ID].EmailVerificationExp = &past

			Expect(service.VerifyEmail(token)).To(MatchError(auth.ErrVerifyTokenInvalid))
		})
	})

	Describe("ForgotPassword and ResetPassword", func() {
		BeforeEach(func() {
			_, err := service.SignUp(ctx, signUpDTO())
			Expect(err).ToNot(HaveOccurred())
		})

		It("should not reveal whether the email exists", func() {
			err := service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "nobody@dayflow.local"})

			Expect(err).ToNot(HaveOccurred())
			// No reset event went out either.
			for _, ev := range publisher.published {
				Expect(ev.EventType()).ToNot(Equal(events.EventPasswordReset))
			}
		})

		It("should reset the password with the emailed token", func() {
			Expect(service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "priya@dayflow.local"})).To(Succeed())
			token := publisher.lastToken("reset_token")
			Expect(token).ToNot(BeEmpty())

			Expect(service.ResetPassword(token, auth.ResetPasswordDTO{Password: "newpass456"})).To(Succeed())

			_, _, err := service.SignIn(auth.SignInDTO{Email: "priya@dayflow.local", Password: "newpass456"})
			Expect(err).ToNot(HaveOccurred())
			_, _, err = service.SignIn(auth.SignInDTO{Email: "priya@dayflow.local", Password: "secret123"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("should consume the reset token", func() {
			Expect(service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "priya@dayflow.local"})).To(Succeed())
			token := publisher.lastToken("reset_token")

			Expect(service.ResetPassword(token, auth.ResetPasswordDTO{Password: "newpass456"})).To(Succeed())
			err := service.ResetPassword(token, auth.ResetPasswordDTO{Password: "another789"})

			Expect(err).To(MatchError(auth.ErrResetTokenInvalid))
		})
	})

	Describe("User permission checks", func() {
		It("should match any of the requested permissions", func() {
			user := &auth.User{Permissions: auth.PermissionsForRole(auth.RoleHR)}

			Expect(user.HasAnyPermission(auth.PermLeaveReview)).To(BeTrue())
			Expect(user.HasAnyPermission(auth.PermEmployeeDelete, auth.PermLeaveReview)).To(BeTrue())
			Expect(user.HasAnyPermission(auth.PermEmployeeDelete)).To(BeFalse())

			required := []string{auth.PermEmployeeViewAll, auth.PermAttendanceViewAll}
			Expect(user.HasAnyPermission(required...)).To(BeTrue())
		})
	})

	Describe("ActiveReviewers", func() {
		It("should return active HR and Admin users only", func() {
			for i, role := range []auth.Role{auth.RoleEmployee, auth.RoleHR, auth.RoleAdmin} {
				dto := auth.SignUpDTO{
					EmployeeCode: fmt.Sprintf("EMP%03d", i+1),
					Email:        fmt.Sprintf("user%d@dayflow.local", i+1),
					Password:     "secret123",
					Role:         string(role),
				}
				_, err := service.SignUp(ctx, dto)
				Expect(err).ToNot(HaveOccurred())
			}

			reviewers, err := service.ActiveReviewers()

			Expect(err).ToNot(HaveOccurred())
			Expect(reviewers).To(HaveLen(2))
			for _, r := range reviewers {
				Expect(r.Role).To(BeElementOf(auth.RoleHR, auth.RoleAdmin))
			}
		})
	})
})
