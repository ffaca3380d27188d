package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dayflow-hq/dayflow/internal"
	"github.com/dayflow-hq/dayflow/internal/transport"
)

type Handler struct {
	transport.BaseHandler
	service *Service
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.BaseHandler{Logger: logger},
		service:     service,
	}
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var dto SignUpDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.SignUp(r.Context(), dto)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "account created, verification email sent", result)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var dto SignInDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, tokens, err := h.service.SignIn(dto)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "signed in", map[string]any{
		"user":   user,
		"tokens": tokens,
	})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "token refreshed", tokens)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.WriteError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.service.VerifyEmail(token); err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "email verified", nil)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ForgotPassword(r.Context(), dto); err != nil {
		h.handleAuthError(w, err)
		return
	}

	// Same response whether or not the email exists.
	h.WriteSuccess(w, http.StatusOK, "if the email exists, a reset link has been sent", nil)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.WriteError(w, http.StatusBadRequest, "token is required")
		return
	}

	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ResetPassword(token, dto); err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "password reset", nil)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.WriteSuccess(w, http.StatusOK, "current user", user)
}

// AuthMiddleware validates the bearer token and loads the user, with its
// permission set, into the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := h.service.ValidateAccessToken(token)
		if err != nil {
			h.handleAuthError(w, err)
			return
		}

		userID, err := strconv.ParseInt(claims.UserID, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := h.service.GetUserWithPermissions(userID)
		if err != nil {
			h.handleAuthError(w, err)
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = internal.ContextWithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ErrInvalidToken):
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, ErrTokenExpired):
		h.WriteError(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, ErrUserInactive):
		h.WriteError(w, http.StatusForbidden, "account is deactivated")
	case errors.Is(err, ErrUserNotFound):
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, ErrEmailTaken):
		h.WriteError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, ErrEmployeeCodeTaken):
		h.WriteError(w, http.StatusConflict, "employee code already registered")
	case errors.Is(err, ErrVerifyTokenInvalid):
		h.WriteError(w, http.StatusBadRequest, "verification token is invalid or expired")
	case errors.Is(err, ErrResetTokenInvalid):
		h.WriteError(w, http.StatusBadRequest, "reset token is invalid or expired")
	default:
		h.HandleServiceError(w, err)
	}
}
