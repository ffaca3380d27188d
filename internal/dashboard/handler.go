package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dayflow-hq/dayflow/internal"
	"github.com/dayflow-hq/dayflow/internal/auth"
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

func (h *Handler) Employee(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == 0 {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dash, err := h.service.ForEmployee(userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "dashboard", dash)
}

func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	organizationWide := user.HasAnyPermission(auth.PermDashboardAdmin)
	activities, err := h.service.RecentActivity(user.ID, organizationWide, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "recent activity", activities)
}

func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.ForAdmin()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "admin dashboard", dash)
}
