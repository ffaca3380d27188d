package leave

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dayflow-hq/dayflow/internal/auth"
	"github.com/dayflow-hq/dayflow/internal/transport"
	"github.com/go-chi/chi"
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

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ApplyLeaveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.service.Apply(r.Context(), user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "leave applied", req)
}

func (h *Handler) MyLeaves(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, limit := transport.ParsePageLimit(r)
	status := r.URL.Query().Get("status")

	requests, total, balance, err := h.service.MyLeaves(user.ID, status, page, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WritePaginated(w, "leave requests", map[string]any{
		"requests": requests,
		"balance":  balance,
	}, transport.NewPagination(page, limit, total))
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.service.Balance(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "leave balance", summary)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Reject)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.leaveID(w, r)
	if !ok {
		return
	}

	req, err := h.service.Cancel(user.ID, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "leave cancelled", req)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := transport.ParsePageLimit(r)
	q := ListQuery{
		Status:     r.URL.Query().Get("status"),
		LeaveType:  r.URL.Query().Get("leave_type"),
		Department: r.URL.Query().Get("department"),
		Page:       page,
		Limit:      limit,
	}
	if empStr := r.URL.Query().Get("employee_id"); empStr != "" {
		empID, err := strconv.ParseInt(empStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid employee_id filter")
			return
		}
		q.EmployeeID = &empID
	}

	requests, total, err := h.service.List(q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WritePaginated(w, "leave requests", requests, transport.NewPagination(page, limit, total))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "dates must be in YYYY-MM-DD format")
			return
		}
		from = t
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "dates must be in YYYY-MM-DD format")
			return
		}
		to = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	stats, err := h.service.Stats(from, to)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "leave stats", stats)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, reviewerUserID, leaveID int64, dto ReviewLeaveDTO) (*Request, error)) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.leaveID(w, r)
	if !ok {
		return
	}

	var dto ReviewLeaveDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	req, err := fn(r.Context(), user.ID, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "leave "+req.Status, req)
}

func (h *Handler) leaveID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid leave request ID")
		return 0, false
	}
	return id, true
}
