package attendance

import (
	"encoding/json"
	"errors"
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

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CheckInDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	rec, err := h.service.CheckIn(user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "checked in", rec)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CheckOutDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	rec, err := h.service.CheckOut(user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "checked out", rec)
}

func (h *Handler) MyAttendance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, limit := transport.ParsePageLimit(r)
	from, to, err := parseDateRange(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, total, stats, err := h.service.MyAttendance(user.ID, from, to, page, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WritePaginated(w, "attendance", map[string]any{
		"records": records,
		"stats":   stats,
	}, transport.NewPagination(page, limit, total))
}

func (h *Handler) Mark(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto MarkAttendanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.service.Mark(user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "attendance marked", rec)
}

func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid record ID")
		return
	}

	var dto UpdateAttendanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.service.UpdateRecord(user.ID, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "attendance record updated", rec)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := transport.ParsePageLimit(r)
	from, to, err := parseDateRange(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := ListQuery{
		From:       from,
		To:         to,
		Department: r.URL.Query().Get("department"),
		Status:     r.URL.Query().Get("status"),
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

	records, total, err := h.service.List(q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WritePaginated(w, "attendance records", records, transport.NewPagination(page, limit, total))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Default to the current month.
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}

	stats, err := h.service.Overview(start, end)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "attendance stats", stats)
}

func parseDateRange(r *http.Request) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return nil, nil, errInvalidDate
		}
		from = &t
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return nil, nil, errInvalidDate
		}
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

var errInvalidDate = errors.New("dates must be in YYYY-MM-DD format")
