package leave

import (
	"errors"
	"time"
)

type ApplyLeaveDTO struct {
	LeaveType      string `json:"leave_type"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	IsHalfDay      bool   `json:"is_half_day,omitempty"`
	HalfDaySession string `json:"half_day_session,omitempty"`
	Reason         string `json:"reason"`
}

func (dto ApplyLeaveDTO) Validate() error {
	if !ValidType(dto.LeaveType) {
		return errors.New("invalid leave type")
	}
	if dto.Reason == "" {
		return errors.New("reason is required")
	}
	start, err := time.Parse("2006-01-02", dto.StartDate)
	if err != nil {
		return errors.New("start_date must be in YYYY-MM-DD format")
	}
	end, err := time.Parse("2006-01-02", dto.EndDate)
	if err != nil {
		return errors.New("end_date must be in YYYY-MM-DD format")
	}
	if end.Before(start) {
		return errors.New("end_date cannot be before start_date")
	}
	if dto.IsHalfDay {
		if !start.Equal(end) {
			return errors.New("a half-day leave must start and end on the same day")
		}
		if dto.HalfDaySession != SessionMorning && dto.HalfDaySession != SessionAfternoon {
			return errors.New("half_day_session must be Morning or Afternoon")
		}
	}
	return nil
}

func (dto ApplyLeaveDTO) Dates() (start, end time.Time) {
	start, _ = time.Parse("2006-01-02", dto.StartDate)
	end, _ = time.Parse("2006-01-02", dto.EndDate)
	return start, end
}

type ReviewLeaveDTO struct {
	Comments string `json:"comments,omitempty"`
}

// ListQuery carries the admin list filters.
type ListQuery struct {
	Status     string
	LeaveType  string
	Department string
	EmployeeID *int64
	Page       int
	Limit      int
}

// BalanceSummary is the self-service balance view with the year's approved
// usage per type.
type BalanceSummary struct {
	Paid   float64            `json:"paid"`
	Sick   float64            `json:"sick"`
	Casual float64            `json:"casual"`
	Used   map[string]float64 `json:"used"`
	Year   int                `json:"year"`
}

// Stats is the admin rollup over a window.
type Stats struct {
	StatusCounts map[string]int64   `json:"status_counts"`
	TypeDays     map[string]float64 `json:"type_days"`
	PendingCount int64              `json:"pending_count"`
}
