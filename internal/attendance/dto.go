package attendance

import (
	"errors"
	"time"
)

type CheckInDTO struct {
	Location string `json:"location,omitempty"`
}

type CheckOutDTO struct {
	Location string `json:"location,omitempty"`
}

// MarkAttendanceDTO is the admin-side upsert for one employee-day. The
// target employee can be given by profile ID or by employee code.
type MarkAttendanceDTO struct {
	EmployeeID   *int64 `json:"employee_id,omitempty"`
	EmployeeCode string `json:"employee_code,omitempty"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	CheckIn      string `json:"check_in,omitempty"`
	CheckOut     string `json:"check_out,omitempty"`
	Remarks      string `json:"remarks,omitempty"`
}

func (dto MarkAttendanceDTO) Validate() error {
	if dto.EmployeeID == nil && dto.EmployeeCode == "" {
		return errors.New("employee_id or employee_code is required")
	}
	if dto.Date == "" {
		return errors.New("date is required")
	}
	if _, err := time.Parse("2006-01-02", dto.Date); err != nil {
		return errors.New("date must be in YYYY-MM-DD format")
	}
	if !ValidStatus(dto.Status) {
		return errors.New("invalid attendance status")
	}
	if dto.CheckIn != "" {
		if _, err := time.Parse(time.RFC3339, dto.CheckIn); err != nil {
			return errors.New("check_in must be an RFC3339 timestamp")
		}
	}
	if dto.CheckOut != "" {
		if _, err := time.Parse(time.RFC3339, dto.CheckOut); err != nil {
			return errors.New("check_out must be an RFC3339 timestamp")
		}
	}
	return nil
}

// UpdateAttendanceDTO edits an existing record by ID. Nil fields are left
// untouched.
type UpdateAttendanceDTO struct {
	Status   *string `json:"status,omitempty"`
	CheckIn  *string `json:"check_in,omitempty"`
	CheckOut *string `json:"check_out,omitempty"`
	Remarks  *string `json:"remarks,omitempty"`
}

func (dto UpdateAttendanceDTO) Validate() error {
	if dto.Status != nil && !ValidStatus(*dto.Status) {
		return errors.New("invalid attendance status")
	}
	if dto.CheckIn != nil && *dto.CheckIn != "" {
		if _, err := time.Parse(time.RFC3339, *dto.CheckIn); err != nil {
			return errors.New("check_in must be an RFC3339 timestamp")
		}
	}
	if dto.CheckOut != nil && *dto.CheckOut != "" {
		if _, err := time.Parse(time.RFC3339, *dto.CheckOut); err != nil {
			return errors.New("check_out must be an RFC3339 timestamp")
		}
	}
	return nil
}

// ListQuery carries the admin list filters.
type ListQuery struct {
	From       *time.Time
	To         *time.Time
	Department string
	Status     string
	EmployeeID *int64
	Page       int
	Limit      int
}

// MonthStats summarizes one employee's records over a window.
type MonthStats struct {
	PresentDays       int64   `json:"present_days"`
	HalfDays          int64   `json:"half_days"`
	AbsentDays        int64   `json:"absent_days"`
	LeaveDays         int64   `json:"leave_days"`
	LateDays          int64   `json:"late_days"`
	TotalWorkingHours float64 `json:"total_working_hours"`
}

// OverviewStats is the admin rollup over a window.
type OverviewStats struct {
	StatusCounts     map[string]int64            `json:"status_counts"`
	DepartmentCounts map[string]map[string]int64 `json:"department_counts"`
	LateCount        int64                       `json:"late_count"`
}
