package attendance

import (
	"math"
	"time"
)

// Attendance statuses.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusHalfDay = "Half-day"
	StatusLeave   = "Leave"
	StatusHoliday = "Holiday"
	StatusWeekend = "Weekend"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave, StatusHoliday, StatusWeekend:
		return true
	}
	return false
}

// Record is one employee-day. At most one record exists per employee per
// calendar day; a missing record means the employee was absent.
type Record struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	EmployeeID       int64      `gorm:"uniqueIndex:idx_attendance_employee_date;not null" json:"employee_id"`
	Date             time.Time  `gorm:"uniqueIndex:idx_attendance_employee_date;not null" json:"date"`
	CheckIn          *time.Time `json:"check_in,omitempty"`
	CheckOut         *time.Time `json:"check_out,omitempty"`
	Status           string     `gorm:"index" json:"status"`
	WorkingHours     float64    `json:"working_hours"`
	IsLate           bool       `json:"is_late"`
	LateByMinutes    int        `json:"late_by_minutes"`
	CheckInLocation  string     `json:"check_in_location,omitempty"`
	CheckOutLocation string     `json:"check_out_location,omitempty"`
	Remarks          string     `json:"remarks,omitempty"`
	IsManualEntry    bool       `json:"is_manual_entry"`
	MarkedByUserID   *int64     `json:"marked_by_user_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Filled by list queries that join the employee row.
	EmployeeName string `gorm:"->;-:migration" json:"employee_name,omitempty"`
	Department   string `gorm:"->;-:migration" json:"department,omitempty"`
}

func (Record) TableName() string {
	return "attendance_records"
}

// RoundHours rounds a working-hours value to two decimal places.
func RoundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}

// StartOfDay truncates a timestamp to its calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
