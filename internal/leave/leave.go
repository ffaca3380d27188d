package leave

import (
	"math"
	"time"
)

// Leave types. Paid, Sick and Casual draw down a tracked balance; the rest
// are unlimited as far as the system is concerned.
const (
	TypePaid      = "Paid"
	TypeSick      = "Sick"
	TypeCasual    = "Casual"
	TypeUnpaid    = "Unpaid"
	TypeMaternity = "Maternity"
	TypePaternity = "Paternity"
)

// Request statuses.
const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
)

// Half-day sessions.
const (
	SessionMorning   = "Morning"
	SessionAfternoon = "Afternoon"
)

// DefaultRejectComment is recorded when a reviewer rejects without comment.
const DefaultRejectComment = "Leave request rejected"

func ValidType(t string) bool {
	switch t {
	case TypePaid, TypeSick, TypeCasual, TypeUnpaid, TypeMaternity, TypePaternity:
		return true
	}
	return false
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// BalanceTracked reports whether the leave type draws down a balance.
func BalanceTracked(leaveType string) bool {
	switch leaveType {
	case TypePaid, TypeSick, TypeCasual:
		return true
	}
	return false
}

// Request is a leave application. BalanceApplied records the days actually
// deducted from the employee's balance, so an approval that failed between
// its two writes can be found and replayed.
type Request struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	EmployeeID       int64      `gorm:"index;not null" json:"employee_id"`
	UserID           int64      `gorm:"index;not null" json:"user_id"`
	LeaveType        string     `gorm:"not null" json:"leave_type"`
	StartDate        time.Time  `gorm:"not null" json:"start_date"`
	EndDate          time.Time  `gorm:"not null" json:"end_date"`
	NumberOfDays     float64    `json:"number_of_days"`
	IsHalfDay        bool       `json:"is_half_day"`
	HalfDaySession   string     `json:"half_day_session,omitempty"`
	Reason           string     `json:"reason"`
	Status           string     `gorm:"index;default:Pending" json:"status"`
	ReviewedByUserID *int64     `json:"reviewed_by_user_id,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	AdminComments    string     `json:"admin_comments,omitempty"`
	BalanceApplied   float64    `json:"balance_applied"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Filled by list queries that join the employee row.
	EmployeeName string `gorm:"->;-:migration" json:"employee_name,omitempty"`
	Department   string `gorm:"->;-:migration" json:"department,omitempty"`
}

func (Request) TableName() string {
	return "leave_requests"
}

// DayCount returns the number of leave days a request spans: 0.5 for a
// half-day, otherwise the inclusive day difference.
func DayCount(start, end time.Time, isHalfDay bool) float64 {
	if isHalfDay {
		return 0.5
	}
	days := int(math.Round(end.Sub(start).Hours()/24)) + 1
	return float64(days)
}
