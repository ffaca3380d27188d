package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventLeaveApplied     = "leave.applied"
	EventLeaveReviewed    = "leave.reviewed"
	EventUserRegistered   = "user.registered"
	EventPasswordReset    = "user.password_reset_requested"
	EventPayrollGenerated = "payroll.generated"
)

// NewLeaveAppliedEvent carries what the notification subscriber needs to mail
// HR: who applied, for what, and the formatted date range.
func NewLeaveAppliedEvent(leaveID int64, employeeName, leaveType, dateRange string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventLeaveApplied,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"leave_id":      leaveID,
			"employee_name": employeeName,
			"leave_type":    leaveType,
			"date_range":    dateRange,
		},
	}
}

func NewLeaveReviewedEvent(leaveID int64, employeeEmail, status, comments string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventLeaveReviewed,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"leave_id":       leaveID,
			"employee_email": employeeEmail,
			"status":         status,
			"comments":       comments,
		},
	}
}

func NewUserRegisteredEvent(email, name, verificationToken string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventUserRegistered,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"email":              email,
			"name":               name,
			"verification_token": verificationToken,
		},
	}
}

func NewPasswordResetEvent(email, name, resetToken string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventPasswordReset,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"email":       email,
			"name":        name,
			"reset_token": resetToken,
		},
	}
}

func NewPayrollGeneratedEvent(month, year, generated, skipped int) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventPayrollGenerated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"month":     month,
			"year":      year,
			"generated": generated,
			"skipped":   skipped,
		},
	}
}
