package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dayflow-hq/dayflow/internal"
	"github.com/dayflow-hq/dayflow/internal/core/events"
	"github.com/dayflow-hq/dayflow/internal/employee"
)

// Repository defines the data access methods for leave requests.
type Repository interface {
	Create(req *Request) error
	GetByID(id int64) (*Request, error)
	Update(req *Request) error
	ListByEmployee(employeeID int64, status string, page, limit int) ([]*Request, int64, error)
	List(q ListQuery) ([]*Request, int64, error)
	ApprovedUsageByType(employeeID int64, year int) (map[string]float64, error)
	Stats(from, to time.Time) (Stats, error)
	OnLeave(date time.Time) ([]*Request, error)
}

// EmployeeService is the slice of the employee package this service needs
// for profile lookups and balance arithmetic.
type EmployeeService interface {
	GetByID(id int64) (*employee.Employee, error)
	GetMyProfile(userID int64) (*employee.Employee, error)
	AdjustLeaveBalance(employeeID int64, leaveType string, delta float64) error
}

// Publisher is the slice of the event bus used for reviewer and applicant
// notifications.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// EmailDirectory resolves a login account to its email address for
// applicant notifications.
type EmailDirectory interface {
	UserEmail(userID int64) (string, error)
}

// Service handles leave business logic.
type Service struct {
	repo      Repository
	employees EmployeeService
	emails    EmailDirectory
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, employees EmployeeService, emails EmailDirectory, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		emails:    emails,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Apply files a leave request. Balance-tracked types are prechecked against
// the remaining balance; nothing is deducted until approval.
func (s *Service) Apply(ctx context.Context, userID int64, dto ApplyLeaveDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	emp, err := s.employees.GetMyProfile(userID)
	if err != nil {
		return nil, err
	}

	start, end := dto.Dates()
	days := DayCount(start, end, dto.IsHalfDay)

	if BalanceTracked(dto.LeaveType) {
		available := balanceFor(emp, dto.LeaveType)
		if available < days {
			return nil, internal.NewBusinessRuleError(
				fmt.Sprintf("insufficient %s leave balance: %.1f available, %.1f requested", dto.LeaveType, available, days),
				internal.ErrCodeInsufficientBalance)
		}
	}

	req := &Request{
		EmployeeID:     emp.ID,
		UserID:         userID,
		LeaveType:      dto.LeaveType,
		StartDate:      start,
		EndDate:        end,
		NumberOfDays:   days,
		IsHalfDay:      dto.IsHalfDay,
		HalfDaySession: dto.HalfDaySession,
		Reason:         dto.Reason,
		Status:         StatusPending,
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create leave request", "error", err, "employee_id", emp.ID)
		return nil, err
	}

	if s.publisher != nil {
		dateRange := fmt.Sprintf("%s to %s", dto.StartDate, dto.EndDate)
		if dto.IsHalfDay {
			dateRange = fmt.Sprintf("%s (%s half-day)", dto.StartDate, dto.HalfDaySession)
		}
		_ = s.publisher.Publish(ctx, events.NewLeaveAppliedEvent(req.ID, emp.FullName(), req.LeaveType, dateRange))
	}

	s.logger.Info("leave applied", "leave_id", req.ID, "employee_id", emp.ID, "type", req.LeaveType, "days", days)
	return req, nil
}

// Approve moves a pending request to Approved and deducts the balance for
// tracked types. The status write and the balance write are separate
// statements; balance_applied stays zero until the deduction lands, so an
// interrupted approval is detectable.
func (s *Service) Approve(ctx context.Context, reviewerUserID, leaveID int64, dto ReviewLeaveDTO) (*Request, error) {
	req, err := s.pendingRequest(leaveID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req.Status = StatusApproved
	req.ReviewedByUserID = &reviewerUserID
	req.ReviewedAt = &now
	req.AdminComments = dto.Comments

	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to approve leave", "error", err, "leave_id", leaveID)
		return nil, err
	}

	if BalanceTracked(req.LeaveType) {
		if err := s.employees.AdjustLeaveBalance(req.EmployeeID, req.LeaveType, -req.NumberOfDays); err != nil {
			s.logger.Error("approved but balance deduction failed", "error", err, "leave_id", leaveID)
			return nil, internal.NewInternalError("leave approved but balance update failed", err)
		}
		req.BalanceApplied = req.NumberOfDays
		if err := s.repo.Update(req); err != nil {
			s.logger.Error("balance deducted but balance_applied not recorded", "error", err, "leave_id", leaveID)
			return nil, err
		}
	}

	s.notifyReviewed(ctx, req)
	s.logger.Info("leave approved", "leave_id", leaveID, "reviewer", reviewerUserID, "days", req.NumberOfDays)
	return req, nil
}

// Reject moves a pending request to Rejected.
func (s *Service) Reject(ctx context.Context, reviewerUserID, leaveID int64, dto ReviewLeaveDTO) (*Request, error) {
	req, err := s.pendingRequest(leaveID)
	if err != nil {
		return nil, err
	}

	comments := dto.Comments
	if comments == "" {
		comments = DefaultRejectComment
	}

	now := s.now()
	req.Status = StatusRejected
	req.ReviewedByUserID = &reviewerUserID
	req.ReviewedAt = &now
	req.AdminComments = comments

	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to reject leave", "error", err, "leave_id", leaveID)
		return nil, err
	}

	s.notifyReviewed(ctx, req)
	s.logger.Info("leave rejected", "leave_id", leaveID, "reviewer", reviewerUserID)
	return req, nil
}

// Cancel withdraws the caller's own request. An approved request refunds
// whatever was actually deducted.
func (s *Service) Cancel(userID, leaveID int64) (*Request, error) {
	req, err := s.repo.GetByID(leaveID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveNotFound)
	}
	if req.UserID != userID {
		return nil, internal.NewForbiddenError("you can only cancel your own leave requests", internal.ErrCodeUnauthorizedAccess)
	}
	if req.Status == StatusCancelled {
		return nil, internal.NewBusinessRuleError("leave request is already cancelled", internal.ErrCodeLeaveCancelled)
	}

	refund := 0.0
	if req.Status == StatusApproved && req.BalanceApplied > 0 {
		refund = req.BalanceApplied
	}

	req.Status = StatusCancelled
	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to cancel leave", "error", err, "leave_id", leaveID)
		return nil, err
	}

	if refund > 0 {
		if err := s.employees.AdjustLeaveBalance(req.EmployeeID, req.LeaveType, refund); err != nil {
			s.logger.Error("cancelled but balance refund failed", "error", err, "leave_id", leaveID)
			return nil, internal.NewInternalError("leave cancelled but balance refund failed", err)
		}
		req.BalanceApplied = 0
		if err := s.repo.Update(req); err != nil {
			return nil, err
		}
	}

	s.logger.Info("leave cancelled", "leave_id", leaveID, "refunded_days", refund)
	return req, nil
}

// MyLeaves lists the caller's requests with the current balance echoed.
func (s *Service) MyLeaves(userID int64, status string, page, limit int) ([]*Request, int64, *employee.LeaveBalance, error) {
	if status != "" && !ValidStatus(status) {
		return nil, 0, nil, internal.NewValidationError("invalid status filter", internal.ErrCodeValidationFailed)
	}

	emp, err := s.employees.GetMyProfile(userID)
	if err != nil {
		return nil, 0, nil, err
	}

	requests, total, err := s.repo.ListByEmployee(emp.ID, status, page, limit)
	if err != nil {
		return nil, 0, nil, err
	}
	return requests, total, &emp.LeaveBalance, nil
}

// Balance returns the caller's remaining balances with the year's approved
// usage.
func (s *Service) Balance(userID int64) (*BalanceSummary, error) {
	emp, err := s.employees.GetMyProfile(userID)
	if err != nil {
		return nil, err
	}

	year := s.now().Year()
	used, err := s.repo.ApprovedUsageByType(emp.ID, year)
	if err != nil {
		return nil, err
	}

	return &BalanceSummary{
		Paid:   emp.Paid,
		Sick:   emp.Sick,
		Casual: emp.Casual,
		Used:   used,
		Year:   year,
	}, nil
}

// List returns requests across employees for admins.
func (s *Service) List(q ListQuery) ([]*Request, int64, error) {
	if q.Status != "" && !ValidStatus(q.Status) {
		return nil, 0, internal.NewValidationError("invalid status filter", internal.ErrCodeValidationFailed)
	}
	if q.LeaveType != "" && !ValidType(q.LeaveType) {
		return nil, 0, internal.NewValidationError("invalid leave type filter", internal.ErrCodeValidationFailed)
	}
	return s.repo.List(q)
}

// Stats returns the admin rollup for a window.
func (s *Service) Stats(from, to time.Time) (Stats, error) {
	if to.Before(from) {
		return Stats{}, internal.NewValidationError("date range end precedes start", internal.ErrCodeInvalidDateRange)
	}
	return s.repo.Stats(from, to)
}

// OnLeaveToday lists the approved requests whose interval contains today.
func (s *Service) OnLeaveToday() ([]*Request, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repo.OnLeave(today)
}

func (s *Service) pendingRequest(leaveID int64) (*Request, error) {
	req, err := s.repo.GetByID(leaveID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveNotFound)
	}
	if req.Status != StatusPending {
		return nil, internal.NewBusinessRuleError(
			fmt.Sprintf("leave request is already %s", req.Status),
			internal.ErrCodeLeaveProcessed)
	}
	return req, nil
}

func (s *Service) notifyReviewed(ctx context.Context, req *Request) {
	if s.publisher == nil || s.emails == nil {
		return
	}
	email, err := s.emails.UserEmail(req.UserID)
	if err != nil || email == "" {
		return
	}
	_ = s.publisher.Publish(ctx, events.NewLeaveReviewedEvent(req.ID, email, req.Status, req.AdminComments))
}

func balanceFor(emp *employee.Employee, leaveType string) float64 {
	switch leaveType {
	case TypePaid:
		return emp.Paid
	case TypeSick:
		return emp.Sick
	case TypeCasual:
		return emp.Casual
	}
	return 0
}
