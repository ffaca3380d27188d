package leave_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dayflow-hq/dayflow/internal"
	"github.com/dayflow-hq/dayflow/internal/core/events"
	"github.com/dayflow-hq/dayflow/internal/employee"
	"github.com/dayflow-hq/dayflow/internal/leave"
)

func TestLeaveService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Service Suite")
}

// Mock repository for testing
type mockLeaveRepository struct {
	requests    map[int64]*leave.Request
	nextID      int64
	createError error
	updateError error
	usage       map[string]float64
}

func newMockLeaveRepository() *mockLeaveRepository {
	return &mockLeaveRepository{
		requests: make(map[int64]*leave.Request),
		nextID:   1,
		usage:    make(map[string]float64),
	}
}

func (m *mockLeaveRepository) Create(req *leave.Request) error {
	if m.createError != nil {
		return m.createError
	}
	req.ID = m.nextID
	m.nextID++
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	m.requests[req.ID] = req
	return nil
}

func (m *mockLeaveRepository) GetByID(id int64) (*leave.Request, error) {
	return m.requests[id], nil
}

func (m *mockLeaveRepository) Update(req *leave.Request) error {
	if m.updateError != nil {
		return m.updateError
	}
	req.UpdatedAt = time.Now()
	m.requests[req.ID] = req
	return nil
}

func (m *mockLeaveRepository) ListByEmployee(employeeID int64, status string, page, limit int) ([]*leave.Request, int64, error) {
	var out []*leave.Request
	for _, req := range m.requests {
		if req.EmployeeID == employeeID && (status == "" || req.Status == status) {
			out = append(out, req)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockLeaveRepository) List(q leave.ListQuery) ([]*leave.Request, int64, error) {
	var out []*leave.Request
	for _, req := range m.requests {
		out = append(out, req)
	}
	return out, int64(len(out)), nil
}

func (m *mockLeaveRepository) ApprovedUsageByType(employeeID int64, year int) (map[string]float64, error) {
	return m.usage, nil
}

func (m *mockLeaveRepository) Stats(from, to time.Time) (leave.Stats, error) {
	return leave.Stats{}, nil
}

func (m *mockLeaveRepository) OnLeave(date time.Time) ([]*leave.Request, error) {
	return nil, nil
}

// Mock employee service for testing
type mockEmployeeService struct {
	employees   map[int64]*employee.Employee
	byUserID    map[int64]*employee.Employee
	adjustError error
}

func newMockEmployeeService() *mockEmployeeService {
	return &mockEmployeeService{
		employees: make(map[int64]*employee.Employee),
		byUserID:  make(map[int64]*employee.Employee),
	}
}

func (m *mockEmployeeService) addEmployee(emp *employee.Employee, userID int64) {
	emp.UserID = userID
	m.employees[emp.ID] = emp
	m.byUserID[userID] = emp
}

func (m *mockEmployeeService) GetByID(id int64) (*employee.Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return nil, internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	}
	return emp, nil
}

func (m *mockEmployeeService) GetMyProfile(userID int64) (*employee.Employee, error) {
	emp, ok := m.byUserID[userID]
	if !ok {
		return nil, internal.NewNotFoundError("employee profile not found", internal.ErrCodeEmployeeNotFound)
	}
	return emp, nil
}

func (m *mockEmployeeService) AdjustLeaveBalance(employeeID int64, leaveType string, delta float64) error {
	if m.adjustError != nil {
		return m.adjustError
	}
	emp, ok := m.employees[employeeID]
	if !ok {
		return errors.New("employee not found")
	}
	switch leaveType {
	case leave.TypePaid:
		emp.Paid += delta
	case leave.TypeSick:
		emp.Sick += delta
	case leave.TypeCasual:
		emp.Casual += delta
	}
	return nil
}

// Mock email directory for testing
type mockEmailDirectory struct {
	emails map[int64]string
}

func (m *mockEmailDirectory) UserEmail(userID int64) (string, error) {
	return m.emails[userID], nil
}

// Mock publisher for testing
type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("LeaveService", func() {
	var (
		service   *leave.Service
		mockRepo  *mockLeaveRepository
		employees *mockEmployeeService
		emails    *mockEmailDirectory
		publisher *mockPublisher
		emp       *employee.Employee
	)

	const (
		userID     = int64(10)
		reviewerID = int64(99)
		employeeID = int64(1)
	)

	ctx := context.Background()

	BeforeEach(func() {
		mockRepo = newMockLeaveRepository()
		employees = newMockEmployeeService()
		emails = &mockEmailDirectory{emails: map[int64]string{userID: "emp@dayflow.local"}}
		publisher = &mockPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = leave.NewService(mockRepo, employees, emails, publisher, logger)

		emp = &employee.Employee{
			ID:        employeeID,
			FirstName: "Priya",
			LastName:  "Sharma",
			Status:    employee.StatusActive,
			LeaveBalance: employee.LeaveBalance{
				Paid:   20,
				Sick:   10,
				Casual: 5,
			},
		}
		employees.addEmployee(emp, userID)
	})

	apply := func(dto leave.ApplyLeaveDTO) *leave.Request {
		req, err := service.Apply(ctx, userID, dto)
		Expect(err).ToNot(HaveOccurred())
		return req
	}

	Describe("Apply", func() {
		Context("when applying for a multi-day leave", func() {
			It("should count days inclusive of both ends", func() {
				req := apply(leave.ApplyLeaveDTO{
					LeaveType: leave.TypePaid,
					StartDate: "2025-03-10",
					EndDate:   "2025-03-14",
					Reason:    "family trip",
				})

				Expect(req.NumberOfDays).To(Equal(5.0))
				Expect(req.Status).To(Equal(leave.StatusPending))
			})
		})

		Context("when applying for a half day", func() {
			It("should count half a day", func() {
				req := apply(leave.ApplyLeaveDTO{
					LeaveType:      leave.TypeSick,
					StartDate:      "2025-03-10",
					EndDate:        "2025-03-10",
					IsHalfDay:      true,
					HalfDaySession: leave.SessionMorning,
					Reason:         "doctor visit",
				})

				Expect(req.NumberOfDays).To(Equal(0.5))
			})
		})

		Context("when the balance is insufficient", func() {
			It("should reject without touching the balance", func() {
				emp.Casual = 2

				_, err := service.Apply(ctx, userID, leave.ApplyLeaveDTO{
					LeaveType: leave.TypeCasual,
					StartDate: "2025-03-10",
					EndDate:   "2025-03-14",
					Reason:    "long break",
				})

				Expect(err).To(HaveOccurred())
				var appErr *internal.AppError
				Expect(errors.As(err, &appErr)).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientBalance))
				Expect(emp.Casual).To(Equal(2.0))
			})
		})

		Context("when applying for an unpaid leave", func() {
			It("should skip the balance check", func() {
				emp.Paid = 0

				req := apply(leave.ApplyLeaveDTO{
					LeaveType: leave.TypeUnpaid,
					StartDate: "2025-03-10",
					EndDate:   "2025-03-21",
					Reason:    "sabbatical",
				})

				Expect(req.Status).To(Equal(leave.StatusPending))
			})
		})

		Context("when a half day spans multiple days", func() {
			It("should return a validation error", func() {
				_, err := service.Apply(ctx, userID, leave.ApplyLeaveDTO{
					LeaveType:      leave.TypePaid,
					StartDate:      "2025-03-10",
					EndDate:        "2025-03-11",
					IsHalfDay:      true,
					HalfDaySession: leave.SessionMorning,
					Reason:         "errand",
				})

				Expect(err).To(HaveOccurred())
				var appErr *internal.AppError
				Expect(errors.As(err, &appErr)).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
			})
		})

		It("should notify reviewers about the application", func() {
			apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-10",
				Reason:    "errand",
			})

			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventLeaveApplied))
		})
	})

	Describe("Approve", func() {
		It("should deduct the balance and record what was applied", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-12",
				Reason:    "family trip",
			})

			approved, err := service.Approve(ctx, reviewerID, req.ID, leave.ReviewLeaveDTO{Comments: "enjoy"})

			Expect(err).ToNot(HaveOccurred())
			Expect(approved.Status).To(Equal(leave.StatusApproved))
			Expect(approved.BalanceApplied).To(Equal(3.0))
			Expect(*approved.ReviewedByUserID).To(Equal(reviewerID))
			Expect(emp.Paid).To(Equal(17.0))
		})

		It("should not deduct anything for unpaid leave", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypeUnpaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-12",
				Reason:    "sabbatical",
			})

			approved, err := service.Approve(ctx, reviewerID, req.ID, leave.ReviewLeaveDTO{})

			Expect(err).ToNot(HaveOccurred())
			Expect(approved.BalanceApplied).To(Equal(0.0))
			Expect(emp.Paid).To(Equal(20.0))
		})

		It("should refuse a request that is not pending", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-10",
				Reason:    "errand",
			})
			_, err := service.Approve(ctx, reviewerID, req.ID, leave.ReviewLeaveDTO{})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Approve(ctx, reviewerID, req.ID, leave.ReviewLeaveDTO{})

			Expect(err).To(HaveOccurred())
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeLeaveProcessed))
		})

		It("should leave balance_applied at zero when the deduction fails", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-12",
				Reason:    "family trip",
			})
			employees.adjustError = errors.New("connection reset")

			_, err := service.Approve(ctx, reviewerID, req.ID, leave.ReviewLeaveDTO{})

			Expect(err).To(HaveOccurred())
			stored := mockRepo.requests[req.ID]
			Expect(stored.Status).To(Equal(leave.StatusApproved))
			Expect(stored.BalanceApplied).To(Equal(0.0))
		})

		It("should notify the applicant", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-10",
				Reason:    "errand",
			})
			publisher.published = nil

			_, err := service.Approve(ctx, reviewerID, req.ID, leave.ReviewLeaveDTO{})

			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventLeaveReviewed))
		})
	})

	Describe("Reject", func() {
		It("should use the default comment when none is given", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-10",
				Reason:    "errand",
			})

			rejected, err := service.Reject(ctx, reviewerID, req.ID, leave.ReviewLeaveDTO{})

			Expect(err).ToNot(HaveOccurred())
			Expect(rejected.Status).To(Equal(leave.StatusRejected))
			Expect(rejected.AdminComments).To(Equal("Leave request rejected"))
			Expect(emp.Paid).To(Equal(20.0))
		})

		It("should keep the reviewer's comment when given", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-10",
				Reason:    "errand",
			})

			rejected, err := service.Reject(ctx, reviewerID, req.ID, leave.ReviewLeaveDTO{Comments: "blackout week"})

			Expect(err).ToNot(HaveOccurred())
			Expect(rejected.AdminComments).To(Equal("blackout week"))
		})
	})

	Describe("Cancel", func() {
		It("should restore the balance of an approved request", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-12",
				Reason:    "family trip",
			})
			_, err := service.Approve(ctx, reviewerID, req.ID, leave.ReviewLeaveDTO{})
			Expect(err).ToNot(HaveOccurred())
			Expect(emp.Paid).To(Equal(17.0))

			cancelled, err := service.Cancel(userID, req.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(cancelled.Status).To(Equal(leave.StatusCancelled))
			Expect(cancelled.BalanceApplied).To(Equal(0.0))
			Expect(emp.Paid).To(Equal(20.0))
		})

		It("should not refund a pending request", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-12",
				Reason:    "family trip",
			})

			cancelled, err := service.Cancel(userID, req.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(cancelled.Status).To(Equal(leave.StatusCancelled))
			Expect(emp.Paid).To(Equal(20.0))
		})

		It("should refuse to cancel someone else's request", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-10",
				Reason:    "errand",
			})

			_, err := service.Cancel(int64(555), req.ID)

			Expect(err).To(HaveOccurred())
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnauthorizedAccess))
		})

		It("should refuse to cancel twice", func() {
			req := apply(leave.ApplyLeaveDTO{
				LeaveType: leave.TypePaid,
				StartDate: "2025-03-10",
				EndDate:   "2025-03-10",
				Reason:    "errand",
			})
			_, err := service.Cancel(userID, req.ID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Cancel(userID, req.ID)

			Expect(err).To(HaveOccurred())
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeLeaveCancelled))
		})
	})

	Describe("Balance", func() {
		It("should echo remaining balances with the year's usage", func() {
			mockRepo.usage = map[string]float64{leave.TypePaid: 3}

			summary, err := service.Balance(userID)

			Expect(err).ToNot(HaveOccurred())
			Expect(summary.Paid).To(Equal(20.0))
			Expect(summary.Sick).To(Equal(10.0))
			Expect(summary.Casual).To(Equal(5.0))
			Expect(summary.Used[leave.TypePaid]).To(Equal(3.0))
		})
	})
})
