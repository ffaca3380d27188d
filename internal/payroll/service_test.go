package payroll_test

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
	"github.com/dayflow-hq/dayflow/internal/payroll"
)

func TestPayrollService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payroll Service Suite")
}

type periodKey struct {
	employeeID  int64
	month, year int
}

// Mock repository for testing
type mockPayrollRepository struct {
	records     map[int64]*payroll.Record
	byPeriod    map[periodKey]*payroll.Record
	nextID      int64
	active      []payroll.ActiveEmployee
	workedDays  map[int64]int
	byUserID    map[int64]int64
	existing    map[int64]bool
	createError error
}

func newMockPayrollRepository() *mockPayrollRepository {
	return &mockPayrollRepository{
		records:    make(map[int64]*payroll.Record),
		byPeriod:   make(map[periodKey]*payroll.Record),
		nextID:     1,
		workedDays: make(map[int64]int),
		byUserID:   make(map[int64]int64),
		existing:   make(map[int64]bool),
	}
}

func (m *mockPayrollRepository) Create(rec *payroll.Record) error {
	if m.createError != nil {
		return m.createError
	}
	rec.ID = m.nextID
	m.nextID++
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()
	m.records[rec.ID] = rec
	m.byPeriod[periodKey{rec.EmployeeID, rec.Month, rec.Year}] = rec
	return nil
}

func (m *mockPayrollRepository) GetByID(id int64) (*payroll.Record, error) {
	return m.records[id], nil
}

func (m *mockPayrollRepository) GetByPeriod(employeeID int64, month, year int) (*payroll.Record, error) {
	return m.byPeriod[periodKey{employeeID, month, year}], nil
}

func (m *mockPayrollRepository) Update(rec *payroll.Record) error {
	rec.UpdatedAt = time.Now()
	m.records[rec.ID] = rec
	m.byPeriod[periodKey{rec.EmployeeID, rec.Month, rec.Year}] = rec
	return nil
}

func (m *mockPayrollRepository) ListByEmployee(employeeID int64, year int, page, limit int) ([]*payroll.Record, int64, error) {
	var out []*payroll.Record
	for _, rec := range m.records {
		if rec.EmployeeID == employeeID && (year == 0 || rec.Year == year) {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockPayrollRepository) List(q payroll.ListQuery) ([]*payroll.Record, int64, error) {
	var out []*payroll.Record
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (m *mockPayrollRepository) Stats(month, year int) (payroll.Stats, error) {
	return payroll.Stats{Month: month, Year: year}, nil
}

func (m *mockPayrollRepository) WorkedDays(employeeID int64, month, year int) (int, error) {
	return m.workedDays[employeeID], nil
}

func (m *mockPayrollRepository) ActiveEmployees() ([]payroll.ActiveEmployee, error) {
	return m.active, nil
}

func (m *mockPayrollRepository) EmployeeIDByUserID(userID int64) (int64, error) {
	id, ok := m.byUserID[userID]
	if !ok {
		return 0, errors.New("employee not found")
	}
	return id, nil
}

func (m *mockPayrollRepository) EmployeeExists(employeeID int64) (bool, error) {
	return m.existing[employeeID], nil
}

// Mock publisher for testing
type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("PayrollService", func() {
	var (
		service   *payroll.Service
		mockRepo  *mockPayrollRepository
		publisher *mockPublisher
	)

	const generatorID = int64(99)

	ctx := context.Background()

	BeforeEach(func() {
		mockRepo = newMockPayrollRepository()
		publisher = &mockPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = payroll.NewService(mockRepo, publisher, logger)
	})

	Describe("Upsert", func() {
		BeforeEach(func() {
			mockRepo.existing[1] = true
			mockRepo.workedDays[1] = 20
		})

		It("should compute gross, deductions and net", func() {
			dto := payroll.UpsertPayrollDTO{
				EmployeeID:      1,
				Month:           3,
				Year:            2025,
				BasicSalary:     50000,
				HRA:             15000,
				ProvidentFund:   6000,
				ProfessionalTax: 200,
				IncomeTax:       4000,
			}

			rec, err := service.Upsert(generatorID, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(rec.GrossSalary).To(Equal(65000.0))
			Expect(rec.TotalDeductions).To(Equal(10200.0))
			Expect(rec.NetSalary).To(Equal(54800.0))
			Expect(rec.DaysWorked).To(Equal(20))
			Expect(rec.TotalWorkingDays).To(Equal(31))
			Expect(*rec.GeneratedByUserID).To(Equal(generatorID))
		})

		It("should replace an existing period record instead of duplicating", func() {
			dto := payroll.UpsertPayrollDTO{EmployeeID: 1, Month: 3, Year: 2025, BasicSalary: 50000}
			first, err := service.Upsert(generatorID, dto)
			Expect(err).ToNot(HaveOccurred())

			dto.BasicSalary = 60000
			second, err := service.Upsert(generatorID, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
			Expect(second.BasicSalary).To(Equal(60000.0))
			Expect(mockRepo.records).To(HaveLen(1))
		})

		It("should return not found for a missing employee", func() {
			dto := payroll.UpsertPayrollDTO{EmployeeID: 42, Month: 3, Year: 2025}

			_, err := service.Upsert(generatorID, dto)

			Expect(err).To(HaveOccurred())
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmployeeNotFound))
		})

		It("should reject an out-of-range month", func() {
			dto := payroll.UpsertPayrollDTO{EmployeeID: 1, Month: 13, Year: 2025}

			_, err := service.Upsert(generatorID, dto)

			Expect(err).To(HaveOccurred())
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("Generate", func() {
		BeforeEach(func() {
			mockRepo.active = []payroll.ActiveEmployee{
				{ID: 1, Name: "Priya Sharma"},
				{ID: 2, Name: "Rohan Mehta"},
			}
			mockRepo.workedDays[1] = 21
			mockRepo.workedDays[2] = 19
		})

		It("should create a placeholder record per active employee", func() {
			result, err := service.Generate(ctx, generatorID, payroll.GeneratePayrollDTO{Month: 3, Year: 2025})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Generated).To(Equal(2))
			Expect(result.Skipped).To(Equal(0))

			rec := mockRepo.byPeriod[periodKey{1, 3, 2025}]
			Expect(rec).ToNot(BeNil())
			Expect(rec.BasicSalary).To(Equal(payroll.PlaceholderBasicSalary))
			Expect(rec.GrossSalary).To(Equal(43500.0))
			Expect(rec.NetSalary).To(Equal(39700.0))
			Expect(rec.DaysWorked).To(Equal(21))
			Expect(rec.TotalWorkingDays).To(Equal(31))
		})

		It("should skip employees that already have a period record", func() {
			_, err := service.Generate(ctx, generatorID, payroll.GeneratePayrollDTO{Month: 3, Year: 2025})
			Expect(err).ToNot(HaveOccurred())

			result, err := service.Generate(ctx, generatorID, payroll.GeneratePayrollDTO{Month: 3, Year: 2025})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Generated).To(Equal(0))
			Expect(result.Skipped).To(Equal(2))
			Expect(result.Errors).To(ContainElement("Priya Sharma: payroll already exists for this period"))
		})

		It("should keep processing after a per-employee failure", func() {
			mockRepo.byPeriod[periodKey{1, 3, 2025}] = &payroll.Record{ID: 50, EmployeeID: 1, Month: 3, Year: 2025}

			result, err := service.Generate(ctx, generatorID, payroll.GeneratePayrollDTO{Month: 3, Year: 2025})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Generated).To(Equal(1))
			Expect(result.Skipped).To(Equal(1))
		})

		It("should announce the batch run", func() {
			_, err := service.Generate(ctx, generatorID, payroll.GeneratePayrollDTO{Month: 3, Year: 2025})

			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventPayrollGenerated))
		})

		It("should reject an invalid period", func() {
			_, err := service.Generate(ctx, generatorID, payroll.GeneratePayrollDTO{Month: 0, Year: 2025})

			Expect(err).To(HaveOccurred())
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidPeriod))
		})
	})

	Describe("UpdatePaymentStatus", func() {
		var rec *payroll.Record

		BeforeEach(func() {
			mockRepo.existing[1] = true
			var err error
			rec, err = service.Upsert(generatorID, payroll.UpsertPayrollDTO{
				EmployeeID: 1, Month: 3, Year: 2025, BasicSalary: 50000,
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should stamp today when marking paid without a date", func() {
			updated, err := service.UpdatePaymentStatus(rec.ID, payroll.UpdatePaymentStatusDTO{
				PaymentStatus: payroll.PaymentPaid,
				PaymentMethod: "bank transfer",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.PaymentStatus).To(Equal(payroll.PaymentPaid))
			Expect(updated.PaymentDate).ToNot(BeNil())
		})

		It("should keep an explicit payment date", func() {
			date := "2025-03-31"
			updated, err := service.UpdatePaymentStatus(rec.ID, payroll.UpdatePaymentStatusDTO{
				PaymentStatus: payroll.PaymentPaid,
				PaymentDate:   &date,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.PaymentDate.Format("2006-01-02")).To(Equal(date))
		})

		It("should not stamp a date for non-paid statuses", func() {
			updated, err := service.UpdatePaymentStatus(rec.ID, payroll.UpdatePaymentStatusDTO{
				PaymentStatus: payroll.PaymentProcessed,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.PaymentDate).To(BeNil())
		})

		It("should reject an unknown status", func() {
			_, err := service.UpdatePaymentStatus(rec.ID, payroll.UpdatePaymentStatusDTO{
				PaymentStatus: "Wired",
			})

			Expect(err).To(HaveOccurred())
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("should return not found for a missing record", func() {
			_, err := service.UpdatePaymentStatus(int64(404), payroll.UpdatePaymentStatusDTO{
				PaymentStatus: payroll.PaymentPaid,
			})

			Expect(err).To(HaveOccurred())
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePayrollNotFound))
		})
	})

	Describe("MyPayroll", func() {
		It("should resolve the caller's employee profile", func() {
			mockRepo.existing[1] = true
			mockRepo.byUserID[10] = 1
			_, err := service.Upsert(generatorID, payroll.UpsertPayrollDTO{
				EmployeeID: 1, Month: 3, Year: 2025, BasicSalary: 50000,
			})
			Expect(err).ToNot(HaveOccurred())

			records, total, err := service.MyPayroll(int64(10), 2025, 1, 20)

			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(records).To(HaveLen(1))
		})

		It("should return not found for a user without a profile", func() {
			_, _, err := service.MyPayroll(int64(888), 0, 1, 20)

			Expect(err).To(HaveOccurred())
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmployeeNotFound))
		})
	})
})
