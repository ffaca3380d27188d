package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dayflow-hq/dayflow/internal"
	"github.com/dayflow-hq/dayflow/internal/core/events"
)

// ActiveEmployee is the slim employee row batch generation iterates over.
type ActiveEmployee struct {
	ID   int64
	Name string
}

// Repository defines the data access methods for payroll records.
type Repository interface {
	Create(rec *Record) error
	GetByID(id int64) (*Record, error)
	GetByPeriod(employeeID int64, month, year int) (*Record, error)
	Update(rec *Record) error
	ListByEmployee(employeeID int64, year int, page, limit int) ([]*Record, int64, error)
	List(q ListQuery) ([]*Record, int64, error)
	Stats(month, year int) (Stats, error)
	WorkedDays(employeeID int64, month, year int) (int, error)
	ActiveEmployees() ([]ActiveEmployee, error)
	EmployeeIDByUserID(userID int64) (int64, error)
	EmployeeExists(employeeID int64) (bool, error)
}

// Publisher is the slice of the event bus used to announce batch runs.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles payroll business logic.
type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Upsert creates or replaces one employee's record for a period. Worked
// days are always recomputed from attendance.
func (s *Service) Upsert(generatorUserID int64, dto UpsertPayrollDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	exists, err := s.repo.EmployeeExists(dto.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	}

	rec, err := s.repo.GetByPeriod(dto.EmployeeID, dto.Month, dto.Year)
	if err != nil {
		return nil, err
	}
	created := rec == nil
	if created {
		rec = &Record{
			EmployeeID:    dto.EmployeeID,
			Month:         dto.Month,
			Year:          dto.Year,
			PaymentStatus: PaymentPending,
		}
	}

	rec.BasicSalary = dto.BasicSalary
	rec.HRA = dto.HRA
	rec.TransportAllowance = dto.TransportAllowance
	rec.MedicalAllowance = dto.MedicalAllowance
	rec.SpecialAllowance = dto.SpecialAllowance
	rec.OtherAllowances = dto.OtherAllowances
	rec.ProvidentFund = dto.ProvidentFund
	rec.ProfessionalTax = dto.ProfessionalTax
	rec.IncomeTax = dto.IncomeTax
	rec.OtherDeductions = dto.OtherDeductions
	rec.Remarks = dto.Remarks
	rec.GeneratedByUserID = &generatorUserID
	rec.Recalculate()

	if err := s.fillWorkedDays(rec); err != nil {
		return nil, err
	}

	if created {
		err = s.repo.Create(rec)
	} else {
		err = s.repo.Update(rec)
	}
	if err != nil {
		s.logger.Error("failed to save payroll record", "error", err, "employee_id", dto.EmployeeID)
		return nil, err
	}

	s.logger.Info("payroll record saved", "payroll_id", rec.ID, "employee_id", dto.EmployeeID,
		"period", fmt.Sprintf("%d-%02d", dto.Year, dto.Month), "net", rec.NetSalary)
	return rec, nil
}

// Generate runs batch payroll for a period. Each employee is processed
// independently; an existing period record skips that employee and is
// reported by name. Compensation uses the placeholder amounts.
func (s *Service) Generate(ctx context.Context, generatorUserID int64, dto GeneratePayrollDTO) (*GenerateResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidPeriod)
	}

	employees, err := s.repo.ActiveEmployees()
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{Month: dto.Month, Year: dto.Year}
	for _, emp := range employees {
		existing, err := s.repo.GetByPeriod(emp.ID, dto.Month, dto.Year)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", emp.Name, err))
			continue
		}
		if existing != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: payroll already exists for this period", emp.Name))
			continue
		}

		rec := &Record{
			EmployeeID:         emp.ID,
			Month:              dto.Month,
			Year:               dto.Year,
			BasicSalary:        PlaceholderBasicSalary,
			HRA:                PlaceholderHRA,
			TransportAllowance: PlaceholderTransport,
			MedicalAllowance:   PlaceholderMedical,
			ProvidentFund:      PlaceholderProvidentFund,
			ProfessionalTax:    PlaceholderProfessionalTax,
			PaymentStatus:      PaymentPending,
			GeneratedByUserID:  &generatorUserID,
		}
		rec.Recalculate()

		if err := s.fillWorkedDays(rec); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", emp.Name, err))
			continue
		}

		if err := s.repo.Create(rec); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", emp.Name, err))
			continue
		}
		result.Generated++
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.NewPayrollGeneratedEvent(dto.Month, dto.Year, result.Generated, result.Skipped))
	}

	s.logger.Info("payroll batch generated",
		"month", dto.Month, "year", dto.Year,
		"generated", result.Generated, "skipped", result.Skipped,
		"generated_by", generatorUserID)
	return result, nil
}

// UpdatePaymentStatus moves a record through the payment lifecycle. Marking
// a record Paid without an explicit date stamps today.
func (s *Service) UpdatePaymentStatus(id int64, dto UpdatePaymentStatusDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	rec, err := s.getRecord(id)
	if err != nil {
		return nil, err
	}

	rec.PaymentStatus = dto.PaymentStatus
	rec.PaymentMethod = dto.PaymentMethod
	rec.TransactionID = dto.TransactionID
	if dto.Remarks != "" {
		rec.Remarks = dto.Remarks
	}
	if dto.PaymentDate != nil {
		t, _ := time.Parse("2006-01-02", *dto.PaymentDate)
		rec.PaymentDate = &t
	} else if dto.PaymentStatus == PaymentPaid && rec.PaymentDate == nil {
		now := s.now()
		rec.PaymentDate = &now
	}

	if err := s.repo.Update(rec); err != nil {
		return nil, err
	}

	s.logger.Info("payment status updated", "payroll_id", id, "status", dto.PaymentStatus)
	return rec, nil
}

// MyPayroll lists the caller's records, optionally for one year.
func (s *Service) MyPayroll(userID int64, year, page, limit int) ([]*Record, int64, error) {
	employeeID, err := s.repo.EmployeeIDByUserID(userID)
	if err != nil {
		return nil, 0, internal.NewNotFoundError("employee profile not found", internal.ErrCodeEmployeeNotFound)
	}
	return s.repo.ListByEmployee(employeeID, year, page, limit)
}

func (s *Service) GetByID(id int64) (*Record, error) {
	return s.getRecord(id)
}

// CurrentForUser returns the caller's record for the running month, or nil.
func (s *Service) CurrentForUser(userID int64) (*Record, error) {
	employeeID, err := s.repo.EmployeeIDByUserID(userID)
	if err != nil {
		return nil, internal.NewNotFoundError("employee profile not found", internal.ErrCodeEmployeeNotFound)
	}
	now := s.now()
	return s.repo.GetByPeriod(employeeID, int(now.Month()), now.Year())
}

// List returns records across employees for admins.
func (s *Service) List(q ListQuery) ([]*Record, int64, error) {
	if q.PaymentStatus != "" && !ValidPaymentStatus(q.PaymentStatus) {
		return nil, 0, internal.NewValidationError("invalid payment status filter", internal.ErrCodeValidationFailed)
	}
	return s.repo.List(q)
}

// PeriodStats returns the admin rollup for one period.
func (s *Service) PeriodStats(month, year int) (Stats, error) {
	if err := validatePeriod(month, year); err != nil {
		return Stats{}, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidPeriod)
	}
	return s.repo.Stats(month, year)
}

func (s *Service) getRecord(id int64) (*Record, error) {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, internal.NewNotFoundError("payroll record not found", internal.ErrCodePayrollNotFound)
	}
	return rec, nil
}

func (s *Service) fillWorkedDays(rec *Record) error {
	worked, err := s.repo.WorkedDays(rec.EmployeeID, rec.Month, rec.Year)
	if err != nil {
		return err
	}
	rec.DaysWorked = worked
	rec.TotalWorkingDays = DaysInMonth(rec.Month, rec.Year)
	return nil
}
