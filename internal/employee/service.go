package employee

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dayflow-hq/dayflow/internal"
	"github.com/google/uuid"
)

// Repository defines the data access methods for employee profiles.
// DeleteWithUser and SetUserActive touch the owning user row as well, since
// profile lifecycle cascades to the login account.
type Repository interface {
	Create(emp *Employee) error
	GetByID(id int64) (*Employee, error)
	GetByUserID(userID int64) (*Employee, error)
	List(q ListEmployeesQuery) ([]*Employee, int64, error)
	Update(emp *Employee) error
	DeleteWithUser(id, userID int64) error
	SetUserActive(userID int64, active bool) error
	AdjustBalance(employeeID int64, column string, delta float64) error
	CreateDocument(doc *Document) error
	ListDocuments(employeeID int64) ([]*Document, error)
	Recent(limit int) ([]*Employee, error)
	Departments() ([]string, error)
	CountByStatus(status string) (int64, error)
	CountByDepartment() (map[string]int64, error)
}

// ObjectStore abstracts profile picture storage.
type ObjectStore interface {
	Put(ctx context.Context, objectID, contentType string, data io.Reader) (url string, err error)
	Delete(ctx context.Context, objectID string) error
}

// Service handles employee profile business logic.
type Service struct {
	repo    Repository
	objects ObjectStore
	logger  *slog.Logger
}

func NewService(repo Repository, objects ObjectStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, objects: objects, logger: logger}
}

// CreateForUser creates the minimal profile at signup time.
func (s *Service) CreateForUser(userID int64, firstName, lastName string) error {
	emp := &Employee{
		UserID:      userID,
		FirstName:   firstName,
		LastName:    lastName,
		Department:  DefaultAssignment,
		Designation: DefaultAssignment,
		JoiningDate: time.Now(),
		Status:      StatusActive,
		LeaveBalance: LeaveBalance{
			Paid:   DefaultPaidBalance,
			Sick:   DefaultSickBalance,
			Casual: DefaultCasualBalance,
		},
	}
	if err := s.repo.Create(emp); err != nil {
		return err
	}
	s.logger.Info("employee profile created at signup", "employee_id", emp.ID, "user_id", userID)
	return nil
}

// CreateEmployee creates a full profile for an existing user account.
func (s *Service) CreateEmployee(dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByUserID(dto.UserID); err == nil && existing != nil {
		return nil, internal.NewConflictError("employee profile already exists for this user", internal.ErrCodeDuplicateCode)
	}

	if dto.ReportingManagerID != nil {
		if _, err := s.getEmployee(*dto.ReportingManagerID); err != nil {
			return nil, internal.NewValidationError("reporting manager not found", internal.ErrCodeEmployeeNotFound)
		}
	}

	emp := &Employee{
		UserID:             dto.UserID,
		FirstName:          dto.FirstName,
		LastName:           dto.LastName,
		Phone:              dto.Phone,
		Department:         dto.Department,
		Designation:        dto.Designation,
		EmploymentType:     dto.EmploymentType,
		JoiningDate:        time.Now(),
		ReportingManagerID: dto.ReportingManagerID,
		Status:             StatusActive,
		LeaveBalance: LeaveBalance{
			Paid:   DefaultPaidBalance,
			Sick:   DefaultSickBalance,
			Casual: DefaultCasualBalance,
		},
	}
	if emp.Department == "" {
		emp.Department = DefaultAssignment
	}
	if emp.Designation == "" {
		emp.Designation = DefaultAssignment
	}
	if emp.EmploymentType == "" {
		emp.EmploymentType = TypeFullTime
	}
	if dto.JoiningDate != "" {
		emp.JoiningDate, _ = time.Parse("2006-01-02", dto.JoiningDate)
	}
	if dto.PaidBalance != nil {
		emp.Paid = *dto.PaidBalance
	}
	if dto.SickBalance != nil {
		emp.Sick = *dto.SickBalance
	}
	if dto.CasualBalance != nil {
		emp.Casual = *dto.CasualBalance
	}

	if err := s.repo.Create(emp); err != nil {
		s.logger.Error("failed to create employee", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	s.logger.Info("employee created", "employee_id", emp.ID, "user_id", dto.UserID)
	return emp, nil
}

func (s *Service) GetByID(id int64) (*Employee, error) {
	return s.getEmployee(id)
}

// GetMyProfile loads the profile owned by the given user account.
func (s *Service) GetMyProfile(userID int64) (*Employee, error) {
	emp, err := s.repo.GetByUserID(userID)
	if err != nil || emp == nil {
		return nil, internal.NewNotFoundError("employee profile not found", internal.ErrCodeEmployeeNotFound)
	}
	return emp, nil
}

func (s *Service) List(q ListEmployeesQuery) ([]*Employee, int64, error) {
	if q.Status != "" && !ValidStatus(q.Status) {
		return nil, 0, internal.NewValidationError("invalid status filter", internal.ErrCodeValidationFailed)
	}
	return s.repo.List(q)
}

// UpdateEmployee applies an admin-side update.
func (s *Service) UpdateEmployee(id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	emp, err := s.getEmployee(id)
	if err != nil {
		return nil, err
	}

	if dto.ReportingManagerID != nil {
		if *dto.ReportingManagerID == id {
			return nil, internal.NewValidationError("employee cannot report to themselves", internal.ErrCodeValidationFailed)
		}
		if _, err := s.getEmployee(*dto.ReportingManagerID); err != nil {
			return nil, internal.NewValidationError("reporting manager not found", internal.ErrCodeEmployeeNotFound)
		}
		emp.ReportingManagerID = dto.ReportingManagerID
	}

	if dto.FirstName != nil {
		emp.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		emp.LastName = *dto.LastName
	}
	if dto.Phone != nil {
		emp.Phone = *dto.Phone
	}
	if dto.Department != nil {
		emp.Department = *dto.Department
	}
	if dto.Designation != nil {
		emp.Designation = *dto.Designation
	}
	if dto.EmploymentType != nil {
		emp.EmploymentType = *dto.EmploymentType
	}
	if dto.JoiningDate != nil {
		emp.JoiningDate, _ = time.Parse("2006-01-02", *dto.JoiningDate)
	}
	if dto.Status != nil {
		emp.Status = *dto.Status
	}
	if dto.PaidBalance != nil {
		emp.Paid = *dto.PaidBalance
	}
	if dto.SickBalance != nil {
		emp.Sick = *dto.SickBalance
	}
	if dto.CasualBalance != nil {
		emp.Casual = *dto.CasualBalance
	}

	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, err
	}

	s.logger.Info("employee updated", "employee_id", id)
	return emp, nil
}

// UpdateMyProfile applies the restricted self-service update.
func (s *Service) UpdateMyProfile(userID int64, dto UpdateMyProfileDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	emp, err := s.GetMyProfile(userID)
	if err != nil {
		return nil, err
	}

	if dto.FirstName != nil {
		emp.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		emp.LastName = *dto.LastName
	}
	if dto.Phone != nil {
		emp.Phone = *dto.Phone
	}

	if err := s.repo.Update(emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// Deactivate marks the profile terminated and disables the login account.
func (s *Service) Deactivate(id int64) error {
	emp, err := s.getEmployee(id)
	if err != nil {
		return err
	}

	emp.Status = StatusTerminated
	if err := s.repo.Update(emp); err != nil {
		return err
	}

	if err := s.repo.SetUserActive(emp.UserID, false); err != nil {
		s.logger.Error("failed to deactivate user account", "error", err, "user_id", emp.UserID)
		return err
	}

	s.logger.Info("employee deactivated", "employee_id", id, "user_id", emp.UserID)
	return nil
}

// Delete removes the profile and the owning user account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	emp, err := s.getEmployee(id)
	if err != nil {
		return err
	}

	docs, err := s.repo.ListDocuments(emp.ID)
	if err != nil {
		s.logger.Warn("failed to list documents before delete", "error", err, "employee_id", id)
	}

	if err := s.repo.DeleteWithUser(emp.ID, emp.UserID); err != nil {
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return err
	}

	if s.objects != nil {
		if emp.ProfilePictureID != "" {
			if err := s.objects.Delete(ctx, emp.ProfilePictureID); err != nil {
				s.logger.Warn("failed to delete profile picture object", "error", err, "object_id", emp.ProfilePictureID)
			}
		}
		for _, doc := range docs {
			if doc.ObjectID == "" {
				continue
			}
			if err := s.objects.Delete(ctx, doc.ObjectID); err != nil {
				s.logger.Warn("failed to delete document object", "error", err, "object_id", doc.ObjectID)
			}
		}
	}

	s.logger.Info("employee deleted", "employee_id", id, "user_id", emp.UserID)
	return nil
}

// UploadProfilePicture stores the new picture and removes the replaced
// object best-effort.
func (s *Service) UploadProfilePicture(ctx context.Context, userID int64, contentType string, data io.Reader) (*Employee, error) {
	if s.objects == nil {
		return nil, internal.NewInternalError("profile picture storage is not configured", nil)
	}

	emp, err := s.GetMyProfile(userID)
	if err != nil {
		return nil, err
	}

	objectID := fmt.Sprintf("profile/%d/%s", emp.ID, uuid.NewString())
	url, err := s.objects.Put(ctx, objectID, contentType, data)
	if err != nil {
		s.logger.Error("failed to store profile picture", "error", err, "employee_id", emp.ID)
		return nil, internal.NewInternalError("failed to store profile picture", err)
	}

	oldObjectID := emp.ProfilePictureID
	emp.ProfilePictureURL = url
	emp.ProfilePictureID = objectID

	if err := s.repo.Update(emp); err != nil {
		return nil, err
	}

	if oldObjectID != "" {
		if err := s.objects.Delete(ctx, oldObjectID); err != nil {
			s.logger.Warn("failed to delete old profile picture", "error", err, "object_id", oldObjectID)
		}
	}

	return emp, nil
}

// UploadDocument stores an uploaded file and records it on the caller's
// profile.
func (s *Service) UploadDocument(ctx context.Context, userID int64, dto UploadDocumentDTO, contentType string, data io.Reader) (*Document, error) {
	if s.objects == nil {
		return nil, internal.NewInternalError("document storage is not configured", nil)
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	emp, err := s.GetMyProfile(userID)
	if err != nil {
		return nil, err
	}

	objectID := fmt.Sprintf("documents/%d/%s", emp.ID, uuid.NewString())
	url, err := s.objects.Put(ctx, objectID, contentType, data)
	if err != nil {
		s.logger.Error("failed to store document", "error", err, "employee_id", emp.ID)
		return nil, internal.NewInternalError("failed to store document", err)
	}

	doc := &Document{
		EmployeeID: emp.ID,
		Name:       dto.Name,
		Type:       dto.Type,
		URL:        url,
		ObjectID:   objectID,
		UploadedAt: time.Now(),
	}
	if err := s.repo.CreateDocument(doc); err != nil {
		s.logger.Error("failed to record document", "error", err, "employee_id", emp.ID)
		return nil, err
	}

	s.logger.Info("document uploaded", "employee_id", emp.ID, "name", doc.Name, "type", doc.Type)
	return doc, nil
}

// MyDocuments lists the caller's uploaded documents.
func (s *Service) MyDocuments(userID int64) ([]*Document, error) {
	emp, err := s.GetMyProfile(userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListDocuments(emp.ID)
}

// CountByStatus returns the number of employees with the given status.
func (s *Service) CountByStatus(status string) (int64, error) {
	return s.repo.CountByStatus(status)
}

// CountByDepartment returns employee counts keyed by department.
func (s *Service) CountByDepartment() (map[string]int64, error) {
	return s.repo.CountByDepartment()
}

// Recent returns the most recently created profiles.
func (s *Service) Recent(limit int) ([]*Employee, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Recent(limit)
}

// Departments lists the distinct department names in use.
func (s *Service) Departments() ([]string, error) {
	return s.repo.Departments()
}

// AdjustLeaveBalance applies a signed delta to one balance-tracked leave
// type. Callers own the business rules; this only maps type to column.
func (s *Service) AdjustLeaveBalance(employeeID int64, leaveType string, delta float64) error {
	column, ok := balanceColumn(leaveType)
	if !ok {
		return fmt.Errorf("leave type %q has no tracked balance", leaveType)
	}
	return s.repo.AdjustBalance(employeeID, column, delta)
}

func (s *Service) getEmployee(id int64) (*Employee, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil || emp == nil {
		return nil, internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	}
	return emp, nil
}

func balanceColumn(leaveType string) (string, bool) {
	switch leaveType {
	case "Paid":
		return "paid_leave_balance", true
	case "Sick":
		return "sick_leave_balance", true
	case "Casual":
		return "casual_leave_balance", true
	}
	return "", false
}
