package employee

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type CreateEmployeeDTO struct {
	UserID             int64   `json:"user_id"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Phone              string  `json:"phone,omitempty"`
	Department         string  `json:"department,omitempty"`
	Designation        string  `json:"designation,omitempty"`
	EmploymentType     string  `json:"employment_type,omitempty"`
	JoiningDate        string  `json:"joining_date,omitempty"`
	ReportingManagerID *int64  `json:"reporting_manager_id,omitempty"`
	PaidBalance        *float64 `json:"paid_leave_balance,omitempty"`
	SickBalance        *float64 `json:"sick_leave_balance,omitempty"`
	CasualBalance      *float64 `json:"casual_leave_balance,omitempty"`
}

func (dto CreateEmployeeDTO) Validate() error {
	if dto.UserID <= 0 {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(dto.FirstName) == "" {
		return errors.New("first name is required")
	}
	if strings.TrimSpace(dto.LastName) == "" {
		return errors.New("last name is required")
	}
	if dto.EmploymentType != "" && !ValidEmploymentType(dto.EmploymentType) {
		return fmt.Errorf("employment type must be one of %s, %s, %s, %s",
			TypeFullTime, TypePartTime, TypeContract, TypeIntern)
	}
	if dto.JoiningDate != "" {
		if _, err := time.Parse("2006-01-02", dto.JoiningDate); err != nil {
			return errors.New("joining_date must be in YYYY-MM-DD format")
		}
	}
	return nil
}

// UpdateEmployeeDTO is the admin-side update. Nil fields are left untouched.
type UpdateEmployeeDTO struct {
	FirstName          *string  `json:"first_name,omitempty"`
	LastName           *string  `json:"last_name,omitempty"`
	Phone              *string  `json:"phone,omitempty"`
	Department         *string  `json:"department,omitempty"`
	Designation        *string  `json:"designation,omitempty"`
	EmploymentType     *string  `json:"employment_type,omitempty"`
	JoiningDate        *string  `json:"joining_date,omitempty"`
	ReportingManagerID *int64   `json:"reporting_manager_id,omitempty"`
	Status             *string  `json:"status,omitempty"`
	PaidBalance        *float64 `json:"paid_leave_balance,omitempty"`
	SickBalance        *float64 `json:"sick_leave_balance,omitempty"`
	CasualBalance      *float64 `json:"casual_leave_balance,omitempty"`
}

func (dto UpdateEmployeeDTO) Validate() error {
	if dto.FirstName != nil && strings.TrimSpace(*dto.FirstName) == "" {
		return errors.New("first name cannot be empty")
	}
	if dto.LastName != nil && strings.TrimSpace(*dto.LastName) == "" {
		return errors.New("last name cannot be empty")
	}
	if dto.Status != nil && !ValidStatus(*dto.Status) {
		return fmt.Errorf("status must be one of %s, %s, %s, %s",
			StatusActive, StatusOnLeave, StatusResigned, StatusTerminated)
	}
	if dto.EmploymentType != nil && !ValidEmploymentType(*dto.EmploymentType) {
		return errors.New("invalid employment type")
	}
	if dto.JoiningDate != nil {
		if _, err := time.Parse("2006-01-02", *dto.JoiningDate); err != nil {
			return errors.New("joining_date must be in YYYY-MM-DD format")
		}
	}
	return nil
}

// UpdateMyProfileDTO is the self-service update with the restricted field
// set. Assignment, status and balances stay admin-only.
type UpdateMyProfileDTO struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

func (dto UpdateMyProfileDTO) Validate() error {
	if dto.FirstName != nil && strings.TrimSpace(*dto.FirstName) == "" {
		return errors.New("first name cannot be empty")
	}
	if dto.LastName != nil && strings.TrimSpace(*dto.LastName) == "" {
		return errors.New("last name cannot be empty")
	}
	return nil
}

// UploadDocumentDTO carries the form fields accompanying a document upload.
type UploadDocumentDTO struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (dto UploadDocumentDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("document name is required")
	}
	if !ValidDocumentType(dto.Type) {
		return fmt.Errorf("document type must be one of %s, %s, %s, %s, %s",
			DocTypeIDProof, DocTypeAddressProof, DocTypeEducationCert, DocTypeExperience, DocTypeOther)
	}
	return nil
}

// ListEmployeesQuery carries admin list filters.
type ListEmployeesQuery struct {
	Department string
	Status     string
	Search     string
	Page       int
	Limit      int
}
