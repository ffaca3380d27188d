package employee

import (
	"errors"
	"fmt"
	"time"
)

// Employment statuses.
const (
	StatusActive     = "Active"
	StatusOnLeave    = "On Leave"
	StatusResigned   = "Resigned"
	StatusTerminated = "Terminated"
)

// Employment types.
const (
	TypeFullTime = "Full-time"
	TypePartTime = "Part-time"
	TypeContract = "Contract"
	TypeIntern   = "Intern"
)

// DefaultAssignment is used for profiles created at signup before HR fills
// in the real values.
const DefaultAssignment = "Not Assigned"

// Default leave balances granted to a new employee.
const (
	DefaultPaidBalance   = 20.0
	DefaultSickBalance   = 10.0
	DefaultCasualBalance = 5.0
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrProfileExists    = errors.New("employee profile already exists for user")
	ErrManagerNotFound  = errors.New("reporting manager not found")
	ErrInvalidStatus    = errors.New("invalid employment status")
)

// LeaveBalance holds the remaining leave days per balance-tracked type.
// Half-day leaves make these fractional.
type LeaveBalance struct {
	Paid   float64 `gorm:"column:paid_leave_balance;default:20" json:"paid"`
	Sick   float64 `gorm:"column:sick_leave_balance;default:10" json:"sick"`
	Casual float64 `gorm:"column:casual_leave_balance;default:5" json:"casual"`
}

type Employee struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	UserID             int64      `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName          string     `gorm:"not null" json:"first_name"`
	LastName           string     `gorm:"not null" json:"last_name"`
	Phone              string     `json:"phone,omitempty"`
	Department         string     `gorm:"index" json:"department"`
	Designation        string     `json:"designation"`
	EmploymentType     string     `json:"employment_type"`
	JoiningDate        time.Time  `json:"joining_date"`
	ReportingManagerID *int64     `json:"reporting_manager_id,omitempty"`
	Status             string     `gorm:"index;default:Active" json:"status"`
	ProfilePictureURL  string     `json:"profile_picture_url,omitempty"`
	ProfilePictureID   string     `json:"-"`
	LeaveBalance       `gorm:"embedded" json:"leave_balance"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

// Document types accepted for upload.
const (
	DocTypeIDProof       = "ID Proof"
	DocTypeAddressProof  = "Address Proof"
	DocTypeEducationCert = "Education Certificate"
	DocTypeExperience    = "Experience Letter"
	DocTypeOther         = "Other"
)

func ValidDocumentType(t string) bool {
	switch t {
	case DocTypeIDProof, DocTypeAddressProof, DocTypeEducationCert, DocTypeExperience, DocTypeOther:
		return true
	}
	return false
}

// Document is a file uploaded against a profile (ID proof, certificates).
type Document struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	EmployeeID int64     `gorm:"index;not null" json:"employee_id"`
	Name       string    `gorm:"not null" json:"name"`
	Type       string    `gorm:"column:doc_type" json:"type"`
	URL        string    `json:"url"`
	ObjectID   string    `gorm:"column:object_id" json:"-"`
	UploadedAt time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

func (Document) TableName() string {
	return "employee_documents"
}

func (e *Employee) FullName() string {
	return fmt.Sprintf("%s %s", e.FirstName, e.LastName)
}

func (e *Employee) IsActive() bool {
	return e.Status == StatusActive || e.Status == StatusOnLeave
}

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusOnLeave, StatusResigned, StatusTerminated:
		return true
	}
	return false
}

func ValidEmploymentType(t string) bool {
	switch t {
	case TypeFullTime, TypePartTime, TypeContract, TypeIntern:
		return true
	}
	return false
}
