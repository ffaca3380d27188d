package payroll

import (
	"errors"
	"time"
)

type UpsertPayrollDTO struct {
	EmployeeID         int64   `json:"employee_id"`
	Month              int     `json:"month"`
	Year               int     `json:"year"`
	BasicSalary        float64 `json:"basic_salary"`
	HRA                float64 `json:"hra"`
	TransportAllowance float64 `json:"transport_allowance"`
	MedicalAllowance   float64 `json:"medical_allowance"`
	SpecialAllowance   float64 `json:"special_allowance"`
	OtherAllowances    float64 `json:"other_allowances"`
	ProvidentFund      float64 `json:"provident_fund"`
	ProfessionalTax    float64 `json:"professional_tax"`
	IncomeTax          float64 `json:"income_tax"`
	OtherDeductions    float64 `json:"other_deductions"`
	Remarks            string  `json:"remarks,omitempty"`
}

func (dto UpsertPayrollDTO) Validate() error {
	if dto.EmployeeID <= 0 {
		return errors.New("employee_id is required")
	}
	if err := validatePeriod(dto.Month, dto.Year); err != nil {
		return err
	}
	if dto.BasicSalary < 0 {
		return errors.New("basic_salary cannot be negative")
	}
	return nil
}

type GeneratePayrollDTO struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (dto GeneratePayrollDTO) Validate() error {
	return validatePeriod(dto.Month, dto.Year)
}

type UpdatePaymentStatusDTO struct {
	PaymentStatus string  `json:"payment_status"`
	PaymentDate   *string `json:"payment_date,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Remarks       string  `json:"remarks,omitempty"`
}

func (dto UpdatePaymentStatusDTO) Validate() error {
	if !ValidPaymentStatus(dto.PaymentStatus) {
		return errors.New("payment_status must be one of Pending, Processed, Paid, On Hold")
	}
	if dto.PaymentDate != nil {
		if _, err := time.Parse("2006-01-02", *dto.PaymentDate); err != nil {
			return errors.New("payment_date must be in YYYY-MM-DD format")
		}
	}
	return nil
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return errors.New("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return errors.New("year is out of range")
	}
	return nil
}

// ListQuery carries the admin list filters.
type ListQuery struct {
	Month         int
	Year          int
	Department    string
	PaymentStatus string
	EmployeeID    *int64
	Page          int
	Limit         int
}

// GenerateResult reports a batch generation run. Employees whose period
// record already existed are listed per name in Errors.
type GenerateResult struct {
	Month     int      `json:"month"`
	Year      int      `json:"year"`
	Generated int      `json:"generated"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// StatusStat aggregates records sharing a payment status.
type StatusStat struct {
	Count    int64   `json:"count"`
	NetTotal float64 `json:"net_total"`
}

// Stats is the admin rollup for one period.
type Stats struct {
	Month            int                   `json:"month"`
	Year             int                   `json:"year"`
	ByPaymentStatus  map[string]StatusStat `json:"by_payment_status"`
	DepartmentTotals map[string]float64    `json:"department_totals"`
	TotalNetPay      float64               `json:"total_net_pay"`
}
