package payroll

import "time"

// Payment statuses.
const (
	PaymentPending   = "Pending"
	PaymentProcessed = "Processed"
	PaymentPaid      = "Paid"
	PaymentOnHold    = "On Hold"
)

func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentPending, PaymentProcessed, PaymentPaid, PaymentOnHold:
		return true
	}
	return false
}

// Placeholder compensation used by batch generation until a salary
// structure per employee exists.
// TODO: replace with per-employee salary structures once HR finalizes the
// compensation bands.
const (
	PlaceholderBasicSalary     = 30000.0
	PlaceholderHRA             = 10000.0
	PlaceholderTransport       = 2000.0
	PlaceholderMedical         = 1500.0
	PlaceholderProvidentFund   = 3600.0
	PlaceholderProfessionalTax = 200.0
)

// Record is one employee's payroll for one month. At most one record exists
// per employee per period.
type Record struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	EmployeeID         int64      `gorm:"uniqueIndex:idx_payroll_employee_period;not null" json:"employee_id"`
	Month              int        `gorm:"uniqueIndex:idx_payroll_employee_period;not null" json:"month"`
	Year               int        `gorm:"uniqueIndex:idx_payroll_employee_period;not null" json:"year"`
	BasicSalary        float64    `json:"basic_salary"`
	HRA                float64    `gorm:"column:hra" json:"hra"`
	TransportAllowance float64    `json:"transport_allowance"`
	MedicalAllowance   float64    `json:"medical_allowance"`
	SpecialAllowance   float64    `json:"special_allowance"`
	OtherAllowances    float64    `json:"other_allowances"`
	ProvidentFund      float64    `json:"provident_fund"`
	ProfessionalTax    float64    `json:"professional_tax"`
	IncomeTax          float64    `json:"income_tax"`
	OtherDeductions    float64    `json:"other_deductions"`
	GrossSalary        float64    `json:"gross_salary"`
	TotalDeductions    float64    `json:"total_deductions"`
	NetSalary          float64    `json:"net_salary"`
	DaysWorked         int        `json:"days_worked"`
	TotalWorkingDays   int        `json:"total_working_days"`
	PaymentStatus      string     `gorm:"index;default:Pending" json:"payment_status"`
	PaymentDate        *time.Time `json:"payment_date,omitempty"`
	PaymentMethod      string     `json:"payment_method,omitempty"`
	TransactionID      string     `json:"transaction_id,omitempty"`
	Remarks            string     `json:"remarks,omitempty"`
	GeneratedByUserID  *int64     `json:"generated_by_user_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Filled by list queries that join the employee row.
	EmployeeName string `gorm:"->;-:migration" json:"employee_name,omitempty"`
	Department   string `gorm:"->;-:migration" json:"department,omitempty"`
}

func (Record) TableName() string {
	return "payroll_records"
}

// Recalculate derives the gross, total deduction and net figures from the
// component amounts.
func (r *Record) Recalculate() {
	r.GrossSalary = r.BasicSalary + r.HRA + r.TransportAllowance +
		r.MedicalAllowance + r.SpecialAllowance + r.OtherAllowances
	r.TotalDeductions = r.ProvidentFund + r.ProfessionalTax +
		r.IncomeTax + r.OtherDeductions
	r.NetSalary = r.GrossSalary - r.TotalDeductions
}

// DaysInMonth returns the calendar length of a month, which doubles as the
// total working days figure.
func DaysInMonth(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
