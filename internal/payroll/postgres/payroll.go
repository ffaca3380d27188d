package payroll

import (
	"errors"
	"time"

	"github.com/dayflow-hq/dayflow/internal/payroll"
	"gorm.io/gorm"
)

func monthStart(month, year int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(rec *payroll.Record) error {
	return r.db.Create(rec).Error
}

func (r *Repository) GetByID(id int64) (*payroll.Record, error) {
	var rec payroll.Record
	if err := r.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) GetByPeriod(employeeID int64, month, year int) (*payroll.Record, error) {
	var rec payroll.Record
	err := r.db.
		Where("employee_id = ? AND month = ? AND year = ?", employeeID, month, year).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) Update(rec *payroll.Record) error {
	return r.db.Model(rec).Select("*").Omit("id", "created_at").Updates(rec).Error
}

func (r *Repository) ListByEmployee(employeeID int64, year, page, limit int) ([]*payroll.Record, int64, error) {
	query := r.db.Model(&payroll.Record{}).Where("employee_id = ?", employeeID)
	if year > 0 {
		query = query.Where("year = ?", year)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*payroll.Record
	err := query.
		Order("year DESC, month DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *Repository) List(q payroll.ListQuery) ([]*payroll.Record, int64, error) {
	query := r.db.Model(&payroll.Record{}).
		Joins("JOIN employees ON employees.id = payroll_records.employee_id")

	if q.Month > 0 {
		query = query.Where("payroll_records.month = ?", q.Month)
	}
	if q.Year > 0 {
		query = query.Where("payroll_records.year = ?", q.Year)
	}
	if q.Department != "" {
		query = query.Where("employees.department = ?", q.Department)
	}
	if q.PaymentStatus != "" {
		query = query.Where("payroll_records.payment_status = ?", q.PaymentStatus)
	}
	if q.EmployeeID != nil {
		query = query.Where("payroll_records.employee_id = ?", *q.EmployeeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows, err := query.
		Select("payroll_records.*, employees.first_name || ' ' || employees.last_name AS employee_name, employees.department AS department").
		Order("payroll_records.year DESC, payroll_records.month DESC, employee_name").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Rows()
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*payroll.Record
	for rows.Next() {
		var rec payroll.Record
		if err := r.db.ScanRows(rows, &rec); err != nil {
			return nil, 0, err
		}
		records = append(records, &rec)
	}
	return records, total, rows.Err()
}

func (r *Repository) Stats(month, year int) (payroll.Stats, error) {
	stats := payroll.Stats{
		Month:            month,
		Year:             year,
		ByPaymentStatus:  make(map[string]payroll.StatusStat),
		DepartmentTotals: make(map[string]float64),
	}

	rows, err := r.db.Model(&payroll.Record{}).
		Select("payment_status, COUNT(*), COALESCE(SUM(net_salary), 0)").
		Where("month = ? AND year = ?", month, year).
		Group("payment_status").
		Rows()
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var stat payroll.StatusStat
		if err := rows.Scan(&status, &stat.Count, &stat.NetTotal); err != nil {
			return stats, err
		}
		stats.ByPaymentStatus[status] = stat
		stats.TotalNetPay += stat.NetTotal
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	deptRows, err := r.db.Model(&payroll.Record{}).
		Select("employees.department, COALESCE(SUM(payroll_records.net_salary), 0)").
		Joins("JOIN employees ON employees.id = payroll_records.employee_id").
		Where("payroll_records.month = ? AND payroll_records.year = ?", month, year).
		Group("employees.department").
		Rows()
	if err != nil {
		return stats, err
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var department string
		var total float64
		if err := deptRows.Scan(&department, &total); err != nil {
			return stats, err
		}
		stats.DepartmentTotals[department] = total
	}
	return stats, deptRows.Err()
}

// WorkedDays counts the Present and Half-day attendance records inside the
// period's calendar month.
func (r *Repository) WorkedDays(employeeID int64, month, year int) (int, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*) FROM attendance_records
		WHERE employee_id = ?
		  AND status IN ('Present', 'Half-day')
		  AND date >= ? AND date < ?`,
		employeeID,
		monthStart(month, year),
		monthStart(month, year).AddDate(0, 1, 0)).
		Scan(&count).Error
	return int(count), err
}

// ActiveEmployees lists the employees included in a batch run.
func (r *Repository) ActiveEmployees() ([]payroll.ActiveEmployee, error) {
	rows, err := r.db.Raw(`
		SELECT id, first_name || ' ' || last_name
		FROM employees
		WHERE status IN ('Active', 'On Leave')
		ORDER BY id`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []payroll.ActiveEmployee
	for rows.Next() {
		var emp payroll.ActiveEmployee
		if err := rows.Scan(&emp.ID, &emp.Name); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (r *Repository) EmployeeIDByUserID(userID int64) (int64, error) {
	var id int64
	row := r.db.Raw(`SELECT id FROM employees WHERE user_id = ?`, userID).Row()
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) EmployeeExists(employeeID int64) (bool, error) {
	var count int64
	err := r.db.Raw(`SELECT COUNT(*) FROM employees WHERE id = ?`, employeeID).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
