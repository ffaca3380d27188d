package attendance

import (
	"database/sql"
	"errors"
	"time"

	"github.com/dayflow-hq/dayflow/internal/attendance"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(rec *attendance.Record) error {
	return r.db.Create(rec).Error
}

func (r *Repository) GetByID(id int64) (*attendance.Record, error) {
	var rec attendance.Record
	if err := r.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) GetByEmployeeAndDate(employeeID int64, date time.Time) (*attendance.Record, error) {
	var rec attendance.Record
	err := r.db.
		Where("employee_id = ? AND date = ?", employeeID, date).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) Update(rec *attendance.Record) error {
	return r.db.Model(rec).Select("*").Omit("id", "created_at").Updates(rec).Error
}

func (r *Repository) ListByEmployee(employeeID int64, from, to *time.Time, page, limit int) ([]*attendance.Record, int64, error) {
	query := r.db.Model(&attendance.Record{}).Where("employee_id = ?", employeeID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*attendance.Record
	err := query.
		Order("date DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// List joins the employee row so admin views can show names and filter by
// department.
func (r *Repository) List(q attendance.ListQuery) ([]*attendance.Record, int64, error) {
	query := r.db.Model(&attendance.Record{}).
		Joins("JOIN employees ON employees.id = attendance_records.employee_id")

	if q.From != nil {
		query = query.Where("attendance_records.date >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("attendance_records.date <= ?", *q.To)
	}
	if q.Department != "" {
		query = query.Where("employees.department = ?", q.Department)
	}
	if q.Status != "" {
		query = query.Where("attendance_records.status = ?", q.Status)
	}
	if q.EmployeeID != nil {
		query = query.Where("attendance_records.employee_id = ?", *q.EmployeeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows, err := query.
		Select("attendance_records.*, employees.first_name || ' ' || employees.last_name AS employee_name, employees.department AS department").
		Order("attendance_records.date DESC, employee_name").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Rows()
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*attendance.Record
	for rows.Next() {
		var rec attendance.Record
		if err := r.db.ScanRows(rows, &rec); err != nil {
			return nil, 0, err
		}
		records = append(records, &rec)
	}
	return records, total, rows.Err()
}

func (r *Repository) EmployeeStats(employeeID int64, from, to time.Time) (attendance.MonthStats, error) {
	var stats attendance.MonthStats
	row := r.db.Model(&attendance.Record{}).
		Select(`
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN is_late THEN 1 END),
			COALESCE(SUM(working_hours), 0)`,
			attendance.StatusPresent, attendance.StatusHalfDay,
			attendance.StatusAbsent, attendance.StatusLeave).
		Where("employee_id = ? AND date BETWEEN ? AND ?", employeeID, from, to).
		Row()
	err := row.Scan(&stats.PresentDays, &stats.HalfDays, &stats.AbsentDays,
		&stats.LeaveDays, &stats.LateDays, &stats.TotalWorkingHours)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return attendance.MonthStats{}, err
	}
	return stats, nil
}

func (r *Repository) Overview(from, to time.Time) (attendance.OverviewStats, error) {
	stats := attendance.OverviewStats{
		StatusCounts:     make(map[string]int64),
		DepartmentCounts: make(map[string]map[string]int64),
	}

	rows, err := r.db.Model(&attendance.Record{}).
		Select("status, COUNT(*)").
		Where("date BETWEEN ? AND ?", from, to).
		Group("status").
		Rows()
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.StatusCounts[status] = count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	deptRows, err := r.db.Model(&attendance.Record{}).
		Select("employees.department, attendance_records.status, COUNT(*)").
		Joins("JOIN employees ON employees.id = attendance_records.employee_id").
		Where("attendance_records.date BETWEEN ? AND ?", from, to).
		Group("employees.department, attendance_records.status").
		Rows()
	if err != nil {
		return stats, err
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var department, status string
		var count int64
		if err := deptRows.Scan(&department, &status, &count); err != nil {
			return stats, err
		}
		if stats.DepartmentCounts[department] == nil {
			stats.DepartmentCounts[department] = make(map[string]int64)
		}
		stats.DepartmentCounts[department][status] = count
	}
	if err := deptRows.Err(); err != nil {
		return stats, err
	}

	err = r.db.Model(&attendance.Record{}).
		Where("date BETWEEN ? AND ? AND is_late", from, to).
		Count(&stats.LateCount).Error
	return stats, err
}

// EmployeeIDByUserID resolves the profile owned by a login account.
func (r *Repository) EmployeeIDByUserID(userID int64) (int64, error) {
	var id int64
	row := r.db.Raw(`SELECT id FROM employees WHERE user_id = ?`, userID).Row()
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// EmployeeIDByCode resolves a profile through the employee code on the
// users table.
func (r *Repository) EmployeeIDByCode(code string) (int64, error) {
	var id int64
	row := r.db.Raw(`
		SELECT e.id FROM employees e
		JOIN users u ON u.id = e.user_id
		WHERE u.employee_code = ?`, code).Row()
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
