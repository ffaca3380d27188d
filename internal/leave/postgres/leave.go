package leave

import (
	"errors"
	"time"

	"github.com/dayflow-hq/dayflow/internal/leave"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(req *leave.Request) error {
	return r.db.Create(req).Error
}

func (r *Repository) GetByID(id int64) (*leave.Request, error) {
	var req leave.Request
	if err := r.db.First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *Repository) Update(req *leave.Request) error {
	return r.db.Model(req).Select("*").Omit("id", "created_at").Updates(req).Error
}

func (r *Repository) ListByEmployee(employeeID int64, status string, page, limit int) ([]*leave.Request, int64, error) {
	query := r.db.Model(&leave.Request{}).Where("employee_id = ?", employeeID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []*leave.Request
	err := query.
		Order("start_date DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *Repository) List(q leave.ListQuery) ([]*leave.Request, int64, error) {
	query := r.db.Model(&leave.Request{}).
		Joins("JOIN employees ON employees.id = leave_requests.employee_id")

	if q.Status != "" {
		query = query.Where("leave_requests.status = ?", q.Status)
	}
	if q.LeaveType != "" {
		query = query.Where("leave_requests.leave_type = ?", q.LeaveType)
	}
	if q.Department != "" {
		query = query.Where("employees.department = ?", q.Department)
	}
	if q.EmployeeID != nil {
		query = query.Where("leave_requests.employee_id = ?", *q.EmployeeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows, err := query.
		Select("leave_requests.*, employees.first_name || ' ' || employees.last_name AS employee_name, employees.department AS department").
		Order("leave_requests.created_at DESC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Rows()
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []*leave.Request
	for rows.Next() {
		var req leave.Request
		if err := r.db.ScanRows(rows, &req); err != nil {
			return nil, 0, err
		}
		requests = append(requests, &req)
	}
	return requests, total, rows.Err()
}

// ApprovedUsageByType sums the approved days per leave type for requests
// starting in the given year.
func (r *Repository) ApprovedUsageByType(employeeID int64, year int) (map[string]float64, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)

	rows, err := r.db.Model(&leave.Request{}).
		Select("leave_type, COALESCE(SUM(number_of_days), 0)").
		Where("employee_id = ? AND status = ? AND start_date BETWEEN ? AND ?",
			employeeID, leave.StatusApproved, start, end).
		Group("leave_type").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := make(map[string]float64)
	for rows.Next() {
		var leaveType string
		var days float64
		if err := rows.Scan(&leaveType, &days); err != nil {
			return nil, err
		}
		usage[leaveType] = days
	}
	return usage, rows.Err()
}

func (r *Repository) Stats(from, to time.Time) (leave.Stats, error) {
	stats := leave.Stats{
		StatusCounts: make(map[string]int64),
		TypeDays:     make(map[string]float64),
	}

	rows, err := r.db.Model(&leave.Request{}).
		Select("status, COUNT(*)").
		Where("created_at BETWEEN ? AND ?", from, to).
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

	typeRows, err := r.db.Model(&leave.Request{}).
		Select("leave_type, COALESCE(SUM(number_of_days), 0)").
		Where("status = ? AND created_at BETWEEN ? AND ?", leave.StatusApproved, from, to).
		Group("leave_type").
		Rows()
	if err != nil {
		return stats, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var leaveType string
		var days float64
		if err := typeRows.Scan(&leaveType, &days); err != nil {
			return stats, err
		}
		stats.TypeDays[leaveType] = days
	}
	if err := typeRows.Err(); err != nil {
		return stats, err
	}

	err = r.db.Model(&leave.Request{}).
		Where("status = ?", leave.StatusPending).
		Count(&stats.PendingCount).Error
	return stats, err
}

// OnLeave lists the approved requests whose interval contains the given
// day, with the employee name joined in.
func (r *Repository) OnLeave(date time.Time) ([]*leave.Request, error) {
	rows, err := r.db.Model(&leave.Request{}).
		Select("leave_requests.*, employees.first_name || ' ' || employees.last_name AS employee_name, employees.department AS department").
		Joins("JOIN employees ON employees.id = leave_requests.employee_id").
		Where("leave_requests.status = ? AND leave_requests.start_date <= ? AND leave_requests.end_date >= ?",
			leave.StatusApproved, date, date).
		Order("leave_requests.start_date").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*leave.Request
	for rows.Next() {
		var req leave.Request
		if err := r.db.ScanRows(rows, &req); err != nil {
			return nil, err
		}
		requests = append(requests, &req)
	}
	return requests, rows.Err()
}
