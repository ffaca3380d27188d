package employee

import (
	"errors"
	"fmt"

	"github.com/dayflow-hq/dayflow/internal/employee"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(emp *employee.Employee) error {
	return r.db.Create(emp).Error
}

func (r *Repository) GetByID(id int64) (*employee.Employee, error) {
	var emp employee.Employee
	if err := r.db.First(&emp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &emp, nil
}

func (r *Repository) GetByUserID(userID int64) (*employee.Employee, error) {
	var emp employee.Employee
	if err := r.db.First(&emp, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &emp, nil
}

func (r *Repository) List(q employee.ListEmployeesQuery) ([]*employee.Employee, int64, error) {
	query := r.db.Model(&employee.Employee{})

	if q.Department != "" {
		query = query.Where("department = ?", q.Department)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR designation LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var employees []*employee.Employee
	err := query.
		Order("first_name, last_name").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&employees).Error
	if err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

func (r *Repository) Update(emp *employee.Employee) error {
	return r.db.Model(emp).Select("*").Omit("id", "created_at").Updates(emp).Error
}

// DeleteWithUser removes the profile, its documents and its login account
// atomically.
func (r *Repository) DeleteWithUser(id, userID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&employee.Document{}, "employee_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&employee.Employee{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM users WHERE id = ?`, userID).Error
	})
}

func (r *Repository) CreateDocument(doc *employee.Document) error {
	return r.db.Create(doc).Error
}

func (r *Repository) ListDocuments(employeeID int64) ([]*employee.Document, error) {
	var docs []*employee.Document
	err := r.db.
		Where("employee_id = ?", employeeID).
		Order("uploaded_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *Repository) SetUserActive(userID int64, active bool) error {
	return r.db.Exec(`UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, active, userID).Error
}

// AdjustBalance applies a signed delta in a single statement, so concurrent
// adjustments do not lose updates. The column name comes from a fixed map
// in the service layer.
func (r *Repository) AdjustBalance(employeeID int64, column string, delta float64) error {
	result := r.db.Model(&employee.Employee{}).
		Where("id = ?", employeeID).
		UpdateColumn(column, gorm.Expr(fmt.Sprintf("%s + ?", column), delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *Repository) Recent(limit int) ([]*employee.Employee, error) {
	var employees []*employee.Employee
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *Repository) Departments() ([]string, error) {
	var departments []string
	err := r.db.Model(&employee.Employee{}).
		Distinct("department").
		Where("department <> ''").
		Order("department").
		Pluck("department", &departments).Error
	if err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *Repository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&employee.Employee{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountByDepartment() (map[string]int64, error) {
	rows, err := r.db.Model(&employee.Employee{}).
		Select("department, COUNT(*) AS count").
		Group("department").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var department string
		var count int64
		if err := rows.Scan(&department, &count); err != nil {
			return nil, err
		}
		counts[department] = count
	}
	return counts, rows.Err()
}
