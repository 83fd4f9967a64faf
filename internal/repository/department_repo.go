package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/models"
)

// DepartmentSummary is a department with usage counters.
type DepartmentSummary struct {
	ID             uint      `json:"id"`
	DepartmentName string    `json:"department_name"`
	Description    *string   `json:"description"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	UserCount      int64     `json:"user_count"`
	TestCount      int64     `json:"test_count"`
}

// DepartmentRepository persists departments.
type DepartmentRepository interface {
	List(ctx context.Context) ([]DepartmentSummary, error)
	Get(ctx context.Context, id uint) (DepartmentSummary, error)
	GetByID(ctx context.Context, id uint) (models.Department, error)
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id uint) error
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository constructs a GORM-backed department repository.
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) summaries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("departments").
		Select(`departments.*,
			(SELECT COUNT(*) FROM users WHERE users.department_id = departments.id) AS user_count,
			(SELECT COUNT(*) FROM tests WHERE tests.department_id = departments.id) AS test_count`)
}

func (r *departmentRepository) List(ctx context.Context) ([]DepartmentSummary, error) {
	departments := make([]DepartmentSummary, 0)
	if err := r.summaries(ctx).Order("departments.department_name ASC").Scan(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *departmentRepository) Get(ctx context.Context, id uint) (DepartmentSummary, error) {
	var departments []DepartmentSummary
	if err := r.summaries(ctx).Where("departments.id = ?", id).Limit(1).Scan(&departments).Error; err != nil {
		return DepartmentSummary{}, err
	}
	if len(departments) == 0 {
		return DepartmentSummary{}, gorm.ErrRecordNotFound
	}
	return departments[0], nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id uint) (models.Department, error) {
	var department models.Department
	if err := r.db.WithContext(ctx).First(&department, id).Error; err != nil {
		return models.Department{}, err
	}
	return department, nil
}

// ExistsByName compares names case-insensitively, ignoring excludeID when non-zero.
func (r *departmentRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Department{}).
		Where("LOWER(department_name) = LOWER(?)", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *departmentRepository) Create(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *departmentRepository) Update(ctx context.Context, department *models.Department) error {
	result := r.db.WithContext(ctx).
		Model(&models.Department{}).
		Where("id = ?", department.ID).
		Updates(map[string]interface{}{
			"department_name": department.DepartmentName,
			"description":     department.Description,
			"is_active":       department.IsActive,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete unassigns users and tests from the department before removing it.
func (r *departmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("department_id = ?", id).Update("department_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Test{}).Where("department_id = ?", id).Update("department_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Department{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
