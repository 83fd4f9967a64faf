package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// QuestionPoolFilter narrows the question pool to the tests a caller may browse.
// CreatedBy and DepartmentID are alternatives when both are set.
type QuestionPoolFilter struct {
	DepartmentName string
	TargetRole     string
	CreatedBy      *uint
	DepartmentID   *uint
}

// PooledQuestion is a question annotated with the test it belongs to.
type PooledQuestion struct {
	ID             uint
	TestID         uint
	QuestionText   string
	QuestionType   string
	Options        *string
	CorrectAnswer  *string
	Explanation    *string
	CreatedAt      time.Time
	TestTitle      string
	TestType       string
	TargetRole     string
	DepartmentID   *uint
	DepartmentName *string
}

// QuestionRepository reads questions across tests.
type QuestionRepository interface {
	ListPool(ctx context.Context, filter QuestionPoolFilter) ([]PooledQuestion, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository constructs a GORM-backed question repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) ListPool(ctx context.Context, filter QuestionPoolFilter) ([]PooledQuestion, error) {
	query := r.db.WithContext(ctx).
		Table("questions").
		Select(`questions.id, questions.test_id, questions.question_text, questions.question_type,
			questions.options, questions.correct_answer, questions.explanation, questions.created_at,
			tests.title AS test_title, tests.test_type, tests.target_role, tests.department_id,
			departments.department_name`).
		Joins("JOIN tests ON tests.id = questions.test_id").
		Joins("LEFT JOIN departments ON departments.id = tests.department_id").
		Where("tests.is_active = ?", true)

	if filter.DepartmentName != "" {
		query = query.Where("LOWER(departments.department_name) = LOWER(?)", filter.DepartmentName)
	}

	if filter.TargetRole != "" {
		query = query.Where("tests.target_role = ?", filter.TargetRole)
	}

	switch {
	case filter.CreatedBy != nil && filter.DepartmentID != nil:
		query = query.Where("tests.created_by = ? OR tests.department_id = ?", *filter.CreatedBy, *filter.DepartmentID)
	case filter.CreatedBy != nil:
		query = query.Where("tests.created_by = ?", *filter.CreatedBy)
	case filter.DepartmentID != nil:
		query = query.Where("tests.department_id = ?", *filter.DepartmentID)
	}

	questions := make([]PooledQuestion, 0)
	if err := query.Order("questions.created_at DESC, questions.id DESC").Scan(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}
