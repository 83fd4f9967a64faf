package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/models"
)

// ResultRow is a result joined with the candidate it belongs to.
type ResultRow struct {
	ID             uint      `json:"id"`
	CandidateID    uint      `json:"candidate_id"`
	TestID         uint      `json:"test_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	Score          int       `json:"score"`
	Remarks        string    `json:"remarks"`
	TakenAt        time.Time `json:"taken_at"`
	FinishedAt     time.Time `json:"finished_at"`
	CandidateName  string    `json:"candidate_name"`
	CandidateEmail string    `json:"candidate_email"`
}

// ReviewRow is a question paired with the answer a candidate recorded for it.
type ReviewRow struct {
	QuestionID    uint
	QuestionText  string
	QuestionType  string
	Options       *string
	CorrectAnswer *string
	Explanation   *string
	Answer        *string
	IsCorrect     *bool
}

// ResultRepository reads submitted results.
type ResultRepository interface {
	Exists(ctx context.Context, candidateID, testID uint) (bool, error)
	Get(ctx context.Context, candidateID, testID uint) (*models.Result, error)
	ListByTest(ctx context.Context, testID uint) ([]ResultRow, error)
	SubmittedTestIDs(ctx context.Context, candidateID uint, testIDs []uint) (map[uint]bool, error)
	ReviewQuestions(ctx context.Context, testID, candidateID uint) ([]ReviewRow, error)
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository constructs a GORM-backed result repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Exists(ctx context.Context, candidateID, testID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("candidate_id = ? AND test_id = ?", candidateID, testID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// Get returns nil when no result has been recorded.
func (r *resultRepository) Get(ctx context.Context, candidateID, testID uint) (*models.Result, error) {
	var result models.Result
	err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND test_id = ?", candidateID, testID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *resultRepository) ListByTest(ctx context.Context, testID uint) ([]ResultRow, error) {
	rows := make([]ResultRow, 0)
	if err := r.db.WithContext(ctx).
		Table("results").
		Select("results.*, users.name AS candidate_name, users.email AS candidate_email").
		Joins("JOIN users ON users.id = results.candidate_id").
		Where("results.test_id = ?", testID).
		Order("results.taken_at DESC, results.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *resultRepository) ReviewQuestions(ctx context.Context, testID, candidateID uint) ([]ReviewRow, error) {
	rows := make([]ReviewRow, 0)
	if err := r.db.WithContext(ctx).
		Table("questions").
		Select(`questions.id AS question_id, questions.question_text, questions.question_type,
			questions.options, questions.correct_answer, questions.explanation,
			answers.answer, answers.is_correct`).
		Joins("LEFT JOIN answers ON answers.question_id = questions.id AND answers.candidate_id = ?", candidateID).
		Where("questions.test_id = ?", testID).
		Order("questions.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// SubmittedTestIDs reports which of the given tests the candidate has a result for.
func (r *resultRepository) SubmittedTestIDs(ctx context.Context, candidateID uint, testIDs []uint) (map[uint]bool, error) {
	submitted := make(map[uint]bool)
	if len(testIDs) == 0 {
		return submitted, nil
	}

	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("candidate_id = ? AND test_id IN ?", candidateID, testIDs).
		Pluck("test_id", &ids).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		submitted[id] = true
	}
	return submitted, nil
}
