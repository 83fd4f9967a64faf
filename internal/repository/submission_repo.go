package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/models"
)

// SubmissionStore exposes the reads and writes a submission performs. Every
// method runs on the transaction the store was created for.
type SubmissionStore interface {
	ResultExists(candidateID, testID uint) (bool, error)
	GetTest(testID uint) (models.Test, error)
	ListQuestions(testID uint) ([]models.Question, error)
	GetProgress(candidateID, testID uint) (*models.CandidateTest, error)
	CreateAnswers(answers []models.Answer) error
	CreateResult(result *models.Result) error
	CompleteProgress(stateID uint, endTime time.Time, score int) error
	CreateProgress(state *models.CandidateTest) error
}

// SubmissionRepository runs submissions atomically.
type SubmissionRepository interface {
	WithinTransaction(ctx context.Context, fn func(store SubmissionStore) error) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository constructs a GORM-backed submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
func (r *submissionRepository) WithinTransaction(ctx context.Context, fn func(store SubmissionStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&submissionStore{tx: tx})
	})
}

type submissionStore struct {
	tx *gorm.DB
}

func (s *submissionStore) ResultExists(candidateID, testID uint) (bool, error) {
	var count int64
	if err := s.tx.Model(&models.Result{}).
		Where("candidate_id = ? AND test_id = ?", candidateID, testID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *submissionStore) GetTest(testID uint) (models.Test, error) {
	var test models.Test
	if err := s.tx.First(&test, testID).Error; err != nil {
		return models.Test{}, err
	}
	return test, nil
}

func (s *submissionStore) ListQuestions(testID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := s.tx.Where("test_id = ?", testID).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *submissionStore) GetProgress(candidateID, testID uint) (*models.CandidateTest, error) {
	var state models.CandidateTest
	err := s.tx.Where("candidate_id = ? AND test_id = ?", candidateID, testID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *submissionStore) CreateAnswers(answers []models.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return s.tx.Create(&answers).Error
}

func (s *submissionStore) CreateResult(result *models.Result) error {
	return s.tx.Create(result).Error
}

// CompleteProgress finalizes the state and clears the in-flight fields.
func (s *submissionStore) CompleteProgress(stateID uint, endTime time.Time, score int) error {
	return s.tx.Model(&models.CandidateTest{}).
		Where("id = ?", stateID).
		Updates(map[string]interface{}{
			"status":         models.ProgressStatusCompleted,
			"end_time":       endTime,
			"score":          score,
			"saved_answers":  nil,
			"time_remaining": nil,
		}).Error
}

func (s *submissionStore) CreateProgress(state *models.CandidateTest) error {
	return s.tx.Create(state).Error
}
