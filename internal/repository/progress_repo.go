package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/suitetest-api/internal/models"
)

// ProgressRepository persists candidate test state rows.
type ProgressRepository interface {
	Get(ctx context.Context, candidateID, testID uint) (*models.CandidateTest, error)
	CreateIfAbsent(ctx context.Context, state *models.CandidateTest) error
	Upsert(ctx context.Context, state *models.CandidateTest) error
	ListInProgress(ctx context.Context, candidateID uint) ([]models.CandidateTest, error)
	StatusByTest(ctx context.Context, candidateID uint, testIDs []uint) (map[uint]string, error)
	MarkCompleted(ctx context.Context, id uint) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository constructs a GORM-backed progress repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

// Get returns nil when the candidate has no state for the test.
func (r *progressRepository) Get(ctx context.Context, candidateID, testID uint) (*models.CandidateTest, error) {
	var state models.CandidateTest
	err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND test_id = ?", candidateID, testID).
		First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &state, nil
}

// CreateIfAbsent inserts the state and leaves an existing row untouched.
func (r *progressRepository) CreateIfAbsent(ctx context.Context, state *models.CandidateTest) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "candidate_id"}, {Name: "test_id"}},
			DoNothing: true,
		}).
		Create(state).Error
}

// Upsert inserts the state or refreshes the saved answers, time remaining and
// status of the existing row. start_time is never overwritten.
func (r *progressRepository) Upsert(ctx context.Context, state *models.CandidateTest) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "candidate_id"}, {Name: "test_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"saved_answers", "time_remaining", "status", "updated_at"}),
		}).
		Create(state).Error
}

func (r *progressRepository) ListInProgress(ctx context.Context, candidateID uint) ([]models.CandidateTest, error) {
	var states []models.CandidateTest
	if err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND status = ?", candidateID, models.ProgressStatusInProgress).
		Order("start_time DESC, id DESC").
		Find(&states).Error; err != nil {
		return nil, err
	}

	return states, nil
}

func (r *progressRepository) MarkCompleted(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.CandidateTest{}).
		Where("id = ?", id).
		Update("status", models.ProgressStatusCompleted).Error
}

// StatusByTest maps each of the given tests the candidate has a state for to its status.
func (r *progressRepository) StatusByTest(ctx context.Context, candidateID uint, testIDs []uint) (map[uint]string, error) {
	statuses := make(map[uint]string)
	if len(testIDs) == 0 {
		return statuses, nil
	}

	var states []models.CandidateTest
	if err := r.db.WithContext(ctx).
		Select("test_id", "status").
		Where("candidate_id = ? AND test_id IN ?", candidateID, testIDs).
		Find(&states).Error; err != nil {
		return nil, err
	}

	for _, state := range states {
		statuses[state.TestID] = state.Status
	}
	return statuses, nil
}
