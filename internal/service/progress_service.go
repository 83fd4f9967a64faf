package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/dto"
	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

// activeGrace is how long an untouched state must exist before it counts as active.
const activeGrace = 5 * time.Second

// ProgressService tracks candidates while they take a test.
type ProgressService interface {
	BeginOrResume(ctx context.Context, actor Actor, testID uint) (dto.TestResponse, error)
	SaveProgress(ctx context.Context, actor Actor, testID uint, req dto.SaveProgressRequest) (int, error)
	ActiveTest(ctx context.Context, actor Actor) (*dto.ActiveTestResponse, error)
	Status(ctx context.Context, actor Actor, testID uint) (dto.TestStatusResponse, error)
}

type progressService struct {
	tests    repository.TestRepository
	users    repository.UserRepository
	progress repository.ProgressRepository
	results  repository.ResultRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewProgressService constructs the progress tracker.
func NewProgressService(tests repository.TestRepository, users repository.UserRepository, progress repository.ProgressRepository, results repository.ResultRepository, logger zerolog.Logger) ProgressService {
	return &progressService{
		tests:    tests,
		users:    users,
		progress: progress,
		results:  results,
		logger:   logger.With().Str("component", "progress_service").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *progressService) BeginOrResume(ctx context.Context, actor Actor, testID uint) (dto.TestResponse, error) {
	submitted, err := s.results.Exists(ctx, actor.ID, testID)
	if err != nil {
		return dto.TestResponse{}, err
	}
	if submitted {
		return dto.TestResponse{}, ForbiddenError("You have already completed this test.")
	}

	test, err := s.tests.GetWithQuestions(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, NotFoundError("Test not found")
		}
		return dto.TestResponse{}, err
	}

	if test.TargetRole != actor.Role {
		return dto.TestResponse{}, ForbiddenError(fmt.Sprintf("This test is only available for %ss", test.TargetRole))
	}

	if actor.Role == models.RoleCandidate && test.DepartmentID != nil {
		user, err := s.users.GetByID(ctx, actor.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, err
		}
		if err != nil || user.DepartmentID == nil || *user.DepartmentID != *test.DepartmentID {
			return dto.TestResponse{}, ForbiddenError("This test is not available for your department")
		}
	}

	remaining := test.TimeLimit * 60
	state := models.CandidateTest{
		CandidateID:   actor.ID,
		TestID:        testID,
		StartTime:     s.now(),
		TimeRemaining: &remaining,
		Status:        models.ProgressStatusInProgress,
	}
	if err := s.progress.CreateIfAbsent(ctx, &state); err != nil {
		return dto.TestResponse{}, err
	}

	return dto.NewTestDetailResponse(test, false), nil
}

func (s *progressService) SaveProgress(ctx context.Context, actor Actor, testID uint, req dto.SaveProgressRequest) (int, error) {
	if req.TimeRemaining == nil || *req.TimeRemaining < 0 {
		return 0, ValidationError("Invalid time_remaining value")
	}

	if _, err := s.tests.GetByID(ctx, testID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, NotFoundError("Test not found")
		}
		return 0, err
	}

	submitted, err := s.results.Exists(ctx, actor.ID, testID)
	if err != nil {
		return 0, err
	}
	if submitted {
		return 0, ForbiddenError("You have already submitted this test.")
	}

	remaining := int(*req.TimeRemaining)
	state := models.CandidateTest{
		CandidateID:   actor.ID,
		TestID:        testID,
		StartTime:     s.now(),
		TimeRemaining: &remaining,
		SavedAnswers:  savedAnswersText(req.Answers),
		Status:        models.ProgressStatusInProgress,
	}
	if err := s.progress.Upsert(ctx, &state); err != nil {
		return 0, err
	}

	return remaining, nil
}

func (s *progressService) ActiveTest(ctx context.Context, actor Actor) (*dto.ActiveTestResponse, error) {
	states, err := s.progress.ListInProgress(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var active *models.CandidateTest
	for i := range states {
		if states[i].HasSavedAnswers() || now.Sub(states[i].StartTime) > activeGrace {
			active = &states[i]
			break
		}
	}
	if active == nil {
		return nil, nil
	}

	submitted, err := s.results.Exists(ctx, actor.ID, active.TestID)
	if err != nil {
		return nil, err
	}
	if submitted {
		if err := s.progress.MarkCompleted(ctx, active.ID); err != nil {
			s.logger.Warn().Err(err).Uint("test_id", active.TestID).Msg("failed to close stale progress")
		}
		return nil, nil
	}

	test, err := s.tests.GetByID(ctx, active.TestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &dto.ActiveTestResponse{
		TestID:        active.TestID,
		Title:         test.Title,
		StartTime:     active.StartTime,
		TimeRemaining: active.TimeRemaining,
		SavedAnswers:  dto.SavedAnswersJSON(*active),
		TestType:      test.TestType,
	}, nil
}

func (s *progressService) Status(ctx context.Context, actor Actor, testID uint) (dto.TestStatusResponse, error) {
	result, err := s.results.Get(ctx, actor.ID, testID)
	if err != nil {
		return dto.TestStatusResponse{}, err
	}
	if result != nil {
		return dto.TestStatusResponse{
			Status: dto.TestStatusCompleted,
			Result: &dto.StatusResult{ID: result.ID, Score: result.Score, TakenAt: result.TakenAt},
		}, nil
	}

	state, err := s.progress.Get(ctx, actor.ID, testID)
	if err != nil {
		return dto.TestStatusResponse{}, err
	}
	if state != nil && state.Status == models.ProgressStatusInProgress {
		startTime := state.StartTime
		return dto.TestStatusResponse{
			Status:        dto.TestStatusInProgress,
			StartTime:     &startTime,
			TimeRemaining: state.TimeRemaining,
			SavedAnswers:  dto.SavedAnswersJSON(*state),
		}, nil
	}

	return dto.TestStatusResponse{Status: dto.TestStatusNotStarted}, nil
}

func savedAnswersText(raw []byte) *string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil
	}
	return &text
}
