package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/dto"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

// ResultService reports submitted results to authors and candidates.
type ResultService interface {
	ListByTest(ctx context.Context, testID uint, actor Actor) ([]repository.ResultRow, error)
	Review(ctx context.Context, testID uint, candidateID *uint, actor Actor) (dto.ReviewResponse, error)
}

type resultService struct {
	tests   repository.TestRepository
	results repository.ResultRepository
	cache   *ResultsCache
	logger  zerolog.Logger
}

// NewResultService constructs the reporting service. cache may be nil.
func NewResultService(tests repository.TestRepository, results repository.ResultRepository, cache *ResultsCache, logger zerolog.Logger) ResultService {
	return &resultService{
		tests:   tests,
		results: results,
		cache:   cache,
		logger:  logger.With().Str("component", "result_service").Logger(),
	}
}

func (s *resultService) ListByTest(ctx context.Context, testID uint, actor Actor) ([]repository.ResultRow, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("Test not found")
		}
		return nil, err
	}
	if test.CreatedBy != actor.ID && !actor.IsAdmin() {
		return nil, ForbiddenError("Unauthorized")
	}

	if rows, ok := s.cache.Get(ctx, testID); ok {
		s.logger.Debug().Uint("test_id", testID).Msg("results cache hit")
		return rows, nil
	}

	rows, err := s.results.ListByTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, testID, rows)
	return rows, nil
}

// Review defaults candidateID to the caller.
func (s *resultService) Review(ctx context.Context, testID uint, candidateID *uint, actor Actor) (dto.ReviewResponse, error) {
	target := actor.ID
	if candidateID != nil {
		target = *candidateID
	}

	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, NotFoundError("Test not found")
		}
		return dto.ReviewResponse{}, err
	}

	if !actor.IsAdmin() && test.CreatedBy != actor.ID && target != actor.ID {
		return dto.ReviewResponse{}, ForbiddenError("Unauthorized")
	}

	result, err := s.results.Get(ctx, target, testID)
	if err != nil {
		return dto.ReviewResponse{}, err
	}
	if result == nil {
		return dto.ReviewResponse{}, NotFoundError("No results found for this test")
	}

	rows, err := s.results.ReviewQuestions(ctx, testID, target)
	if err != nil {
		return dto.ReviewResponse{}, err
	}

	return dto.NewReviewResponse(test, *result, rows), nil
}
