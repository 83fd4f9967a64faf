package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/dto"
	"github.com/noah-isme/suitetest-api/internal/grading"
	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/observability"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

const alreadySubmittedMessage = "You have already submitted this test."

// SubmissionService grades and records final submissions.
type SubmissionService interface {
	Submit(ctx context.Context, actor Actor, testID uint, req dto.SubmitRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	repo     repository.SubmissionRepository
	notifier CompletionDispatcher
	cache    *ResultsCache
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSubmissionService constructs the submission engine. notifier may be nil.
func NewSubmissionService(repo repository.SubmissionRepository, notifier CompletionDispatcher, cache *ResultsCache, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repo:     repo,
		notifier: notifier,
		cache:    cache,
		logger:   logger.With().Str("component", "submission_service").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit grades the answers and records the result exactly once per candidate
// and test. All writes share one transaction.
func (s *submissionService) Submit(ctx context.Context, actor Actor, testID uint, req dto.SubmitRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/suitetest-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.submit",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int64("submission.test_id", int64(testID)),
			attribute.Int64("submission.candidate_id", int64(actor.ID)),
		),
	)
	defer span.End()

	if req.Answers == nil {
		err := ValidationError("Answers are required")
		s.countOutcome(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	var (
		summary grading.Summary
		test    models.Test
	)
	finishedAt := s.now()

	err := s.repo.WithinTransaction(ctx, func(store repository.SubmissionStore) error {
		submitted, err := store.ResultExists(actor.ID, testID)
		if err != nil {
			return err
		}
		if submitted {
			return ForbiddenError(alreadySubmittedMessage)
		}

		test, err = store.GetTest(testID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("Test not found")
			}
			return err
		}

		questions, err := store.ListQuestions(testID)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return ValidationError("No questions found for this test")
		}

		state, err := store.GetProgress(actor.ID, testID)
		if err != nil {
			return err
		}
		startTime := finishedAt
		if state != nil {
			startTime = state.StartTime
		}

		summary = grading.Grade(questions, req.Answers)

		answers := make([]models.Answer, 0, len(summary.Outcomes))
		for _, outcome := range summary.Outcomes {
			answers = append(answers, models.Answer{
				CandidateID: actor.ID,
				QuestionID:  outcome.QuestionID,
				Answer:      outcome.Answer,
				IsCorrect:   outcome.IsCorrect,
			})
		}
		if err := store.CreateAnswers(answers); err != nil {
			return err
		}

		result := models.Result{
			CandidateID:    actor.ID,
			TestID:         testID,
			TotalQuestions: summary.TotalQuestions,
			CorrectAnswers: summary.CorrectAnswers,
			Score:          summary.Score,
			Remarks:        summary.Remarks,
			TakenAt:        startTime,
			FinishedAt:     finishedAt,
		}
		if err := store.CreateResult(&result); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ForbiddenError(alreadySubmittedMessage)
			}
			return err
		}

		if state != nil {
			return store.CompleteProgress(state.ID, finishedAt, summary.Score)
		}

		score := summary.Score
		endTime := finishedAt
		return store.CreateProgress(&models.CandidateTest{
			CandidateID: actor.ID,
			TestID:      testID,
			StartTime:   startTime,
			Status:      models.ProgressStatusCompleted,
			EndTime:     &endTime,
			Score:       &score,
		})
	})
	s.countOutcome(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).String())
		if KindOf(err) == KindInternal {
			s.logger.Error().Err(err).Uint("test_id", testID).Uint("candidate_id", actor.ID).Msg("submission transaction failed")
		}
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionScores().Observe(float64(summary.Score))
	span.SetAttributes(attribute.Int("submission.score", summary.Score))
	s.cache.Invalidate(ctx, testID)

	if s.notifier != nil {
		s.notifier.Notify(CompletionEvent{
			CandidateID: actor.ID,
			TestID:      testID,
			TestTitle:   test.Title,
			Stats: CompletionStats{
				Score:          summary.Score,
				TotalQuestions: summary.TotalQuestions,
				CorrectAnswers: summary.CorrectAnswers,
				Remarks:        summary.Remarks,
			},
			CompletedAt: finishedAt,
		})
	}

	return dto.SubmissionResponse{
		Score:          summary.Score,
		TotalQuestions: summary.TotalQuestions,
		CorrectAnswers: summary.CorrectAnswers,
		Remarks:        summary.Remarks,
	}, nil
}

func (s *submissionService) countOutcome(err error) {
	outcome := observability.OutcomeGraded
	switch {
	case err == nil:
	case KindOf(err) == KindForbidden:
		outcome = observability.OutcomeDuplicate
	case KindOf(err) == KindInternal:
		outcome = observability.OutcomeFailed
	default:
		outcome = observability.OutcomeRejected
	}
	observability.SubmissionsTotal().WithLabelValues(outcome).Inc()
}
