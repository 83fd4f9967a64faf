package service

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/dto"
	"github.com/noah-isme/suitetest-api/internal/grading"
	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

// QuestionSourceBank selects the shared question bank in ListQuestions.
const QuestionSourceBank = "question-bank"

const (
	defaultTimeLimit      = 30
	defaultMaxTabSwitches = 3
)

// TestService implements test authoring and browsing.
type TestService interface {
	Create(ctx context.Context, req dto.TestRequest, actor Actor) (uint, error)
	Update(ctx context.Context, id uint, req dto.TestRequest, actor Actor) error
	Delete(ctx context.Context, id uint, actor Actor) error
	Get(ctx context.Context, id uint, actor Actor) (dto.TestResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.TestSummaryResponse, error)
	ListAvailable(ctx context.Context, actor Actor) ([]dto.TestSummaryResponse, error)
	ListQuestions(ctx context.Context, actor Actor, source string) ([]dto.PooledQuestionResponse, error)
	Activity(ctx context.Context, id uint, actor Actor) ([]dto.ActivityResponse, error)
}

// TestServiceDeps groups the collaborators of the test service.
type TestServiceDeps struct {
	Tests     repository.TestRepository
	Questions repository.QuestionRepository
	Users     repository.UserRepository
	Progress  repository.ProgressRepository
	Results   repository.ResultRepository
	Activity  ActivityService
	Cache     *ResultsCache
}

type testService struct {
	deps      TestServiceDeps
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewTestService constructs the test authoring service.
func NewTestService(deps TestServiceDeps, validator *validator.Validate, logger zerolog.Logger) TestService {
	return &testService{
		deps:      deps,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "test_service").Logger(),
	}
}

func (s *testService) Create(ctx context.Context, req dto.TestRequest, actor Actor) (uint, error) {
	tracer := otel.Tracer("github.com/noah-isme/suitetest-api/internal/service/test")
	ctx, span := tracer.Start(ctx, "test.create")
	span.SetAttributes(attribute.Int64("test.actor_id", int64(actor.ID)))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return 0, err
	}

	test, questions, err := s.buildTest(req)
	if err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return 0, err
	}
	if len(questions) == 0 {
		span.SetStatus(codes.Error, "validation_failed")
		return 0, ValidationError("Title and at least one question are required")
	}

	test.CreatedBy = actor.ID
	test.IsActive = true

	if err := s.deps.Tests.Create(ctx, &test, questions); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "test_create_failed")
		return 0, err
	}

	span.SetAttributes(attribute.Int64("test.id", int64(test.ID)), attribute.Int("test.questions", len(questions)))
	s.record(ctx, actor, models.ActionTestCreated, test.ID, map[string]interface{}{
		"title":     test.Title,
		"questions": len(questions),
	})

	return test.ID, nil
}

func (s *testService) Update(ctx context.Context, id uint, req dto.TestRequest, actor Actor) error {
	tracer := otel.Tracer("github.com/noah-isme/suitetest-api/internal/service/test")
	ctx, span := tracer.Start(ctx, "test.update")
	span.SetAttributes(attribute.Int64("test.id", int64(id)), attribute.Int64("test.actor_id", int64(actor.ID)))
	defer span.End()

	if _, err := s.authorize(ctx, id, actor); err != nil {
		span.SetStatus(codes.Error, "unauthorized")
		return err
	}

	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return err
	}

	test, questions, err := s.buildTest(req)
	if err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return err
	}
	test.ID = id

	if err := s.deps.Tests.Update(ctx, &test, questions); err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("Test not found")
		}
		span.SetStatus(codes.Error, "test_update_failed")
		return err
	}

	s.record(ctx, actor, models.ActionTestUpdated, id, map[string]interface{}{
		"title":              test.Title,
		"questions_replaced": len(questions) > 0,
	})
	return nil
}

func (s *testService) Delete(ctx context.Context, id uint, actor Actor) error {
	tracer := otel.Tracer("github.com/noah-isme/suitetest-api/internal/service/test")
	ctx, span := tracer.Start(ctx, "test.delete")
	span.SetAttributes(attribute.Int64("test.id", int64(id)), attribute.Int64("test.actor_id", int64(actor.ID)))
	defer span.End()

	test, err := s.authorize(ctx, id, actor)
	if err != nil {
		span.SetStatus(codes.Error, "unauthorized")
		return err
	}

	if err := s.deps.Tests.Delete(ctx, id); err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("Test not found or already deleted")
		}
		span.SetStatus(codes.Error, "test_delete_failed")
		return err
	}

	s.deps.Cache.Invalidate(ctx, id)
	s.record(ctx, actor, models.ActionTestDeleted, id, map[string]interface{}{"title": test.Title})
	return nil
}

func (s *testService) Get(ctx context.Context, id uint, actor Actor) (dto.TestResponse, error) {
	if _, err := s.authorize(ctx, id, actor); err != nil {
		return dto.TestResponse{}, err
	}

	test, err := s.deps.Tests.GetWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, NotFoundError("Test not found")
		}
		return dto.TestResponse{}, err
	}

	return dto.NewTestDetailResponse(test, true), nil
}

func (s *testService) ListMine(ctx context.Context, actor Actor) ([]dto.TestSummaryResponse, error) {
	listings, err := s.deps.Tests.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TestSummaryResponse, 0, len(listings))
	for _, listing := range listings {
		responses = append(responses, dto.NewTestSummaryResponse(listing))
	}
	return responses, nil
}

func (s *testService) ListAvailable(ctx context.Context, actor Actor) ([]dto.TestSummaryResponse, error) {
	var departmentID *uint
	if actor.Role == models.RoleCandidate {
		user, err := s.deps.Users.GetByID(ctx, actor.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err != nil || user.DepartmentID == nil {
			return []dto.TestSummaryResponse{}, nil
		}
		departmentID = user.DepartmentID
	}

	listings, err := s.deps.Tests.ListAvailable(ctx, actor.Role, departmentID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(listings))
	for _, listing := range listings {
		ids = append(ids, listing.Test.ID)
	}

	submitted, err := s.deps.Results.SubmittedTestIDs(ctx, actor.ID, ids)
	if err != nil {
		return nil, err
	}
	statuses, err := s.deps.Progress.StatusByTest(ctx, actor.ID, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TestSummaryResponse, 0, len(listings))
	for _, listing := range listings {
		response := dto.NewTestSummaryResponse(listing)
		completed := submitted[listing.Test.ID]
		inProgress := statuses[listing.Test.ID] == models.ProgressStatusInProgress
		response.IsCompleted = &completed
		response.IsInProgress = &inProgress
		responses = append(responses, response)
	}
	return responses, nil
}

func (s *testService) ListQuestions(ctx context.Context, actor Actor, source string) ([]dto.PooledQuestionResponse, error) {
	if source == QuestionSourceBank {
		rows, err := s.deps.Questions.ListPool(ctx, repository.QuestionPoolFilter{DepartmentName: models.QuestionBankDepartment})
		if err != nil {
			return nil, err
		}
		return dto.NewPooledQuestionResponseSlice(rows), nil
	}

	user, err := s.deps.Users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("User not found")
		}
		return nil, err
	}

	var filter repository.QuestionPoolFilter
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleEmployer:
		filter.CreatedBy = &user.ID
		filter.DepartmentID = user.DepartmentID
	default:
		if user.DepartmentID == nil {
			return []dto.PooledQuestionResponse{}, nil
		}
		filter.TargetRole = models.RoleCandidate
		filter.DepartmentID = user.DepartmentID
	}

	rows, err := s.deps.Questions.ListPool(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewPooledQuestionResponseSlice(rows), nil
}

func (s *testService) Activity(ctx context.Context, id uint, actor Actor) ([]dto.ActivityResponse, error) {
	if _, err := s.authorize(ctx, id, actor); err != nil {
		return nil, err
	}

	entries, err := s.deps.Activity.ListForTest(ctx, id, 50)
	if err != nil {
		return nil, err
	}
	return dto.NewActivityResponseSlice(entries), nil
}

// authorize loads the test and checks the actor owns it or is an admin.
func (s *testService) authorize(ctx context.Context, id uint, actor Actor) (models.Test, error) {
	test, err := s.deps.Tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Test{}, NotFoundError("Test not found")
		}
		return models.Test{}, err
	}

	if test.CreatedBy != actor.ID && !actor.IsAdmin() {
		return models.Test{}, ForbiddenError("Unauthorized")
	}
	return test, nil
}

// buildTest applies defaults and business rules shared by create and update.
func (s *testService) buildTest(req dto.TestRequest) (models.Test, []models.Question, error) {
	title := plainText(s.sanitizer, req.Title)
	if title == "" {
		return models.Test{}, nil, ValidationError("Title and at least one question are required")
	}

	test := models.Test{
		Title:             title,
		Description:       s.sanitizeOptional(req.Description),
		TimeLimit:         defaultTimeLimit,
		PDFURL:            trimOptional(req.PDFURL),
		GoogleDriveID:     trimOptional(req.GoogleDriveID),
		ThumbnailURL:      trimOptional(req.ThumbnailURL),
		TestType:          models.TestTypeStandard,
		TargetRole:        models.RoleCandidate,
		EnableProctoring:  boolOrDefault(req.EnableProctoring, true),
		MaxTabSwitches:    defaultMaxTabSwitches,
		AllowCopyPaste:    boolOrDefault(req.AllowCopyPaste, false),
		RequireFullscreen: boolOrDefault(req.RequireFullscreen, true),
	}
	if req.TimeLimit != nil && *req.TimeLimit > 0 {
		test.TimeLimit = *req.TimeLimit
	}
	if req.TestType != "" {
		test.TestType = req.TestType
	}
	if req.TargetRole != "" {
		test.TargetRole = req.TargetRole
	}
	if req.MaxTabSwitches != nil {
		test.MaxTabSwitches = *req.MaxTabSwitches
	}

	if test.TestType == models.TestTypePDFBased && test.PDFURL == nil {
		return models.Test{}, nil, ValidationError("PDF URL is required for PDF-based tests")
	}

	if test.TargetRole == models.RoleCandidate {
		if req.DepartmentID == nil || *req.DepartmentID == 0 {
			return models.Test{}, nil, ValidationError("Department is required for candidate tests")
		}
		test.DepartmentID = req.DepartmentID
	}

	questions := make([]models.Question, 0, len(req.Questions))
	for _, item := range req.Questions {
		text := plainText(s.sanitizer, item.QuestionText)
		if text == "" {
			return models.Test{}, nil, ValidationError("Question text is required")
		}

		options, err := normalizeOptions(item.Options)
		if err != nil {
			return models.Test{}, nil, err
		}

		questions = append(questions, models.Question{
			QuestionText:  text,
			QuestionType:  strings.TrimSpace(item.QuestionType),
			Options:       options,
			CorrectAnswer: item.CorrectAnswer,
			Explanation:   s.sanitizeOptional(item.Explanation),
		})
	}

	return test, questions, nil
}

func (s *testService) sanitizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := plainText(s.sanitizer, *value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func (s *testService) record(ctx context.Context, actor Actor, action string, testID uint, metadata map[string]interface{}) {
	if s.deps.Activity == nil {
		return
	}

	entityID := testID
	if err := s.deps.Activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: models.ActivityEntityTest,
		EntityID:   &entityID,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Uint("test_id", testID).Msg("failed to record activity")
	}
}

// normalizeOptions stores arrays verbatim and converts comma separated strings to arrays.
func normalizeOptions(raw json.RawMessage) (*string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return grading.EncodeOptions(grading.ParseOptions(&text)), nil
	}

	var list []interface{}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, ValidationError("Options must be a list or a comma separated string")
	}
	return &trimmed, nil
}

// plainText strips markup from authored text. Entities produced by the policy are
// decoded again because responses are JSON, not HTML.
func plainText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
