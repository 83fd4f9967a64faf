package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/dto"
	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []CompletionEvent
}

func (r *recordingDispatcher) Notify(event CompletionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestSubmitGradesOnceAndRejectsResubmission(t *testing.T) {
	f := newFixture(t)
	sales := f.department(t, "Sales")
	owner := f.user(t, "Erin Owner", models.RoleEmployer, nil)
	candidate := f.user(t, "Cody Candidate", models.RoleCandidate, &sales.ID)
	test := f.test(t, owner.ID, &sales.ID)
	dispatcher := &recordingDispatcher{}
	svc := NewSubmissionService(repository.NewSubmissionRepository(f.db), dispatcher, nil, testLogger())
	actor := Actor{ID: candidate.ID, Role: models.RoleCandidate}

	answers := map[string]interface{}{
		questionKey(test.Questions[0]): "A",
		questionKey(test.Questions[1]): "C",
	}
	response, err := svc.Submit(context.Background(), actor, test.ID, dto.SubmitRequest{Answers: answers})
	require.NoError(t, err)
	require.Equal(t, dto.SubmissionResponse{Score: 50, TotalQuestions: 2, CorrectAnswers: 1, Remarks: "Fair"}, response)

	_, err = svc.Submit(context.Background(), actor, test.ID, dto.SubmitRequest{Answers: answers})
	require.Equal(t, KindForbidden, KindOf(err))
	require.Contains(t, err.Error(), "You have already submitted this test.")

	var results, answerRows int64
	require.NoError(t, f.db.Model(&models.Result{}).Count(&results).Error)
	require.NoError(t, f.db.Model(&models.Answer{}).Count(&answerRows).Error)
	require.Equal(t, int64(1), results)
	require.Equal(t, int64(2), answerRows)

	require.Len(t, dispatcher.events, 1)
	require.Equal(t, "Go Basics", dispatcher.events[0].TestTitle)
	require.Equal(t, 50, dispatcher.events[0].Stats.Score)
}

func TestSubmitFinalizesExistingProgress(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Erin Owner", models.RoleEmployer, nil)
	candidate := f.user(t, "Cody Candidate", models.RoleCandidate, nil)
	test := f.test(t, owner.ID, nil)
	started := time.Now().UTC().Add(-10 * time.Minute).Truncate(time.Second)

	require.NoError(t, f.progress.Upsert(context.Background(), &models.CandidateTest{
		CandidateID:   candidate.ID,
		TestID:        test.ID,
		StartTime:     started,
		TimeRemaining: intPtr(600),
		SavedAnswers:  strPtr(`{"1":"A"}`),
		Status:        models.ProgressStatusInProgress,
	}))

	svc := NewSubmissionService(repository.NewSubmissionRepository(f.db), nil, nil, testLogger())
	answers := map[string]interface{}{
		questionKey(test.Questions[0]): "A",
		questionKey(test.Questions[1]): "B",
	}
	response, err := svc.Submit(context.Background(), Actor{ID: candidate.ID, Role: models.RoleCandidate}, test.ID, dto.SubmitRequest{Answers: answers})
	require.NoError(t, err)
	require.Equal(t, 100, response.Score)
	require.Equal(t, "Excellent", response.Remarks)

	result, err := f.results.Get(context.Background(), candidate.ID, test.ID)
	require.NoError(t, err)
	require.True(t, started.Equal(result.TakenAt.UTC()))

	state, err := f.progress.Get(context.Background(), candidate.ID, test.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusCompleted, state.Status)
	require.Nil(t, state.TimeRemaining)
	require.Nil(t, state.SavedAnswers)
	require.NotNil(t, state.EndTime)
	require.Equal(t, 100, *state.Score)
}

func TestSubmitWithoutProgressCreatesCompletedState(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Erin Owner", models.RoleEmployer, nil)
	candidate := f.user(t, "Cody Candidate", models.RoleCandidate, nil)
	test := f.test(t, owner.ID, nil)

	svc := NewSubmissionService(repository.NewSubmissionRepository(f.db), nil, nil, testLogger())
	response, err := svc.Submit(context.Background(), Actor{ID: candidate.ID, Role: models.RoleCandidate}, test.ID, dto.SubmitRequest{Answers: map[string]interface{}{}})
	require.NoError(t, err)
	require.Equal(t, 0, response.Score)
	require.Equal(t, "Needs Improvement", response.Remarks)

	state, err := f.progress.Get(context.Background(), candidate.ID, test.ID)
	require.NoError(t, err)
	require.NotNil(t, state)
	require.Equal(t, models.ProgressStatusCompleted, state.Status)

	var stored []models.Answer
	require.NoError(t, f.db.Find(&stored).Error)
	require.Len(t, stored, 2)
	for _, answer := range stored {
		require.Nil(t, answer.Answer)
		require.False(t, answer.IsCorrect)
	}
}

func TestSubmitRejectsInvalidRequests(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Erin Owner", models.RoleEmployer, nil)
	candidate := f.user(t, "Cody Candidate", models.RoleCandidate, nil)
	empty := models.Test{Title: "Empty", TimeLimit: 30, CreatedBy: owner.ID, TestType: models.TestTypeStandard, TargetRole: models.RoleCandidate, IsActive: true}
	require.NoError(t, f.db.Create(&empty).Error)

	svc := NewSubmissionService(repository.NewSubmissionRepository(f.db), nil, nil, testLogger())
	actor := Actor{ID: candidate.ID, Role: models.RoleCandidate}

	_, err := svc.Submit(context.Background(), actor, empty.ID, dto.SubmitRequest{})
	require.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Submit(context.Background(), actor, empty.ID+99, dto.SubmitRequest{Answers: map[string]interface{}{}})
	require.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.Submit(context.Background(), actor, empty.ID, dto.SubmitRequest{Answers: map[string]interface{}{}})
	require.Equal(t, KindValidation, KindOf(err))
	require.Contains(t, err.Error(), "No questions found for this test")

	var results int64
	require.NoError(t, f.db.Model(&models.Result{}).Count(&results).Error)
	require.Zero(t, results)
}

func TestSubmitInvalidatesResultsCache(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Erin Owner", models.RoleEmployer, nil)
	candidate := f.user(t, "Cody Candidate", models.RoleCandidate, nil)
	test := f.test(t, owner.ID, nil)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := NewResultsCache(client, time.Minute, testLogger())
	require.NoError(t, mr.Set(resultsCacheKey(test.ID), "[]"))

	svc := NewSubmissionService(repository.NewSubmissionRepository(f.db), nil, cache, testLogger())
	_, err = svc.Submit(context.Background(), Actor{ID: candidate.ID, Role: models.RoleCandidate}, test.ID, dto.SubmitRequest{Answers: map[string]interface{}{}})
	require.NoError(t, err)
	require.False(t, mr.Exists(resultsCacheKey(test.ID)))
}

type duplicateStore struct {
	repository.SubmissionStore
	test      models.Test
	questions []models.Question
}

func (d duplicateStore) ResultExists(candidateID, testID uint) (bool, error) { return false, nil }
func (d duplicateStore) GetTest(testID uint) (models.Test, error)            { return d.test, nil }
func (d duplicateStore) ListQuestions(testID uint) ([]models.Question, error) {
	return d.questions, nil
}
func (d duplicateStore) GetProgress(candidateID, testID uint) (*models.CandidateTest, error) {
	return nil, nil
}
func (d duplicateStore) CreateAnswers(answers []models.Answer) error { return nil }
func (d duplicateStore) CreateResult(result *models.Result) error    { return gorm.ErrDuplicatedKey }

type duplicateRepo struct {
	store duplicateStore
}

func (d duplicateRepo) WithinTransaction(ctx context.Context, fn func(store repository.SubmissionStore) error) error {
	return fn(d.store)
}

func TestSubmitMapsConcurrentDuplicateToForbidden(t *testing.T) {
	repo := duplicateRepo{store: duplicateStore{
		test:      models.Test{ID: 1, Title: "Race"},
		questions: []models.Question{{ID: 1, QuestionType: models.QuestionTypeTrueFalse, CorrectAnswer: strPtr("true")}},
	}}
	dispatcher := &recordingDispatcher{}
	svc := NewSubmissionService(repo, dispatcher, nil, testLogger())

	_, err := svc.Submit(context.Background(), Actor{ID: 2, Role: models.RoleCandidate}, 1, dto.SubmitRequest{Answers: map[string]interface{}{"1": "true"}})
	require.Equal(t, KindForbidden, KindOf(err))
	require.Empty(t, dispatcher.events)
}
