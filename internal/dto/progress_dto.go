package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/suitetest-api/internal/models"
)

// Test status values reported to candidates.
const (
	TestStatusNotStarted = "not_started"
	TestStatusInProgress = "in_progress"
	TestStatusCompleted  = "completed"
)

// SaveProgressRequest carries a candidate's partial answers. Fractional
// seconds in time_remaining are truncated.
type SaveProgressRequest struct {
	Answers       json.RawMessage `json:"answers"`
	TimeRemaining *float64        `json:"time_remaining"`
}

// SubmitRequest carries the final answers keyed by question id.
type SubmitRequest struct {
	Answers map[string]interface{} `json:"answers"`
}

// SubmissionResponse summarizes a graded submission.
type SubmissionResponse struct {
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
	Remarks        string `json:"remarks"`
}

// ActiveTestResponse describes the test a candidate should resume.
type ActiveTestResponse struct {
	TestID        uint            `json:"test_id"`
	Title         string          `json:"title"`
	StartTime     time.Time       `json:"start_time"`
	TimeRemaining *int            `json:"time_remaining"`
	SavedAnswers  json.RawMessage `json:"saved_answers"`
	TestType      string          `json:"test_type"`
}

// StatusResult is the result summary attached to a completed status.
type StatusResult struct {
	ID      uint      `json:"id"`
	Score   int       `json:"score"`
	TakenAt time.Time `json:"taken_at"`
}

// TestStatusResponse reports where a candidate stands on a test.
type TestStatusResponse struct {
	Status        string          `json:"status"`
	Result        *StatusResult   `json:"result,omitempty"`
	StartTime     *time.Time      `json:"start_time,omitempty"`
	TimeRemaining *int            `json:"time_remaining,omitempty"`
	SavedAnswers  json.RawMessage `json:"saved_answers,omitempty"`
}

// SavedAnswersJSON returns the stored blob, or an empty object when nothing was saved.
func SavedAnswersJSON(state models.CandidateTest) json.RawMessage {
	if !state.HasSavedAnswers() || !json.Valid([]byte(*state.SavedAnswers)) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(*state.SavedAnswers)
}
