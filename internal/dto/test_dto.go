package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/suitetest-api/internal/grading"
	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

// QuestionRequest describes one authored question. Options may be a JSON array
// or a comma separated string.
type QuestionRequest struct {
	QuestionText  string          `json:"question_text" validate:"required"`
	QuestionType  string          `json:"question_type" validate:"required,max=32"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer *string         `json:"correct_answer"`
	Explanation   *string         `json:"explanation"`
}

// TestRequest is the payload for creating or replacing a test.
type TestRequest struct {
	Title             string            `json:"title" validate:"required,max=255"`
	Description       *string           `json:"description"`
	TimeLimit         *int              `json:"time_limit" validate:"omitempty,min=1"`
	PDFURL            *string           `json:"pdf_url" validate:"omitempty,max=512"`
	GoogleDriveID     *string           `json:"google_drive_id" validate:"omitempty,max=255"`
	ThumbnailURL      *string           `json:"thumbnail_url" validate:"omitempty,max=512"`
	TestType          string            `json:"test_type" validate:"omitempty,oneof=standard pdf_based"`
	TargetRole        string            `json:"target_role" validate:"omitempty,oneof=admin employer candidate"`
	DepartmentID      *uint             `json:"department_id"`
	EnableProctoring  *bool             `json:"enable_proctoring"`
	MaxTabSwitches    *int              `json:"max_tab_switches" validate:"omitempty,min=0"`
	AllowCopyPaste    *bool             `json:"allow_copy_paste"`
	RequireFullscreen *bool             `json:"require_fullscreen"`
	Questions         []QuestionRequest `json:"questions" validate:"dive"`
}

// QuestionResponse is a question with its options parsed into a list.
type QuestionResponse struct {
	ID            uint      `json:"id"`
	TestID        uint      `json:"test_id"`
	QuestionText  string    `json:"question_text"`
	QuestionType  string    `json:"question_type"`
	Options       []string  `json:"options"`
	CorrectAnswer *string   `json:"correct_answer,omitempty"`
	Explanation   *string   `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewQuestionResponse converts a question. Answer keys are only included when
// withAnswers is set.
func NewQuestionResponse(model models.Question, withAnswers bool) QuestionResponse {
	response := QuestionResponse{
		ID:           model.ID,
		TestID:       model.TestID,
		QuestionText: model.QuestionText,
		QuestionType: model.QuestionType,
		Options:      grading.ParseOptions(model.Options),
		CreatedAt:    model.CreatedAt,
	}
	if withAnswers {
		response.CorrectAnswer = model.CorrectAnswer
		response.Explanation = model.Explanation
	}
	return response
}

// NewQuestionResponseSlice converts a slice of questions.
func NewQuestionResponseSlice(questions []models.Question, withAnswers bool) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question, withAnswers))
	}
	return responses
}

// TestResponse is the serialized representation of a test.
type TestResponse struct {
	ID                uint               `json:"id"`
	Title             string             `json:"title"`
	Description       *string            `json:"description"`
	TimeLimit         int                `json:"time_limit"`
	CreatedBy         uint               `json:"created_by"`
	PDFURL            *string            `json:"pdf_url"`
	GoogleDriveID     *string            `json:"google_drive_id"`
	ThumbnailURL      *string            `json:"thumbnail_url"`
	TestType          string             `json:"test_type"`
	TargetRole        string             `json:"target_role"`
	DepartmentID      *uint              `json:"department_id"`
	EnableProctoring  bool               `json:"enable_proctoring"`
	MaxTabSwitches    int                `json:"max_tab_switches"`
	AllowCopyPaste    bool               `json:"allow_copy_paste"`
	RequireFullscreen bool               `json:"require_fullscreen"`
	IsActive          bool               `json:"is_active"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Questions         []QuestionResponse `json:"questions,omitempty"`
}

// NewTestResponse converts a test model without its questions.
func NewTestResponse(model models.Test) TestResponse {
	return TestResponse{
		ID:                model.ID,
		Title:             model.Title,
		Description:       model.Description,
		TimeLimit:         model.TimeLimit,
		CreatedBy:         model.CreatedBy,
		PDFURL:            model.PDFURL,
		GoogleDriveID:     model.GoogleDriveID,
		ThumbnailURL:      model.ThumbnailURL,
		TestType:          model.TestType,
		TargetRole:        model.TargetRole,
		DepartmentID:      model.DepartmentID,
		EnableProctoring:  model.EnableProctoring,
		MaxTabSwitches:    model.MaxTabSwitches,
		AllowCopyPaste:    model.AllowCopyPaste,
		RequireFullscreen: model.RequireFullscreen,
		IsActive:          model.IsActive,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// NewTestDetailResponse converts a test together with its loaded questions.
func NewTestDetailResponse(model models.Test, withAnswers bool) TestResponse {
	response := NewTestResponse(model)
	response.Questions = NewQuestionResponseSlice(model.Questions, withAnswers)
	return response
}

// TestSummaryResponse is a list entry for authored or available tests.
type TestSummaryResponse struct {
	TestResponse
	QuestionCount  int64   `json:"question_count"`
	DepartmentName *string `json:"department_name"`
	CreatedByName  *string `json:"created_by_name,omitempty"`
	IsCompleted    *bool   `json:"is_completed,omitempty"`
	IsInProgress   *bool   `json:"is_in_progress,omitempty"`
}

// NewTestSummaryResponse converts a repository listing.
func NewTestSummaryResponse(listing repository.TestListing) TestSummaryResponse {
	response := TestSummaryResponse{
		TestResponse:  NewTestResponse(listing.Test),
		QuestionCount: listing.QuestionCount,
	}
	if listing.Test.Department != nil {
		name := listing.Test.Department.DepartmentName
		response.DepartmentName = &name
	}
	if listing.Test.Creator != nil {
		name := listing.Test.Creator.Name
		response.CreatedByName = &name
	}
	return response
}

// PooledQuestionResponse is a question listed together with its test.
type PooledQuestionResponse struct {
	QuestionResponse
	TestTitle      string  `json:"test_title"`
	TestType       string  `json:"test_type"`
	TargetRole     string  `json:"target_role"`
	DepartmentID   *uint   `json:"department_id"`
	DepartmentName *string `json:"department_name"`
}

// NewPooledQuestionResponseSlice converts question pool rows.
func NewPooledQuestionResponseSlice(rows []repository.PooledQuestion) []PooledQuestionResponse {
	responses := make([]PooledQuestionResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, PooledQuestionResponse{
			QuestionResponse: QuestionResponse{
				ID:            row.ID,
				TestID:        row.TestID,
				QuestionText:  row.QuestionText,
				QuestionType:  row.QuestionType,
				Options:       grading.ParseOptions(row.Options),
				CorrectAnswer: row.CorrectAnswer,
				Explanation:   row.Explanation,
				CreatedAt:     row.CreatedAt,
			},
			TestTitle:      row.TestTitle,
			TestType:       row.TestType,
			TargetRole:     row.TargetRole,
			DepartmentID:   row.DepartmentID,
			DepartmentName: row.DepartmentName,
		})
	}
	return responses
}

// ActivityResponse is one audit entry of a test.
type ActivityResponse struct {
	ID        uint                   `json:"id"`
	ActorID   uint                   `json:"actor_id"`
	ActorRole string                 `json:"actor_role"`
	Action    string                 `json:"action"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewActivityResponseSlice converts activity log rows.
func NewActivityResponseSlice(entries []models.ActivityLog) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		metadata := map[string]interface{}{}
		for key, value := range entry.Metadata {
			metadata[key] = value
		}
		responses = append(responses, ActivityResponse{
			ID:        entry.ID,
			ActorID:   entry.ActorID,
			ActorRole: entry.ActorRole,
			Action:    entry.Action,
			Metadata:  metadata,
			CreatedAt: entry.CreatedAt,
		})
	}
	return responses
}
