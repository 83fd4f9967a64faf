package dto

import (
	"time"

	"github.com/noah-isme/suitetest-api/internal/grading"
	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

// ReviewTest identifies the reviewed test.
type ReviewTest struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// ReviewResult is the graded outcome shown in a review.
type ReviewResult struct {
	ID             uint      `json:"id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	Remarks        string    `json:"remarks"`
	TakenAt        time.Time `json:"taken_at"`
}

// ReviewQuestion pairs a question with the candidate's recorded answer.
type ReviewQuestion struct {
	ID              uint     `json:"id"`
	QuestionText    string   `json:"question_text"`
	QuestionType    string   `json:"question_type"`
	Options         []string `json:"options"`
	CorrectAnswer   *string  `json:"correct_answer"`
	Explanation     *string  `json:"explanation"`
	CandidateAnswer *string  `json:"user_answer"`
	IsCorrect       bool     `json:"is_correct"`
}

// ReviewResponse is the full answer review of one candidate.
type ReviewResponse struct {
	Test      ReviewTest       `json:"test"`
	Result    ReviewResult     `json:"result"`
	Questions []ReviewQuestion `json:"questions"`
}

// NewReviewResponse assembles a review from its parts.
func NewReviewResponse(test models.Test, result models.Result, rows []repository.ReviewRow) ReviewResponse {
	questions := make([]ReviewQuestion, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, ReviewQuestion{
			ID:              row.QuestionID,
			QuestionText:    row.QuestionText,
			QuestionType:    row.QuestionType,
			Options:         grading.ParseOptions(row.Options),
			CorrectAnswer:   row.CorrectAnswer,
			Explanation:     row.Explanation,
			CandidateAnswer: row.Answer,
			IsCorrect:       row.IsCorrect != nil && *row.IsCorrect,
		})
	}

	return ReviewResponse{
		Test: ReviewTest{ID: test.ID, Title: test.Title, Description: test.Description},
		Result: ReviewResult{
			ID:             result.ID,
			Score:          result.Score,
			TotalQuestions: result.TotalQuestions,
			CorrectAnswers: result.CorrectAnswers,
			Remarks:        result.Remarks,
			TakenAt:        result.TakenAt,
		},
		Questions: questions,
	}
}
