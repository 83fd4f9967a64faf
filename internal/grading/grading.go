// Package grading scores submitted answers against stored answer keys.
package grading

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/noah-isme/suitetest-api/internal/models"
)

var autoGradedTypes = map[string]struct{}{
	models.QuestionTypeMultipleChoice: {},
	models.QuestionTypeTrueFalse:      {},
}

type remarkThreshold struct {
	min    int
	remark string
}

// Highest first; the first threshold the score reaches wins.
var remarkThresholds = []remarkThreshold{
	{min: 90, remark: "Excellent"},
	{min: 75, remark: "Very Good"},
	{min: 60, remark: "Good"},
	{min: 50, remark: "Fair"},
	{min: 0, remark: "Needs Improvement"},
}

// Outcome is the graded answer for one question.
type Outcome struct {
	QuestionID uint
	Answer     *string
	IsCorrect  bool
	AutoGraded bool
}

// Summary aggregates the outcomes of a submission.
type Summary struct {
	Outcomes       []Outcome
	CorrectAnswers int
	TotalQuestions int
	Score          int
	Remarks        string
}

// IsAutoGraded reports whether questions of the given type are scored automatically.
func IsAutoGraded(questionType string) bool {
	_, ok := autoGradedTypes[questionType]
	return ok
}

// Grade scores answers keyed by question id. Every question yields one outcome,
// answered or not. Only auto-graded questions count toward the totals.
func Grade(questions []models.Question, answers map[string]interface{}) Summary {
	summary := Summary{Outcomes: make([]Outcome, 0, len(questions))}

	for _, question := range questions {
		submitted, ok := answers[strconv.FormatUint(uint64(question.ID), 10)]
		if !ok {
			submitted = nil
		}

		outcome := Outcome{
			QuestionID: question.ID,
			Answer:     StoredAnswer(submitted),
			AutoGraded: IsAutoGraded(question.QuestionType),
		}

		if outcome.AutoGraded {
			summary.TotalQuestions++
			if matches(submitted, question.CorrectAnswer) {
				outcome.IsCorrect = true
				summary.CorrectAnswers++
			}
		}

		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	summary.Score = Score(summary.CorrectAnswers, summary.TotalQuestions)
	summary.Remarks = Remark(summary.Score)
	return summary
}

// Score returns the rounded percentage of correct answers, or 0 when nothing was auto-graded.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Remark maps a score to its qualitative label.
func Remark(score int) string {
	for _, threshold := range remarkThresholds {
		if score >= threshold.min {
			return threshold.remark
		}
	}
	return "Needs Improvement"
}

// StoredAnswer converts a submitted JSON value into its persisted text form.
// Missing and empty values are stored as NULL.
func StoredAnswer(value interface{}) *string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return &v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			text := fmt.Sprintf("%v", v)
			return &text
		}
		text := string(data)
		return &text
	}
}

// Only string submissions can equal the stored key.
func matches(submitted interface{}, correct *string) bool {
	value, ok := submitted.(string)
	if !ok || correct == nil {
		return false
	}
	return value == *correct
}
