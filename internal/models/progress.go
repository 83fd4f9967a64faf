package models

import (
	"strings"
	"time"
)

const (
	ProgressStatusInProgress = "in_progress"
	ProgressStatusCompleted  = "completed"
)

// CandidateTest tracks a candidate's run through a test. StartTime is written
// once, on insert, and anchors elapsed time and the result's taken_at.
type CandidateTest struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CandidateID   uint       `gorm:"not null;uniqueIndex:idx_candidates_tests_pair" json:"candidate_id"`
	TestID        uint       `gorm:"not null;uniqueIndex:idx_candidates_tests_pair;index" json:"test_id"`
	StartTime     time.Time  `gorm:"not null" json:"start_time"`
	TimeRemaining *int       `json:"time_remaining"`
	SavedAnswers  *string    `gorm:"type:text" json:"saved_answers"`
	Status        string     `gorm:"size:32;not null;index" json:"status"`
	EndTime       *time.Time `json:"end_time"`
	Score         *int       `json:"score"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName keeps the historical table name.
func (CandidateTest) TableName() string {
	return "candidates_tests"
}

// HasSavedAnswers reports whether the saved JSON blob carries any content.
func (c CandidateTest) HasSavedAnswers() bool {
	if c.SavedAnswers == nil {
		return false
	}

	switch strings.TrimSpace(*c.SavedAnswers) {
	case "", "null", "{}", "[]", `""`:
		return false
	default:
		return true
	}
}
