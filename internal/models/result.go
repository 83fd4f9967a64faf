package models

import "time"

// Answer stores the raw value a candidate submitted for one question.
type Answer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CandidateID uint      `gorm:"not null;index" json:"candidate_id"`
	QuestionID  uint      `gorm:"not null;index" json:"question_id"`
	Answer      *string   `gorm:"type:text" json:"answer"`
	IsCorrect   bool      `gorm:"not null" json:"is_correct"`
	CreatedAt   time.Time `json:"created_at"`
}

// Result is the immutable outcome of a submitted test.
type Result struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CandidateID    uint      `gorm:"not null;uniqueIndex:idx_results_pair" json:"candidate_id"`
	TestID         uint      `gorm:"not null;uniqueIndex:idx_results_pair;index" json:"test_id"`
	TotalQuestions int       `gorm:"not null" json:"total_questions"`
	CorrectAnswers int       `gorm:"not null" json:"correct_answers"`
	Score          int       `gorm:"not null" json:"score"`
	Remarks        string    `gorm:"size:64;not null" json:"remarks"`
	TakenAt        time.Time `gorm:"not null" json:"taken_at"`
	FinishedAt     time.Time `gorm:"not null" json:"finished_at"`
}
