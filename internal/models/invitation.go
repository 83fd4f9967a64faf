package models

import "time"

const (
	InvitationStatusPending   = "pending"
	InvitationStatusSent      = "sent"
	InvitationStatusCompleted = "completed"
)

// TestInvitation records an invitation e-mailed to a candidate.
type TestInvitation struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	TestID         uint       `gorm:"not null;index" json:"test_id"`
	CandidateEmail string     `gorm:"size:255;not null;index" json:"candidate_email"`
	Status         string     `gorm:"size:32;not null" json:"status"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ProctoringEvent is written by the proctoring client; this service only removes them.
type ProctoringEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TestID      uint      `gorm:"not null;index" json:"test_id"`
	CandidateID uint      `gorm:"not null;index" json:"candidate_id"`
	EventType   string    `gorm:"size:64;not null" json:"event_type"`
	CreatedAt   time.Time `json:"created_at"`
}
