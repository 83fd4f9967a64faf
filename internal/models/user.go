package models

import "time"

// Roles recognised by the platform.
const (
	RoleAdmin     = "admin"
	RoleEmployer  = "employer"
	RoleCandidate = "candidate"
)

// User is an account that authors or takes tests.
type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:255;not null" json:"name"`
	Email        string      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role         string      `gorm:"size:32;not null;index" json:"role"`
	DepartmentID *uint       `gorm:"index" json:"department_id"`
	Department   *Department `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"department,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
