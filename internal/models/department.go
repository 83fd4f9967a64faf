package models

import (
	"strings"
	"time"
)

// QuestionBankDepartment names the department whose tests seed the shared question bank.
const QuestionBankDepartment = "Question Bank"

// Department groups users and the candidate tests targeted at them.
type Department struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DepartmentName string    `gorm:"column:department_name;size:255;uniqueIndex;not null" json:"department_name"`
	Description    *string   `gorm:"type:text" json:"description"`
	IsActive       bool      `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsQuestionBank reports whether the department is the protected question bank.
func (d Department) IsQuestionBank() bool {
	return strings.EqualFold(strings.TrimSpace(d.DepartmentName), QuestionBankDepartment)
}
