package models

import "time"

const (
	// TestTypeStandard is a regular question based test.
	TestTypeStandard = "standard"
	// TestTypePDFBased is a test whose content is delivered as a PDF document.
	TestTypePDFBased = "pdf_based"
)

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeFreeText       = "free_text"
)

// Test is an authored assessment owned by its creator.
type Test struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	Title             string      `gorm:"size:255;not null" json:"title"`
	Description       *string     `gorm:"type:text" json:"description"`
	TimeLimit         int         `gorm:"not null" json:"time_limit"`
	CreatedBy         uint        `gorm:"not null;index" json:"created_by"`
	PDFURL            *string     `gorm:"column:pdf_url;size:512" json:"pdf_url"`
	GoogleDriveID     *string     `gorm:"size:255" json:"google_drive_id"`
	ThumbnailURL      *string     `gorm:"size:512" json:"thumbnail_url"`
	TestType          string      `gorm:"size:32;not null" json:"test_type"`
	TargetRole        string      `gorm:"size:32;not null;index" json:"target_role"`
	DepartmentID      *uint       `gorm:"index" json:"department_id"`
	EnableProctoring  bool        `gorm:"not null" json:"enable_proctoring"`
	MaxTabSwitches    int         `gorm:"not null" json:"max_tab_switches"`
	AllowCopyPaste    bool        `gorm:"not null" json:"allow_copy_paste"`
	RequireFullscreen bool        `gorm:"not null" json:"require_fullscreen"`
	IsActive          bool        `gorm:"not null;index" json:"is_active"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	Department        *Department `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Creator           *User       `gorm:"foreignKey:CreatedBy" json:"-"`
	Questions         []Question  `gorm:"foreignKey:TestID" json:"-"`
}

// Question belongs to exactly one test.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TestID        uint      `gorm:"not null;index" json:"test_id"`
	QuestionText  string    `gorm:"type:text;not null" json:"question_text"`
	QuestionType  string    `gorm:"size:32;not null" json:"question_type"`
	Options       *string   `gorm:"type:text" json:"options"`
	CorrectAnswer *string   `gorm:"type:text" json:"correct_answer"`
	Explanation   *string   `gorm:"type:text" json:"explanation"`
	CreatedAt     time.Time `json:"created_at"`
}
