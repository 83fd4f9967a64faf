package dto

// DepartmentRequest is the payload for creating or updating a department.
type DepartmentRequest struct {
	DepartmentName string  `json:"department_name" validate:"required,max=255"`
	Description    *string `json:"description"`
	IsActive       *bool   `json:"is_active"`
}
