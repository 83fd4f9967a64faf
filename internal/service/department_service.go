package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/dto"
	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

// DepartmentService manages departments.
type DepartmentService interface {
	List(ctx context.Context) ([]repository.DepartmentSummary, error)
	Get(ctx context.Context, id uint) (repository.DepartmentSummary, error)
	Create(ctx context.Context, req dto.DepartmentRequest) (models.Department, error)
	Update(ctx context.Context, id uint, req dto.DepartmentRequest) (models.Department, error)
	Delete(ctx context.Context, id uint) error
}

type departmentService struct {
	repo      repository.DepartmentRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewDepartmentService constructs the department service.
func NewDepartmentService(repo repository.DepartmentRepository, validator *validator.Validate, logger zerolog.Logger) DepartmentService {
	return &departmentService{
		repo:      repo,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "department_service").Logger(),
	}
}

func (s *departmentService) List(ctx context.Context) ([]repository.DepartmentSummary, error) {
	return s.repo.List(ctx)
}

func (s *departmentService) Get(ctx context.Context, id uint) (repository.DepartmentSummary, error) {
	department, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.DepartmentSummary{}, NotFoundError("Department not found")
		}
		return repository.DepartmentSummary{}, err
	}
	return department, nil
}

func (s *departmentService) Create(ctx context.Context, req dto.DepartmentRequest) (models.Department, error) {
	department, err := s.build(req)
	if err != nil {
		return models.Department{}, err
	}

	exists, err := s.repo.ExistsByName(ctx, department.DepartmentName, 0)
	if err != nil {
		return models.Department{}, err
	}
	if exists {
		return models.Department{}, ValidationError("Department name already exists")
	}

	if err := s.repo.Create(ctx, &department); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Department{}, ValidationError("Department name already exists")
		}
		return models.Department{}, err
	}

	s.logger.Info().Uint("department_id", department.ID).Str("name", department.DepartmentName).Msg("department created")
	return department, nil
}

func (s *departmentService) Update(ctx context.Context, id uint, req dto.DepartmentRequest) (models.Department, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Department{}, NotFoundError("Department not found")
		}
		return models.Department{}, err
	}

	department, err := s.build(req)
	if err != nil {
		return models.Department{}, err
	}
	if req.IsActive == nil {
		department.IsActive = current.IsActive
	}

	exists, err := s.repo.ExistsByName(ctx, department.DepartmentName, id)
	if err != nil {
		return models.Department{}, err
	}
	if exists {
		return models.Department{}, ValidationError("Department name already exists")
	}

	department.ID = id
	department.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, &department); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Department{}, NotFoundError("Department not found")
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Department{}, ValidationError("Department name already exists")
		}
		return models.Department{}, err
	}

	return s.repo.GetByID(ctx, id)
}

// Delete refuses to remove the question bank department.
func (s *departmentService) Delete(ctx context.Context, id uint) error {
	department, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("Department not found")
		}
		return err
	}

	if department.IsQuestionBank() {
		return ValidationError("The Question Bank department cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("Department not found")
		}
		return err
	}

	s.logger.Info().Uint("department_id", id).Msg("department deleted")
	return nil
}

func (s *departmentService) build(req dto.DepartmentRequest) (models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Department{}, err
	}

	name := plainText(s.sanitizer, req.DepartmentName)
	if name == "" {
		return models.Department{}, ValidationError("Department name is required")
	}

	department := models.Department{
		DepartmentName: name,
		IsActive:       boolOrDefault(req.IsActive, true),
	}
	if req.Description != nil {
		description := plainText(s.sanitizer, *req.Description)
		if description != "" {
			department.Description = &description
		}
	}
	return department, nil
}
