package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/models"
)

// TestListing pairs a test with its question count.
type TestListing struct {
	Test          models.Test
	QuestionCount int64
}

// TestRepository defines persistence operations for tests and their questions.
type TestRepository interface {
	GetByID(ctx context.Context, id uint) (models.Test, error)
	GetWithQuestions(ctx context.Context, id uint) (models.Test, error)
	Create(ctx context.Context, test *models.Test, questions []models.Question) error
	Update(ctx context.Context, test *models.Test, questions []models.Question) error
	Delete(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, ownerID uint) ([]TestListing, error)
	ListAvailable(ctx context.Context, role string, departmentID *uint) ([]TestListing, error)
}

type testRepository struct {
	db *gorm.DB
}

// NewTestRepository instantiates a GORM-backed repository.
func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) GetByID(ctx context.Context, id uint) (models.Test, error) {
	var test models.Test
	if err := r.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return models.Test{}, err
	}

	return test, nil
}

func (r *testRepository) GetWithQuestions(ctx context.Context, id uint) (models.Test, error) {
	var test models.Test
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id ASC")
		}).
		First(&test, id).Error; err != nil {
		return models.Test{}, err
	}

	return test, nil
}

func (r *testRepository) Create(ctx context.Context, test *models.Test, questions []models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Department", "Creator", "Questions").Create(test).Error; err != nil {
			return err
		}

		return insertQuestions(tx, test.ID, questions)
	})
}

// Update replaces the test metadata. A non-empty question list replaces the whole
// question set; answers recorded against the old questions are removed with it.
func (r *testRepository) Update(ctx context.Context, test *models.Test, questions []models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Test{}).Where("id = ?", test.ID).Updates(map[string]interface{}{
			"title":              test.Title,
			"description":        test.Description,
			"time_limit":         test.TimeLimit,
			"pdf_url":            test.PDFURL,
			"google_drive_id":    test.GoogleDriveID,
			"thumbnail_url":      test.ThumbnailURL,
			"test_type":          test.TestType,
			"target_role":        test.TargetRole,
			"department_id":      test.DepartmentID,
			"enable_proctoring":  test.EnableProctoring,
			"max_tab_switches":   test.MaxTabSwitches,
			"allow_copy_paste":   test.AllowCopyPaste,
			"require_fullscreen": test.RequireFullscreen,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if len(questions) == 0 {
			return nil
		}

		if err := tx.Where("question_id IN (?)", questionIDs(tx, test.ID)).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("test_id = ?", test.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		return insertQuestions(tx, test.ID, questions)
	})
}

// Delete removes the test and every row that references it, children first.
func (r *testRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id IN (?)", questionIDs(tx, id)).Delete(&models.Answer{}).Error; err != nil {
			return err
		}

		dependents := []interface{}{
			&models.ProctoringEvent{},
			&models.TestInvitation{},
			&models.CandidateTest{},
			&models.Result{},
			&models.Question{},
		}
		for _, model := range dependents {
			if err := tx.Where("test_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.Test{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *testRepository) ListByOwner(ctx context.Context, ownerID uint) ([]TestListing, error) {
	var tests []models.Test
	if err := r.db.WithContext(ctx).
		Preload("Department").
		Where("created_by = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&tests).Error; err != nil {
		return nil, err
	}

	return r.withQuestionCounts(ctx, tests)
}

func (r *testRepository) ListAvailable(ctx context.Context, role string, departmentID *uint) ([]TestListing, error) {
	query := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Creator").
		Where("target_role = ?", role).
		Where("is_active = ?", true)

	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	}

	var tests []models.Test
	if err := query.Order("created_at DESC, id DESC").Find(&tests).Error; err != nil {
		return nil, err
	}

	return r.withQuestionCounts(ctx, tests)
}

func (r *testRepository) withQuestionCounts(ctx context.Context, tests []models.Test) ([]TestListing, error) {
	listings := make([]TestListing, 0, len(tests))
	if len(tests) == 0 {
		return listings, nil
	}

	ids := make([]uint, 0, len(tests))
	for _, test := range tests {
		ids = append(ids, test.ID)
	}

	var rows []struct {
		TestID uint
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("test_id, COUNT(*) AS count").
		Where("test_id IN ?", ids).
		Group("test_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.TestID] = row.Count
	}

	for _, test := range tests {
		listings = append(listings, TestListing{Test: test, QuestionCount: counts[test.ID]})
	}
	return listings, nil
}

func questionIDs(tx *gorm.DB, testID uint) *gorm.DB {
	return tx.Model(&models.Question{}).Select("id").Where("test_id = ?", testID)
}

func insertQuestions(tx *gorm.DB, testID uint, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	rows := make([]models.Question, len(questions))
	for i, question := range questions {
		question.ID = 0
		question.TestID = testID
		rows[i] = question
	}

	return tx.Create(&rows).Error
}
