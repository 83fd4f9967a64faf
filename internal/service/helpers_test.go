package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixture struct {
	db       *gorm.DB
	validate *validator.Validate
	tests    repository.TestRepository
	users    repository.UserRepository
	progress repository.ProgressRepository
	results  repository.ResultRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := setupTestDB(t)
	return fixture{
		db:       db,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tests:    repository.NewTestRepository(db),
		users:    repository.NewUserRepository(db),
		progress: repository.NewProgressRepository(db),
		results:  repository.NewResultRepository(db),
	}
}

func (f fixture) department(t *testing.T, name string) models.Department {
	t.Helper()
	department := models.Department{DepartmentName: name, IsActive: true}
	require.NoError(t, f.db.Create(&department).Error)
	return department
}

func (f fixture) user(t *testing.T, name, role string, departmentID *uint) models.User {
	t.Helper()
	user := models.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Role:         role,
		DepartmentID: departmentID,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

// test creates an active candidate test with two multiple choice questions keyed A and B.
func (f fixture) test(t *testing.T, ownerID uint, departmentID *uint) models.Test {
	t.Helper()
	test := models.Test{
		Title:        "Go Basics",
		TimeLimit:    30,
		CreatedBy:    ownerID,
		TestType:     models.TestTypeStandard,
		TargetRole:   models.RoleCandidate,
		DepartmentID: departmentID,
		IsActive:     true,
	}
	questions := []models.Question{
		{QuestionText: "First", QuestionType: models.QuestionTypeMultipleChoice, Options: strPtr(`["A","B","C"]`), CorrectAnswer: strPtr("A"), Explanation: strPtr("A is right")},
		{QuestionText: "Second", QuestionType: models.QuestionTypeMultipleChoice, Options: strPtr("A, B, C"), CorrectAnswer: strPtr("B")},
	}
	require.NoError(t, f.tests.Create(context.Background(), &test, questions))

	loaded, err := f.tests.GetWithQuestions(context.Background(), test.ID)
	require.NoError(t, err)
	return loaded
}

func questionKey(question models.Question) string {
	return fmt.Sprintf("%d", question.ID)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func strPtr(value string) *string {
	return &value
}

func intPtr(value int) *int {
	return &value
}

func floatPtr(value float64) *float64 {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}
