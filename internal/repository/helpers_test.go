package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string, departmentID *uint) models.User {
	t.Helper()
	user := models.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Role:         role,
		DepartmentID: departmentID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedDepartment(t *testing.T, db *gorm.DB, name string) models.Department {
	t.Helper()
	department := models.Department{DepartmentName: name, IsActive: true}
	require.NoError(t, db.Create(&department).Error)
	return department
}

func seedTest(t *testing.T, db *gorm.DB, ownerID uint, departmentID *uint, questions ...models.Question) models.Test {
	t.Helper()
	test := models.Test{
		Title:        "Go Basics",
		TimeLimit:    30,
		CreatedBy:    ownerID,
		TestType:     models.TestTypeStandard,
		TargetRole:   models.RoleCandidate,
		DepartmentID: departmentID,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, NewTestRepository(db).Create(context.Background(), &test, questions))
	return test
}

func strPtr(value string) *string {
	return &value
}

func uintPtr(value uint) *uint {
	return &value
}
