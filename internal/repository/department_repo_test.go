package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/models"
)

func TestDepartmentRepositoryCountsUsage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDepartmentRepository(db)
	sales := seedDepartment(t, db, "Sales")
	seedDepartment(t, db, "Engineering")
	owner := seedUser(t, db, "Erin Owner", models.RoleEmployer, uintPtr(sales.ID))
	seedUser(t, db, "Cody Candidate", models.RoleCandidate, uintPtr(sales.ID))
	seedTest(t, db, owner.ID, uintPtr(sales.ID))

	departments, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 2)
	require.Equal(t, "Engineering", departments[0].DepartmentName)
	require.Zero(t, departments[0].UserCount)

	summary, err := repo.Get(context.Background(), sales.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.UserCount)
	require.Equal(t, int64(1), summary.TestCount)

	_, err = repo.Get(context.Background(), sales.ID+100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDepartmentRepositoryExistsByNameIgnoresCaseAndSelf(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDepartmentRepository(db)
	sales := seedDepartment(t, db, "Sales")

	exists, err := repo.ExistsByName(context.Background(), "sales", 0)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsByName(context.Background(), "SALES", sales.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestDepartmentRepositoryDeleteUnassigns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDepartmentRepository(db)
	sales := seedDepartment(t, db, "Sales")
	owner := seedUser(t, db, "Erin Owner", models.RoleEmployer, uintPtr(sales.ID))
	test := seedTest(t, db, owner.ID, uintPtr(sales.ID))

	require.NoError(t, repo.Delete(context.Background(), sales.ID))

	var user models.User
	require.NoError(t, db.First(&user, owner.ID).Error)
	require.Nil(t, user.DepartmentID)

	var stored models.Test
	require.NoError(t, db.First(&stored, test.ID).Error)
	require.Nil(t, stored.DepartmentID)

	require.ErrorIs(t, repo.Delete(context.Background(), sales.ID), gorm.ErrRecordNotFound)
}

func TestDepartmentRepositoryUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDepartmentRepository(db)
	sales := seedDepartment(t, db, "Sales")

	sales.DepartmentName = "Field Sales"
	sales.Description = strPtr("Outbound team")
	require.NoError(t, repo.Update(context.Background(), &sales))

	stored, err := repo.GetByID(context.Background(), sales.ID)
	require.NoError(t, err)
	require.Equal(t, "Field Sales", stored.DepartmentName)
	require.Equal(t, "Outbound team", *stored.Description)

	missing := models.Department{ID: sales.ID + 10, DepartmentName: "Ghost"}
	require.ErrorIs(t, repo.Update(context.Background(), &missing), gorm.ErrRecordNotFound)
}
