package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/suitetest-api/internal/models"
)

func TestActivityLogRepositoryFiltersByEntity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 1, ActorRole: models.RoleEmployer, Action: "test.created", EntityType: "test", EntityID: uintPtr(5), Metadata: datatypes.JSONMap{"title": "Go"}}))
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 1, ActorRole: models.RoleEmployer, Action: "test.updated", EntityType: "test", EntityID: uintPtr(5)}))
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 2, ActorRole: models.RoleAdmin, Action: "test.created", EntityType: "test", EntityID: uintPtr(6)}))

	entries, err := repo.List(ctx, ActivityLogFilter{EntityType: "test", EntityID: uintPtr(5)})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "test.updated", entries[0].Action)
	require.Equal(t, "Go", entries[1].Metadata["title"])

	entries, err = repo.List(ctx, ActivityLogFilter{ActorID: uintPtr(2), Limit: 5})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, uint(2), entries[0].ActorID)
}
