package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, error) {
	entries := make([]models.ActivityLog, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.EntityID != nil && (entry.EntityID == nil || *entry.EntityID != *filter.EntityID) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func TestActivityServiceRecordMasksSensitiveMetadata(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  "Admin",
		Action:     "Test.Updated",
		EntityType: "test",
		EntityID:   ptrUint(5),
		Metadata: map[string]interface{}{
			"candidate_email": "cody@example.com",
			"correct_answer":  "A",
			"title":           "Go Basics",
		},
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)

	entry := repo.entries[0]
	require.Equal(t, "admin", entry.ActorRole)
	require.Equal(t, "test.updated", entry.Action)
	require.Equal(t, "***", entry.Metadata["candidate_email"])
	require.Equal(t, "***", entry.Metadata["correct_answer"])
	require.Equal(t, "Go Basics", entry.Metadata["title"])

	logs, err := svc.ListForTest(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestActivityServiceRecordRequiresAction(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, testLogger())

	require.Error(t, svc.Record(context.Background(), ActivityEntry{EntityType: "test"}))
	require.Error(t, svc.Record(context.Background(), ActivityEntry{Action: "test.created"}))
}

func ptrUint(v uint) *uint {
	return &v
}
