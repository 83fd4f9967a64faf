package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/models"
)

// InvitationRepository updates test invitations.
type InvitationRepository interface {
	MarkCompleted(ctx context.Context, email string, testID uint, completedAt time.Time) (int64, error)
}

type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository constructs a GORM-backed invitation repository.
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

// MarkCompleted flags every open invitation of the e-mail for the test and
// returns how many rows changed.
func (r *invitationRepository) MarkCompleted(ctx context.Context, email string, testID uint, completedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TestInvitation{}).
		Where("candidate_email = ? AND test_id = ? AND status <> ?", email, testID, models.InvitationStatusCompleted).
		Updates(map[string]interface{}{
			"status":       models.InvitationStatusCompleted,
			"completed_at": completedAt,
		})
	return result.RowsAffected, result.Error
}
