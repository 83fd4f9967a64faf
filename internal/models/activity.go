package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audited entities and the actions recorded against them.
const (
	ActivityEntityTest = "test"

	ActionTestCreated = "test.created"
	ActionTestUpdated = "test.updated"
	ActionTestDeleted = "test.deleted"
)

// ActivityLog is one entry of the authoring audit trail. Rows are read back per
// entity, newest first, so entity columns share an index with created_at.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null;index:idx_activity_entity,priority:1" json:"entity_type"`
	EntityID   *uint             `gorm:"index:idx_activity_entity,priority:2" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index:idx_activity_entity,priority:3" json:"created_at"`
}
