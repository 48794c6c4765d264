package audit

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionCancel  = "cancel"
)

// Action is one append-only row in the leave_actions trail. Nothing in the
// lifecycle engine reads it back; it exists for after-the-fact review.
type Action struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeaveID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null"`
	Action    string    `gorm:"type:varchar(20);not null"`
	Note      string    `gorm:"type:text"`
	CreatedAt time.Time
}

func (Action) TableName() string { return "leave_actions" }
