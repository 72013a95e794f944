package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Progress is the completion flag of one user for one session. There is at
// most one row per (user, session).
type Progress struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_progress_user_session,priority:1" json:"user_id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_progress_user_session,priority:2;index" json:"session_id"`
	Completed bool      `gorm:"column:completed;not null" json:"completed"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Progress) TableName() string { return "user_progress" }

func (p *Progress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
