package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Note struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ModuleID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"module_id"`
	Module      *Module    `gorm:"foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	SessionID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	Session     *Session   `gorm:"foreignKey:SessionID;references:ID" json:"session,omitempty"`
	TimestampID *uuid.UUID `gorm:"type:uuid;index" json:"timestamp_id,omitempty"`
	Content     string     `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Note) TableName() string { return "session_notes" }

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
