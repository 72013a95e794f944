package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Module groups an ordered list of sessions.
type Module struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"column:title;not null" json:"title"`
	Description  *string    `gorm:"column:description;type:text" json:"description,omitempty"`
	ThumbnailURL *string    `gorm:"column:thumbnail_url;type:text" json:"thumbnail_url,omitempty"`
	Sessions     []*Session `gorm:"foreignKey:ModuleID;references:ID" json:"sessions,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string { return "modules" }

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
