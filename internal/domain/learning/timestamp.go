package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timestamp marks the video second at which a slide becomes current.
type Timestamp struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID        uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	TimestampSeconds int       `gorm:"column:timestamp_seconds;not null;index" json:"timestamp_seconds"`
	SlideURL         *string   `gorm:"column:slide_url;type:text" json:"slide_url,omitempty"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (Timestamp) TableName() string { return "session_timestamps" }

func (t *Timestamp) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
