package learning

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session is one video lesson inside a module. Sessions of a module are
// displayed by ascending OrderIndex.
type Session struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID uuid.UUID `gorm:"type:uuid;not null;index" json:"module_id"`
	Module   *Module   `gorm:"foreignKey:ModuleID;references:ID" json:"module,omitempty"`

	Title        string  `gorm:"column:title;not null" json:"title"`
	Description  *string `gorm:"column:description;type:text" json:"description,omitempty"`
	ThumbnailURL *string `gorm:"column:thumbnail_url;type:text" json:"thumbnail_url,omitempty"`
	YoutubeURL   *string `gorm:"column:youtube_url;type:text" json:"youtube_url,omitempty"`
	SlidesURL    *string `gorm:"column:slides_url;type:text" json:"slides_url,omitempty"`
	TeacherNotes *string `gorm:"column:teacher_notes;type:text" json:"teacher_notes,omitempty"`

	// JSON array of strings.
	ReflectionQuestions datatypes.JSON `gorm:"column:reflection_questions;type:jsonb" json:"reflection_questions,omitempty"`

	OrderIndex int `gorm:"column:order_index;not null;index" json:"order_index"`

	Timestamps []*Timestamp `gorm:"foreignKey:SessionID;references:ID" json:"timestamps,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Session) TableName() string { return "sessions" }

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Questions decodes ReflectionQuestions. Malformed or empty columns yield nil.
func (s *Session) Questions() []string {
	if s == nil || len(s.ReflectionQuestions) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(s.ReflectionQuestions, &out); err != nil {
		return nil
	}
	return out
}

// EncodeQuestions trims each entry and drops blanks. No remaining entries
// encodes as nil so the column stays NULL.
func EncodeQuestions(qs []string) datatypes.JSON {
	kept := make([]string, 0, len(qs))
	for _, q := range qs {
		if q = strings.TrimSpace(q); q != "" {
			kept = append(kept, q)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	raw, _ := json.Marshal(kept)
	return datatypes.JSON(raw)
}
