package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleLearner = "learner"
	RoleTeacher = "teacher"
)

// Profile holds the role of an identity. ID equals the identity provider's
// user id.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Role      string    `gorm:"column:role;not null;index" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) IsTeacher() bool { return p != nil && p.Role == RoleTeacher }

func ValidRole(role string) bool {
	return role == RoleLearner || role == RoleTeacher
}
