package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos/learning"
	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos/user"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

type ModuleRepo = learning.ModuleRepo
type ModuleListOptions = learning.ModuleListOptions
type SessionRepo = learning.SessionRepo
type TimestampRepo = learning.TimestampRepo
type NoteRepo = learning.NoteRepo
type ProgressRepo = learning.ProgressRepo

type ProfileRepo = user.ProfileRepo

func NewModuleRepo(db *gorm.DB, log *logger.Logger) ModuleRepo { return learning.NewModuleRepo(db, log) }
func NewSessionRepo(db *gorm.DB, log *logger.Logger) SessionRepo {
	return learning.NewSessionRepo(db, log)
}
func NewTimestampRepo(db *gorm.DB, log *logger.Logger) TimestampRepo {
	return learning.NewTimestampRepo(db, log)
}
func NewNoteRepo(db *gorm.DB, log *logger.Logger) NoteRepo { return learning.NewNoteRepo(db, log) }
func NewProgressRepo(db *gorm.DB, log *logger.Logger) ProgressRepo {
	return learning.NewProgressRepo(db, log)
}
func NewProfileRepo(db *gorm.DB, log *logger.Logger) ProfileRepo { return user.NewProfileRepo(db, log) }
