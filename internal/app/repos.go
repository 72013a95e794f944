package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

type Repos struct {
	Module    repos.ModuleRepo
	Session   repos.SessionRepo
	Timestamp repos.TimestampRepo
	Note      repos.NoteRepo
	Progress  repos.ProgressRepo
	Profile   repos.ProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Module:    repos.NewModuleRepo(db, log),
		Session:   repos.NewSessionRepo(db, log),
		Timestamp: repos.NewTimestampRepo(db, log),
		Note:      repos.NewNoteRepo(db, log),
		Progress:  repos.NewProgressRepo(db, log),
		Profile:   repos.NewProfileRepo(db, log),
	}
}
