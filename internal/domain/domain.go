package domain

import (
	"github.com/yungbote/belajar-alkitab-backend/internal/domain/learning"
	"github.com/yungbote/belajar-alkitab-backend/internal/domain/user"
)

const (
	RoleLearner = user.RoleLearner
	RoleTeacher = user.RoleTeacher
)

type (
	Module    = learning.Module
	Session   = learning.Session
	Timestamp = learning.Timestamp
	Note      = learning.Note
	Progress  = learning.Progress

	Profile = user.Profile
)
