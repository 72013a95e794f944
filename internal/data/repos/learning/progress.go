package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

type ProgressRepo interface {
	// Upsert writes the row keyed by (user_id, session_id). Repeating the
	// same call leaves exactly one row.
	Upsert(dbc dbctx.Context, row *types.Progress) error
	GetByUserAndSession(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.Progress, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Progress, error)
	ListByUserAndSessionIDs(dbc dbctx.Context, userID uuid.UUID, sessionIDs []uuid.UUID) ([]*types.Progress, error)
	DeleteBySessionIDs(dbc dbctx.Context, sessionIDs []uuid.UUID) (int64, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) Upsert(dbc dbctx.Context, row *types.Progress) error {
	if row == nil || row.UserID == uuid.Nil || row.SessionID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
		}).
		Create(row).Error
}

func (r *progressRepo) GetByUserAndSession(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.Progress, error) {
	if userID == uuid.Nil || sessionID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Progress
	if err := dbc.DB(r.db).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *progressRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Progress, error) {
	var out []*types.Progress
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) ListByUserAndSessionIDs(dbc dbctx.Context, userID uuid.UUID, sessionIDs []uuid.UUID) ([]*types.Progress, error) {
	var out []*types.Progress
	if userID == uuid.Nil || len(sessionIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND session_id IN ?", userID, sessionIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) DeleteBySessionIDs(dbc dbctx.Context, sessionIDs []uuid.UUID) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("session_id IN ?", sessionIDs).Delete(&types.Progress{})
	return res.RowsAffected, res.Error
}
