package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

type TimestampRepo interface {
	Create(dbc dbctx.Context, rows []*types.Timestamp) ([]*types.Timestamp, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Timestamp, error)
	ListBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Timestamp, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (int64, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
	DeleteBySessionIDs(dbc dbctx.Context, sessionIDs []uuid.UUID) (int64, error)
}

type timestampRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimestampRepo(db *gorm.DB, baseLog *logger.Logger) TimestampRepo {
	return &timestampRepo{db: db, log: baseLog.With("repo", "TimestampRepo")}
}

func (r *timestampRepo) Create(dbc dbctx.Context, rows []*types.Timestamp) ([]*types.Timestamp, error) {
	if len(rows) == 0 {
		return []*types.Timestamp{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *timestampRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Timestamp, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Timestamp
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// ListBySessionID returns the session's timestamps by ascending second.
func (r *timestampRepo) ListBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Timestamp, error) {
	var out []*types.Timestamp
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Order("timestamp_seconds ASC, created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *timestampRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return 0, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := dbc.DB(r.db).Model(&types.Timestamp{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *timestampRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Timestamp{})
	return res.RowsAffected, res.Error
}

func (r *timestampRepo) DeleteBySessionIDs(dbc dbctx.Context, sessionIDs []uuid.UUID) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("session_id IN ?", sessionIDs).Delete(&types.Timestamp{})
	return res.RowsAffected, res.Error
}
