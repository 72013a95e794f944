package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

// Display order of sessions within a module. Duplicate order_index values
// fall back to creation time, then id.
const sessionOrder = "order_index ASC, created_at ASC, id ASC"

type SessionRepo interface {
	Create(dbc dbctx.Context, sessions []*types.Session) ([]*types.Session, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	GetByIDWithModule(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	ListByModuleID(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Session, error)
	ListIDsByModuleID(dbc dbctx.Context, moduleID uuid.UUID) ([]uuid.UUID, error)
	MaxOrderIndex(dbc dbctx.Context, moduleID uuid.UUID) (int, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (int64, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
	DeleteByModuleID(dbc dbctx.Context, moduleID uuid.UUID) (int64, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, sessions []*types.Session) ([]*types.Session, error) {
	if len(sessions) == 0 {
		return []*types.Session{}, nil
	}
	if err := dbc.DB(r.db).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	return r.get(dbc.DB(r.db), id)
}

func (r *sessionRepo) GetByIDWithModule(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	return r.get(dbc.DB(r.db).Preload("Module"), id)
}

func (r *sessionRepo) get(q *gorm.DB, id uuid.UUID) (*types.Session, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Session
	if err := q.Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sessionRepo) ListByModuleID(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Session, error) {
	var out []*types.Session
	if moduleID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("module_id = ?", moduleID).
		Order(sessionOrder).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) ListIDsByModuleID(dbc dbctx.Context, moduleID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if moduleID == uuid.Nil {
		return ids, nil
	}
	if err := dbc.DB(r.db).
		Model(&types.Session{}).
		Where("module_id = ?", moduleID).
		Order(sessionOrder).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *sessionRepo) MaxOrderIndex(dbc dbctx.Context, moduleID uuid.UUID) (int, error) {
	var max int
	if err := dbc.DB(r.db).
		Model(&types.Session{}).
		Where("module_id = ?", moduleID).
		Select("COALESCE(MAX(order_index), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *sessionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return 0, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := dbc.DB(r.db).Model(&types.Session{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *sessionRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Session{})
	return res.RowsAffected, res.Error
}

func (r *sessionRepo) DeleteByModuleID(dbc dbctx.Context, moduleID uuid.UUID) (int64, error) {
	if moduleID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("module_id = ?", moduleID).Delete(&types.Session{})
	return res.RowsAffected, res.Error
}
