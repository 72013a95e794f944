package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

type ModuleListOptions struct {
	NewestFirst  bool
	WithSessions bool
}

type ModuleRepo interface {
	Create(dbc dbctx.Context, modules []*types.Module) ([]*types.Module, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Module, error)
	List(dbc dbctx.Context, opts ModuleListOptions) ([]*types.Module, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (int64, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) Create(dbc dbctx.Context, modules []*types.Module) ([]*types.Module, error) {
	if len(modules) == 0 {
		return []*types.Module{}, nil
	}
	if err := dbc.DB(r.db).Create(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *moduleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Module, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Module
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *moduleRepo) List(dbc dbctx.Context, opts ModuleListOptions) ([]*types.Module, error) {
	order := "created_at ASC, id ASC"
	if opts.NewestFirst {
		order = "created_at DESC, id DESC"
	}
	q := dbc.DB(r.db).Order(order)
	if opts.WithSessions {
		q = q.Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order(sessionOrder)
		})
	}
	var out []*types.Module
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moduleRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return 0, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := dbc.DB(r.db).Model(&types.Module{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *moduleRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Module{})
	return res.RowsAffected, res.Error
}
