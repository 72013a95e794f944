package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

type ProfileRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error)
	// Ensure inserts the profile unless one already exists for its id.
	Ensure(dbc dbctx.Context, p *types.Profile) error
	UpdateRole(dbc dbctx.Context, id uuid.UUID, role string) (int64, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Profile
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *profileRepo) Ensure(dbc dbctx.Context, p *types.Profile) error {
	if p == nil || p.ID == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(p).Error
}

func (r *profileRepo) UpdateRole(dbc dbctx.Context, id uuid.UUID, role string) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Model(&types.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"role": role, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
