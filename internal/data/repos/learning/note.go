package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

type NoteRepo interface {
	Create(dbc dbctx.Context, notes []*types.Note) ([]*types.Note, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Note, error)
	// ListByUserID returns newest first with Module and Session preloaded.
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Note, error)
	ListByUserAndSession(dbc dbctx.Context, userID, sessionID uuid.UUID) ([]*types.Note, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (int64, error)
	ClearTimestamp(dbc dbctx.Context, timestampIDs []uuid.UUID) (int64, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
	DeleteBySessionIDs(dbc dbctx.Context, sessionIDs []uuid.UUID) (int64, error)
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return &noteRepo{db: db, log: baseLog.With("repo", "NoteRepo")}
}

func (r *noteRepo) Create(dbc dbctx.Context, notes []*types.Note) ([]*types.Note, error) {
	if len(notes) == 0 {
		return []*types.Note{}, nil
	}
	if err := dbc.DB(r.db).Omit("Module", "Session").Create(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Note, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Note
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *noteRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Note, error) {
	var out []*types.Note
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("Module").
		Preload("Session").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *noteRepo) ListByUserAndSession(dbc dbctx.Context, userID, sessionID uuid.UUID) ([]*types.Note, error) {
	var out []*types.Note
	if userID == uuid.Nil || sessionID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *noteRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return 0, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := dbc.DB(r.db).Model(&types.Note{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

// ClearTimestamp detaches notes from deleted timestamps; the notes themselves stay.
func (r *noteRepo) ClearTimestamp(dbc dbctx.Context, timestampIDs []uuid.UUID) (int64, error) {
	if len(timestampIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Model(&types.Note{}).
		Where("timestamp_id IN ?", timestampIDs).
		Updates(map[string]interface{}{"timestamp_id": nil, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (r *noteRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Note{})
	return res.RowsAffected, res.Error
}

func (r *noteRepo) DeleteBySessionIDs(dbc dbctx.Context, sessionIDs []uuid.UUID) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("session_id IN ?", sessionIDs).Delete(&types.Note{})
	return res.RowsAffected, res.Error
}
