package completion

import (
	"math"

	"github.com/google/uuid"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
)

// Summary is a user's completion within one module.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}

// Summarize counts completed entries of sessionIDs. Every entry counts,
// so a session listed twice weighs twice; Total is always len(sessionIDs).
// Rows for sessions outside sessionIDs are ignored and duplicate rows for
// one session count once.
func Summarize(sessionIDs []uuid.UUID, rows []*types.Progress) Summary {
	completed := make(map[uuid.UUID]bool, len(rows))
	for _, r := range rows {
		if r != nil && r.Completed {
			completed[r.SessionID] = true
		}
	}
	done := 0
	for _, id := range sessionIDs {
		if completed[id] {
			done++
		}
	}
	s := Summary{Total: len(sessionIDs), Completed: done}
	s.Percent = percent(done, len(sessionIDs))
	return s
}

// ModuleProgress is Summarize(...).Percent over session entities.
func ModuleProgress(sessions []*types.Session, rows []*types.Progress) int {
	ids := make([]uuid.UUID, 0, len(sessions))
	for _, s := range sessions {
		if s != nil {
			ids = append(ids, s.ID)
		}
	}
	return Summarize(ids, rows).Percent
}

// IsCompleted reports whether rows mark sessionID as completed.
func IsCompleted(sessionID uuid.UUID, rows []*types.Progress) bool {
	for _, r := range rows {
		if r != nil && r.SessionID == sessionID && r.Completed {
			return true
		}
	}
	return false
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) * 100 / float64(total)))
}
