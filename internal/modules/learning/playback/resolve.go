package playback

import (
	"sort"

	"github.com/google/uuid"

	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
)

// sortedCopy drops nil entries and stable-sorts by second, so entries with
// equal seconds keep their input order.
func sortedCopy(ts []*types.Timestamp) []*types.Timestamp {
	out := make([]*types.Timestamp, 0, len(ts))
	for _, t := range ts {
		if t != nil {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampSeconds < out[j].TimestampSeconds
	})
	return out
}

// activeIndex returns the index of the last entry with seconds <= t in a
// sorted slice, or -1.
func activeIndex(sorted []*types.Timestamp, t int) int {
	if t < 0 {
		return -1
	}
	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].TimestampSeconds > t
	})
	return i - 1
}

// ResolveActive returns the timestamp with the greatest seconds not after t.
// It returns nil for an empty list, a negative t, or a t before the first
// entry. Among entries sharing a second the later one in input order wins.
func ResolveActive(ts []*types.Timestamp, t int) *types.Timestamp {
	sorted := sortedCopy(ts)
	if i := activeIndex(sorted, t); i >= 0 {
		return sorted[i]
	}
	return nil
}

// State is what the player should show at a playback position.
type State struct {
	Seconds     int        `json:"seconds"`
	Position    string     `json:"position"`
	TimestampID *uuid.UUID `json:"timestamp_id,omitempty"`
	SlideURL    *string    `json:"slide_url,omitempty"`
	// NextChangeAt is the second of the next timestamp, if any.
	NextChangeAt *int `json:"next_change_at,omitempty"`
}

// Timeline resolves playback positions for one session.
type Timeline struct {
	entries  []*types.Timestamp
	fallback *string
}

// NewTimeline copies and sorts ts. fallbackSlide is the session's deck,
// shown before the first timestamp carrying a slide.
func NewTimeline(ts []*types.Timestamp, fallbackSlide *string) *Timeline {
	return &Timeline{entries: sortedCopy(ts), fallback: fallbackSlide}
}

func (tl *Timeline) Len() int { return len(tl.entries) }

func (tl *Timeline) Active(t int) *types.Timestamp {
	if i := activeIndex(tl.entries, t); i >= 0 {
		return tl.entries[i]
	}
	return nil
}

// StateAt resolves t. A timestamp without a slide keeps the most recent
// earlier slide on screen.
func (tl *Timeline) StateAt(t int) State {
	if t < 0 {
		t = 0
	}
	st := State{Seconds: t, Position: FormatSeconds(t), SlideURL: tl.fallback}
	i := activeIndex(tl.entries, t)
	if i >= 0 {
		id := tl.entries[i].ID
		st.TimestampID = &id
		for j := i; j >= 0; j-- {
			if u := tl.entries[j].SlideURL; u != nil && *u != "" {
				st.SlideURL = u
				break
			}
		}
	}
	if i+1 < len(tl.entries) {
		next := tl.entries[i+1].TimestampSeconds
		st.NextChangeAt = &next
	}
	return st
}
