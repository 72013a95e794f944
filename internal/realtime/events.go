package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SSEEvent string

const (
	SSEEventModuleChanged     SSEEvent = "ModuleChanged"
	SSEEventModuleDeleted     SSEEvent = "ModuleDeleted"
	SSEEventSessionChanged    SSEEvent = "SessionChanged"
	SSEEventSessionDeleted    SSEEvent = "SessionDeleted"
	SSEEventTimestampsChanged SSEEvent = "TimestampsChanged"
	SSEEventProgressChanged   SSEEvent = "ProgressChanged"
	SSEEventNoteChanged       SSEEvent = "NoteChanged"
)

// ChannelContent carries catalogue changes every client may see. Per-user
// events go to the channel named by the user id.
const ChannelContent = "content"

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// ChangeEvent describes a committed write. Zero ids mean "not applicable".
type ChangeEvent struct {
	Kind      SSEEvent  `json:"kind"`
	ModuleID  uuid.UUID `json:"module_id,omitempty"`
	SessionID uuid.UUID `json:"session_id,omitempty"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	At        time.Time `json:"at"`
}

// Personal reports whether the event belongs to a single user's channel.
func (e ChangeEvent) Personal() bool {
	return e.Kind == SSEEventProgressChanged || e.Kind == SSEEventNoteChanged
}

func (e ChangeEvent) Message() SSEMessage {
	ch := ChannelContent
	if e.Personal() && e.UserID != uuid.Nil {
		ch = e.UserID.String()
	}
	return SSEMessage{Channel: ch, Event: e.Kind, Data: e}
}

// ChangeEventFrom recovers a ChangeEvent from a message, including messages
// whose Data was decoded from JSON into a generic map.
func ChangeEventFrom(msg SSEMessage) (ChangeEvent, bool) {
	switch d := msg.Data.(type) {
	case ChangeEvent:
		return d, true
	case *ChangeEvent:
		if d != nil {
			return *d, true
		}
		return ChangeEvent{}, false
	case nil:
		return ChangeEvent{}, false
	}
	raw, err := json.Marshal(msg.Data)
	if err != nil {
		return ChangeEvent{}, false
	}
	var ev ChangeEvent
	if err := json.Unmarshal(raw, &ev); err != nil || ev.Kind == "" {
		return ChangeEvent{}, false
	}
	return ev, true
}
