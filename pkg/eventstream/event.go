package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnAppended is emitted after a dialogue turn is stored.
	EventTypeTurnAppended = "mentor.memory.turn_appended"

	// EventTypeSubjectReplaced is emitted after a new subject is stored.
	EventTypeSubjectReplaced = "mentor.memory.subject_replaced"

	// EventTypeMemoryWiped is emitted after every turn was deleted.
	EventTypeMemoryWiped = "mentor.memory.wiped"
)

// MemoryEvent is a transport-neutral payload describing a memory write.
type MemoryEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`

	// TurnID and Key describe the written turn for append and replace events.
	TurnID uint64 `json:"turn_id,omitempty"`
	Key    string `json:"key,omitempty"`

	// Removed is the number of turns deleted by a wipe.
	Removed int `json:"removed,omitempty"`
}

// EventSource identifies the memory the event came from.
type EventSource struct {
	Collection string `json:"collection"`
	Provider   string `json:"provider,omitempty"`

	// Project names the repository under review.
	Project string `json:"project,omitempty"`
}

// NewMemoryEvent stamps a new event with a random id and the current time.
func NewMemoryEvent(eventType string, source EventSource) *MemoryEvent {
	return &MemoryEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
	}
}
