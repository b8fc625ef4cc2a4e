package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// ActorRef identifies who produced the event. UserID is nil for guests
// and for system-originated events such as cron reminders.
type ActorRef struct {
	UserID *uuid.UUID      `json:"userId,omitempty"`
	Kind   enums.ActorKind `json:"kind"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
