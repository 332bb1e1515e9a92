package domain

import "time"

// GateEvent is the message published for downstream consumers whenever an
// access verdict is produced. The durable audit row in Postgres is the
// source of truth; this stream is best-effort.
type GateEvent struct {
	Service    string                 `json:"service"`
	EventType  string                 `json:"event_type"`
	MemberID   string                 `json:"member_id"`
	Actor      string                 `json:"actor,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}
