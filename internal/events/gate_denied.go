package events

import "time"

const GateDeniedTopic = "attendance.gate.denied.v1"

type GateDeniedEvent struct {
	EventType      string    `json:"event_type"`
	ParticipantID  string    `json:"participant_id"`
	SiteID         string    `json:"site_id,omitempty"`
	Reason         string    `json:"reason"`
	AmountDueCents int64     `json:"amount_due_cents,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
