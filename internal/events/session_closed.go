package events

import "time"

const SessionClosedTopic = "attendance.session.closed.v1"

const (
	CloseReasonManual      = "manual"
	CloseReasonAutoOffsite = "auto_offsite"
	CloseReasonAutoStale   = "auto_stale"
)

type SessionClosedEvent struct {
	EventType     string    `json:"event_type"`
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id"`
	SiteID        string    `json:"site_id"`
	ProgramID     string    `json:"program_id"`
	Reason        string    `json:"reason"`
	HoursWorked   float64   `json:"hours_worked"`
	ClockOutAt    time.Time `json:"clock_out_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}
