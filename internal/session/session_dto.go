package session

import (
	"time"

	"go-attend/internal/geo"
)

type ClockInRequest struct {
	SiteID   string       `json:"site_id" binding:"required,uuid"`
	Position geo.Position `json:"position" binding:"required"`
}

type HeartbeatRequest struct {
	Position geo.Position `json:"position" binding:"required"`
}

type LunchRequest struct {
	Position geo.Position `json:"position" binding:"required"`
}

type ClockOutRequest struct {
	Position geo.Position `json:"position" binding:"required"`
}

type PositionResponse struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	ObservedAt     time.Time `json:"observed_at"`
}

type SessionResponse struct {
	ID            string            `json:"id"`
	ParticipantID string            `json:"participant_id"`
	SiteID        string            `json:"site_id"`
	ProgramID     string            `json:"program_id"`
	State         string            `json:"state"`
	ClockInAt     time.Time         `json:"clock_in_at"`
	ClockOutAt    *time.Time        `json:"clock_out_at,omitempty"`
	LunchStartAt  *time.Time        `json:"lunch_start_at,omitempty"`
	LunchEndAt    *time.Time        `json:"lunch_end_at,omitempty"`
	LastPosition  *PositionResponse `json:"last_position,omitempty"`
	OutsideSince  *time.Time        `json:"outside_since,omitempty"`
	HoursWorked   *float64          `json:"hours_worked,omitempty"`

	// GraceRemainingSeconds is present only while the state is OFFSITE_GRACE.
	GraceRemainingSeconds *int64 `json:"grace_remaining_seconds,omitempty"`

	// Alert is an advisory, human-readable message (for example after an
	// automatic clock-out). Never an error.
	Alert string `json:"alert,omitempty"`
}

type HeartbeatRecordResponse struct {
	ID             string    `json:"id"`
	ObservedAt     time.Time `json:"observed_at"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	Inside         bool      `json:"inside"`
	DistanceMeters float64   `json:"distance_meters"`
}

type SessionDetailResponse struct {
	SessionResponse
	Heartbeats []HeartbeatRecordResponse `json:"heartbeats"`
}
