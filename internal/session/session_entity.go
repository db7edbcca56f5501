package session

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session states. There is no stored "idle": idle means no open row exists
// for the participant.
const (
	StateClockedIn      = "CLOCKED_IN"
	StateOnLunch        = "ON_LUNCH"
	StateOffsiteGrace   = "OFFSITE_GRACE"
	StateClockedOut     = "CLOCKED_OUT"
	StateAutoClockedOut = "AUTO_CLOCKED_OUT"
)

// Session is one open or closed shift. A participant has at most one row
// with clock_out_at IS NULL, enforced by a partial unique index.
type Session struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ParticipantID uuid.UUID      `gorm:"type:uuid;not null;index"`
	SiteID        uuid.UUID      `gorm:"type:uuid;not null;index"`
	ProgramID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	State         string         `gorm:"type:varchar(20);not null"`
	ClockInAt     time.Time      `gorm:"type:timestamptz;not null"`
	ClockOutAt    *time.Time     `gorm:"type:timestamptz"`
	LunchStartAt  *time.Time     `gorm:"type:timestamptz"`
	LunchEndAt    *time.Time     `gorm:"type:timestamptz"`
	LastLat       *float64       `gorm:"column:last_lat"`
	LastLng       *float64       `gorm:"column:last_lng"`
	LastAccuracyM *float64       `gorm:"column:last_accuracy_m"`
	LastSeenAt    *time.Time     `gorm:"column:last_seen_at;type:timestamptz"`
	OutsideSince  *time.Time     `gorm:"type:timestamptz"`
	HoursWorked   *float64       `gorm:"column:hours_worked"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Session) TableName() string {
	return "attendance_sessions"
}

// HeartbeatRecord is an append-only observation; never mutated.
type HeartbeatRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ObservedAt     time.Time `gorm:"type:timestamptz;not null"`
	Latitude       float64   `gorm:"not null"`
	Longitude      float64   `gorm:"not null"`
	AccuracyMeters float64   `gorm:"not null"`
	Inside         bool      `gorm:"not null"`
	DistanceMeters float64   `gorm:"not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (HeartbeatRecord) TableName() string {
	return "heartbeat_records"
}

func (s *Session) IsClosed() bool {
	return s.ClockOutAt != nil
}

func (s *Session) lunchOpen() bool {
	return s.LunchStartAt != nil && s.LunchEndAt == nil
}

// lunchDuration is the lunch interval clamped to the closing timestamp, so a
// lunch never ended does not count past clock-out.
func (s *Session) lunchDuration(closedAt time.Time) time.Duration {
	if s.LunchStartAt == nil {
		return 0
	}
	end := closedAt
	if s.LunchEndAt != nil {
		end = *s.LunchEndAt
	}
	if end.Before(*s.LunchStartAt) {
		return 0
	}
	return end.Sub(*s.LunchStartAt)
}

// close seals the session. hoursWorked is computed exactly once, here.
func (s *Session) close(at time.Time, state string) {
	closedAt := at
	s.ClockOutAt = &closedAt
	s.State = state
	if s.lunchOpen() {
		s.LunchEndAt = &closedAt
	}
	worked := closedAt.Sub(s.ClockInAt) - s.lunchDuration(closedAt)
	if worked < 0 {
		worked = 0
	}
	hours := worked.Hours()
	s.HoursWorked = &hours
}

// graceDeadline is the instant the session auto-closes if the participant
// stays outside. Zero time when no excursion is running.
func (s *Session) graceDeadline(graceWindow time.Duration) time.Time {
	if s.OutsideSince == nil {
		return time.Time{}
	}
	return s.OutsideSince.Add(graceWindow)
}

// insideState is the open state to return to when a position confirms the
// participant inside the boundary.
func (s *Session) insideState() string {
	if s.lunchOpen() {
		return StateOnLunch
	}
	return StateClockedIn
}

// applyHeartbeat folds one geofence evaluation into the session. It assumes
// the caller already rejected stale observations and closed sessions. The
// returned bool reports whether the heartbeat auto-closed the session; the
// auto-close timestamp is outsideSince + graceWindow, not processing time.
func (s *Session) applyHeartbeat(observedAt time.Time, lat, lng, accuracy float64, inside bool, graceWindow time.Duration) bool {
	s.LastLat = &lat
	s.LastLng = &lng
	s.LastAccuracyM = &accuracy
	seenAt := observedAt
	s.LastSeenAt = &seenAt

	// An excursion whose deadline already passed closes the session even
	// when this reading is back inside: the participant was continuously
	// offsite for the whole window, and a late rejoin cannot undo that.
	if s.OutsideSince != nil {
		deadline := s.graceDeadline(graceWindow)
		if !observedAt.Before(deadline) {
			s.close(deadline, StateAutoClockedOut)
			return true
		}
	}

	if inside {
		// Rejoining clears the countdown; prior excursions do not accumulate.
		s.OutsideSince = nil
		s.State = s.insideState()
		return false
	}

	if s.OutsideSince == nil {
		since := observedAt
		s.OutsideSince = &since
		s.State = StateOffsiteGrace
		return false
	}

	s.State = StateOffsiteGrace
	return false
}
