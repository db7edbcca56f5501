package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func openSession(clockInAt time.Time) *Session {
	return &Session{
		ID:            uuid.New(),
		ParticipantID: uuid.New(),
		SiteID:        uuid.New(),
		ProgramID:     uuid.New(),
		State:         StateClockedIn,
		ClockInAt:     clockInAt,
	}
}

func TestApplyHeartbeat_InsideKeepsStateAndClearsExcursion(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := openSession(start)
	outside := start.Add(10 * time.Minute)
	s.OutsideSince = &outside
	s.State = StateOffsiteGrace

	closed := s.applyHeartbeat(start.Add(12*time.Minute), -6.2, 106.8, 10, true, 15*time.Minute)

	assert.False(t, closed)
	assert.Equal(t, StateClockedIn, s.State)
	assert.Nil(t, s.OutsideSince)
	assert.Equal(t, start.Add(12*time.Minute), *s.LastSeenAt)
}

func TestApplyHeartbeat_InsideDuringLunchReturnsToLunch(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := openSession(start)
	lunch := start.Add(3 * time.Hour)
	s.LunchStartAt = &lunch
	s.State = StateOnLunch

	s.applyHeartbeat(lunch.Add(5*time.Minute), -6.2, 106.8, 10, true, 15*time.Minute)

	assert.Equal(t, StateOnLunch, s.State)
}

func TestApplyHeartbeat_FirstOutsideStartsGrace(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := openSession(start)

	observed := start.Add(30 * time.Minute)
	closed := s.applyHeartbeat(observed, -6.3, 106.9, 10, false, 15*time.Minute)

	assert.False(t, closed)
	assert.Equal(t, StateOffsiteGrace, s.State)
	assert.Equal(t, observed, *s.OutsideSince)
}

func TestApplyHeartbeat_SecondExcursionStartsFreshCountdown(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := openSession(start)

	// 14 minutes outside, then back inside, then outside again.
	s.applyHeartbeat(start.Add(10*time.Minute), -6.3, 106.9, 10, false, 15*time.Minute)
	s.applyHeartbeat(start.Add(24*time.Minute), -6.2, 106.8, 10, true, 15*time.Minute)
	closed := s.applyHeartbeat(start.Add(27*time.Minute), -6.3, 106.9, 10, false, 15*time.Minute)

	assert.False(t, closed)
	assert.Equal(t, StateOffsiteGrace, s.State)
	assert.Equal(t, start.Add(27*time.Minute), *s.OutsideSince)
}

func TestApplyHeartbeat_InsideAfterDeadlineStillClosesAtDeadline(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := openSession(start)
	outside := start.Add(5 * time.Minute)
	s.OutsideSince = &outside
	s.State = StateOffsiteGrace

	// Back inside at 09:21, six minutes past the 09:20 deadline. The
	// rejoin arrives too late: the full window elapsed offsite.
	closed := s.applyHeartbeat(start.Add(21*time.Minute), -6.2, 106.8, 10, true, 15*time.Minute)

	assert.True(t, closed)
	assert.Equal(t, StateAutoClockedOut, s.State)
	assert.Equal(t, start.Add(20*time.Minute), *s.ClockOutAt)
}

func TestApplyHeartbeat_PastDeadlineClosesAtDeadline(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := openSession(start)

	outsideAt := start.Add(time.Hour)
	s.applyHeartbeat(outsideAt, -6.3, 106.9, 10, false, 15*time.Minute)

	// The next reading arrives well past the deadline; the close timestamp
	// must be the deadline, not the reading's time.
	closed := s.applyHeartbeat(outsideAt.Add(40*time.Minute), -6.3, 106.9, 10, false, 15*time.Minute)

	assert.True(t, closed)
	assert.Equal(t, StateAutoClockedOut, s.State)
	assert.Equal(t, outsideAt.Add(15*time.Minute), *s.ClockOutAt)
	assert.NotNil(t, s.HoursWorked)
	assert.InDelta(t, 1.25, *s.HoursWorked, 1e-9)
}

func TestClose_DeductsLunchFromHours(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := openSession(start)
	lunchStart := start.Add(3 * time.Hour)
	lunchEnd := lunchStart.Add(45 * time.Minute)
	s.LunchStartAt = &lunchStart
	s.LunchEndAt = &lunchEnd

	s.close(start.Add(8*time.Hour), StateClockedOut)

	assert.Equal(t, StateClockedOut, s.State)
	assert.InDelta(t, 7.25, *s.HoursWorked, 1e-9)
}

func TestClose_ClampsOpenLunchToClockOut(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := openSession(start)
	lunchStart := start.Add(7 * time.Hour)
	s.LunchStartAt = &lunchStart
	s.State = StateOnLunch

	s.close(start.Add(8*time.Hour), StateClockedOut)

	// The open lunch ends at clock-out: one hour deducted, not more.
	assert.Equal(t, start.Add(8*time.Hour), *s.LunchEndAt)
	assert.InDelta(t, 7.0, *s.HoursWorked, 1e-9)
}

func TestClose_NeverNegativeHours(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := openSession(start)

	s.close(start.Add(-time.Minute), StateClockedOut)

	assert.Equal(t, 0.0, *s.HoursWorked)
}

func TestGraceDeadline(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := openSession(start)

	assert.True(t, s.graceDeadline(15*time.Minute).IsZero())

	outside := start.Add(time.Hour)
	s.OutsideSince = &outside
	assert.Equal(t, outside.Add(15*time.Minute), s.graceDeadline(15*time.Minute))
}
