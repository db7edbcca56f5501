package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-attend/internal/billing"
	"go-attend/internal/events"
	"go-attend/internal/geo"
	"go-attend/internal/messaging/kafka"
	sessionerrors "go-attend/internal/session/errors"
	"go-attend/internal/shared/contextutil"
	"go-attend/internal/site"
	siteerrors "go-attend/internal/site/errors"
)

// DefaultGraceWindow is the maximum continuous offsite time before the
// server closes the session on its own.
const DefaultGraceWindow = 15 * time.Minute

const (
	alertAutoClockedOut = "You have been automatically clocked out after leaving the training site."
	alertSessionClosed  = "This session is closed."
)

// GateDeniedError carries the billing decision so the handler can surface
// the amount due and payment reference alongside the denial.
type GateDeniedError struct {
	Decision billing.Decision
}

func (e *GateDeniedError) Error() string {
	if e.Decision.AmountDueCents > 0 {
		return fmt.Sprintf("%s ($%.2f owed)", e.Decision.Reason, float64(e.Decision.AmountDueCents)/100)
	}
	return e.Decision.Reason
}

type Config struct {
	GraceWindow time.Duration
	StaleWindow time.Duration
}

//go:generate mockgen -source=session_service.go -destination=mock/session_service_mock.go -package=mock
type Service interface {
	ClockIn(ctx context.Context, participantID string, req ClockInRequest) (SessionResponse, error)
	Heartbeat(ctx context.Context, participantID, sessionID string, req HeartbeatRequest) (SessionResponse, error)
	StartLunch(ctx context.Context, participantID, sessionID string, req LunchRequest) (SessionResponse, error)
	EndLunch(ctx context.Context, participantID, sessionID string, req LunchRequest) (SessionResponse, error)
	ClockOut(ctx context.Context, participantID, sessionID string, req ClockOutRequest) (SessionResponse, error)
	GetAll(ctx context.Context, participantID string) ([]SessionResponse, error)
	GetByID(ctx context.Context, participantID, sessionID string) (SessionDetailResponse, error)

	// Sweep is the watchdog pass; see session_watchdog.go.
	Sweep(ctx context.Context) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	sites  site.Repository
	gate   billing.Gate
	eval   *geo.Evaluator
	outbox kafka.OutboxRepository
	locks  *sessionLocks
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	sites site.Repository,
	gate billing.Gate,
	eval *geo.Evaluator,
	outbox kafka.OutboxRepository,
	cfg Config,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("session.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("session.service")
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = DefaultGraceWindow
	}
	if cfg.StaleWindow <= 0 {
		cfg.StaleWindow = DefaultStaleWindow
	}
	return &service{
		db:     db,
		repo:   repo,
		sites:  sites,
		gate:   gate,
		eval:   eval,
		outbox: outbox,
		locks:  newSessionLocks(),
		cfg:    cfg,
		logger: l,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) ClockIn(ctx context.Context, participantID string, req ClockInRequest) (SessionResponse, error) {
	participantUUID, err := uuid.Parse(participantID)
	if err != nil {
		return SessionResponse{}, sessionerrors.ErrInvalidParticipantID
	}

	decision, err := s.gate.CanAccrueHours(ctx, participantID)
	if err != nil {
		return SessionResponse{}, err
	}
	if !decision.Allowed {
		s.publishGateDenied(ctx, participantID, req.SiteID, decision)
		return SessionResponse{}, &GateDeniedError{Decision: decision}
	}

	siteUUID, err := uuid.Parse(req.SiteID)
	if err != nil {
		return SessionResponse{}, siteerrors.ErrInvalidSiteID
	}
	trainingSite, err := s.sites.GetByID(ctx, siteUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionResponse{}, siteerrors.ErrSiteNotFound
		}
		return SessionResponse{}, err
	}
	if !trainingSite.IsActive {
		return SessionResponse{}, siteerrors.ErrSiteInactive
	}

	eval, err := s.eval.Evaluate(req.Position, trainingSite.Boundary())
	if err != nil {
		return SessionResponse{}, err
	}
	if !eval.Inside {
		return SessionResponse{}, sessionerrors.ErrClockInOutsideBoundary
	}

	unlock := s.locks.Lock("participant:" + participantID)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SessionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	_, err = qtx.FindOpenByParticipant(ctx, participantID)
	if err == nil {
		return SessionResponse{}, sessionerrors.ErrSessionAlreadyOpen
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SessionResponse{}, err
	}

	now := s.now()
	lat, lng, acc := req.Position.Latitude, req.Position.Longitude, req.Position.AccuracyMeters
	observedAt := req.Position.ObservedAt
	row := &Session{
		ID:            uuid.New(),
		ParticipantID: participantUUID,
		SiteID:        trainingSite.ID,
		ProgramID:     trainingSite.ProgramID,
		State:         StateClockedIn,
		ClockInAt:     now,
		LastLat:       &lat,
		LastLng:       &lng,
		LastAccuracyM: &acc,
		LastSeenAt:    &observedAt,
	}

	if err := qtx.Create(ctx, row); err != nil {
		if isOpenSessionConflict(err) {
			return SessionResponse{}, sessionerrors.ErrSessionAlreadyOpen
		}
		return SessionResponse{}, err
	}

	if err := qtx.AppendHeartbeat(ctx, &HeartbeatRecord{
		ID:             uuid.New(),
		SessionID:      row.ID,
		ObservedAt:     req.Position.ObservedAt,
		Latitude:       lat,
		Longitude:      lng,
		AccuracyMeters: acc,
		Inside:         true,
		DistanceMeters: eval.DistanceMeters,
	}); err != nil {
		return SessionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return SessionResponse{}, err
	}

	s.logger.Info("clock-in accepted",
		zap.String("session_id", row.ID.String()),
		zap.String("participant_id", participantID),
		zap.String("site_id", req.SiteID),
		zap.Float64("distance_m", eval.DistanceMeters),
	)
	return s.mapToResponse(*row, ""), nil
}

func (s *service) Heartbeat(ctx context.Context, participantID, sessionID string, req HeartbeatRequest) (SessionResponse, error) {
	unlock := s.locks.Lock("session:" + sessionID)
	defer unlock()

	row, err := s.loadOwned(ctx, participantID, sessionID)
	if err != nil {
		return SessionResponse{}, err
	}

	// A heartbeat against a closed session is how the client learns about
	// an auto clock-out; it is an informational response, not an error.
	if row.IsClosed() {
		return s.mapToResponse(*row, s.closedAlert(*row)), nil
	}

	decision, err := s.gate.CanAccrueHours(ctx, participantID)
	if err != nil {
		return SessionResponse{}, err
	}
	if !decision.Allowed {
		s.publishGateDenied(ctx, participantID, row.SiteID.String(), decision)
		return SessionResponse{}, &GateDeniedError{Decision: decision}
	}

	if row.LastSeenAt != nil && !req.Position.ObservedAt.After(*row.LastSeenAt) {
		return SessionResponse{}, sessionerrors.ErrStaleHeartbeat
	}

	trainingSite, err := s.sites.GetByID(ctx, row.SiteID)
	if err != nil {
		return SessionResponse{}, err
	}
	eval, err := s.eval.Evaluate(req.Position, trainingSite.Boundary())
	if err != nil {
		// Unusable reading: no transition, the client retries next tick.
		return SessionResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SessionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	autoClosed := row.applyHeartbeat(
		req.Position.ObservedAt,
		req.Position.Latitude,
		req.Position.Longitude,
		req.Position.AccuracyMeters,
		eval.Inside,
		s.cfg.GraceWindow,
	)

	if err := qtx.AppendHeartbeat(ctx, &HeartbeatRecord{
		ID:             uuid.New(),
		SessionID:      row.ID,
		ObservedAt:     req.Position.ObservedAt,
		Latitude:       req.Position.Latitude,
		Longitude:      req.Position.Longitude,
		AccuracyMeters: req.Position.AccuracyMeters,
		Inside:         eval.Inside,
		DistanceMeters: eval.DistanceMeters,
	}); err != nil {
		return SessionResponse{}, err
	}
	if err := qtx.Update(ctx, row); err != nil {
		return SessionResponse{}, err
	}

	alert := ""
	if autoClosed {
		alert = alertAutoClockedOut
		if err := s.appendSessionClosedEvent(ctx, tx, row, events.CloseReasonAutoOffsite); err != nil {
			return SessionResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return SessionResponse{}, err
	}

	if autoClosed {
		s.logger.Info("session auto clocked out on heartbeat",
			zap.String("session_id", sessionID),
			zap.String("participant_id", participantID),
			zap.Timep("clock_out_at", row.ClockOutAt),
		)
	}
	return s.mapToResponse(*row, alert), nil
}

func (s *service) StartLunch(ctx context.Context, participantID, sessionID string, req LunchRequest) (SessionResponse, error) {
	return s.lunchTransition(ctx, participantID, sessionID, req, true)
}

func (s *service) EndLunch(ctx context.Context, participantID, sessionID string, req LunchRequest) (SessionResponse, error) {
	return s.lunchTransition(ctx, participantID, sessionID, req, false)
}

func (s *service) lunchTransition(ctx context.Context, participantID, sessionID string, req LunchRequest, start bool) (SessionResponse, error) {
	unlock := s.locks.Lock("session:" + sessionID)
	defer unlock()

	row, err := s.loadOwned(ctx, participantID, sessionID)
	if err != nil {
		return SessionResponse{}, err
	}
	if row.IsClosed() {
		return SessionResponse{}, sessionerrors.ErrSessionClosed
	}

	decision, err := s.gate.CanAccrueHours(ctx, participantID)
	if err != nil {
		return SessionResponse{}, err
	}
	if !decision.Allowed {
		s.publishGateDenied(ctx, participantID, row.SiteID.String(), decision)
		return SessionResponse{}, &GateDeniedError{Decision: decision}
	}

	// Validate the transition before folding in the position so a doomed
	// request cannot move the geofence bookkeeping.
	if start {
		if row.LunchStartAt != nil {
			return SessionResponse{}, sessionerrors.ErrLunchAlreadyTaken
		}
		if row.State != StateClockedIn {
			return SessionResponse{}, sessionerrors.ErrLunchWhileOffsite
		}
	} else {
		if !row.lunchOpen() {
			return SessionResponse{}, sessionerrors.ErrLunchNotStarted
		}
	}

	if row.LastSeenAt != nil && !req.Position.ObservedAt.After(*row.LastSeenAt) {
		return SessionResponse{}, sessionerrors.ErrStaleHeartbeat
	}

	trainingSite, err := s.sites.GetByID(ctx, row.SiteID)
	if err != nil {
		return SessionResponse{}, err
	}
	eval, err := s.eval.Evaluate(req.Position, trainingSite.Boundary())
	if err != nil {
		return SessionResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SessionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	autoClosed := row.applyHeartbeat(
		req.Position.ObservedAt,
		req.Position.Latitude,
		req.Position.Longitude,
		req.Position.AccuracyMeters,
		eval.Inside,
		s.cfg.GraceWindow,
	)

	if err := qtx.AppendHeartbeat(ctx, &HeartbeatRecord{
		ID:             uuid.New(),
		SessionID:      row.ID,
		ObservedAt:     req.Position.ObservedAt,
		Latitude:       req.Position.Latitude,
		Longitude:      req.Position.Longitude,
		AccuracyMeters: req.Position.AccuracyMeters,
		Inside:         eval.Inside,
		DistanceMeters: eval.DistanceMeters,
	}); err != nil {
		return SessionResponse{}, err
	}

	alert := ""
	switch {
	case autoClosed:
		// The position itself proved the grace window already elapsed.
		alert = alertAutoClockedOut
		if err := s.appendSessionClosedEvent(ctx, tx, row, events.CloseReasonAutoOffsite); err != nil {
			return SessionResponse{}, err
		}
	case start:
		if row.State != StateClockedIn {
			return SessionResponse{}, sessionerrors.ErrLunchWhileOffsite
		}
		now := s.now()
		row.LunchStartAt = &now
		row.State = StateOnLunch
	default:
		now := s.now()
		row.LunchEndAt = &now
		if row.OutsideSince == nil {
			row.State = StateClockedIn
		} else {
			row.State = StateOffsiteGrace
		}
	}

	if err := qtx.Update(ctx, row); err != nil {
		return SessionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return SessionResponse{}, err
	}

	return s.mapToResponse(*row, alert), nil
}

func (s *service) ClockOut(ctx context.Context, participantID, sessionID string, req ClockOutRequest) (SessionResponse, error) {
	unlock := s.locks.Lock("session:" + sessionID)
	defer unlock()

	row, err := s.loadOwned(ctx, participantID, sessionID)
	if err != nil {
		return SessionResponse{}, err
	}

	// Idempotent: a second clock-out returns the same terminal record.
	if row.IsClosed() {
		return s.mapToResponse(*row, s.closedAlert(*row)), nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SessionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	now := s.now()
	autoClosed := false

	// Fold in the final position when it is usable and not stale; a user
	// must still be able to clock out on a bad reading.
	if row.LastSeenAt == nil || req.Position.ObservedAt.After(*row.LastSeenAt) {
		if trainingSite, siteErr := s.sites.GetByID(ctx, row.SiteID); siteErr == nil {
			if eval, evalErr := s.eval.Evaluate(req.Position, trainingSite.Boundary()); evalErr == nil {
				autoClosed = row.applyHeartbeat(
					req.Position.ObservedAt,
					req.Position.Latitude,
					req.Position.Longitude,
					req.Position.AccuracyMeters,
					eval.Inside,
					s.cfg.GraceWindow,
				)
				if hbErr := qtx.AppendHeartbeat(ctx, &HeartbeatRecord{
					ID:             uuid.New(),
					SessionID:      row.ID,
					ObservedAt:     req.Position.ObservedAt,
					Latitude:       req.Position.Latitude,
					Longitude:      req.Position.Longitude,
					AccuracyMeters: req.Position.AccuracyMeters,
					Inside:         eval.Inside,
					DistanceMeters: eval.DistanceMeters,
				}); hbErr != nil {
					return SessionResponse{}, hbErr
				}
			}
		}
	}

	alert := ""
	reason := events.CloseReasonManual
	if autoClosed {
		// The grace deadline had already passed; the terminal state is the
		// system-forced one, stamped at the deadline rather than now.
		alert = alertAutoClockedOut
		reason = events.CloseReasonAutoOffsite
	} else {
		row.close(now, StateClockedOut)
	}

	if err := qtx.Update(ctx, row); err != nil {
		return SessionResponse{}, err
	}
	if err := s.appendSessionClosedEvent(ctx, tx, row, reason); err != nil {
		return SessionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return SessionResponse{}, err
	}

	s.logger.Info("session clocked out",
		zap.String("session_id", sessionID),
		zap.String("participant_id", participantID),
		zap.String("reason", reason),
		zap.Float64p("hours_worked", row.HoursWorked),
	)
	return s.mapToResponse(*row, alert), nil
}

func (s *service) GetAll(ctx context.Context, participantID string) ([]SessionResponse, error) {
	if _, err := uuid.Parse(participantID); err != nil {
		return nil, sessionerrors.ErrInvalidParticipantID
	}
	rows, err := s.repo.FindAllByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	res := make([]SessionResponse, len(rows))
	for i, r := range rows {
		res[i] = s.mapToResponse(r, "")
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, participantID, sessionID string) (SessionDetailResponse, error) {
	row, err := s.loadOwned(ctx, participantID, sessionID)
	if err != nil {
		return SessionDetailResponse{}, err
	}

	heartbeats, err := s.repo.FindHeartbeats(ctx, sessionID)
	if err != nil {
		return SessionDetailResponse{}, err
	}

	detail := SessionDetailResponse{
		SessionResponse: s.mapToResponse(*row, ""),
		Heartbeats:      make([]HeartbeatRecordResponse, len(heartbeats)),
	}
	for i, hb := range heartbeats {
		detail.Heartbeats[i] = HeartbeatRecordResponse{
			ID:             hb.ID.String(),
			ObservedAt:     hb.ObservedAt,
			Latitude:       hb.Latitude,
			Longitude:      hb.Longitude,
			AccuracyMeters: hb.AccuracyMeters,
			Inside:         hb.Inside,
			DistanceMeters: hb.DistanceMeters,
		}
	}
	return detail, nil
}

func (s *service) loadOwned(ctx context.Context, participantID, sessionID string) (*Session, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, sessionerrors.ErrInvalidSessionID
	}
	row, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sessionerrors.ErrSessionNotFound
		}
		return nil, err
	}
	if row.ParticipantID.String() != participantID {
		return nil, sessionerrors.ErrNotSessionOwner
	}
	return row, nil
}

func (s *service) closedAlert(row Session) string {
	if row.State == StateAutoClockedOut {
		return alertAutoClockedOut
	}
	return alertSessionClosed
}

func (s *service) appendSessionClosedEvent(ctx context.Context, tx *sql.Tx, row *Session, reason string) error {
	event := events.SessionClosedEvent{
		EventType:     "session_closed",
		SessionID:     row.ID.String(),
		ParticipantID: row.ParticipantID.String(),
		SiteID:        row.SiteID.String(),
		ProgramID:     row.ProgramID.String(),
		Reason:        reason,
		ClockOutAt:    *row.ClockOutAt,
		OccurredAt:    s.now(),
	}
	if row.HoursWorked != nil {
		event.HoursWorked = *row.HoursWorked
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "attendance_session",
		AggregateID:   row.ID.String(),
		EventType:     "session_closed",
		Topic:         events.SessionClosedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// publishGateDenied is fire-and-forget: a failed notification must never
// roll back or mask the denial itself.
func (s *service) publishGateDenied(ctx context.Context, participantID, siteID string, decision billing.Decision) {
	event := events.GateDeniedEvent{
		EventType:      "gate_denied",
		ParticipantID:  participantID,
		SiteID:         siteID,
		Reason:         decision.Reason,
		AmountDueCents: decision.AmountDueCents,
		OccurredAt:     s.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "participant",
		AggregateID:   participantID,
		EventType:     "gate_denied",
		Topic:         events.GateDeniedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Warn("gate denied event not recorded",
			zap.String("participant_id", participantID),
			zap.Error(err),
		)
	}
}

func (s *service) mapToResponse(row Session, alert string) SessionResponse {
	resp := SessionResponse{
		ID:            row.ID.String(),
		ParticipantID: row.ParticipantID.String(),
		SiteID:        row.SiteID.String(),
		ProgramID:     row.ProgramID.String(),
		State:         row.State,
		ClockInAt:     row.ClockInAt,
		ClockOutAt:    row.ClockOutAt,
		LunchStartAt:  row.LunchStartAt,
		LunchEndAt:    row.LunchEndAt,
		OutsideSince:  row.OutsideSince,
		HoursWorked:   row.HoursWorked,
		Alert:         alert,
	}
	if row.LastLat != nil && row.LastLng != nil && row.LastSeenAt != nil {
		pos := &PositionResponse{
			Latitude:   *row.LastLat,
			Longitude:  *row.LastLng,
			ObservedAt: *row.LastSeenAt,
		}
		if row.LastAccuracyM != nil {
			pos.AccuracyMeters = *row.LastAccuracyM
		}
		resp.LastPosition = pos
	}
	if row.State == StateOffsiteGrace && row.OutsideSince != nil {
		remaining := int64(row.graceDeadline(s.cfg.GraceWindow).Sub(s.now()).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		resp.GraceRemainingSeconds = &remaining
	}
	return resp
}

// isOpenSessionConflict matches the partial unique index guarding "at most
// one open session per participant".
func isOpenSessionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_attendance_sessions_open"
	}
	return false
}
