package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-attend/internal/events"
)

// DefaultStaleWindow is how long a session may go without any observation
// before the sweep closes it. No session stays open indefinitely without a
// confirming heartbeat or an explicit user action.
const DefaultStaleWindow = 30 * time.Minute

// RunWatchdog periodically sweeps open sessions server-side, closing those
// whose grace deadline passed between heartbeats and those gone silent.
func RunWatchdog(
	ctx context.Context,
	svc Service,
	sweepInterval time.Duration,
	logger *zap.Logger,
) {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	log := logger.Named("session.watchdog")
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	log.Info("session watchdog started", zap.Duration("sweep_interval", sweepInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("session watchdog stopped")
			return
		case <-ticker.C:
			if err := svc.Sweep(ctx); err != nil {
				log.Error("session sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep performs one watchdog pass. Each candidate is re-checked under its
// session lock so a concurrent heartbeat or clock-out wins cleanly.
func (s *service) Sweep(ctx context.Context) error {
	now := s.now()

	pastDeadline, err := s.repo.FindOpenPastDeadline(ctx, now, s.cfg.GraceWindow)
	if err != nil {
		return err
	}
	for i := range pastDeadline {
		s.sweepOne(ctx, pastDeadline[i].ID.String(), events.CloseReasonAutoOffsite)
	}

	stale, err := s.repo.FindOpenStale(ctx, now.Add(-s.cfg.StaleWindow))
	if err != nil {
		return err
	}
	for i := range stale {
		s.sweepOne(ctx, stale[i].ID.String(), events.CloseReasonAutoStale)
	}

	return nil
}

func (s *service) sweepOne(ctx context.Context, sessionID, reason string) {
	unlock := s.locks.Lock("session:" + sessionID)
	defer unlock()

	row, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		s.logger.Error("sweep reload failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if row.IsClosed() {
		return
	}

	now := s.now()
	var closeAt time.Time
	switch reason {
	case events.CloseReasonAutoOffsite:
		if row.OutsideSince == nil {
			return
		}
		deadline := row.graceDeadline(s.cfg.GraceWindow)
		if now.Before(deadline) {
			return
		}
		closeAt = deadline
	case events.CloseReasonAutoStale:
		lastSeen := row.ClockInAt
		if row.LastSeenAt != nil {
			lastSeen = *row.LastSeenAt
		}
		cutoff := lastSeen.Add(s.cfg.StaleWindow)
		if now.Before(cutoff) {
			return
		}
		closeAt = cutoff
	default:
		return
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("sweep begin tx failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row.close(closeAt, StateAutoClockedOut)

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("sweep update failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if err := s.appendSessionClosedEvent(ctx, tx, row, reason); err != nil {
		s.logger.Error("sweep outbox append failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("sweep commit failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	s.logger.Info("session auto closed by watchdog",
		zap.String("session_id", sessionID),
		zap.String("reason", reason),
		zap.Time("clock_out_at", closeAt),
	)
}
