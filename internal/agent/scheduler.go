package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-attend/internal/geo"
	"go-attend/internal/session"
)

// DefaultHeartbeatPeriod is how often an open session reports its position.
const DefaultHeartbeatPeriod = 3 * time.Minute

// Submitter delivers one heartbeat to the attendance authority. The server
// remains the source of truth; the scheduler is only a trigger.
type Submitter interface {
	Submit(ctx context.Context, sessionID string, pos geo.Position) (session.SessionResponse, error)
}

// SubmitterFunc adapts a plain function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, sessionID string, pos geo.Position) (session.SessionResponse, error)

func (f SubmitterFunc) Submit(ctx context.Context, sessionID string, pos geo.Position) (session.SessionResponse, error) {
	return f(ctx, sessionID, pos)
}

// HeartbeatScheduler drives periodic position reports for one open session.
// Stop is safe to call from any goroutine and is idempotent; after Stop
// returns, no further tick is in flight and none will fire. A scheduler that
// outlives its session would keep submitting heartbeats against a closed
// session, so closure and cancellation are tied together in Run.
type HeartbeatScheduler struct {
	sessionID string
	provider  PositionProvider
	submitter Submitter
	period    time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	stopOnce sync.Once
	cancel   context.CancelFunc
	running  bool
	stopped  bool
	done     chan struct{}
}

func NewHeartbeatScheduler(
	sessionID string,
	provider PositionProvider,
	submitter Submitter,
	period time.Duration,
	logger ...*zap.Logger,
) *HeartbeatScheduler {
	l := zap.L().Named("agent.scheduler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("agent.scheduler")
	}
	if period <= 0 {
		period = DefaultHeartbeatPeriod
	}
	return &HeartbeatScheduler{
		sessionID: sessionID,
		provider:  provider,
		submitter: submitter,
		period:    period,
		logger:    l,
		done:      make(chan struct{}),
	}
}

// Run ticks until Stop is called, the parent context ends, or the server
// reports the session closed. It blocks; callers run it in a goroutine.
func (s *HeartbeatScheduler) Run(ctx context.Context) {
	s.mu.Lock()
	if s.stopped || s.running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.mu.Unlock()
	defer close(s.done)
	defer cancel()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	s.logger.Info("heartbeat scheduler started",
		zap.String("session_id", s.sessionID),
		zap.Duration("period", s.period),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("heartbeat scheduler stopped", zap.String("session_id", s.sessionID))
			return
		case <-ticker.C:
			if closed := s.tick(ctx); closed {
				s.logger.Info("session closed by server, scheduler exiting",
					zap.String("session_id", s.sessionID),
				)
				return
			}
		}
	}
}

// tick submits one heartbeat. A failed reading or submission never stops the
// loop: intermittent signal loss must not itself end a session; the server's
// grace countdown only runs on confirmed outside readings.
func (s *HeartbeatScheduler) tick(ctx context.Context) (sessionClosed bool) {
	pos, err := s.provider.Current(ctx)
	if err != nil {
		s.logger.Warn("position reading failed, will retry next tick",
			zap.String("session_id", s.sessionID),
			zap.Error(err),
		)
		return false
	}

	resp, err := s.submitter.Submit(ctx, s.sessionID, pos)
	if err != nil {
		s.logger.Warn("heartbeat submit failed, will retry next tick",
			zap.String("session_id", s.sessionID),
			zap.Error(err),
		)
		return false
	}

	if resp.Alert != "" {
		s.logger.Info("server advisory",
			zap.String("session_id", s.sessionID),
			zap.String("alert", resp.Alert),
		)
	}

	switch resp.State {
	case session.StateClockedOut, session.StateAutoClockedOut:
		return true
	}
	return false
}

// Stop cancels the loop and waits for any in-flight tick to finish, so the
// caller observes cancellation and session closure as one atomic step.
func (s *HeartbeatScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		cancel, running := s.cancel, s.running
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		if running {
			<-s.done
		}
	})
}
