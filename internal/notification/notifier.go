package notification

import (
	"context"

	"go.uber.org/zap"

	"go-attend/internal/events"
)

// Notifier delivers attendance outcomes to participants and coordinators.
//
//go:generate mockgen -source=notifier.go -destination=mock/notifier_mock.go -package=mock
type Notifier interface {
	SessionClosed(ctx context.Context, event events.SessionClosedEvent) error
	GateDenied(ctx context.Context, event events.GateDeniedEvent) error
}

// LogNotifier writes notifications to the structured log. Downstream delivery
// channels (push, email) plug in behind the same interface.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger ...*zap.Logger) *LogNotifier {
	l := zap.L().Named("notification")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification")
	}
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) SessionClosed(ctx context.Context, event events.SessionClosedEvent) error {
	n.logger.Info("session closed notification",
		zap.String("session_id", event.SessionID),
		zap.String("participant_id", event.ParticipantID),
		zap.String("site_id", event.SiteID),
		zap.String("reason", event.Reason),
		zap.Float64("hours_worked", event.HoursWorked),
		zap.Time("clock_out_at", event.ClockOutAt),
	)
	return nil
}

func (n *LogNotifier) GateDenied(ctx context.Context, event events.GateDeniedEvent) error {
	n.logger.Warn("gate denied notification",
		zap.String("participant_id", event.ParticipantID),
		zap.String("site_id", event.SiteID),
		zap.String("reason", event.Reason),
		zap.Int64("amount_due_cents", event.AmountDueCents),
	)
	return nil
}
