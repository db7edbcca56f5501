package contextutil

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is unexported so keys cannot collide with other packages.
type contextKey string

const (
	requestIDKey     contextKey = "request_id"
	participantIDKey contextKey = "participant_id"
	loggerKey        contextKey = "logger"
)

// --- Request ID helpers ---

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

// --- Participant ID helpers ---

func WithParticipantID(ctx context.Context, pid string) context.Context {
	return context.WithValue(ctx, participantIDKey, pid)
}

func GetParticipantID(ctx context.Context) string {
	if pid, ok := ctx.Value(participantIDKey).(string); ok {
		return pid
	}
	return ""
}

// --- Logger helpers ---

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the context logger, falling back to defaultLogger and
// finally to a nop logger so callers never receive nil.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}

	if defaultLogger != nil {
		return defaultLogger
	}

	return zap.NewNop()
}

// Metadata carries the basic tracing fields for manual logging.
type Metadata struct {
	RequestID     string
	ParticipantID string
}

func ExtractMetadata(ctx context.Context) Metadata {
	return Metadata{
		RequestID:     GetRequestID(ctx),
		ParticipantID: GetParticipantID(ctx),
	}
}
