package app

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Tunables read by both the API process and the worker. The two must agree
// on the grace and stale windows or the heartbeat handler and the watchdog
// would compute different auto-close deadlines.
func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		zap.L().Warn("invalid duration in env, using fallback",
			zap.String("key", key),
			zap.String("value", raw),
			zap.Duration("fallback", fallback),
		)
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		zap.L().Warn("invalid number in env, using fallback",
			zap.String("key", key),
			zap.String("value", raw),
			zap.Float64("fallback", fallback),
		)
		return fallback
	}
	return f
}
