package agent

import (
	"context"
	"net/http"
	"time"

	"go-attend/internal/geo"
	"go-attend/internal/shared/apperror"
)

// DefaultPositionTimeout bounds how long a single reading may block on the
// device's location services.
const DefaultPositionTimeout = 10 * time.Second

var ErrPositionUnavailable = apperror.New(
	apperror.CodePositionUnavailable,
	"Device did not produce a usable position reading",
	http.StatusServiceUnavailable,
)

// PositionProvider obtains a single device location reading. Implementations
// wrap platform location services; tests use ProviderFunc with a fake.
//
//go:generate mockgen -source=position.go -destination=mock/position_provider_mock.go -package=mock
type PositionProvider interface {
	Current(ctx context.Context) (geo.Position, error)
}

// ProviderFunc adapts a plain function to the PositionProvider interface.
type ProviderFunc func(ctx context.Context) (geo.Position, error)

func (f ProviderFunc) Current(ctx context.Context) (geo.Position, error) {
	return f(ctx)
}

// WithTimeout wraps a provider so every reading is bounded by the timeout.
func WithTimeout(p PositionProvider, timeout time.Duration) PositionProvider {
	if timeout <= 0 {
		timeout = DefaultPositionTimeout
	}
	return ProviderFunc(func(ctx context.Context) (geo.Position, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		pos, err := p.Current(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return geo.Position{}, ErrPositionUnavailable
			}
			return geo.Position{}, err
		}
		return pos, nil
	})
}

// WithRetry retries transient failures a bounded number of times with a
// cooldown, then surfaces the last error.
func WithRetry(p PositionProvider, attempts int, cooldown time.Duration) PositionProvider {
	if attempts < 1 {
		attempts = 1
	}
	return ProviderFunc(func(ctx context.Context) (geo.Position, error) {
		var lastErr error
		for i := 0; i < attempts; i++ {
			pos, err := p.Current(ctx)
			if err == nil {
				return pos, nil
			}
			lastErr = err

			if i == attempts-1 {
				break
			}
			select {
			case <-ctx.Done():
				return geo.Position{}, ErrPositionUnavailable
			case <-time.After(cooldown):
			}
		}
		return geo.Position{}, lastErr
	})
}
