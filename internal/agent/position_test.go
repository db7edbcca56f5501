package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-attend/internal/geo"
)

func samplePosition() geo.Position {
	return geo.Position{
		Latitude:       -6.2001,
		Longitude:      106.8166,
		AccuracyMeters: 12,
		ObservedAt:     time.Now(),
	}
}

func TestWithTimeoutPassesThroughReading(t *testing.T) {
	provider := WithTimeout(ProviderFunc(func(ctx context.Context) (geo.Position, error) {
		return samplePosition(), nil
	}), time.Second)

	pos, err := provider.Current(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, -6.2001, pos.Latitude)
}

func TestWithTimeoutMapsDeadlineToUnavailable(t *testing.T) {
	provider := WithTimeout(ProviderFunc(func(ctx context.Context) (geo.Position, error) {
		<-ctx.Done()
		return geo.Position{}, ctx.Err()
	}), 10*time.Millisecond)

	_, err := provider.Current(context.Background())

	assert.ErrorIs(t, err, ErrPositionUnavailable)
}

func TestWithTimeoutKeepsProviderError(t *testing.T) {
	sensorErr := errors.New("gps cold start")
	provider := WithTimeout(ProviderFunc(func(ctx context.Context) (geo.Position, error) {
		return geo.Position{}, sensorErr
	}), time.Second)

	_, err := provider.Current(context.Background())

	assert.ErrorIs(t, err, sensorErr)
}

func TestWithRetryRecoversAfterTransientFailure(t *testing.T) {
	calls := 0
	provider := WithRetry(ProviderFunc(func(ctx context.Context) (geo.Position, error) {
		calls++
		if calls < 3 {
			return geo.Position{}, errors.New("no fix yet")
		}
		return samplePosition(), nil
	}), 3, time.Millisecond)

	pos, err := provider.Current(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, float64(12), pos.AccuracyMeters)
}

func TestWithRetrySurfacesLastError(t *testing.T) {
	lastErr := errors.New("still no fix")
	calls := 0
	provider := WithRetry(ProviderFunc(func(ctx context.Context) (geo.Position, error) {
		calls++
		return geo.Position{}, lastErr
	}), 2, time.Millisecond)

	_, err := provider.Current(context.Background())

	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, 2, calls)
}

func TestWithRetryStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	provider := WithRetry(ProviderFunc(func(ctx context.Context) (geo.Position, error) {
		cancel()
		return geo.Position{}, errors.New("no fix")
	}), 5, time.Minute)

	_, err := provider.Current(ctx)

	assert.ErrorIs(t, err, ErrPositionUnavailable)
}
