package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const gateCacheKeyPrefix = "gate:status:"

// DefaultCacheTTL keeps gate decisions fresh enough that a resolved payment
// takes effect within a minute while sparing the billing table a read per
// heartbeat.
const DefaultCacheTTL = time.Minute

// Decision is the gate's answer for one participant. When not allowed,
// Reason is always populated; AmountDueCents and PaymentReference are set
// when the denial is a past-due balance.
type Decision struct {
	Allowed          bool    `json:"allowed"`
	Reason           string  `json:"reason,omitempty"`
	AmountDueCents   int64   `json:"amount_due_cents,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
}

//go:generate mockgen -source=gate.go -destination=mock/gate_mock.go -package=mock
type Gate interface {
	CanAccrueHours(ctx context.Context, participantID string) (Decision, error)
}

type gate struct {
	repo     Repository
	rdb      *redis.Client
	sf       *singleflight.Group
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewGate(repo Repository, rdb *redis.Client, cacheTTL time.Duration, logger ...*zap.Logger) Gate {
	l := zap.L().Named("billing.gate")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("billing.gate")
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &gate{
		repo:     repo,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		cacheTTL: cacheTTL,
		logger:   l,
	}
}

// CanAccrueHours never returns an error for billing unavailability: the gate
// fails closed, answering a denial with reason "subscription status unknown".
// An error is returned only for a malformed participant id.
func (g *gate) CanAccrueHours(ctx context.Context, participantID string) (Decision, error) {
	pid, err := uuid.Parse(participantID)
	if err != nil {
		return Decision{}, fmt.Errorf("invalid participant id: %w", err)
	}

	cacheKey := gateCacheKeyPrefix + participantID

	if g.rdb != nil {
		cached, err := g.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var d Decision
			if err := json.Unmarshal([]byte(cached), &d); err == nil {
				return d, nil
			}
		}
	}

	v, err, _ := g.sf.Do(cacheKey, func() (interface{}, error) {
		status, err := g.repo.GetStatus(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Decision{Allowed: false, Reason: "no subscription on record"}, nil
			}
			g.logger.Warn("billing status lookup failed, failing closed",
				zap.String("participant_id", participantID),
				zap.Error(err),
			)
			return Decision{Allowed: false, Reason: "subscription status unknown"}, nil
		}

		d := decide(status)

		if g.rdb != nil {
			if payload, err := json.Marshal(d); err == nil {
				g.rdb.Set(ctx, cacheKey, payload, g.cacheTTL)
			}
		}
		return d, nil
	})
	if err != nil {
		return Decision{Allowed: false, Reason: "subscription status unknown"}, nil
	}

	return v.(Decision), nil
}

func decide(status *SubscriptionStatus) Decision {
	switch status.Status {
	case StatusActive, StatusTrialing:
		return Decision{Allowed: true}
	case StatusPastDue:
		return Decision{
			Allowed:          false,
			Reason:           "payment past due",
			AmountDueCents:   status.AmountDueCents,
			PaymentReference: status.PaymentReference,
		}
	case StatusCanceled:
		return Decision{Allowed: false, Reason: "subscription canceled"}
	default:
		return Decision{Allowed: false, Reason: "subscription status unknown"}
	}
}
