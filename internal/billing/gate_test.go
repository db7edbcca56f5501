package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	getStatusFn func(ctx context.Context, participantID uuid.UUID) (*SubscriptionStatus, error)
	calls       int
}

func (f *fakeRepo) GetStatus(ctx context.Context, participantID uuid.UUID) (*SubscriptionStatus, error) {
	f.calls++
	return f.getStatusFn(ctx, participantID)
}

func TestGate_ActiveAllowed(t *testing.T) {
	participantID := uuid.New()
	repo := &fakeRepo{getStatusFn: func(ctx context.Context, pid uuid.UUID) (*SubscriptionStatus, error) {
		return &SubscriptionStatus{ParticipantID: pid, Status: StatusActive}, nil
	}}

	g := NewGate(repo, nil, time.Minute)
	d, err := g.CanAccrueHours(context.Background(), participantID.String())
	assert.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Reason)
}

func TestGate_PastDueCarriesAmount(t *testing.T) {
	participantID := uuid.New()
	ref := "inv_123"
	repo := &fakeRepo{getStatusFn: func(ctx context.Context, pid uuid.UUID) (*SubscriptionStatus, error) {
		return &SubscriptionStatus{
			ParticipantID:    pid,
			Status:           StatusPastDue,
			AmountDueCents:   42500,
			PaymentReference: &ref,
		}, nil
	}}

	g := NewGate(repo, nil, time.Minute)
	d, err := g.CanAccrueHours(context.Background(), participantID.String())
	assert.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, "payment past due", d.Reason)
	assert.Equal(t, int64(42500), d.AmountDueCents)
	assert.Equal(t, &ref, d.PaymentReference)
}

func TestGate_FailsClosedOnLookupError(t *testing.T) {
	repo := &fakeRepo{getStatusFn: func(ctx context.Context, pid uuid.UUID) (*SubscriptionStatus, error) {
		return nil, errors.New("billing unreachable")
	}}

	g := NewGate(repo, nil, time.Minute)
	d, err := g.CanAccrueHours(context.Background(), uuid.New().String())
	assert.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, "subscription status unknown", d.Reason)
}

func TestGate_NoRecordDenied(t *testing.T) {
	repo := &fakeRepo{getStatusFn: func(ctx context.Context, pid uuid.UUID) (*SubscriptionStatus, error) {
		return nil, gorm.ErrRecordNotFound
	}}

	g := NewGate(repo, nil, time.Minute)
	d, err := g.CanAccrueHours(context.Background(), uuid.New().String())
	assert.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, "no subscription on record", d.Reason)
}

func TestGate_CacheHitSkipsRepo(t *testing.T) {
	participantID := uuid.New()
	rdb, mock := redismock.NewClientMock()

	cached, _ := json.Marshal(Decision{Allowed: true})
	mock.ExpectGet(gateCacheKeyPrefix + participantID.String()).SetVal(string(cached))

	repo := &fakeRepo{getStatusFn: func(ctx context.Context, pid uuid.UUID) (*SubscriptionStatus, error) {
		t.Fatal("repo should not be called on cache hit")
		return nil, nil
	}}

	g := NewGate(repo, rdb, time.Minute)
	d, err := g.CanAccrueHours(context.Background(), participantID.String())
	assert.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, repo.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGate_CacheMissPopulatesCache(t *testing.T) {
	participantID := uuid.New()
	rdb, mock := redismock.NewClientMock()

	key := gateCacheKeyPrefix + participantID.String()
	mock.ExpectGet(key).RedisNil()
	payload, _ := json.Marshal(Decision{Allowed: true})
	mock.ExpectSet(key, payload, time.Minute).SetVal("OK")

	repo := &fakeRepo{getStatusFn: func(ctx context.Context, pid uuid.UUID) (*SubscriptionStatus, error) {
		return &SubscriptionStatus{ParticipantID: pid, Status: StatusActive}, nil
	}}

	g := NewGate(repo, rdb, time.Minute)
	d, err := g.CanAccrueHours(context.Background(), participantID.String())
	assert.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, repo.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGate_InvalidParticipantID(t *testing.T) {
	g := NewGate(&fakeRepo{}, nil, time.Minute)
	_, err := g.CanAccrueHours(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}
