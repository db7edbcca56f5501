package session

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=session_repo.go -destination=mock/session_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	FindOpenByParticipant(ctx context.Context, participantID string) (*Session, error)
	FindAllByParticipant(ctx context.Context, participantID string) ([]Session, error)
	Update(ctx context.Context, s *Session) error
	AppendHeartbeat(ctx context.Context, hb *HeartbeatRecord) error
	FindHeartbeats(ctx context.Context, sessionID string) ([]HeartbeatRecord, error)

	// FindOpenPastDeadline returns open sessions whose grace deadline has
	// passed, and FindOpenStale returns open sessions with no observation
	// since the cutoff. Both feed the watchdog sweep.
	FindOpenPastDeadline(ctx context.Context, now time.Time, graceWindow time.Duration) ([]Session, error)
	FindOpenStale(ctx context.Context, cutoff time.Time) ([]Session, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn routes statements onto the bound transaction when one is set, so a
// session mutation and its outbox event commit or roll back together.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	if r.tx == nil {
		return r.db.WithContext(ctx)
	}
	db := r.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	db.Statement.ConnPool = r.tx
	return db
}

func (r *repository) Create(ctx context.Context, s *Session) error {
	return r.conn(ctx).Create(s).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := r.conn(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) FindOpenByParticipant(ctx context.Context, participantID string) (*Session, error) {
	var s Session
	err := r.conn(ctx).
		Where("participant_id = ?", participantID).
		Where("clock_out_at IS NULL").
		First(&s).Error
	return &s, err
}

func (r *repository) FindAllByParticipant(ctx context.Context, participantID string) ([]Session, error) {
	var rows []Session
	err := r.conn(ctx).
		Where("participant_id = ?", participantID).
		Order("clock_in_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, s *Session) error {
	return r.conn(ctx).Save(s).Error
}

func (r *repository) AppendHeartbeat(ctx context.Context, hb *HeartbeatRecord) error {
	return r.conn(ctx).Create(hb).Error
}

func (r *repository) FindHeartbeats(ctx context.Context, sessionID string) ([]HeartbeatRecord, error) {
	var rows []HeartbeatRecord
	err := r.conn(ctx).
		Where("session_id = ?", sessionID).
		Order("observed_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindOpenPastDeadline(ctx context.Context, now time.Time, graceWindow time.Duration) ([]Session, error) {
	var rows []Session
	err := r.conn(ctx).
		Where("clock_out_at IS NULL").
		Where("outside_since IS NOT NULL").
		Where("outside_since <= ?", now.Add(-graceWindow)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindOpenStale(ctx context.Context, cutoff time.Time) ([]Session, error) {
	var rows []Session
	err := r.conn(ctx).
		Where("clock_out_at IS NULL").
		Where("COALESCE(last_seen_at, clock_in_at) <= ?", cutoff).
		Find(&rows).Error
	return rows, err
}
