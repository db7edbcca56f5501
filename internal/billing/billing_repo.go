package billing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=billing_repo.go -destination=mock/billing_repo_mock.go -package=mock
type Repository interface {
	GetStatus(ctx context.Context, participantID uuid.UUID) (*SubscriptionStatus, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetStatus(ctx context.Context, participantID uuid.UUID) (*SubscriptionStatus, error) {
	var status SubscriptionStatus
	err := r.db.WithContext(ctx).First(&status, "participant_id = ?", participantID).Error
	return &status, err
}
