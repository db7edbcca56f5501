package site

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/site_repo_mock.go -package=mock . Repository
type Repository interface {
	Create(ctx context.Context, site *TrainingSite) error
	GetByID(ctx context.Context, id uuid.UUID) (*TrainingSite, error)
	ListByProgram(ctx context.Context, programID uuid.UUID) ([]TrainingSite, error)
	Update(ctx context.Context, site *TrainingSite) error
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, site *TrainingSite) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*TrainingSite, error) {
	var site TrainingSite
	err := r.db.WithContext(ctx).First(&site, "id = ?", id).Error
	return &site, err
}

func (r *repository) ListByProgram(ctx context.Context, programID uuid.UUID) ([]TrainingSite, error) {
	var sites []TrainingSite
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("name ASC").
		Find(&sites).Error
	return sites, err
}

func (r *repository) Update(ctx context.Context, site *TrainingSite) error {
	return r.db.WithContext(ctx).Save(site).Error
}
