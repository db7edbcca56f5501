package site

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-attend/internal/geo"
	siteerrors "go-attend/internal/site/errors"
)

//go:generate mockgen -source=site_service.go -destination=mock/site_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, programID string, req CreateSiteRequest) (SiteResponse, error)
	GetByID(ctx context.Context, programID, id string) (SiteResponse, error)
	ListByProgram(ctx context.Context, programID string) ([]SiteResponse, error)
	Update(ctx context.Context, programID, id string, req UpdateSiteRequest) (SiteResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("site.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("site.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, programID string, req CreateSiteRequest) (SiteResponse, error) {
	programUUID, err := uuid.Parse(programID)
	if err != nil {
		return SiteResponse{}, siteerrors.ErrInvalidProgramID
	}

	radius := req.RadiusMeters
	if radius <= 0 {
		radius = 150
	}

	row := &TrainingSite{
		ID:           uuid.New(),
		ProgramID:    programUUID,
		Name:         req.Name,
		CenterLat:    req.CenterLat,
		CenterLng:    req.CenterLng,
		RadiusMeters: radius,
		IsActive:     true,
	}

	if len(req.Polygon) > 0 {
		if len(req.Polygon) < 3 {
			return SiteResponse{}, siteerrors.ErrInvalidPolygon
		}
		encoded, err := json.Marshal(req.Polygon)
		if err != nil {
			return SiteResponse{}, err
		}
		polygon := string(encoded)
		row.PolygonJSON = &polygon
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("create site persist failed", zap.Error(err))
		return SiteResponse{}, err
	}

	s.logger.Info("training site created",
		zap.String("site_id", row.ID.String()),
		zap.String("program_id", programID),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetByID(ctx context.Context, programID, id string) (SiteResponse, error) {
	siteUUID, err := uuid.Parse(id)
	if err != nil {
		return SiteResponse{}, siteerrors.ErrInvalidSiteID
	}

	row, err := s.repo.GetByID(ctx, siteUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SiteResponse{}, siteerrors.ErrSiteNotFound
		}
		return SiteResponse{}, err
	}
	if row.ProgramID.String() != programID {
		return SiteResponse{}, siteerrors.ErrSiteNotFound
	}
	return mapToResponse(*row), nil
}

func (s *service) ListByProgram(ctx context.Context, programID string) ([]SiteResponse, error) {
	programUUID, err := uuid.Parse(programID)
	if err != nil {
		return nil, siteerrors.ErrInvalidProgramID
	}

	rows, err := s.repo.ListByProgram(ctx, programUUID)
	if err != nil {
		return nil, err
	}

	res := make([]SiteResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) Update(ctx context.Context, programID, id string, req UpdateSiteRequest) (SiteResponse, error) {
	siteUUID, err := uuid.Parse(id)
	if err != nil {
		return SiteResponse{}, siteerrors.ErrInvalidSiteID
	}

	row, err := s.repo.GetByID(ctx, siteUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SiteResponse{}, siteerrors.ErrSiteNotFound
		}
		return SiteResponse{}, err
	}
	if row.ProgramID.String() != programID {
		return SiteResponse{}, siteerrors.ErrSiteNotFound
	}

	if req.Name != "" {
		row.Name = req.Name
	}
	if req.RadiusMeters != nil && *req.RadiusMeters > 0 {
		row.RadiusMeters = *req.RadiusMeters
	}
	if len(req.Polygon) > 0 {
		if len(req.Polygon) < 3 {
			return SiteResponse{}, siteerrors.ErrInvalidPolygon
		}
		encoded, err := json.Marshal(req.Polygon)
		if err != nil {
			return SiteResponse{}, err
		}
		polygon := string(encoded)
		row.PolygonJSON = &polygon
	}
	if req.IsActive != nil {
		row.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("update site persist failed", zap.Error(err))
		return SiteResponse{}, err
	}
	return mapToResponse(*row), nil
}

func mapToResponse(s TrainingSite) SiteResponse {
	resp := SiteResponse{
		ID:           s.ID.String(),
		ProgramID:    s.ProgramID.String(),
		Name:         s.Name,
		CenterLat:    s.CenterLat,
		CenterLng:    s.CenterLng,
		RadiusMeters: s.RadiusMeters,
		IsActive:     s.IsActive,
	}
	if s.PolygonJSON != nil && *s.PolygonJSON != "" {
		var polygon []geo.Point
		if err := json.Unmarshal([]byte(*s.PolygonJSON), &polygon); err == nil {
			resp.Polygon = polygon
		}
	}
	return resp
}
