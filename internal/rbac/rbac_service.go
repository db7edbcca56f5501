package rbac

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"

	"go-attend/internal/domain"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadProgramPolicy(programID string) error
	Enforce(req EnforceRequest) (bool, error)

	ListRoles(programID string) ([]domain.RoleResponse, error)
	GetRole(id string) (*domain.RoleResponse, error)
	CreateRole(programID string, req domain.CreateRoleRequest) (*domain.RoleResponse, error)
	UpdateRole(id string, req domain.UpdateRoleRequest) (*domain.RoleResponse, error)
	DeleteRole(id string) error
	ListPermissions() ([]domain.PermissionResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadProgramPolicy(programID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadProgramPolicyUnlocked(programID)
}

func (s *service) loadProgramPolicyUnlocked(programID string) error {
	s.enforcer.ClearPolicy()

	participantRoles, err := s.repo.GetParticipantRoles(programID)
	if err != nil {
		return err
	}

	for _, pr := range participantRoles {
		_, err := s.enforcer.AddGroupingPolicy(
			pr.ParticipantID,
			pr.RoleID,
			programID,
		)
		if err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(programID)
	if err != nil {
		return err
	}

	for _, rp := range rolePerms {
		_, err := s.enforcer.AddPolicy(
			rp.RoleID,
			programID,
			rp.Resource,
			rp.Action,
		)
		if err != nil {
			return err
		}
	}

	s.logger.Debug("policy loaded",
		zap.String("program_id", programID),
		zap.Int("participant_roles", len(participantRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)

	return nil
}

// Enforce reloads the program's policy before checking so role changes take
// effect on the next request rather than the next restart.
func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadProgramPolicyUnlocked(req.ProgramID); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(
		req.ParticipantID,
		req.ProgramID,
		req.Resource,
		req.Action,
	)
	if err != nil {
		return false, err
	}

	s.logger.Debug("enforce result",
		zap.String("participant_id", req.ParticipantID),
		zap.String("program_id", req.ProgramID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)

	return allowed, nil
}

func (s *service) ListRoles(programID string) ([]domain.RoleResponse, error) {
	rows, err := s.repo.ListRoles(programID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.RoleResponse, 0, len(rows))
	for _, row := range rows {
		resp, err := s.toRoleResponse(&row)
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

func (s *service) GetRole(id string) (*domain.RoleResponse, error) {
	row, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, err
	}
	return s.toRoleResponse(row)
}

func (s *service) CreateRole(programID string, req domain.CreateRoleRequest) (*domain.RoleResponse, error) {
	if existing, _ := s.repo.GetRoleByName(programID, req.Name); existing != nil {
		return nil, fmt.Errorf("role %q already exists in this program", req.Name)
	}

	row := &RoleRow{
		ProgramID:   programID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.CreateRole(row); err != nil {
		return nil, err
	}

	if len(req.Permissions) > 0 {
		if err := s.repo.UpdateRolePermissions(row.ID, req.Permissions); err != nil {
			return nil, err
		}
	}

	return s.toRoleResponse(row)
}

func (s *service) UpdateRole(id string, req domain.UpdateRoleRequest) (*domain.RoleResponse, error) {
	row, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		row.Name = req.Name
	}
	if req.Description != "" {
		row.Description = req.Description
	}
	if err := s.repo.UpdateRole(row); err != nil {
		return nil, err
	}

	if req.Permissions != nil {
		if err := s.repo.UpdateRolePermissions(row.ID, req.Permissions); err != nil {
			return nil, err
		}
	}

	return s.toRoleResponse(row)
}

func (s *service) DeleteRole(id string) error {
	return s.repo.DeleteRole(id)
}

func (s *service) ListPermissions() ([]domain.PermissionResponse, error) {
	rows, err := s.repo.ListPermissions()
	if err != nil {
		return nil, err
	}

	result := make([]domain.PermissionResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.PermissionResponse{
			ID:       row.ID,
			Resource: row.Resource,
			Action:   row.Action,
			Label:    row.Label,
			Category: row.Category,
		})
	}
	return result, nil
}

func (s *service) toRoleResponse(row *RoleRow) (*domain.RoleResponse, error) {
	perms, err := s.repo.GetPermissionsByRoleID(row.ID)
	if err != nil {
		return nil, err
	}

	permNames := make([]string, 0, len(perms))
	for _, p := range perms {
		permNames = append(permNames, p.Resource+":"+p.Action)
	}

	return &domain.RoleResponse{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Permissions: permNames,
	}, nil
}
