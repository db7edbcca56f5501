package rbac

import (
	"testing"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/stretchr/testify/assert"

	"go-attend/internal/domain"
)

// =========================================
// Mock Repository
// =========================================

type mockRepo struct{}

func (m *mockRepo) GetParticipantRoles(programID string) ([]ParticipantRoleRow, error) {
	return []ParticipantRoleRow{
		{
			ParticipantID: "part-1",
			RoleID:        "role-coordinator",
		},
	}, nil
}

func (m *mockRepo) GetRolePermissions(programID string) ([]RolePermissionRow, error) {
	return []RolePermissionRow{
		{
			RoleID:   "role-coordinator",
			Resource: "session",
			Action:   "read",
		},
	}, nil
}

func (m *mockRepo) ListRoles(programID string) ([]RoleRow, error) {
	return []RoleRow{{ID: "role-coordinator", ProgramID: programID, Name: "coordinator"}}, nil
}

func (m *mockRepo) GetRoleByID(id string) (*RoleRow, error) {
	return &RoleRow{ID: id, Name: "coordinator"}, nil
}

func (m *mockRepo) GetRoleByName(programID, name string) (*RoleRow, error) {
	return nil, nil
}

func (m *mockRepo) CreateRole(role *RoleRow) error {
	role.ID = "role-new"
	return nil
}

func (m *mockRepo) UpdateRole(role *RoleRow) error { return nil }

func (m *mockRepo) DeleteRole(id string) error { return nil }

func (m *mockRepo) ListPermissions() ([]PermissionRow, error) {
	return []PermissionRow{{ID: "perm-1", Resource: "session", Action: "read"}}, nil
}

func (m *mockRepo) GetPermissionsByRoleID(roleID string) ([]PermissionRow, error) {
	return []PermissionRow{{ID: "perm-1", Resource: "session", Action: "read"}}, nil
}

func (m *mockRepo) UpdateRolePermissions(roleID string, permIDs []string) error { return nil }

// =========================================
// Helper: Test Enforcer
// =========================================

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	modelText := `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && r.dom == p.dom && r.obj == p.obj && r.act == p.act
`

	m, err := model.NewModelFromString(modelText)
	assert.NoError(t, err)

	e, err := casbin.NewEnforcer(m)
	assert.NoError(t, err)

	return e
}

// =========================================
// TEST: Load + Enforce
// =========================================

func TestRBACService_Enforce(t *testing.T) {
	repo := &mockRepo{}
	enforcer := newTestEnforcer(t)

	service := NewService(repo, enforcer)

	err := service.LoadProgramPolicy("program-1")
	assert.NoError(t, err)

	// Should allow
	allowed, err := service.Enforce(EnforceRequest{
		ParticipantID: "part-1",
		ProgramID:     "program-1",
		Resource:      "session",
		Action:        "read",
	})

	assert.NoError(t, err)
	assert.True(t, allowed)

	// Should deny
	denied, err := service.Enforce(EnforceRequest{
		ParticipantID: "part-1",
		ProgramID:     "program-1",
		Resource:      "site",
		Action:        "manage",
	})

	assert.NoError(t, err)
	assert.False(t, denied)
}

func TestRBACService_CreateRoleAssignsPermissions(t *testing.T) {
	service := NewService(&mockRepo{}, newTestEnforcer(t))

	role, err := service.CreateRole("program-1", domain.CreateRoleRequest{
		Name:        "coordinator",
		Permissions: []string{"perm-1"},
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"session:read"}, role.Permissions)
}
