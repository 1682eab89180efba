package coordinators

import (
	"context"
	"testing"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"github.com/mikepea/projecthub/pkg/projecthub/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAssignAndLookup(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, zap.NewNop(), WithClock(testutil.Clock))
	ctx := context.Background()

	root := testutil.AdminPrincipal(testutil.Admin(t, db, "root", models.AdminRoleRoot))
	coord := testutil.Admin(t, db, "coord", models.AdminRoleCoordinator)
	project := testutil.Project(t, db, 3, nil)

	a, err := svc.Assign(ctx, root, project.ID, coord.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.Now, a.AssignedAt)

	ok, err := svc.IsAssigned(ctx, coord.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	projects, err := svc.AssignedProjects(ctx, coord.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{project.ID}, projects)

	_, got, err := svc.Get(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "coord@staff.example", got.Admin.Email)
}

func TestSecondAssignAlwaysConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	prof := testutil.AdminPrincipal(testutil.Admin(t, db, "prof", models.AdminRoleProfessor))
	first := testutil.Admin(t, db, "first", models.AdminRoleCoordinator)
	second := testutil.Admin(t, db, "second", models.AdminRoleCoordinator)
	project := testutil.Project(t, db, 3, nil)

	_, err := svc.Assign(ctx, prof, project.ID, first.ID)
	require.NoError(t, err)

	_, err = svc.Assign(ctx, prof, project.ID, first.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict), "same admin: %v", err)

	_, err = svc.Assign(ctx, prof, project.ID, second.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict), "other admin: %v", err)
}

func TestAssignValidation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	root := testutil.AdminPrincipal(testutil.Admin(t, db, "root", models.AdminRoleRoot))
	prof := testutil.Admin(t, db, "prof", models.AdminRoleProfessor)
	coord := testutil.Admin(t, db, "coord", models.AdminRoleCoordinator)
	project := testutil.Project(t, db, 3, nil)

	tests := []struct {
		name      string
		principal models.Principal
		projectID uint
		adminID   uint
		want      apperrors.Kind
	}{
		{"missing project", root, 999, coord.ID, apperrors.KindNotFound},
		{"missing admin", root, project.ID, 999, apperrors.KindNotFound},
		{"not a coordinator", root, project.ID, prof.ID, apperrors.KindInvalidRole},
		{"coordinator cannot assign", testutil.AdminPrincipal(coord), project.ID, coord.ID, apperrors.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Assign(ctx, tt.principal, tt.projectID, tt.adminID)
			assert.Equal(t, tt.want, apperrors.KindOf(err))
		})
	}
}

func TestUnassign(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	root := testutil.AdminPrincipal(testutil.Admin(t, db, "root", models.AdminRoleRoot))
	coord := testutil.Admin(t, db, "coord", models.AdminRoleCoordinator)
	project := testutil.Project(t, db, 3, nil)

	err := svc.Unassign(ctx, root, project.ID, coord.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = svc.Assign(ctx, root, project.ID, coord.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Unassign(ctx, root, project.ID, coord.ID))

	_, got, err := svc.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Freed slot can be taken again.
	_, err = svc.Assign(ctx, root, project.ID, coord.ID)
	assert.NoError(t, err)
}

func TestCanManageProject(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	root := testutil.AdminPrincipal(testutil.Admin(t, db, "root", models.AdminRoleRoot))
	coord := testutil.Admin(t, db, "coord", models.AdminRoleCoordinator)
	mine := testutil.Project(t, db, 3, nil)
	other := testutil.Project(t, db, 3, nil)
	_, err := svc.Assign(ctx, root, mine.ID, coord.ID)
	require.NoError(t, err)

	ok, _ := svc.CanManageProject(ctx, root, other.ID)
	assert.True(t, ok)
	ok, _ = svc.CanManageProject(ctx, testutil.AdminPrincipal(coord), mine.ID)
	assert.True(t, ok)
	ok, _ = svc.CanManageProject(ctx, testutil.AdminPrincipal(coord), other.ID)
	assert.False(t, ok)
	ok, _ = svc.CanManageProject(ctx, models.Principal{ID: 1, Kind: models.PrincipalStudent}, mine.ID)
	assert.False(t, ok)
}
