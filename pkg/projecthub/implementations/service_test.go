package implementations

import (
	"context"
	"strconv"
	"testing"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/groups"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"github.com/mikepea/projecthub/pkg/projecthub/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	svc        *Service
	leader     models.Principal
	member     models.Principal
	alpha      models.Group
	selection  models.GroupDeliverableSelection
	components []models.GroupDeliverableComponent // parts of the selected deliverable
	outside    models.GroupDeliverableComponent   // part of another deliverable
}

func setup(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	project := testutil.Project(t, db, 3, nil)
	alice := testutil.Student(t, db, "alice")
	bob := testutil.Student(t, db, "bob")
	alpha := testutil.Group(t, db, project.ID, "Alpha", alice.ID, bob.ID)

	d1, components := testutil.GroupDeliverable(t, db, project.ID, "D1", "API", "Frontend")
	_, others := testutil.GroupDeliverable(t, db, project.ID, "D2", "Mobile")

	sel := models.GroupDeliverableSelection{GroupID: alpha.ID, GroupDeliverableID: d1.ID}
	require.NoError(t, db.Create(&sel).Error)

	return &fixture{
		db:         db,
		svc:        NewService(db, groups.NewQuery(db), zap.NewNop()),
		leader:     testutil.StudentPrincipal(alice),
		member:     testutil.StudentPrincipal(bob),
		alpha:      alpha,
		selection:  sel,
		components: components,
		outside:    others[0],
	}
}

func TestCreateDetail(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	x := f.components[0]

	detail, err := f.svc.Create(ctx, f.leader, f.alpha.ID, x.ID, "REST over gin", "https://git.example/alpha-api")
	require.NoError(t, err)
	assert.Equal(t, "API", detail.ComponentName)
	assert.Equal(t, f.selection.ID, detail.GroupDeliverableSelectionID)

	_, err = f.svc.Create(ctx, f.leader, f.alpha.ID, x.ID, "again", "https://git.example/other")
	assert.True(t, apperrors.Is(err, apperrors.KindConflict), "got %v", err)

	_, err = f.svc.Create(ctx, f.member, f.alpha.ID, f.components[1].ID, "sneaky", "https://git.example/b")
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden), "got %v", err)
	_, err = f.svc.Update(ctx, f.member, f.alpha.ID, x.ID, UpdateInput{})
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden), "got %v", err)
	err = f.svc.Delete(ctx, f.member, f.alpha.ID, x.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden), "got %v", err)
}

func TestCreateDetailValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	tests := []struct {
		name        string
		componentID uint
		description string
		link        string
		kind        apperrors.Kind
	}{
		{"blank description", f.components[0].ID, "  ", "https://git.example/a", apperrors.KindInvalidInput},
		{"blank link", f.components[0].ID, "desc", "", apperrors.KindInvalidInput},
		{"component of another deliverable", f.outside.ID, "desc", "https://git.example/a", apperrors.KindNotFound},
		{"unknown component", 9999, "desc", "https://git.example/a", apperrors.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.leader, f.alpha.ID, tt.componentID, tt.description, tt.link)
			assert.True(t, apperrors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestCreateDetailWithoutSelection(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	carol := testutil.Student(t, f.db, "carol")
	beta := testutil.Group(t, f.db, f.alpha.ProjectID, "Beta", carol.ID)

	_, err := f.svc.Create(ctx, testutil.StudentPrincipal(carol), beta.ID, f.components[0].ID, "desc", "https://git.example/beta")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "got %v", err)

	details, err := f.svc.ListByGroup(ctx, beta.ID)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestUpdateAndDeleteDetail(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	x := f.components[0]

	_, err := f.svc.Update(ctx, f.leader, f.alpha.ID, x.ID, UpdateInput{})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "got %v", err)

	_, err = f.svc.Create(ctx, f.leader, f.alpha.ID, x.ID, "first", "https://git.example/api")
	require.NoError(t, err)

	blank := " "
	_, err = f.svc.Update(ctx, f.leader, f.alpha.ID, x.ID, UpdateInput{RepositoryLink: &blank})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput), "got %v", err)

	desc := "second"
	updated, err := f.svc.Update(ctx, f.leader, f.alpha.ID, x.ID, UpdateInput{MarkdownDescription: &desc})
	require.NoError(t, err)
	assert.Equal(t, "second", updated.MarkdownDescription)
	assert.Equal(t, "https://git.example/api", updated.RepositoryLink)
	assert.Equal(t, "API", updated.ComponentName)

	require.NoError(t, f.svc.Delete(ctx, f.leader, f.alpha.ID, x.ID))
	err = f.svc.Delete(ctx, f.leader, f.alpha.ID, x.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "got %v", err)
}

func TestListResolvesComponentNames(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	for _, c := range f.components {
		_, err := f.svc.Create(ctx, f.leader, f.alpha.ID, c.ID, "desc "+c.Name, "https://git.example/"+c.Name)
		require.NoError(t, err)
	}
	// a component removed from the catalog afterwards
	removed := f.components[1]
	require.NoError(t, f.db.Delete(&models.GroupDeliverableComponent{}, removed.ID).Error)

	details, err := f.svc.ListBySelection(ctx, f.selection.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "API", details[0].ComponentName)
	assert.Equal(t, "Unknown Component "+strconv.Itoa(int(removed.ID)), details[1].ComponentName)

	byGroup, err := f.svc.ListByGroup(ctx, f.alpha.ID)
	require.NoError(t, err)
	assert.Len(t, byGroup, 2)

	_, err = f.svc.ListBySelection(ctx, 9999)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "got %v", err)
	_, err = f.svc.ListByGroup(ctx, 9999)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "got %v", err)
}
