// Package testutil provides fixtures for tests that need a migrated store.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/mikepea/projecthub/pkg/projecthub/database"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Now is the fixed instant services under test are clocked at.
var Now = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

// Clock returns Now.
func Clock() time.Time { return Now }

// NewDB opens a fresh migrated in-memory sqlite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Project creates a project. A nil deadline leaves selection always open.
func Project(t *testing.T, db *gorm.DB, maxGroupSize int, deadline *time.Time) models.Project {
	t.Helper()
	p := models.Project{
		Name:                         "Distributed Systems",
		Year:                         2026,
		MaxGroupSize:                 maxGroupSize,
		DeliverableSelectionDeadline: deadline,
		Active:                       true,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

// Student creates a confirmed student.
func Student(t *testing.T, db *gorm.DB, name string) models.Student {
	t.Helper()
	s := models.Student{Email: name + "@uni.example", FirstName: name, LastName: "Student"}
	require.NoError(t, db.Create(&s).Error)
	return s
}

// Admin creates an admin with role.
func Admin(t *testing.T, db *gorm.DB, name string, role models.AdminRole) models.Admin {
	t.Helper()
	a := models.Admin{Email: name + "@staff.example", FirstName: name, LastName: "Admin", Role: role}
	require.NoError(t, db.Create(&a).Error)
	return a
}

// Principal builders
func StudentPrincipal(s models.Student) models.Principal {
	return models.Principal{ID: s.ID, Kind: models.PrincipalStudent}
}

func AdminPrincipal(a models.Admin) models.Principal {
	return models.Principal{ID: a.ID, Kind: models.PrincipalAdmin, Role: a.Role}
}

// GroupDeliverable creates a deliverable made of freshly created components.
func GroupDeliverable(t *testing.T, db *gorm.DB, projectID uint, name string, components ...string) (models.GroupDeliverable, []models.GroupDeliverableComponent) {
	t.Helper()
	d := models.GroupDeliverable{ProjectID: projectID, Name: name}
	require.NoError(t, db.Create(&d).Error)

	created := make([]models.GroupDeliverableComponent, 0, len(components))
	for _, cn := range components {
		c := models.GroupDeliverableComponent{ProjectID: projectID, Name: cn}
		require.NoError(t, db.Create(&c).Error)
		link := models.GroupDeliverableComponentLink{GroupDeliverableID: d.ID, GroupDeliverableComponentID: c.ID, Quantity: 1}
		require.NoError(t, db.Create(&link).Error)
		created = append(created, c)
	}
	return d, created
}

// StudentDeliverable creates an individual deliverable.
func StudentDeliverable(t *testing.T, db *gorm.DB, projectID uint, name string) models.StudentDeliverable {
	t.Helper()
	d := models.StudentDeliverable{ProjectID: projectID, Name: name}
	require.NoError(t, db.Create(&d).Error)
	return d
}

// Group inserts a group with leader and members directly, bypassing the workflow rules.
func Group(t *testing.T, db *gorm.DB, projectID uint, name string, leader uint, members ...uint) models.Group {
	t.Helper()
	g := models.Group{ProjectID: projectID, Name: name}
	require.NoError(t, db.Create(&g).Error)

	add := func(studentID uint, role models.GroupRole) {
		m := models.GroupMember{GroupID: g.ID, ProjectID: projectID, StudentID: studentID, Role: role, JoinedAt: Now}
		require.NoError(t, db.Create(&m).Error, fmt.Sprintf("member %d", studentID))
	}
	add(leader, models.GroupRoleLeader)
	for _, id := range members {
		add(id, models.GroupRoleMember)
	}
	return g
}

// Deadline returns a pointer to Now shifted by d.
func Deadline(d time.Duration) *time.Time {
	v := Now.Add(d)
	return &v
}
