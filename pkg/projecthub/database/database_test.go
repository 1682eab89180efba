package database

import (
	"errors"
	"testing"
	"time"

	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	db := setupTestDB(t)

	tables := []string{
		"projects", "students", "admins", "security_codes", "coordinator_assignments",
		"groups", "group_members", "group_deliverables", "group_deliverable_components",
		"group_deliverable_component_links", "student_deliverables",
		"group_deliverable_selections", "component_implementation_details",
		"student_deliverable_selections",
	}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestUniqueConstraintsTranslateToDuplicatedKey(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()

	project := models.Project{Name: "Capstone", Year: 2026, MaxGroupSize: 3}
	db.Create(&project)
	admin1 := models.Admin{Email: "c1@uni.edu", FirstName: "C", LastName: "One", Role: models.AdminRoleCoordinator}
	admin2 := models.Admin{Email: "c2@uni.edu", FirstName: "C", LastName: "Two", Role: models.AdminRoleCoordinator}
	db.Create(&admin1)
	db.Create(&admin2)

	if err := db.Create(&models.CoordinatorAssignment{AdminID: admin1.ID, ProjectID: project.ID, AssignedAt: now}).Error; err != nil {
		t.Fatalf("Failed to create first assignment: %v", err)
	}
	err := db.Create(&models.CoordinatorAssignment{AdminID: admin2.ID, ProjectID: project.ID, AssignedAt: now}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected ErrDuplicatedKey for second coordinator, got %v", err)
	}
}

func TestSingleLeaderPartialIndex(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()

	project := models.Project{Name: "Capstone", Year: 2026, MaxGroupSize: 3}
	db.Create(&project)
	group := models.Group{ProjectID: project.ID, Name: "Alpha"}
	db.Create(&group)
	for _, email := range []string{"a@uni.edu", "b@uni.edu", "c@uni.edu"} {
		db.Create(&models.Student{Email: email, FirstName: "S", LastName: "T"})
	}

	leader := models.GroupMember{GroupID: group.ID, ProjectID: project.ID, StudentID: 1, Role: models.GroupRoleLeader, JoinedAt: now}
	if err := db.Create(&leader).Error; err != nil {
		t.Fatalf("Failed to create leader: %v", err)
	}
	member := models.GroupMember{GroupID: group.ID, ProjectID: project.ID, StudentID: 2, Role: models.GroupRoleMember, JoinedAt: now}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("Failed to create member: %v", err)
	}
	second := models.GroupMember{GroupID: group.ID, ProjectID: project.ID, StudentID: 3, Role: models.GroupRoleLeader, JoinedAt: now}
	if err := db.Create(&second).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected ErrDuplicatedKey for second leader, got %v", err)
	}

	// Same student cannot join a second group of the same project
	other := models.Group{ProjectID: project.ID, Name: "Beta"}
	db.Create(&other)
	dup := models.GroupMember{GroupID: other.ID, ProjectID: project.ID, StudentID: 2, Role: models.GroupRoleMember, JoinedAt: now}
	if err := db.Create(&dup).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected ErrDuplicatedKey for second membership in project, got %v", err)
	}
}
