// Package coordinators keeps the zero-or-one coordinator per project registry
// and answers the scoping questions other components ask about coordinators.
package coordinators

import (
	"context"
	"errors"
	"time"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service manages coordinator assignments.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, log *zap.Logger, opts ...Option) *Service {
	s := &Service{db: db, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assign makes adminID the coordinator of projectID.
func (s *Service) Assign(ctx context.Context, p models.Principal, projectID, adminID uint) (*models.CoordinatorAssignment, error) {
	if !p.IsSuperior() {
		return nil, apperrors.Forbidden("Only root or professors can assign coordinators")
	}

	db := s.db.WithContext(ctx)
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		return nil, apperrors.Storage(err, "Project not found", "")
	}
	var admin models.Admin
	if err := db.First(&admin, adminID).Error; err != nil {
		return nil, apperrors.Storage(err, "Admin not found", "")
	}
	if admin.Role != models.AdminRoleCoordinator {
		return nil, apperrors.InvalidRole("Admin %d is not a coordinator", adminID)
	}

	// Fast path; the unique index on project_id is what actually holds.
	var existing int64
	if err := db.Model(&models.CoordinatorAssignment{}).Where("project_id = ?", projectID).Count(&existing).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to check coordinator assignment", "")
	}
	if existing > 0 {
		return nil, apperrors.Conflict("Project already has a coordinator assigned")
	}

	a := models.CoordinatorAssignment{AdminID: adminID, ProjectID: projectID, AssignedAt: s.now()}
	if err := db.Create(&a).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to assign coordinator", "Project already has a coordinator assigned")
	}
	a.Admin = admin
	a.Project = project

	s.log.Info("coordinator assigned",
		zap.Uint("project_id", projectID),
		zap.Uint("admin_id", adminID),
		zap.Uint("by", p.ID),
	)
	return &a, nil
}

// Unassign removes adminID as coordinator of projectID.
func (s *Service) Unassign(ctx context.Context, p models.Principal, projectID, adminID uint) error {
	if !p.IsSuperior() {
		return apperrors.Forbidden("Only root or professors can remove coordinators")
	}

	res := s.db.WithContext(ctx).
		Where("project_id = ? AND admin_id = ?", projectID, adminID).
		Delete(&models.CoordinatorAssignment{})
	if res.Error != nil {
		return apperrors.Storage(res.Error, "Failed to remove coordinator", "")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Coordinator assignment not found")
	}

	s.log.Info("coordinator unassigned",
		zap.Uint("project_id", projectID),
		zap.Uint("admin_id", adminID),
		zap.Uint("by", p.ID),
	)
	return nil
}

// Get returns the project's assignment with its admin, or nil when the project
// has no coordinator.
func (s *Service) Get(ctx context.Context, projectID uint) (*models.Project, *models.CoordinatorAssignment, error) {
	db := s.db.WithContext(ctx)
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		return nil, nil, apperrors.Storage(err, "Project not found", "")
	}

	var a models.CoordinatorAssignment
	err := db.Preload("Admin").Where("project_id = ?", projectID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &project, nil, nil
	}
	if err != nil {
		return nil, nil, apperrors.Storage(err, "Failed to load coordinator", "")
	}
	return &project, &a, nil
}

// IsAssigned reports whether adminID coordinates projectID.
func (s *Service) IsAssigned(ctx context.Context, adminID, projectID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CoordinatorAssignment{}).
		Where("admin_id = ? AND project_id = ?", adminID, projectID).
		Count(&count).Error
	return count > 0, err
}

// AssignedProjects lists the projects adminID coordinates.
func (s *Service) AssignedProjects(ctx context.Context, adminID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.CoordinatorAssignment{}).
		Where("admin_id = ?", adminID).
		Order("project_id").
		Pluck("project_id", &ids).Error
	return ids, err
}

// CanManageProject reports whether p may run administrative operations on projectID.
func (s *Service) CanManageProject(ctx context.Context, p models.Principal, projectID uint) (bool, error) {
	switch {
	case p.IsSuperior():
		return true, nil
	case p.IsCoordinator():
		return s.IsAssigned(ctx, p.ID, projectID)
	}
	return false, nil
}
