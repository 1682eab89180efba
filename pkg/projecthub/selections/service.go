// Package selections records deliverable choices: a group's write-once choice
// of a group deliverable, and each student's own mutable choice of an
// individual deliverable. Both close at the project's selection deadline.
package selections

import (
	"context"
	"time"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Membership answers group membership questions.
type Membership interface {
	Get(ctx context.Context, groupID uint) (*models.Group, error)
	IsGroupLeader(ctx context.Context, groupID, studentID uint) (bool, error)
	IsStudentInProject(ctx context.Context, studentID, projectID uint) (bool, error)
	MembershipInProject(ctx context.Context, studentID, projectID uint) (*models.GroupMember, error)
}

// ProjectAccess decides whether an admin may manage a project.
type ProjectAccess interface {
	CanManageProject(ctx context.Context, p models.Principal, projectID uint) (bool, error)
}

// Service implements both selection flows.
type Service struct {
	db      *gorm.DB
	members Membership
	access  ProjectAccess
	log     *zap.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, members Membership, access ProjectAccess, log *zap.Logger, opts ...Option) *Service {
	s := &Service{db: db, members: members, access: access, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) project(ctx context.Context, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, projectID).Error; err != nil {
		return nil, apperrors.Storage(err, "Project not found", "")
	}
	return &project, nil
}

func (s *Service) requireOpen(project *models.Project) error {
	if !project.SelectionOpen(s.now()) {
		return apperrors.InvalidState("The deliverable selection deadline has passed")
	}
	return nil
}

func (s *Service) requireLeader(ctx context.Context, p models.Principal, groupID uint) (*models.Group, error) {
	if !p.IsStudent() {
		return nil, apperrors.Forbidden("Only group leaders can manage deliverable selections")
	}
	g, err := s.members.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ok, err := s.members.IsGroupLeader(ctx, groupID, p.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to check group leadership")
	}
	if !ok {
		return nil, apperrors.Forbidden("Only group leaders can manage deliverable selections")
	}
	return g, nil
}

func (s *Service) requireManage(ctx context.Context, p models.Principal, projectID uint) error {
	if !p.IsAdmin() {
		return apperrors.Forbidden("Admin access required")
	}
	ok, err := s.access.CanManageProject(ctx, p, projectID)
	if err != nil {
		return apperrors.Internal(err, "Failed to check coordinator assignment")
	}
	if !ok {
		return apperrors.Forbidden("Access denied - you are not assigned to this project")
	}
	return nil
}
