// Package groups manages group creation, membership and leadership.
//
// Each student holds at most one membership per project and each group has a
// single GroupLeader; both rules are backed by unique indexes so concurrent
// requests cannot break them.
package groups

import (
	"context"
	"strings"
	"time"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/metrics"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CodeValidator resolves a security code to its project.
type CodeValidator interface {
	Validate(ctx context.Context, code string) (uint, error)
}

// SelectionCleaner drops a student's individual deliverable selection.
type SelectionCleaner interface {
	DeleteForStudent(ctx context.Context, studentID, projectID uint) error
}

// ProjectAccess decides whether an admin may manage a project.
type ProjectAccess interface {
	CanManageProject(ctx context.Context, p models.Principal, projectID uint) (bool, error)
}

// Service implements the group lifecycle.
type Service struct {
	db         *gorm.DB
	q          *Query
	codes      CodeValidator
	selections SelectionCleaner
	access     ProjectAccess
	log        *zap.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, codes CodeValidator, selections SelectionCleaner, access ProjectAccess, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:         db,
		q:          NewQuery(db),
		codes:      codes,
		selections: selections,
		access:     access,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query exposes the read helpers.
func (s *Service) Query() *Query {
	return s.q
}

// Create makes a new group in the code's project with the caller as GroupLeader.
func (s *Service) Create(ctx context.Context, p models.Principal, name, code string) (*models.Group, error) {
	if !p.IsStudent() {
		return nil, apperrors.Forbidden("Only students can create groups")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("Group name is required")
	}

	projectID, err := s.codes.Validate(ctx, code)
	if err != nil {
		return nil, err
	}

	in, err := s.q.IsStudentInProject(ctx, p.ID, projectID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to check project membership")
	}
	if in {
		return nil, apperrors.Conflict("You already belong to a group in this project")
	}

	group := models.Group{ProjectID: projectID, Name: name}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return apperrors.Storage(err, "Failed to create group", "A group with this name already exists in the project")
		}

		leader := models.GroupMember{
			GroupID:   group.ID,
			ProjectID: projectID,
			StudentID: p.ID,
			Role:      models.GroupRoleLeader,
			JoinedAt:  s.now(),
		}
		if err := tx.Create(&leader).Error; err != nil {
			return apperrors.Storage(err, "Failed to add group leader", "You already belong to a group in this project")
		}
		group.Members = []models.GroupMember{leader}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.GroupsCreated.Inc()
	metrics.MembershipChanges.WithLabelValues("create").Inc()
	s.log.Info("group created",
		zap.Uint("group_id", group.ID),
		zap.Uint("project_id", projectID),
		zap.Uint("leader_id", p.ID),
	)
	return &group, nil
}

// CheckName reports whether name is still free in the code's project.
func (s *Service) CheckName(ctx context.Context, code, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, apperrors.InvalidInput("Group name is required")
	}
	projectID, err := s.codes.Validate(ctx, code)
	if err != nil {
		return false, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Group{}).
		Where("project_id = ? AND name = ?", projectID, name).
		Count(&count).Error; err != nil {
		return false, apperrors.Storage(err, "Failed to check group name", "")
	}
	return count == 0, nil
}

// StudentGroup is a group seen by one of its members.
type StudentGroup struct {
	Group       models.Group
	Project     models.Project
	Role        models.GroupRole
	MemberCount int64
}

// ListForStudent returns the groups the caller belongs to.
func (s *Service) ListForStudent(ctx context.Context, p models.Principal) ([]StudentGroup, error) {
	if !p.IsStudent() {
		return nil, apperrors.Forbidden("Only students have groups")
	}

	db := s.db.WithContext(ctx)
	var memberships []models.GroupMember
	if err := db.Preload("Group.Project").Where("student_id = ?", p.ID).Order("group_id").Find(&memberships).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to fetch groups", "")
	}

	out := make([]StudentGroup, len(memberships))
	for i, m := range memberships {
		count, err := s.q.CountMembers(ctx, m.GroupID)
		if err != nil {
			return nil, apperrors.Storage(err, "Failed to fetch groups", "")
		}
		out[i] = StudentGroup{Group: m.Group, Project: m.Group.Project, Role: m.Role, MemberCount: count}
	}
	return out, nil
}

// Members lists the members of a group the caller belongs to.
func (s *Service) Members(ctx context.Context, p models.Principal, groupID uint) ([]models.GroupMember, error) {
	g, err := s.q.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if p.IsStudent() {
		m, err := s.q.MembershipInProject(ctx, p.ID, g.ProjectID)
		if err != nil {
			return nil, apperrors.Internal(err, "Failed to check membership")
		}
		if m == nil || m.GroupID != groupID {
			return nil, apperrors.Forbidden("You are not a member of this group")
		}
	} else if err := s.requireManage(ctx, p, g.ProjectID); err != nil {
		return nil, err
	}

	members, err := s.q.GetGroupMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.Storage(err, "Failed to fetch members", "")
	}
	return members, nil
}

// Leave removes the caller from a group. Leaders must hand over leadership first.
func (s *Service) Leave(ctx context.Context, p models.Principal, groupID uint) error {
	g, err := s.q.Get(ctx, groupID)
	if err != nil {
		return err
	}

	var m models.GroupMember
	if err := s.db.WithContext(ctx).Where("group_id = ? AND student_id = ?", groupID, p.ID).First(&m).Error; err != nil {
		return apperrors.Storage(err, "You are not a member of this group", "")
	}
	if m.IsLeader() {
		return apperrors.Conflict("The group leader cannot leave the group")
	}

	if err := s.db.WithContext(ctx).Delete(&m).Error; err != nil {
		return apperrors.Storage(err, "Failed to leave group", "")
	}
	metrics.MembershipChanges.WithLabelValues("leave").Inc()
	s.log.Info("member left group", zap.Uint("group_id", groupID), zap.Uint("student_id", p.ID))

	s.cascadeSelection(ctx, p.ID, g.ProjectID)
	return nil
}

// Delete removes a group that has not picked a deliverable yet. Leader only.
func (s *Service) Delete(ctx context.Context, p models.Principal, groupID uint) error {
	g, err := s.q.RequireLeader(ctx, groupID, p.ID)
	if err != nil {
		return err
	}

	var selections int64
	if err := s.db.WithContext(ctx).Model(&models.GroupDeliverableSelection{}).Where("group_id = ?", groupID).Count(&selections).Error; err != nil {
		return apperrors.Storage(err, "Failed to delete group", "")
	}
	if selections > 0 {
		return apperrors.Conflict("A group with a deliverable selection cannot be deleted")
	}

	var studentIDs []uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Pluck("student_id", &studentIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, groupID).Error
	})
	if err != nil {
		return apperrors.Storage(err, "Failed to delete group", "")
	}

	metrics.MembershipChanges.WithLabelValues("delete_group").Inc()
	s.log.Info("group deleted", zap.Uint("group_id", groupID), zap.Uint("leader_id", p.ID))
	for _, id := range studentIDs {
		s.cascadeSelection(ctx, id, g.ProjectID)
	}
	return nil
}

// ProjectGroup summarises a group for administrators.
type ProjectGroup struct {
	Group       models.Group
	MemberCount int64
	Leader      *models.GroupMember
	Deliverable *models.GroupDeliverable
	TimeExpired bool
}

// ListProjectGroups lists every group of a project with its leader and selection.
func (s *Service) ListProjectGroups(ctx context.Context, p models.Principal, projectID uint) ([]ProjectGroup, error) {
	db := s.db.WithContext(ctx)
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		return nil, apperrors.Storage(err, "Project not found", "")
	}
	if err := s.requireManage(ctx, p, projectID); err != nil {
		return nil, err
	}

	var groups []models.Group
	if err := db.Where("project_id = ?", projectID).Order("name").Find(&groups).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to fetch groups", "")
	}

	open := project.SelectionOpen(s.now())
	out := make([]ProjectGroup, len(groups))
	for i, g := range groups {
		pg := ProjectGroup{Group: g}
		var err error
		if pg.MemberCount, err = s.q.CountMembers(ctx, g.ID); err != nil {
			return nil, apperrors.Storage(err, "Failed to fetch groups", "")
		}
		if pg.Leader, err = s.q.Leader(ctx, g.ID); err != nil {
			return nil, apperrors.Storage(err, "Failed to fetch groups", "")
		}
		if pg.Deliverable, err = s.selectedDeliverable(ctx, g.ID); err != nil {
			return nil, err
		}
		pg.TimeExpired = pg.Deliverable == nil && !open
		out[i] = pg
	}
	return out, nil
}

// MemberDetail is a member with the individual deliverable they chose, if any.
type MemberDetail struct {
	models.GroupMember
	StudentDeliverable *models.StudentDeliverable
}

// GroupDetails is the administrator view of one group.
type GroupDetails struct {
	Group       models.Group
	Project     models.Project
	Members     []MemberDetail
	Selection   *models.GroupDeliverableSelection
	Deliverable *models.GroupDeliverable
}

// Details returns the administrator view of a group.
func (s *Service) Details(ctx context.Context, p models.Principal, groupID uint) (*GroupDetails, error) {
	db := s.db.WithContext(ctx)
	var g models.Group
	if err := db.Preload("Project").First(&g, groupID).Error; err != nil {
		return nil, apperrors.Storage(err, "Group not found", "")
	}
	if err := s.requireManage(ctx, p, g.ProjectID); err != nil {
		return nil, err
	}

	members, err := s.q.GetGroupMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.Storage(err, "Failed to fetch members", "")
	}

	d := &GroupDetails{Group: g, Project: g.Project, Members: make([]MemberDetail, len(members))}
	for i, m := range members {
		d.Members[i] = MemberDetail{GroupMember: m}
		var sel models.StudentDeliverableSelection
		res := db.Preload("Deliverable").Where("student_id = ? AND project_id = ?", m.StudentID, g.ProjectID).Limit(1).Find(&sel)
		if res.Error != nil {
			return nil, apperrors.Storage(res.Error, "Failed to fetch student selections", "")
		}
		if res.RowsAffected > 0 {
			deliverable := sel.Deliverable
			d.Members[i].StudentDeliverable = &deliverable
		}
	}

	var sel models.GroupDeliverableSelection
	res := db.Preload("Deliverable").Where("group_id = ?", groupID).Limit(1).Find(&sel)
	if res.Error != nil {
		return nil, apperrors.Storage(res.Error, "Failed to fetch group selection", "")
	}
	if res.RowsAffected > 0 {
		deliverable := sel.Deliverable
		d.Selection = &sel
		d.Deliverable = &deliverable
	}
	return d, nil
}

func (s *Service) selectedDeliverable(ctx context.Context, groupID uint) (*models.GroupDeliverable, error) {
	var sel models.GroupDeliverableSelection
	res := s.db.WithContext(ctx).Preload("Deliverable").Where("group_id = ?", groupID).Limit(1).Find(&sel)
	if res.Error != nil {
		return nil, apperrors.Storage(res.Error, "Failed to fetch group selection", "")
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &sel.Deliverable, nil
}

// requireManage allows Root and Professor everywhere and Coordinators on their own projects.
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

// cascadeSelection drops the student's individual selection. Failures are
// logged and do not undo the membership change.
func (s *Service) cascadeSelection(ctx context.Context, studentID, projectID uint) {
	if s.selections == nil {
		return
	}
	if err := s.selections.DeleteForStudent(ctx, studentID, projectID); err != nil {
		s.log.Warn("failed to delete student deliverable selection",
			zap.Uint("student_id", studentID),
			zap.Uint("project_id", projectID),
			zap.Error(err),
		)
	}
}
