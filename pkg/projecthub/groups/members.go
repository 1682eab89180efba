package groups

import (
	"context"
	"strings"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/metrics"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RemoveResult tells whether a self-service removal happened.
type RemoveResult struct {
	Removed bool
	Message string
}

// AddMember adds the student with email to a group led by the caller.
func (s *Service) AddMember(ctx context.Context, p models.Principal, groupID uint, email string) (*models.GroupMember, error) {
	if !p.IsStudent() {
		return nil, apperrors.Forbidden("Only the group leader can add members")
	}
	g, err := s.q.RequireLeader(ctx, groupID, p.ID)
	if err != nil {
		return nil, err
	}

	m, err := s.addMember(ctx, g, email, models.GroupRoleMember)
	if err != nil {
		return nil, err
	}
	s.log.Info("member added",
		zap.Uint("group_id", groupID),
		zap.Uint("student_id", m.StudentID),
		zap.Uint("by_student", p.ID),
	)
	return m, nil
}

// AdminAddMember adds a student to any group of a project the admin manages,
// optionally as GroupLeader when the group has none.
func (s *Service) AdminAddMember(ctx context.Context, p models.Principal, groupID uint, email string, role models.GroupRole) (*models.GroupMember, error) {
	g, err := s.q.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, p, g.ProjectID); err != nil {
		return nil, err
	}
	if role != models.GroupRoleLeader && role != models.GroupRoleMember {
		return nil, apperrors.InvalidInput("Unknown group role %q", role)
	}

	m, err := s.addMember(ctx, g, email, role)
	if err != nil {
		return nil, err
	}
	s.log.Info("member added by admin",
		zap.Uint("group_id", groupID),
		zap.Uint("student_id", m.StudentID),
		zap.String("role", string(role)),
		zap.Uint("by_admin", p.ID),
	)
	return m, nil
}

// addMember enforces the shared rules: the student exists and is confirmed,
// belongs to no group of the project, the group is not full and keeps a single
// leader.
func (s *Service) addMember(ctx context.Context, g *models.Group, email string, role models.GroupRole) (*models.GroupMember, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.InvalidInput("Student email is required")
	}

	var member models.GroupMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.Where("email = ?", email).First(&student).Error; err != nil {
			return apperrors.Storage(err, "Student not found", "")
		}
		if student.Pending {
			return apperrors.InvalidState("Student has not confirmed their account yet")
		}

		var existing int64
		if err := tx.Model(&models.GroupMember{}).
			Where("student_id = ? AND project_id = ?", student.ID, g.ProjectID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.Conflict("Student already belongs to a group in this project")
		}

		var project models.Project
		if err := tx.First(&project, g.ProjectID).Error; err != nil {
			return apperrors.Storage(err, "Project not found", "")
		}
		var count int64
		if err := tx.Model(&models.GroupMember{}).Where("group_id = ?", g.ID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(project.MaxGroupSize) {
			return apperrors.Conflict("Group has reached the maximum size of %d members", project.MaxGroupSize)
		}

		if role == models.GroupRoleLeader {
			leader, err := leaderOf(tx, g.ID)
			if err != nil {
				return err
			}
			if leader != nil {
				return apperrors.Conflict("Group already has a leader")
			}
		}

		member = models.GroupMember{
			GroupID:   g.ID,
			ProjectID: g.ProjectID,
			StudentID: student.ID,
			Role:      role,
			JoinedAt:  s.now(),
			Student:   student,
		}
		if err := tx.Create(&member).Error; err != nil {
			return apperrors.Storage(err, "Failed to add member", "Student already belongs to a group in this project")
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Storage(err, "Failed to add member", "")
	}

	metrics.MembershipChanges.WithLabelValues("add").Inc()
	return &member, nil
}

// RemoveMember lets a leader remove a member. Leaders are never removed through
// this path; the result says so instead of failing.
func (s *Service) RemoveMember(ctx context.Context, p models.Principal, groupID, studentID uint) (*RemoveResult, error) {
	if !p.IsStudent() {
		return nil, apperrors.Forbidden("Only the group leader can remove members")
	}
	g, err := s.q.RequireLeader(ctx, groupID, p.ID)
	if err != nil {
		return nil, err
	}

	var m models.GroupMember
	if err := s.db.WithContext(ctx).Where("group_id = ? AND student_id = ?", groupID, studentID).First(&m).Error; err != nil {
		return nil, apperrors.Storage(err, "Member not found in this group", "")
	}
	if m.IsLeader() {
		return &RemoveResult{Removed: false, Message: "The group leader cannot be removed"}, nil
	}

	if err := s.removeMembership(ctx, &m, g.ProjectID); err != nil {
		return nil, err
	}
	s.log.Info("member removed", zap.Uint("group_id", groupID), zap.Uint("student_id", studentID), zap.Uint("by_student", p.ID))
	return &RemoveResult{Removed: true, Message: "Member removed successfully"}, nil
}

// AdminRemoveMember removes any member, the leader included.
func (s *Service) AdminRemoveMember(ctx context.Context, p models.Principal, groupID, studentID uint) error {
	g, err := s.q.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireManage(ctx, p, g.ProjectID); err != nil {
		return err
	}

	var m models.GroupMember
	if err := s.db.WithContext(ctx).Where("group_id = ? AND student_id = ?", groupID, studentID).First(&m).Error; err != nil {
		return apperrors.Storage(err, "Member not found in this group", "")
	}

	if err := s.removeMembership(ctx, &m, g.ProjectID); err != nil {
		return err
	}
	s.log.Info("member removed by admin",
		zap.Uint("group_id", groupID),
		zap.Uint("student_id", studentID),
		zap.Bool("was_leader", m.IsLeader()),
		zap.Uint("by_admin", p.ID),
	)
	return nil
}

func (s *Service) removeMembership(ctx context.Context, m *models.GroupMember, projectID uint) error {
	if err := s.db.WithContext(ctx).Delete(m).Error; err != nil {
		return apperrors.Storage(err, "Failed to remove member", "")
	}
	metrics.MembershipChanges.WithLabelValues("remove").Inc()
	s.cascadeSelection(ctx, m.StudentID, projectID)
	return nil
}

// LeaderChange describes what happened to each side of a leadership transfer.
type LeaderChange struct {
	OldLeader        models.GroupMember
	OldLeaderRemoved bool
	NewLeader        models.GroupMember
}

// TransferLeadership makes newLeaderID the group's leader. The previous leader
// is demoted to Member, or removed from the group when removeOld is set.
func (s *Service) TransferLeadership(ctx context.Context, p models.Principal, groupID, newLeaderID uint, removeOld bool) (*LeaderChange, error) {
	g, err := s.q.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, p, g.ProjectID); err != nil {
		return nil, err
	}

	var change LeaderChange
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := leaderOf(tx, groupID)
		if err != nil {
			return err
		}
		if old == nil {
			return apperrors.Conflict("Group has no current leader")
		}

		var next models.GroupMember
		if err := tx.Preload("Student").Where("group_id = ? AND student_id = ?", groupID, newLeaderID).First(&next).Error; err != nil {
			return apperrors.Storage(err, "New leader is not a member of this group", "")
		}
		if next.IsLeader() {
			return apperrors.Conflict("Student is already the group leader")
		}

		// The old leader goes first so the single-leader index never sees two.
		if removeOld {
			if err := tx.Delete(old).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(old).Update("role", models.GroupRoleMember).Error; err != nil {
				return err
			}
			old.Role = models.GroupRoleMember
		}
		if err := tx.Model(&next).Update("role", models.GroupRoleLeader).Error; err != nil {
			return err
		}
		next.Role = models.GroupRoleLeader

		change = LeaderChange{OldLeader: *old, OldLeaderRemoved: removeOld, NewLeader: next}
		return nil
	})
	if err != nil {
		return nil, apperrors.Storage(err, "Failed to transfer leadership", "Group already has a leader")
	}

	metrics.MembershipChanges.WithLabelValues("transfer").Inc()
	s.log.Info("leadership transferred",
		zap.Uint("group_id", groupID),
		zap.Uint("old_leader", change.OldLeader.StudentID),
		zap.Uint("new_leader", change.NewLeader.StudentID),
		zap.Bool("old_removed", removeOld),
		zap.Uint("by_admin", p.ID),
	)
	if removeOld {
		s.cascadeSelection(ctx, change.OldLeader.StudentID, g.ProjectID)
	}
	return &change, nil
}
