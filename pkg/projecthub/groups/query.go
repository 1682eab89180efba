package groups

import (
	"context"
	"errors"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"gorm.io/gorm"
)

// Query holds the read-only membership lookups other components depend on.
type Query struct {
	db *gorm.DB
}

func NewQuery(db *gorm.DB) *Query {
	return &Query{db: db}
}

// Get loads a group, NotFound if absent.
func (q *Query) Get(ctx context.Context, groupID uint) (*models.Group, error) {
	var g models.Group
	if err := q.db.WithContext(ctx).First(&g, groupID).Error; err != nil {
		return nil, apperrors.Storage(err, "Group not found", "")
	}
	return &g, nil
}

// IsGroupLeader reports whether studentID leads groupID.
func (q *Query) IsGroupLeader(ctx context.Context, groupID, studentID uint) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND student_id = ? AND role = ?", groupID, studentID, models.GroupRoleLeader).
		Count(&count).Error
	return count > 0, err
}

// IsStudentInProject reports whether studentID belongs to any group of projectID.
func (q *Query) IsStudentInProject(ctx context.Context, studentID, projectID uint) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("student_id = ? AND project_id = ?", studentID, projectID).
		Count(&count).Error
	return count > 0, err
}

// MembershipInProject returns the student's membership in projectID, or nil.
func (q *Query) MembershipInProject(ctx context.Context, studentID, projectID uint) (*models.GroupMember, error) {
	var m models.GroupMember
	err := q.db.WithContext(ctx).Where("student_id = ? AND project_id = ?", studentID, projectID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetGroupMembers lists members with their student records, leader first.
func (q *Query) GetGroupMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error) {
	members := []models.GroupMember{}
	err := q.db.WithContext(ctx).Preload("Student").
		Where("group_id = ?", groupID).
		Order("CASE WHEN role = 'group_leader' THEN 0 ELSE 1 END, joined_at, id").
		Find(&members).Error
	return members, err
}

// CountMembers returns the number of members of groupID.
func (q *Query) CountMembers(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

// Leader returns the leader membership of groupID, or nil when the group has none.
func (q *Query) Leader(ctx context.Context, groupID uint) (*models.GroupMember, error) {
	return leaderOf(q.db.WithContext(ctx), groupID)
}

func leaderOf(db *gorm.DB, groupID uint) (*models.GroupMember, error) {
	var m models.GroupMember
	err := db.Preload("Student").
		Where("group_id = ? AND role = ?", groupID, models.GroupRoleLeader).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RequireLeader loads the group and fails with Forbidden unless studentID leads it.
func (q *Query) RequireLeader(ctx context.Context, groupID, studentID uint) (*models.Group, error) {
	g, err := q.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ok, err := q.IsGroupLeader(ctx, groupID, studentID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to check group leadership")
	}
	if !ok {
		return nil, apperrors.Forbidden("Only the group leader can perform this action")
	}
	return g, nil
}
