package models

import "time"

// GroupRole represents a student's role within a group
type GroupRole string

const (
	GroupRoleLeader GroupRole = "group_leader"
	GroupRoleMember GroupRole = "member"
)

// DisplayName returns the human readable role name
func (r GroupRole) DisplayName() string {
	if r == GroupRoleLeader {
		return "Group Leader"
	}
	return "Member"
}

// GroupMember places a student in a group.
//
// ProjectID duplicates Group.ProjectID so the store can enforce one membership per
// student per project. The partial index on GroupID keeps a single leader per group.
type GroupMember struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	GroupID   uint      `gorm:"not null;index;uniqueIndex:idx_group_single_leader,where:role = 'group_leader'" json:"group_id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_member_student_project" json:"project_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_member_student_project" json:"student_id"`
	Role      GroupRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt  time.Time `gorm:"not null" json:"joined_at"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Group   Group   `gorm:"foreignKey:GroupID" json:"-"`
}

// IsLeader reports whether the member holds the GroupLeader role
func (m GroupMember) IsLeader() bool {
	return m.Role == GroupRoleLeader
}
