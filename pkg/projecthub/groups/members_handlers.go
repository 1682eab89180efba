package groups

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/httpx"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
)

// AddMemberRequest represents the request to add a member
type AddMemberRequest struct {
	StudentEmail string `json:"student_email" binding:"required,email"`
}

// AdminAddMemberRequest represents an administrator adding a member
type AdminAddMemberRequest struct {
	StudentEmail string           `json:"student_email" binding:"required,email"`
	Role         models.GroupRole `json:"role" binding:"omitempty,oneof=group_leader member"`
}

// TransferLeadershipRequest represents a leadership change
type TransferLeadershipRequest struct {
	NewLeaderStudentID uint `json:"new_leader_student_id" binding:"required"`
	RemoveOldLeader    bool `json:"remove_old_leader"`
}

// MemberResponse represents a group member in API responses
type MemberResponse struct {
	StudentID uint      `json:"student_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// RemoveMemberResponse reports the outcome of a self-service removal
type RemoveMemberResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LeaderChangeInfo describes one side of a leadership transfer
type LeaderChangeInfo struct {
	StudentID uint   `json:"student_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
}

// TransferLeadershipResponse represents the outcome of a leadership transfer
type TransferLeadershipResponse struct {
	OldLeader LeaderChangeInfo `json:"old_leader"`
	NewLeader LeaderChangeInfo `json:"new_leader"`
}

func toMemberResponse(m models.GroupMember) MemberResponse {
	return MemberResponse{
		StudentID: m.StudentID,
		Name:      m.Student.FullName(),
		Email:     m.Student.Email,
		Role:      m.Role.DisplayName(),
		JoinedAt:  m.JoinedAt,
	}
}

// ListMembers returns all members of a group
// @Summary List group members
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} MemberResponse
// @Security BearerAuth
// @Router /students/groups/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	members, err := h.svc.Members(c.Request.Context(), p, groupID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	resp := make([]MemberResponse, len(members))
	for i, m := range members {
		resp[i] = toMemberResponse(m)
	}
	c.JSON(http.StatusOK, resp)
}

// AddMember adds a member to a group
// @Summary Add group member
// @Description Group leader adds a student by e-mail
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body AddMemberRequest true "Student"
// @Success 201 {object} MemberResponse
// @Failure 403 {object} map[string]string "Not the group leader"
// @Failure 409 {object} map[string]string "Student already in a group or group full"
// @Security BearerAuth
// @Router /students/groups/{id}/members [post]
func (h *Handler) AddMember(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	m, err := h.svc.AddMember(c.Request.Context(), p, groupID, req.StudentEmail)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toMemberResponse(*m))
}

// RemoveMember removes a member from a group
// @Summary Remove group member
// @Description The group leader cannot be removed through this endpoint
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} RemoveMemberResponse
// @Security BearerAuth
// @Router /students/groups/{id}/members/{studentId} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}
	studentID, ok := httpx.ParseID(c, "studentId")
	if !ok {
		return
	}

	res, err := h.svc.RemoveMember(c.Request.Context(), p, groupID, studentID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, RemoveMemberResponse{Success: res.Removed, Message: res.Message})
}

// AdminAddMember adds a member to any group
// @Summary Add group member (admin)
// @Tags admin-groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body AdminAddMemberRequest true "Student and role"
// @Success 201 {object} MemberResponse
// @Security BearerAuth
// @Router /admins/groups/{id}/members [post]
func (h *Handler) AdminAddMember(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	var req AdminAddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	if req.Role == "" {
		req.Role = models.GroupRoleMember
	}

	m, err := h.svc.AdminAddMember(c.Request.Context(), p, groupID, req.StudentEmail, req.Role)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toMemberResponse(*m))
}

// AdminRemoveMember removes any member, leader included
// @Summary Remove group member (admin)
// @Tags admin-groups
// @Param id path int true "Group ID"
// @Param studentId path int true "Student ID"
// @Success 204
// @Security BearerAuth
// @Router /admins/groups/{id}/members/{studentId} [delete]
func (h *Handler) AdminRemoveMember(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}
	studentID, ok := httpx.ParseID(c, "studentId")
	if !ok {
		return
	}

	if err := h.svc.AdminRemoveMember(c.Request.Context(), p, groupID, studentID); err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TransferLeadership hands group leadership to another member
// @Summary Transfer leadership
// @Tags admin-groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body TransferLeadershipRequest true "New leader"
// @Success 200 {object} TransferLeadershipResponse
// @Security BearerAuth
// @Router /admins/groups/{id}/leader [patch]
func (h *Handler) TransferLeadership(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	var req TransferLeadershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	change, err := h.svc.TransferLeadership(c.Request.Context(), p, groupID, req.NewLeaderStudentID, req.RemoveOldLeader)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	oldStatus := "demoted to member"
	if change.OldLeaderRemoved {
		oldStatus = "removed from group"
	}
	c.JSON(http.StatusOK, TransferLeadershipResponse{
		OldLeader: LeaderChangeInfo{
			StudentID: change.OldLeader.StudentID,
			Name:      change.OldLeader.Student.FullName(),
			Status:    oldStatus,
		},
		NewLeader: LeaderChangeInfo{
			StudentID: change.NewLeader.StudentID,
			Name:      change.NewLeader.Student.FullName(),
			Status:    "promoted to group leader",
		},
	})
}
