package groups

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/httpx"
)

// StudentInfo identifies a student in administrative responses
type StudentInfo struct {
	StudentID uint   `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// DeliverableInfo identifies a deliverable
type DeliverableInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ProjectGroupResponse summarises one group of a project
type ProjectGroupResponse struct {
	GroupID             uint             `json:"group_id"`
	Name                string           `json:"name"`
	MemberCount         int64            `json:"member_count"`
	GroupLeader         *StudentInfo     `json:"group_leader"`
	DeliverableSelected *DeliverableInfo `json:"deliverable_selected"`
	TimeExpired         bool             `json:"time_expired"`
}

// GroupMemberDetail is a member in the detailed group view
type GroupMemberDetail struct {
	StudentID          uint             `json:"student_id"`
	FirstName          string           `json:"first_name"`
	LastName           string           `json:"last_name"`
	Email              string           `json:"email"`
	Role               string           `json:"role"`
	StudentDeliverable *DeliverableInfo `json:"student_deliverable_selection"`
}

// GroupSelectionDetail is the group's deliverable choice in the detailed view
type GroupSelectionDetail struct {
	SelectionID  uint            `json:"group_deliverable_selection_id"`
	Deliverable  DeliverableInfo `json:"deliverable"`
	Link         string          `json:"link"`
	MarkdownText string          `json:"markdown_text"`
}

// GroupDetailsResponse is the detailed administrative view of a group
type GroupDetailsResponse struct {
	GroupID              uint                  `json:"group_id"`
	Name                 string                `json:"name"`
	ProjectID            uint                  `json:"project_id"`
	ProjectName          string                `json:"project_name"`
	Members              []GroupMemberDetail   `json:"members"`
	DeliverableSelection *GroupSelectionDetail `json:"deliverable_selection"`
}

// ProjectGroups lists the groups of a project
// @Summary List project groups
// @Description Groups with member count, leader and chosen deliverable. time_expired marks groups that missed the deadline.
// @Tags admin-groups
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {array} ProjectGroupResponse
// @Security BearerAuth
// @Router /admins/projects/{id}/groups [get]
func (h *Handler) ProjectGroups(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	projectID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	groups, err := h.svc.ListProjectGroups(c.Request.Context(), p, projectID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	resp := make([]ProjectGroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = ProjectGroupResponse{
			GroupID:     g.Group.ID,
			Name:        g.Group.Name,
			MemberCount: g.MemberCount,
			TimeExpired: g.TimeExpired,
		}
		if g.Leader != nil {
			resp[i].GroupLeader = &StudentInfo{
				StudentID: g.Leader.StudentID,
				Name:      g.Leader.Student.FullName(),
				Email:     g.Leader.Student.Email,
			}
		}
		if g.Deliverable != nil {
			resp[i].DeliverableSelected = &DeliverableInfo{ID: g.Deliverable.ID, Name: g.Deliverable.Name}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Details returns a detailed view of a group
// @Summary Group details
// @Tags admin-groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} GroupDetailsResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /admins/groups/{id} [get]
func (h *Handler) Details(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.Details(c.Request.Context(), p, groupID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	resp := GroupDetailsResponse{
		GroupID:     d.Group.ID,
		Name:        d.Group.Name,
		ProjectID:   d.Project.ID,
		ProjectName: d.Project.Name,
		Members:     make([]GroupMemberDetail, len(d.Members)),
	}
	for i, m := range d.Members {
		resp.Members[i] = GroupMemberDetail{
			StudentID: m.StudentID,
			FirstName: m.Student.FirstName,
			LastName:  m.Student.LastName,
			Email:     m.Student.Email,
			Role:      m.Role.DisplayName(),
		}
		if m.StudentDeliverable != nil {
			resp.Members[i].StudentDeliverable = &DeliverableInfo{ID: m.StudentDeliverable.ID, Name: m.StudentDeliverable.Name}
		}
	}
	if d.Selection != nil {
		resp.DeliverableSelection = &GroupSelectionDetail{
			SelectionID:  d.Selection.ID,
			Deliverable:  DeliverableInfo{ID: d.Deliverable.ID, Name: d.Deliverable.Name},
			Link:         d.Selection.Link,
			MarkdownText: d.Selection.MarkdownText,
		}
	}
	c.JSON(http.StatusOK, resp)
}
