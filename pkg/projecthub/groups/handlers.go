package groups

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/httpx"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
)

// Handler handles group-related requests
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new groups handler
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name         string `json:"name" binding:"required"`
	SecurityCode string `json:"security_code" binding:"required"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          uint   `json:"group_id"`
	Name        string `json:"name"`
	ProjectID   uint   `json:"project_id"`
	ProjectName string `json:"project_name,omitempty"`
	Role        string `json:"role,omitempty"` // caller's role in this group
	MemberCount int64  `json:"member_count"`
}

// CheckNameResponse tells whether a group name is free
type CheckNameResponse struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Create creates a new group with the caller as leader
// @Summary Create a group
// @Description Create a group in the project the security code belongs to. The creator becomes Group Leader.
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group details"
// @Success 201 {object} GroupResponse
// @Failure 404 {object} map[string]string "Security code not found"
// @Failure 409 {object} map[string]string "Already in a group for this project"
// @Failure 422 {object} map[string]string "Security code expired"
// @Security BearerAuth
// @Router /students/groups [post]
func (h *Handler) Create(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	group, err := h.svc.Create(c.Request.Context(), p, req.Name, req.SecurityCode)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		ProjectID:   group.ProjectID,
		Role:        models.GroupRoleLeader.DisplayName(),
		MemberCount: 1,
	})
}

// List returns the groups the caller belongs to
// @Summary List my groups
// @Tags groups
// @Produce json
// @Success 200 {array} GroupResponse
// @Security BearerAuth
// @Router /students/groups [get]
func (h *Handler) List(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}

	groups, err := h.svc.ListForStudent(c.Request.Context(), p)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	resp := make([]GroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = GroupResponse{
			ID:          g.Group.ID,
			Name:        g.Group.Name,
			ProjectID:   g.Project.ID,
			ProjectName: g.Project.Name,
			Role:        g.Role.DisplayName(),
			MemberCount: g.MemberCount,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// CheckName checks whether a group name is available
// @Summary Check group name
// @Tags groups
// @Produce json
// @Param security_code query string true "Security code"
// @Param name query string true "Group name"
// @Success 200 {object} CheckNameResponse
// @Security BearerAuth
// @Router /students/groups/check-name [get]
func (h *Handler) CheckName(c *gin.Context) {
	name := c.Query("name")
	available, err := h.svc.CheckName(c.Request.Context(), c.Query("security_code"), name)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, CheckNameResponse{Name: name, Available: available})
}

// Delete deletes a group without a deliverable selection
// @Summary Delete a group
// @Tags groups
// @Param id path int true "Group ID"
// @Success 204
// @Failure 403 {object} map[string]string "Not the group leader"
// @Failure 409 {object} map[string]string "Group already selected a deliverable"
// @Security BearerAuth
// @Router /students/groups/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p, groupID); err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Leave removes the caller from a group
// @Summary Leave a group
// @Tags groups
// @Param id path int true "Group ID"
// @Success 204
// @Failure 409 {object} map[string]string "Leader cannot leave"
// @Security BearerAuth
// @Router /students/groups/{id}/leave [post]
func (h *Handler) Leave(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Leave(c.Request.Context(), p, groupID); err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterStudentRoutes registers the student group routes. throttle guards group creation.
func (h *Handler) RegisterStudentRoutes(rg *gin.RouterGroup, throttle gin.HandlerFunc) {
	rg.GET("/groups", h.List)
	rg.POST("/groups", throttle, h.Create)
	rg.GET("/groups/check-name", h.CheckName)
	rg.DELETE("/groups/:id", h.Delete)
	rg.POST("/groups/:id/leave", h.Leave)
	rg.GET("/groups/:id/members", h.ListMembers)
	rg.POST("/groups/:id/members", h.AddMember)
	rg.DELETE("/groups/:id/members/:studentId", h.RemoveMember)
}

// RegisterAdminRoutes registers the administrative group routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/projects/:id/groups", h.ProjectGroups)
	rg.GET("/groups/:id", h.Details)
	rg.POST("/groups/:id/members", h.AdminAddMember)
	rg.DELETE("/groups/:id/members/:studentId", h.AdminRemoveMember)
	rg.PATCH("/groups/:id/leader", h.TransferLeadership)
}
