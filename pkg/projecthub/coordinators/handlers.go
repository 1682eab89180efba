package coordinators

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/httpx"
	"go.uber.org/zap"
)

// Handler handles coordinator assignment requests
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new coordinator handler
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// AssignRequest represents the request body for assigning a coordinator
type AssignRequest struct {
	AdminID uint `json:"admin_id" binding:"required"`
}

// CoordinatorDetail describes the assigned coordinator
type CoordinatorDetail struct {
	AdminID    uint      `json:"admin_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	AssignedAt time.Time `json:"assigned_at"`
}

// ProjectCoordinatorResponse represents a project and its coordinator, if any
type ProjectCoordinatorResponse struct {
	ProjectID   uint               `json:"project_id"`
	ProjectName string             `json:"project_name"`
	Coordinator *CoordinatorDetail `json:"coordinator"`
}

// Get returns the coordinator of a project
// @Summary Get project coordinator
// @Tags coordinators
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} ProjectCoordinatorResponse
// @Failure 404 {object} map[string]string "Project not found"
// @Security BearerAuth
// @Router /admins/projects/{id}/coordinators [get]
func (h *Handler) Get(c *gin.Context) {
	projectID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	project, a, err := h.svc.Get(c.Request.Context(), projectID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	resp := ProjectCoordinatorResponse{ProjectID: project.ID, ProjectName: project.Name}
	if a != nil {
		resp.Coordinator = &CoordinatorDetail{
			AdminID:    a.AdminID,
			FirstName:  a.Admin.FirstName,
			LastName:   a.Admin.LastName,
			Email:      a.Admin.Email,
			AssignedAt: a.AssignedAt,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Assign assigns a coordinator to a project
// @Summary Assign coordinator
// @Description Only one coordinator may be assigned to a project at a time
// @Tags coordinators
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body AssignRequest true "Coordinator"
// @Success 201 {object} ProjectCoordinatorResponse
// @Failure 400 {object} map[string]string "Admin is not a coordinator"
// @Failure 409 {object} map[string]string "Project already has a coordinator"
// @Security BearerAuth
// @Router /admins/projects/{id}/coordinators [post]
func (h *Handler) Assign(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	projectID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	a, err := h.svc.Assign(c.Request.Context(), p, projectID, req.AdminID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, ProjectCoordinatorResponse{
		ProjectID:   a.ProjectID,
		ProjectName: a.Project.Name,
		Coordinator: &CoordinatorDetail{
			AdminID:    a.AdminID,
			FirstName:  a.Admin.FirstName,
			LastName:   a.Admin.LastName,
			Email:      a.Admin.Email,
			AssignedAt: a.AssignedAt,
		},
	})
}

// Unassign removes a coordinator from a project
// @Summary Remove coordinator
// @Tags coordinators
// @Param id path int true "Project ID"
// @Param adminId path int true "Admin ID"
// @Success 204
// @Failure 404 {object} map[string]string "Assignment not found"
// @Security BearerAuth
// @Router /admins/projects/{id}/coordinators/{adminId} [delete]
func (h *Handler) Unassign(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	projectID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}
	adminID, ok := httpx.ParseID(c, "adminId")
	if !ok {
		return
	}

	if err := h.svc.Unassign(c.Request.Context(), p, projectID, adminID); err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers coordinator routes on the admin router group.
// guards run before the assign and unassign handlers.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	rg.GET("/projects/:id/coordinators", h.Get)
	rg.POST("/projects/:id/coordinators", append(guards, h.Assign)...)
	rg.DELETE("/projects/:id/coordinators/:adminId", append(guards, h.Unassign)...)
}
