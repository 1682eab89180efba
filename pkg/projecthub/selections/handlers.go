package selections

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/httpx"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
)

// Handler handles deliverable selection requests
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new selections handler
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// CreateGroupSelectionRequest picks the group's deliverable
type CreateGroupSelectionRequest struct {
	GroupDeliverableID uint `json:"group_deliverable_id" binding:"required"`
}

// UpdateGroupSelectionRequest changes the free-text fields of a group selection.
// Any deliverable id sent alongside is ignored.
type UpdateGroupSelectionRequest struct {
	Link         string `json:"link"`
	MarkdownText string `json:"markdown_text"`
}

// StudentSelectionRequest picks or changes a student's individual deliverable
type StudentSelectionRequest struct {
	StudentDeliverableID uint `json:"student_deliverable_id" binding:"required"`
	ProjectID            uint `json:"project_id" binding:"required"`
}

// GroupSelectionResponse represents a group selection in API responses
type GroupSelectionResponse struct {
	ID                   uint      `json:"group_deliverable_selection_id"`
	GroupID              uint      `json:"group_id"`
	GroupName            string    `json:"group_name,omitempty"`
	GroupDeliverableID   uint      `json:"group_deliverable_id"`
	GroupDeliverableName string    `json:"group_deliverable_name"`
	Link                 string    `json:"link"`
	MarkdownText         string    `json:"markdown_text"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// StudentSelectionResponse represents a student selection in API responses
type StudentSelectionResponse struct {
	ID                     uint      `json:"student_deliverable_selection_id"`
	StudentID              uint      `json:"student_id"`
	StudentName            string    `json:"student_name,omitempty"`
	ProjectID              uint      `json:"project_id"`
	StudentDeliverableID   uint      `json:"student_deliverable_id"`
	StudentDeliverableName string    `json:"student_deliverable_name"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func groupResponse(sel *models.GroupDeliverableSelection) GroupSelectionResponse {
	return GroupSelectionResponse{
		ID:                   sel.ID,
		GroupID:              sel.GroupID,
		GroupName:            sel.Group.Name,
		GroupDeliverableID:   sel.GroupDeliverableID,
		GroupDeliverableName: sel.Deliverable.Name,
		Link:                 sel.Link,
		MarkdownText:         sel.MarkdownText,
		CreatedAt:            sel.CreatedAt,
		UpdatedAt:            sel.UpdatedAt,
	}
}

func studentResponse(sel *models.StudentDeliverableSelection) StudentSelectionResponse {
	return StudentSelectionResponse{
		ID:                     sel.ID,
		StudentID:              sel.StudentID,
		ProjectID:              sel.ProjectID,
		StudentDeliverableID:   sel.StudentDeliverableID,
		StudentDeliverableName: sel.Deliverable.Name,
		CreatedAt:              sel.CreatedAt,
		UpdatedAt:              sel.UpdatedAt,
	}
}

// CreateGroupSelection records the group's deliverable
// @Summary Select a group deliverable
// @Description Only the group leader, only once, only before the project deadline.
// @Tags selections
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body CreateGroupSelectionRequest true "Deliverable"
// @Success 201 {object} GroupSelectionResponse
// @Failure 403 {object} map[string]string "Not the group leader"
// @Failure 409 {object} map[string]string "Group already has a selection"
// @Failure 422 {object} map[string]string "Deadline passed"
// @Security BearerAuth
// @Router /students/groups/{id}/deliverable-selection [post]
func (h *Handler) CreateGroupSelection(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	var req CreateGroupSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	sel, err := h.svc.CreateGroupSelection(c.Request.Context(), p, groupID, req.GroupDeliverableID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, groupResponse(sel))
}

// UpdateGroupSelection changes the link and notes of the group's selection
// @Summary Update a group selection
// @Tags selections
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body UpdateGroupSelectionRequest true "Link and notes"
// @Success 200 {object} GroupSelectionResponse
// @Failure 409 {object} map[string]string "Link used by another group"
// @Security BearerAuth
// @Router /students/groups/{id}/deliverable-selection [patch]
func (h *Handler) UpdateGroupSelection(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	var req UpdateGroupSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	sel, err := h.svc.UpdateGroupSelection(c.Request.Context(), p, groupID, req.Link, req.MarkdownText)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, groupResponse(sel))
}

// GetGroupSelection returns the group's selection
// @Summary Get a group selection
// @Tags selections
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} GroupSelectionResponse
// @Security BearerAuth
// @Router /students/groups/{id}/deliverable-selection [get]
func (h *Handler) GetGroupSelection(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	sel, err := h.svc.GetGroupSelection(c.Request.Context(), p, groupID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, groupResponse(sel))
}

// CreateStudentSelection records the caller's individual deliverable
// @Summary Select an individual deliverable
// @Tags selections
// @Accept json
// @Produce json
// @Param request body StudentSelectionRequest true "Deliverable and project"
// @Success 201 {object} StudentSelectionResponse
// @Failure 403 {object} map[string]string "Not in a group of this project"
// @Failure 409 {object} map[string]string "Selection exists, update it instead"
// @Security BearerAuth
// @Router /students/deliverable-selection [post]
func (h *Handler) CreateStudentSelection(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}

	var req StudentSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	sel, err := h.svc.CreateStudentSelection(c.Request.Context(), p, req.StudentDeliverableID, req.ProjectID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, studentResponse(sel))
}

// UpdateStudentSelection changes the caller's individual deliverable
// @Summary Change an individual deliverable
// @Tags selections
// @Accept json
// @Produce json
// @Param request body StudentSelectionRequest true "Deliverable and project"
// @Success 200 {object} StudentSelectionResponse
// @Security BearerAuth
// @Router /students/deliverable-selection [patch]
func (h *Handler) UpdateStudentSelection(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}

	var req StudentSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	sel, err := h.svc.UpdateStudentSelection(c.Request.Context(), p, req.StudentDeliverableID, req.ProjectID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, studentResponse(sel))
}

// GetStudentSelection returns the caller's individual deliverable for a project
// @Summary Get my individual deliverable
// @Tags selections
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} StudentSelectionResponse
// @Security BearerAuth
// @Router /students/deliverable-selection/project/{projectId} [get]
func (h *Handler) GetStudentSelection(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	projectID, ok := httpx.ParseID(c, "projectId")
	if !ok {
		return
	}

	sel, err := h.svc.GetStudentSelection(c.Request.Context(), p, projectID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, studentResponse(sel))
}

// DeleteStudentSelection removes the caller's individual deliverable
// @Summary Delete my individual deliverable
// @Tags selections
// @Param projectId path int true "Project ID"
// @Success 204
// @Security BearerAuth
// @Router /students/deliverable-selection/project/{projectId} [delete]
func (h *Handler) DeleteStudentSelection(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	projectID, ok := httpx.ParseID(c, "projectId")
	if !ok {
		return
	}

	if err := h.svc.DeleteStudentSelection(c.Request.Context(), p, projectID); err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ProjectGroupSelections lists the group selections of a project
// @Summary List group selections
// @Tags admin-selections
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {array} GroupSelectionResponse
// @Security BearerAuth
// @Router /admins/projects/{id}/group-selections [get]
func (h *Handler) ProjectGroupSelections(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	projectID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	selections, err := h.svc.ListGroupSelections(c.Request.Context(), p, projectID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	resp := make([]GroupSelectionResponse, len(selections))
	for i := range selections {
		resp[i] = groupResponse(&selections[i])
	}
	c.JSON(http.StatusOK, resp)
}

// ProjectStudentSelections lists the student selections of a project
// @Summary List student selections
// @Tags admin-selections
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {array} StudentSelectionResponse
// @Security BearerAuth
// @Router /admins/projects/{id}/student-selections [get]
func (h *Handler) ProjectStudentSelections(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	projectID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	rows, err := h.svc.ListStudentSelections(c.Request.Context(), p, projectID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	resp := make([]StudentSelectionResponse, len(rows))
	for i := range rows {
		resp[i] = studentResponse(&rows[i].StudentDeliverableSelection)
		resp[i].StudentName = rows[i].Student.FullName()
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterStudentRoutes registers the student selection routes.
func (h *Handler) RegisterStudentRoutes(rg *gin.RouterGroup) {
	rg.GET("/groups/:id/deliverable-selection", h.GetGroupSelection)
	rg.POST("/groups/:id/deliverable-selection", h.CreateGroupSelection)
	rg.PATCH("/groups/:id/deliverable-selection", h.UpdateGroupSelection)
	rg.POST("/deliverable-selection", h.CreateStudentSelection)
	rg.PATCH("/deliverable-selection", h.UpdateStudentSelection)
	rg.GET("/deliverable-selection/project/:projectId", h.GetStudentSelection)
	rg.DELETE("/deliverable-selection/project/:projectId", h.DeleteStudentSelection)
}

// RegisterAdminRoutes registers the administrative selection routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/projects/:id/group-selections", h.ProjectGroupSelections)
	rg.GET("/projects/:id/student-selections", h.ProjectStudentSelections)
}
