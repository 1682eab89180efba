package implementations

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/httpx"
	"go.uber.org/zap"
)

// Handler handles component implementation detail requests
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new implementation details handler
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// CreateDetailRequest describes how one component is implemented
type CreateDetailRequest struct {
	ComponentID         uint   `json:"group_deliverable_component_id" binding:"required"`
	MarkdownDescription string `json:"markdown_description" binding:"required"`
	RepositoryLink      string `json:"repository_link" binding:"required"`
}

// UpdateDetailRequest changes an existing detail. Omitted fields stay as they are.
type UpdateDetailRequest struct {
	ComponentID         uint    `json:"group_deliverable_component_id" binding:"required"`
	MarkdownDescription *string `json:"markdown_description"`
	RepositoryLink      *string `json:"repository_link"`
}

// DetailResponse represents a component implementation detail in API responses
type DetailResponse struct {
	ID                  uint      `json:"id"`
	SelectionID         uint      `json:"group_deliverable_selection_id"`
	ComponentID         uint      `json:"group_deliverable_component_id"`
	ComponentName       string    `json:"component_name"`
	MarkdownDescription string    `json:"markdown_description"`
	RepositoryLink      string    `json:"repository_link"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toResponse(d *Detail) DetailResponse {
	return DetailResponse{
		ID:                  d.ID,
		SelectionID:         d.GroupDeliverableSelectionID,
		ComponentID:         d.GroupDeliverableComponentID,
		ComponentName:       d.ComponentName,
		MarkdownDescription: d.MarkdownDescription,
		RepositoryLink:      d.RepositoryLink,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

func toResponses(details []Detail) []DetailResponse {
	resp := make([]DetailResponse, len(details))
	for i := range details {
		resp[i] = toResponse(&details[i])
	}
	return resp
}

// Create adds an implementation detail
// @Summary Create a component implementation detail
// @Tags component-details
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body CreateDetailRequest true "Detail"
// @Success 201 {object} DetailResponse
// @Failure 403 {object} map[string]string "Not the group leader"
// @Failure 404 {object} map[string]string "No selection or component not in deliverable"
// @Failure 409 {object} map[string]string "Detail already exists"
// @Security BearerAuth
// @Router /students/groups/{id}/component-details [post]
func (h *Handler) Create(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	var req CreateDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	detail, err := h.svc.Create(c.Request.Context(), p, groupID, req.ComponentID, req.MarkdownDescription, req.RepositoryLink)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(detail))
}

// Update changes an implementation detail
// @Summary Update a component implementation detail
// @Tags component-details
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body UpdateDetailRequest true "Changes"
// @Success 200 {object} DetailResponse
// @Security BearerAuth
// @Router /students/groups/{id}/component-details [patch]
func (h *Handler) Update(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	var req UpdateDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	detail, err := h.svc.Update(c.Request.Context(), p, groupID, req.ComponentID, UpdateInput{
		MarkdownDescription: req.MarkdownDescription,
		RepositoryLink:      req.RepositoryLink,
	})
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(detail))
}

// Delete removes an implementation detail
// @Summary Delete a component implementation detail
// @Tags component-details
// @Param id path int true "Group ID"
// @Param componentId path int true "Component ID"
// @Success 204
// @Security BearerAuth
// @Router /students/groups/{id}/component-details/{componentId} [delete]
func (h *Handler) Delete(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}
	componentID, ok := httpx.ParseID(c, "componentId")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p, groupID, componentID); err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListByGroup lists the implementation details of a group
// @Summary List a group's component implementation details
// @Tags component-details
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} DetailResponse
// @Security BearerAuth
// @Router /students/groups/{id}/component-details [get]
func (h *Handler) ListByGroup(c *gin.Context) {
	groupID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	details, err := h.svc.ListByGroup(c.Request.Context(), groupID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(details))
}

// ListBySelection lists the implementation details of a selection
// @Summary List a selection's component implementation details
// @Tags admin-component-details
// @Produce json
// @Param id path int true "Selection ID"
// @Success 200 {array} DetailResponse
// @Security BearerAuth
// @Router /admins/selections/{id}/component-details [get]
func (h *Handler) ListBySelection(c *gin.Context) {
	selectionID, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	details, err := h.svc.ListBySelection(c.Request.Context(), selectionID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(details))
}

// RegisterStudentRoutes registers the student component detail routes.
func (h *Handler) RegisterStudentRoutes(rg *gin.RouterGroup) {
	rg.GET("/groups/:id/component-details", h.ListByGroup)
	rg.POST("/groups/:id/component-details", h.Create)
	rg.PATCH("/groups/:id/component-details", h.Update)
	rg.DELETE("/groups/:id/component-details/:componentId", h.Delete)
}

// RegisterAdminRoutes registers the administrative component detail routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/selections/:id/component-details", h.ListBySelection)
}
