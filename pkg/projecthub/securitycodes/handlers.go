package securitycodes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/httpx"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
)

// Handler handles security code requests
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new security code handler
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// CreateCodeRequest represents the request body for issuing a code
type CreateCodeRequest struct {
	ProjectID  uint      `json:"project_id" binding:"required"`
	Expiration time.Time `json:"expiration" binding:"required"`
}

// UpdateCodeRequest represents the request body for updating a code.
// Any non-null code asks for a freshly generated value.
type UpdateCodeRequest struct {
	Code       *string    `json:"code"`
	Expiration *time.Time `json:"expiration"`
}

// ValidateCodeRequest represents the request body for validating a code
type ValidateCodeRequest struct {
	SecurityCode string `json:"security_code" binding:"required"`
}

// CodeResponse represents a security code in responses
type CodeResponse struct {
	ID         uint      `json:"security_code_id"`
	Code       string    `json:"code"`
	Expiration time.Time `json:"expiration"`
	ProjectID  uint      `json:"project_id"`
	Expired    bool      `json:"expired"`
}

// ValidateCodeResponse represents the result of a validation
type ValidateCodeResponse struct {
	IsValid bool         `json:"is_valid"`
	Project *ProjectInfo `json:"project"`
}

// ProjectInfo is the project a valid code belongs to
type ProjectInfo struct {
	ProjectID uint   `json:"project_id"`
	Name      string `json:"name"`
	Year      int    `json:"year"`
}

func (h *Handler) toResponse(sc *models.SecurityCode) CodeResponse {
	return CodeResponse{
		ID:         sc.ID,
		Code:       sc.Code,
		Expiration: sc.Expiration,
		ProjectID:  sc.ProjectID,
		Expired:    sc.Expired(h.svc.now()),
	}
}

// Create issues a security code
// @Summary Issue security code
// @Description Issue a new invitation code for a project. Coordinators may only issue codes for their own project.
// @Tags security-codes
// @Accept json
// @Produce json
// @Param request body CreateCodeRequest true "Code details"
// @Success 201 {object} CodeResponse
// @Failure 400 {object} map[string]string "Invalid data"
// @Failure 403 {object} map[string]string "Access denied"
// @Failure 404 {object} map[string]string "Project not found"
// @Security BearerAuth
// @Router /admins/security-codes [post]
func (h *Handler) Create(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}

	var req CreateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	sc, err := h.svc.Issue(c.Request.Context(), p, req.ProjectID, req.Expiration)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(sc))
}

// List returns the security codes visible to the caller
// @Summary List security codes
// @Tags security-codes
// @Produce json
// @Param project_id query int false "Filter by project"
// @Success 200 {array} CodeResponse
// @Security BearerAuth
// @Router /admins/security-codes [get]
func (h *Handler) List(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}

	var projectID uint
	if raw := c.Query("project_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			httpx.Error(c, h.log, apperrors.InvalidInput("Invalid project_id"))
			return
		}
		projectID = uint(id)
	}

	codes, err := h.svc.List(c.Request.Context(), p, projectID)
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	resp := make([]CodeResponse, len(codes))
	for i := range codes {
		resp[i] = h.toResponse(&codes[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Update partially updates a security code
// @Summary Update security code
// @Description Regenerate the code and/or move its expiration
// @Tags security-codes
// @Accept json
// @Produce json
// @Param id path int true "Security code ID"
// @Param request body UpdateCodeRequest true "Changes"
// @Success 200 {object} CodeResponse
// @Security BearerAuth
// @Router /admins/security-codes/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	id, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	var req UpdateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	sc, err := h.svc.Update(c.Request.Context(), p, id, UpdateInput{
		Regenerate: req.Code != nil,
		Expiration: req.Expiration,
	})
	if err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(sc))
}

// Delete removes a security code
// @Summary Delete security code
// @Tags security-codes
// @Param id path int true "Security code ID"
// @Success 204
// @Security BearerAuth
// @Router /admins/security-codes/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	p, ok := httpx.Principal(c)
	if !ok {
		return
	}
	id, ok := httpx.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p, id); err != nil {
		httpx.Error(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Validate checks a code and returns its project
// @Summary Validate security code
// @Description Unknown or expired codes are reported as invalid rather than as errors
// @Tags security-codes
// @Accept json
// @Produce json
// @Param request body ValidateCodeRequest true "Code"
// @Success 200 {object} ValidateCodeResponse
// @Security BearerAuth
// @Router /students/security-codes/validate [post]
func (h *Handler) Validate(c *gin.Context) {
	var req ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	project, err := h.svc.ValidateProject(c.Request.Context(), req.SecurityCode)
	switch {
	case apperrors.Is(err, apperrors.KindNotFound), apperrors.Is(err, apperrors.KindInvalidState):
		c.JSON(http.StatusOK, ValidateCodeResponse{IsValid: false})
		return
	case err != nil:
		httpx.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ValidateCodeResponse{
		IsValid: true,
		Project: &ProjectInfo{ProjectID: project.ID, Name: project.Name, Year: project.Year},
	})
}

// RegisterAdminRoutes registers security code management routes
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/security-codes", h.List)
	rg.POST("/security-codes", h.Create)
	rg.PATCH("/security-codes/:id", h.Update)
	rg.DELETE("/security-codes/:id", h.Delete)
}

// RegisterStudentRoutes registers the validation route behind throttle
func (h *Handler) RegisterStudentRoutes(rg *gin.RouterGroup, throttle gin.HandlerFunc) {
	rg.POST("/security-codes/validate", throttle, h.Validate)
}
