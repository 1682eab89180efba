package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"gorm.io/gorm"
)

// Handler handles authentication requests
type Handler struct {
	db     *gorm.DB
	tokens *TokenService
}

// NewHandler creates a new auth handler
func NewHandler(db *gorm.DB, tokens *TokenService) *Handler {
	return &Handler{db: db, tokens: tokens}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string          `json:"token"`
	User  ProfileResponse `json:"user"`
}

// ProfileResponse represents the authenticated account in responses
type ProfileResponse struct {
	ID    uint                 `json:"id"`
	Email string               `json:"email"`
	Name  string               `json:"name"`
	Kind  models.PrincipalKind `json:"kind"`
	Role  models.AdminRole     `json:"role,omitempty"`
}

// AdminLogin handles administrator login
// @Summary Admin login
// @Description Authenticate an administrator with email and password to receive a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/admins/login [post]
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var admin models.Admin
	if err := h.db.WithContext(c.Request.Context()).Where("email = ?", req.Email).First(&admin).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if admin.PasswordHash == "" || !CheckPassword(req.Password, admin.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	principal := models.Principal{ID: admin.ID, Kind: models.PrincipalAdmin, Role: admin.Role}
	token, err := h.tokens.GenerateToken(principal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User: ProfileResponse{
			ID:    admin.ID,
			Email: admin.Email,
			Name:  admin.FullName(),
			Kind:  models.PrincipalAdmin,
			Role:  admin.Role,
		},
	})
}

// Me returns the current authenticated account
// @Summary Get current account
// @Description Get the authenticated student's or admin's profile
// @Tags auth
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	p, exists := GetPrincipal(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	db := h.db.WithContext(c.Request.Context())
	resp := ProfileResponse{ID: p.ID, Kind: p.Kind, Role: p.Role}
	if p.IsStudent() {
		var student models.Student
		if err := db.First(&student, p.ID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		resp.Email = student.Email
		resp.Name = student.FullName()
	} else {
		var admin models.Admin
		if err := db.First(&admin, p.ID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
			return
		}
		resp.Email = admin.Email
		resp.Name = admin.FullName()
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/admins/login", h.AdminLogin)
	rg.GET("/me", AuthMiddleware(h.tokens), h.Me)
}
