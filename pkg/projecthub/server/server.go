// Package server assembles the services and handlers into one gin engine.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/auth"
	"github.com/mikepea/projecthub/pkg/projecthub/coordinators"
	"github.com/mikepea/projecthub/pkg/projecthub/groups"
	"github.com/mikepea/projecthub/pkg/projecthub/implementations"
	"github.com/mikepea/projecthub/pkg/projecthub/logger"
	"github.com/mikepea/projecthub/pkg/projecthub/metrics"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"github.com/mikepea/projecthub/pkg/projecthub/ratelimit"
	"github.com/mikepea/projecthub/pkg/projecthub/securitycodes"
	"github.com/mikepea/projecthub/pkg/projecthub/selections"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	DB     *gorm.DB
	Tokens *auth.TokenService
	// Log defaults to the global logger.
	Log *zap.Logger
	// Limiter throttles code validation and group creation. Nil disables throttling.
	Limiter ratelimit.Limiter
	// Clock overrides time.Now in the services.
	Clock func() time.Time
}

// NewRouter wires every service and registers the API under /api.
func NewRouter(d Deps) *gin.Engine {
	now := d.Clock
	if now == nil {
		now = time.Now
	}
	if d.Log == nil {
		d.Log = logger.L()
	}

	coordSvc := coordinators.NewService(d.DB, d.Log, coordinators.WithClock(now))
	codeSvc := securitycodes.NewService(d.DB, coordSvc, d.Log, securitycodes.WithClock(now))
	query := groups.NewQuery(d.DB)
	selectionSvc := selections.NewService(d.DB, query, coordSvc, d.Log, selections.WithClock(now))
	groupSvc := groups.NewService(d.DB, codeSvc, selectionSvc, coordSvc, d.Log, groups.WithClock(now))
	detailSvc := implementations.NewService(d.DB, groupSvc.Query(), d.Log)

	r := gin.New()
	r.Use(logger.RequestID(), logger.Recovery(d.Log), logger.Middleware(d.Log), metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": "projecthub",
			})
		})

		// Auth routes (login is public, /me requires a token)
		authHandler := auth.NewHandler(d.DB, d.Tokens)
		authHandler.RegisterRoutes(api.Group("/auth"))

		codesHandler := securitycodes.NewHandler(codeSvc, d.Log)
		coordHandler := coordinators.NewHandler(coordSvc, d.Log)
		groupsHandler := groups.NewHandler(groupSvc, d.Log)
		selectionsHandler := selections.NewHandler(selectionSvc, d.Log)
		detailsHandler := implementations.NewHandler(detailSvc, d.Log)

		// Student routes
		students := api.Group("/students", auth.AuthMiddleware(d.Tokens), auth.RequireStudent())
		codesHandler.RegisterStudentRoutes(students, ratelimit.Middleware(d.Limiter, "validate-code", d.Log))
		groupsHandler.RegisterStudentRoutes(students, ratelimit.Middleware(d.Limiter, "create-group", d.Log))
		selectionsHandler.RegisterStudentRoutes(students)
		detailsHandler.RegisterStudentRoutes(students)

		// Admin routes (any admin role; services scope coordinators to their project)
		admins := api.Group("/admins", auth.AuthMiddleware(d.Tokens), auth.RequireAdmin())
		codesHandler.RegisterAdminRoutes(admins)
		coordHandler.RegisterRoutes(admins, auth.RequireAdminRole(models.AdminRoleRoot, models.AdminRoleProfessor))
		groupsHandler.RegisterAdminRoutes(admins)
		selectionsHandler.RegisterAdminRoutes(admins)
		detailsHandler.RegisterAdminRoutes(admins)
	}

	return r
}
