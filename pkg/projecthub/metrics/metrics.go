package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GroupsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projecthub_groups_created_total",
			Help: "Total number of groups created",
		},
	)

	SecurityCodesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projecthub_security_codes_issued_total",
			Help: "Total number of security codes issued",
		},
	)

	MembershipChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_membership_changes_total",
			Help: "Group membership changes by action",
		},
		[]string{"action"},
	)

	DeliverableSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_deliverable_selections_total",
			Help: "Deliverable selection writes by scope and action",
		},
		[]string{"scope", "action"},
	)

	ComponentDetails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_component_details_total",
			Help: "Component implementation detail writes by action",
		},
		[]string{"action"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// Middleware observes request durations labelled by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		APIRequestDuration.WithLabelValues(
			path,
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
