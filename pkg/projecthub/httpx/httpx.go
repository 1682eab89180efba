// Package httpx holds the small helpers shared by the gin handlers.
package httpx

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/auth"
	"github.com/mikepea/projecthub/pkg/projecthub/logger"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
)

// Error writes err as {"error", "kind"} with the status matching its kind.
// Internal errors are logged with the request id and reported generically.
func Error(c *gin.Context, log *zap.Logger, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		log.Error("request failed",
			zap.String("id", logger.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(apperrors.HTTPStatus(kind), gin.H{
		"error": apperrors.Message(err),
		"kind":  kind,
	})
}

// BadRequest writes a 400 for request bodies or parameters that fail to bind.
func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": apperrors.KindInvalidInput})
}

// ParseID parses a positive numeric path parameter. On failure it writes a 400 and returns false.
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name, "kind": apperrors.KindInvalidInput})
		return 0, false
	}
	return uint(id), true
}

// Principal returns the authenticated caller. On failure it writes a 401 and returns false.
func Principal(c *gin.Context) (models.Principal, bool) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return models.Principal{}, false
	}
	return p, true
}
