package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/auth"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingLimiter struct {
	limit int
	seen  map[string]int
	err   error
}

func (f *countingLimiter) Allow(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]int{}
	}
	f.seen[key]++
	return f.seen[key] <= f.limit, nil
}

func newRouter(l Limiter, principalID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyPrincipal, models.Principal{ID: principalID, Kind: models.PrincipalStudent})
		c.Next()
	})
	r.POST("/validate", Middleware(l, "validate", zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r *gin.Engine) int {
	req := httptest.NewRequest(http.MethodPost, "/validate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestMiddlewareBlocksAfterLimit(t *testing.T) {
	l := &countingLimiter{limit: 2}
	r := newRouter(l, 42)

	assert.Equal(t, http.StatusOK, do(r))
	assert.Equal(t, http.StatusOK, do(r))
	assert.Equal(t, http.StatusTooManyRequests, do(r))
	assert.Equal(t, 3, l.seen["throttle:validate:student-42"])
}

func TestMiddlewareKeysPerPrincipal(t *testing.T) {
	l := &countingLimiter{limit: 1}

	assert.Equal(t, http.StatusOK, do(newRouter(l, 1)))
	assert.Equal(t, http.StatusOK, do(newRouter(l, 2)))
	assert.Equal(t, http.StatusTooManyRequests, do(newRouter(l, 1)))
}

func TestMiddlewareDisabledWithoutLimiter(t *testing.T) {
	r := newRouter(nil, 1)
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, do(r))
	}
}

func TestMiddlewareFailsOpen(t *testing.T) {
	r := newRouter(&countingLimiter{err: errors.New("connection refused")}, 1)
	assert.Equal(t, http.StatusOK, do(r))
}
