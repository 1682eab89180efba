package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorWritesKindAndStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	tests := []struct {
		err     error
		status  int
		message string
		logged  bool
	}{
		{apperrors.Conflict("Group already has a deliverable selection"), http.StatusConflict, "Group already has a deliverable selection", false},
		{apperrors.InvalidState("Deadline passed"), http.StatusUnprocessableEntity, "Deadline passed", false},
		{apperrors.Internal(errors.New("disk full"), "Failed to save"), http.StatusInternalServerError, "Internal server error", true},
		{errors.New("raw"), http.StatusInternalServerError, "Internal server error", true},
	}

	for _, tt := range tests {
		before := logs.Len()
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		Error(c, log, tt.err)

		assert.Equal(t, tt.status, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tt.message, body["error"])
		assert.Equal(t, string(apperrors.KindOf(tt.err)), body["kind"])
		assert.Equal(t, tt.logged, logs.Len() > before)
	}
}

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/groups/:id", func(c *gin.Context) {
		id, ok := ParseID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, want := range map[string]int{
		"/groups/12":  http.StatusOK,
		"/groups/0":   http.StatusBadRequest,
		"/groups/-1":  http.StatusBadRequest,
		"/groups/abc": http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
