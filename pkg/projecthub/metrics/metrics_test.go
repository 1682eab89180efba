package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareObservesRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.CollectAndCount(APIRequestDuration)
	req, _ := http.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if after := testutil.CollectAndCount(APIRequestDuration); after < before || after == 0 {
		t.Errorf("Expected histogram series to be recorded, got %d", after)
	}
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(MembershipChanges.WithLabelValues("added"))
	MembershipChanges.WithLabelValues("added").Inc()
	if got := testutil.ToFloat64(MembershipChanges.WithLabelValues("added")); got != before+1 {
		t.Errorf("Expected counter to increase by one, got %v", got-before)
	}
}
