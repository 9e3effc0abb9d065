package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestInstrument(t *testing.T) {
	r := gin.New()
	r.Use(Instrument())
	r.GET("/wallets/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := promtest.ToFloat64(httpRequests.WithLabelValues("GET", "/wallets/:id", "204"))
	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallets/"+id, http.NoBody))
	}
	after := promtest.ToFloat64(httpRequests.WithLabelValues("GET", "/wallets/:id", "204"))

	if after-before != 2 {
		t.Errorf("expected 2 requests counted under the route template, got %v", after-before)
	}
}

func TestLifecycleRecorder(t *testing.T) {
	c := lifecycleOps.WithLabelValues("wallet", "create", "ok")
	before := promtest.ToFloat64(c)

	LifecycleRecorder{}.ObserveOperation("wallet", "create", "ok", 0)

	if got := promtest.ToFloat64(c) - before; got != 1 {
		t.Errorf("expected counter to increase by 1, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	LifecycleRecorder{}.ObserveOperation("role", "update", "failed", time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cashflow_lifecycle_operations_total") {
		t.Error("expected lifecycle counter in exposition output")
	}
}
