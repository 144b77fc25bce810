package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"logistics-api/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewServerMetrics(prometheus.NewRegistry())
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/orders/1", "/orders/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.Requests.WithLabelValues("/orders/:id", "200")); got != 2 {
		t.Errorf("route counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("unmatched", "404")); got != 1 {
		t.Errorf("unmatched counter = %v, want 1", got)
	}
}

func TestTransitionsExposed(t *testing.T) {
	m := NewServerMetrics(prometheus.NewRegistry())
	m.ObserveTransition(models.StatusPending, models.StatusDelivering)

	var nilMetrics *ServerMetrics
	nilMetrics.ObserveTransition(models.StatusPending, models.StatusCancelled)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `logistics_orders_status_transitions_total{from="pending",to="delivering"} 1`
	if !strings.Contains(w.Body.String(), want) {
		t.Fatalf("metrics output missing %q:\n%s", want, w.Body.String())
	}
}
