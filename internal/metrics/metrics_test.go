package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/eco/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", m.Handler())

	for _, path := range []string{"/eco/1", "/eco/2", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("204", "GET", "/eco/:id")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("404", "GET", "unmatched")))

	m.EcosCreated.Inc()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "eco_ecos_created_total 1"))
	assert.Contains(t, body, `eco_http_requests_total{method="GET",path="/eco/:id",status_code="204"} 2`)
}

func TestRecordersAcceptNil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRegistration()
		m.RecordLogin("ok")
		m.RecordEco()
		m.RecordSussurro()
		m.RecordCodinome("ok")
		m.RecordResetRequest()
		m.RecordPasswordReset()
		m.RecordRateLimited("global")
	})
}
