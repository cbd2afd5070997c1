package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	// Arrange
	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/api/games/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/api/games/:id", "204"))

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/games/7", nil))

	// Assert
	assert.Equal(t, http.StatusNoContent, w.Code)
	after := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/api/games/:id", "204"))
	assert.Equal(t, before+1, after, "метка endpoint содержит шаблон маршрута, а не конкретный id")
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	router := gin.New()
	router.Use(MetricsMiddleware())

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "unmatched", "404"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "unmatched", "404")))
}
