package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meatsafe-api/internal/service"
)

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/compliance/file/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/compliance/file/a", "/compliance/file/b", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `http_requests_total{method="GET",path="/compliance/file/:id",status="204"} 2`) {
		t.Fatalf("expected templated route counter, got:\n%s", body)
	}
	if !strings.Contains(body, `path="unmatched",status="404"`) {
		t.Fatalf("expected unmatched label for 404s")
	}
}

func TestMetricsSkipsScrapeRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if strings.Contains(rec.Body.String(), `path="/metrics"`) {
		t.Fatalf("scrape route should not be recorded")
	}
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WithResponseMeta())
	var meta map[string]interface{}
	router.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if meta["cache_hit"] != true {
		t.Fatalf("expected cache_hit meta, got %v", meta)
	}
	if _, ok := meta["processing_time_ms"]; !ok {
		t.Fatalf("expected processing time in meta")
	}
}
