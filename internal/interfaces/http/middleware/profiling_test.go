package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfilingWithConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	labelsOf := func(cfg ProfilingConfig, path, target string) map[string]string {
		engine := gin.New()
		engine.Use(ProfilingWithConfig(cfg))
		got := map[string]string{}
		engine.GET(path, func(c *gin.Context) {
			pprof.ForLabels(c.Request.Context(), func(k, v string) bool {
				got[k] = v
				return true
			})
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		return got
	}

	t.Run("labels requests with route pattern", func(t *testing.T) {
		got := labelsOf(DefaultProfilingConfig(), "/api/v1/stock-outs/:id", "/api/v1/stock-outs/42")
		assert.Equal(t, map[string]string{
			"method":     "GET",
			"route":      "/api/v1/stock-outs/:id",
			"controller": "stock-outs",
		}, got)
	})

	t.Run("skips health checks", func(t *testing.T) {
		got := labelsOf(DefaultProfilingConfig(), "/api/v1/health", "/api/v1/health")
		assert.Empty(t, got)
	})

	t.Run("disabled middleware adds nothing", func(t *testing.T) {
		got := labelsOf(ProfilingConfig{}, "/api/v1/products", "/api/v1/products")
		assert.Empty(t, got)
	})
}

func TestControllerFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/products":          "products",
		"/api/v1/scans/deduct":      "scans",
		"/api/v1/stock-ins/:id/:op": "stock-ins",
		"/health":                   "health",
		"":                          "",
	}
	for route, want := range tests {
		assert.Equal(t, want, controllerFromRoute(route), route)
	}
}
