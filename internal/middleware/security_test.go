package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestSecurityHeaders(t *testing.T) {
	router := newTestRouter(SecurityHeaders())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestCorrelationIDGenerated(t *testing.T) {
	router := newTestRouter(CorrelationID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestCorrelationIDPreserved(t *testing.T) {
	router := newTestRouter(CorrelationID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Correlation-ID", "inbound-id")
	router.ServeHTTP(w, req)

	assert.Equal(t, "inbound-id", w.Header().Get("X-Correlation-ID"))
}

func TestRateLimiterBlocksBursts(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	router := newTestRouter(limiter.Handler())

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
	assert.Equal(t, http.StatusTooManyRequests, statuses[3])
}

func TestRateLimiterIsPerClient(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	router := newTestRouter(limiter.Handler())

	first := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req1.RemoteAddr = "10.0.0.1:1234"
	router.ServeHTTP(first, req1)

	second := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req2.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(second, req2)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code, "a different client gets its own bucket")
}
