package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func setupRateLimitRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func requestFrom(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	router := setupRateLimitRouter(NewRateLimiter(rate.Every(time.Hour), 1))

	assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.1:1000").Code)

	w := requestFrom(router, "10.0.0.1:1001")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "RATE_LIMITED", response["error"])
}

func TestRateLimiter_IsPerClientIP(t *testing.T) {
	router := setupRateLimitRouter(NewRateLimiter(rate.Every(time.Hour), 1))

	assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.2:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(router, "10.0.0.1:1000").Code)
}

func TestRateLimiter_CleanupDropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1)
	rl.getVisitor("10.0.0.1")
	rl.getVisitor("10.0.0.2")

	rl.mtx.Lock()
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.mtx.Unlock()

	rl.cleanup(time.Now())

	rl.mtx.Lock()
	defer rl.mtx.Unlock()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRateLimiter_RunCleanupStopsWithContext(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not stop after cancel")
	}
}
