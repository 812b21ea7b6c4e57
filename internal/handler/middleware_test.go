package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestLoginLimiterPerClient(t *testing.T) {
	limiter := NewLoginLimiter(time.Minute, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("1.1.1.1") || !limiter.Allow("1.1.1.1") {
		t.Fatalf("expected burst of two attempts")
	}
	if limiter.Allow("1.1.1.1") {
		t.Fatalf("expected third attempt to be throttled")
	}
	if !limiter.Allow("2.2.2.2") {
		t.Fatalf("expected other clients to be unaffected")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow("1.1.1.1") {
		t.Fatalf("expected attempt to be allowed after refill")
	}
}

func TestLoginLimiterMiddlewareRejectsWith429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewLoginLimiter(time.Hour, 1)

	r := gin.New()
	r.POST("/admin/login", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i, expected := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/login", nil))
		if w.Code != expected {
			t.Fatalf("attempt %d: expected %d, got %d", i+1, expected, w.Code)
		}
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.InfoLevel || entry.Data["status"] != http.StatusOK {
		t.Fatalf("expected info entry for 200, got %+v", entry)
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected error entry for 500, got %+v", entry)
	}
}
