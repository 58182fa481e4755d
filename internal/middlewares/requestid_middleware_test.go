package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func idRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	r := idRouter()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if id := w.Header().Get(RequestIDHeader); id == "" {
		t.Fatal("expected generated request id header")
	}
}

func TestRequestIDMiddleware_HonorsCallerID(t *testing.T) {
	r := idRouter()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if id := w.Header().Get(RequestIDHeader); id != "caller-supplied" {
		t.Fatalf("expected caller id echoed, got %q", id)
	}
}
