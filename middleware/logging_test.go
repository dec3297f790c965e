package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func traceIDFor(t *testing.T, headers map[string]string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var got string
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/x", func(c *gin.Context) {
		got = c.GetString("trace_id")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, got, w.Header().Get(TraceIDHeader))
	return got
}

func TestTraceIDFromTraceParent(t *testing.T) {
	id := traceIDFor(t, map[string]string{
		TraceParentHeader: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	})
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", id)
}

func TestTraceIDFromHeader(t *testing.T) {
	id := traceIDFor(t, map[string]string{TraceIDHeader: "req-42"})
	assert.Equal(t, "req-42", id)
}

func TestTraceIDGenerated(t *testing.T) {
	id := traceIDFor(t, nil)
	assert.Len(t, id, 32)
}
