package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ecocoach/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	r.GET("/items/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func TestRequestID_Generated(t *testing.T) {
	r := newTestEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/1", nil))

	id := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	_, err := xid.FromString(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
}

func TestRequestID_Propagated(t *testing.T) {
	r := newTestEngine()

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	r := newTestEngine()

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "GET", first["method"])
	assert.Equal(t, "/items/:id", first["path"])
	assert.Equal(t, int64(200), first["status"])
	assert.Equal(t, "req-1", first["request_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}
