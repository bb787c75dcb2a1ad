package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func requestLogEntry(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			return entry
		}
	}
	t.Fatal("no HTTP Request entry logged")
	return observer.LoggedEntry{}
}

func entryFields(entry observer.LoggedEntry) map[string]zapcore.Field {
	fields := make(map[string]zapcore.Field, len(entry.Context))
	for _, f := range entry.Context {
		fields[f.Key] = f
	}
	return fields
}

func TestGinMiddleware_LevelTracksStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"2xx logs at info", http.StatusOK, zapcore.InfoLevel},
		{"4xx logs at warn", http.StatusNotFound, zapcore.WarnLevel},
		{"5xx logs at error", http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			engine := gin.New()
			engine.Use(GinMiddleware(zap.New(core)))
			engine.GET("/products/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/123", nil))

			entry := requestLogEntry(t, recorded)
			assert.Equal(t, tt.level, entry.Level)
		})
	}
}

func TestGinMiddleware_Fields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("request_id", "req-abc")
		c.Next()
	})
	engine.Use(GinMiddleware(zap.New(core)))
	engine.GET("/products", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})

	req := httptest.NewRequest(http.MethodGet, "/products?search=lamp&page=2", nil)
	req.Header.Set("User-Agent", "storefront-web/1.0")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	entry := requestLogEntry(t, recorded)
	fields := entryFields(entry)

	assert.Equal(t, "search=lamp&page=2", fields["query"].String)
	assert.Equal(t, "storefront-web/1.0", fields["user_agent"].String)
	assert.Equal(t, "req-abc", fields["request_id"].String)
	assert.Equal(t, http.MethodGet, fields["method"].String)
	assert.Equal(t, "/products", fields["path"].String)
	for _, key := range []string{"status", "latency", "client_ip", "body_size"} {
		assert.Contains(t, fields, key)
	}
}

func TestGinMiddleware_SeedsRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, _ := observer.New(zapcore.InfoLevel)
	var fromContext *zap.Logger

	engine := gin.New()
	engine.Use(GinMiddleware(zap.New(core)))
	engine.GET("/cart", func(c *gin.Context) {
		fromContext = GetGinLogger(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.NotNil(t, fromContext)
}

func TestGetGinLogger_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromContext *zap.Logger
	engine := gin.New()
	engine.GET("/cart", func(c *gin.Context) {
		fromContext = GetGinLogger(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.NotNil(t, fromContext)
	assert.NotPanics(t, func() { fromContext.Info("noop") })
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	engine := gin.New()
	engine.Use(Recovery(zap.New(core)))
	engine.POST("/orders/checkout", func(c *gin.Context) {
		panic("nil cart")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders/checkout", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := recorded.All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "Panic recovered", entries[0].Message)

	fields := entryFields(entries[0])
	assert.Equal(t, "/orders/checkout", fields["path"].String)
	assert.Contains(t, fields, "stacktrace")
}
