package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(&Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)
		l.Info("hello")
		require.NoError(t, l.Sync())
		assert.FileExists(t, path)
	})

	t.Run("extra cores receive entries", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		l, err := New(&Config{Level: "error", Format: "json", Output: "stderr"}, core)
		require.NoError(t, err)
		l.Info("bridged")
		assert.Equal(t, 1, logs.FilterMessage("bridged").Len())
	})

	t.Run("unwritable file fails", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
		assert.Error(t, err)
	})
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	t.Run("enriches with request and caller", func(t *testing.T) {
		ctx := WithContext(context.Background(), base)
		ctx = WithRequestID(ctx, "req-1")
		ctx = WithCaller(ctx, "u-7", "hod", "CSE")

		L(ctx).Info("view refreshed", zap.String("entity", "fac_teach"))

		entries := logs.FilterMessage("view refreshed").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "u-7", fields["user_id"])
		assert.Equal(t, "hod", fields["role"])
		assert.Equal(t, "CSE", fields["department"])
		assert.Equal(t, "fac_teach", fields["entity"])
	})

	t.Run("adds trace ids when a span is present", func(t *testing.T) {
		tid, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
		sid, _ := trace.SpanIDFromHex("0102030405060708")
		sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid, TraceFlags: trace.FlagsSampled})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		WithLogger(ctx, base).Warn("traced")

		entries := logs.FilterMessage("traced").All()
		require.Len(t, entries, 1)
		assert.Equal(t, tid.String(), entries[0].ContextMap()["trace_id"])
		assert.Equal(t, sid.String(), entries[0].ContextMap()["span_id"])
	})

	t.Run("missing logger is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() {
			L(context.Background()).With(zap.Int("n", 1)).Error("dropped")
		})
		assert.Equal(t, 0, logs.FilterMessage("dropped").Len())
	})

	t.Run("getters on empty context", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetRequestID(ctx))
		assert.Empty(t, GetUserID(ctx))
		assert.Empty(t, GetRole(ctx))
		assert.Empty(t, GetDepartment(ctx))
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func() (*gin.Engine, *observer.ObservedLogs) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := zap.New(core)
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(GinRequestIDKey, "req-42")
			c.Next()
		})
		r.Use(GinMiddleware(l), Recovery(l))
		return r, logs
	}

	t.Run("status picks level", func(t *testing.T) {
		r, logs := newRouter()
		r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
		r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
		r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

		for _, path := range []string{"/ok", "/bad?x=1", "/boom"} {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}

		entries := logs.FilterMessage("HTTP Request").All()
		require.Len(t, entries, 3)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, "x=1", entries[1].ContextMap()["query"])
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
		assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	})

	t.Run("request context carries logger", func(t *testing.T) {
		r, logs := newRouter()
		r.GET("/ctx", func(c *gin.Context) {
			assert.Equal(t, "req-42", GetRequestID(c.Request.Context()))
			L(c.Request.Context()).Info("inside handler")
			GetGinLogger(c).Debug("gin logger")
			c.Status(http.StatusNoContent)
		})
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ctx", nil))

		assert.Equal(t, 1, logs.FilterMessage("inside handler").Len())
		assert.Equal(t, 1, logs.FilterMessage("gin logger").Len())
	})

	t.Run("recovery answers 500", func(t *testing.T) {
		r, logs := newRouter()
		r.GET("/panic", func(c *gin.Context) { panic("kaboom") })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
	})

	t.Run("GetGinLogger without middleware", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.NotNil(t, GetGinLogger(c))
	})
}

func TestGormLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Info, 50*time.Millisecond)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("errors", func(t *testing.T) {
		l.Trace(context.Background(), time.Now(), sql, assert.AnError)
		assert.Equal(t, 1, logs.FilterMessage("SQL error").Len())
	})

	t.Run("record not found is quiet", func(t *testing.T) {
		before := logs.Len()
		l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
		assert.Equal(t, before, logs.Len())
	})

	t.Run("slow queries", func(t *testing.T) {
		l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
		assert.Equal(t, 1, logs.FilterMessage("Slow SQL").Len())
	})

	t.Run("regular queries carry request id", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-9")
		l.Trace(ctx, time.Now(), sql, nil)
		entries := logs.FilterMessage("SQL query").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	})

	t.Run("silent mode", func(t *testing.T) {
		before := logs.Len()
		l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sql, assert.AnError)
		assert.Equal(t, before, logs.Len())
	})

	t.Run("level mapping", func(t *testing.T) {
		assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
		assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
		assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
		assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
		assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
	})
}
