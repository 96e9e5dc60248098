package utils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger() (*bytes.Buffer, Logger) {
	buf := &bytes.Buffer{}
	return buf, NewSlogLogger(NewJSONLogger(buf, slog.LevelDebug))
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	return lines
}

func withRequestID(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set("request_id", id)
		}
		c.Next()
	}
}

func TestContextLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		requestID string
	}{
		{name: "with request id", requestID: "req-42"},
		{name: "without request id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, logger := newBufferLogger()

			r := gin.New()
			r.Use(withRequestID(tt.requestID), ContextLogger(logger))
			r.GET("/grades", func(c *gin.Context) {
				FromContext(c.Request.Context(), nil).Info("from request context")
				GetLogger(c, nil).Info("from gin context")
				c.Status(http.StatusNoContent)
			})
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/grades", nil))

			lines := logLines(t, buf)
			require.Len(t, lines, 2)
			for _, line := range lines {
				if tt.requestID == "" {
					assert.NotContains(t, line, "request_id")
					continue
				}
				assert.Equal(t, tt.requestID, line["request_id"], line["msg"])
			}
		})
	}
}

func TestFromContext_Fallback(t *testing.T) {
	_, fallback := newBufferLogger()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	_, attached := newBufferLogger()
	ctx := WithLogger(context.Background(), attached)
	assert.Same(t, attached, FromContext(ctx, fallback))
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		status    int
		wantLevel string
	}{
		{status: http.StatusOK, wantLevel: "INFO"},
		{status: http.StatusConflict, wantLevel: "WARN"},
		{status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			buf, logger := newBufferLogger()

			r := gin.New()
			r.Use(withRequestID("req-7"), ContextLogger(logger), LoggerMiddleware(logger))
			r.POST("/quiz-attempts/:id/submit", func(c *gin.Context) {
				c.Status(tt.status)
			})
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/quiz-attempts/3/submit", nil))

			lines := logLines(t, buf)
			require.Len(t, lines, 1)
			line := lines[0]
			assert.Equal(t, tt.wantLevel, line["level"])
			assert.Equal(t, "Request completed", line["msg"])
			assert.Equal(t, "POST", line["method"])
			assert.Equal(t, "/quiz-attempts/3/submit", line["path"])
			assert.EqualValues(t, tt.status, line["status"])
			assert.Equal(t, "req-7", line["request_id"])
		})
	}
}

func TestNewLogWriter(t *testing.T) {
	assert.Same(t, os.Stdout, NewLogWriter(""))

	path := filepath.Join(t.TempDir(), "grading.log")
	w := NewLogWriter(path)
	logger := NewJSONLogger(w, slog.LevelInfo)
	logger.Info("written to file", "course_id", 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
}
