package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haierkeys/fast-roadmap-service/internal/middleware"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		details []string
	}{
		{"code", code.ErrorNodeNotFound.WithDetails("n1"), 2001, []string{"n1"}},
		{"wrapped code", fmt.Errorf("delete: %w", code.ErrorParentNotFound), 2002, nil},
		{"deadline", fmt.Errorf("list: %w", context.DeadlineExceeded), 408, nil},
		{"canceled", context.Canceled, 408, nil},
		{"plain", fmt.Errorf("disk full"), 500, []string{"disk full"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := FromError(tc.err)
			assert.Equal(t, tc.code, e.Code)
			assert.False(t, e.Status)
			assert.Equal(t, tc.details, e.Details)
			assert.ErrorIs(t, e, tc.err)
		})
	}

	existing := NewAppError(code.ErrorDBWrite, nil)
	assert.Same(t, existing, FromError(fmt.Errorf("outer: %w", existing)))
}

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.TraceMiddleware(true, "X-Trace-ID"))
	r.GET("/x", func(c *gin.Context) {
		ErrorResponse(c, code.ErrorSnapshotDisabled)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Trace-ID", "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2202, body["code"])
	assert.Equal(t, false, body["status"])
	assert.Equal(t, "trace-1", body["traceId"])
	assert.NotEmpty(t, body["timestamp"])
}
