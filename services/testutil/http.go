package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/httpapi"
	"community-recycle-tracker/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// NewRouter builds an engine whose API group runs as the given session,
// skipping token verification and RBAC.
func NewRouter(session *auth.Session) (*gin.Engine, *httpapi.Router) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(middleware.Error())
	api := engine.Group("/", func(c *gin.Context) {
		if session != nil {
			c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
		}
		c.Next()
	})
	return engine, &httpapi.Router{API: api}
}

// Do performs a request with an optional JSON body and returns the recorder.
func Do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// ErrorReason extracts error.reason from an error response body.
func ErrorReason(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error struct {
			Reason string `json:"reason"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Reason
}
