package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/authz"
	"community-recycle-tracker/pkg/errutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]*auth.Session

func (s stubVerifier) Verify(raw string) (*auth.Session, error) {
	if session, ok := s[raw]; ok {
		return session, nil
	}
	return nil, auth.ErrInvalidToken
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	a, err := authz.NewDefault()
	require.NoError(t, err)

	v := stubVerifier{
		"recycler": {Subject: "r1", Role: auth.RoleRecycler},
		"admin":    {Subject: "a1", Role: auth.RoleAdmin},
	}

	r := gin.New()
	r.Use(Error())
	api := r.Group("/", Authenticate(v), Authorize(a))
	api.GET("/events", func(c *gin.Context) {
		s, _ := auth.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"subject": s.Subject})
	})
	api.PUT("/rates/:material", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	api.GET("/earnings", func(c *gin.Context) {
		_ = c.Error(errutil.InvalidRange("from is after to"))
	})
	api.GET("/dashboard", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	return r
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorReason(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Reason string `json:"reason"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Reason
}

func TestAuthenticate(t *testing.T) {
	r := newEngine(t)

	require.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/events", "").Code)
	require.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/events", "forged").Code)

	w := do(r, http.MethodGet, "/events", "recycler")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"subject":"r1"`)
}

func TestAuthorize(t *testing.T) {
	r := newEngine(t)

	require.Equal(t, http.StatusForbidden, do(r, http.MethodPut, "/rates/plastic", "recycler").Code)
	require.Equal(t, http.StatusNoContent, do(r, http.MethodPut, "/rates/plastic", "admin").Code)
}

func TestErrorRendering(t *testing.T) {
	r := newEngine(t)

	w := do(r, http.MethodGet, "/earnings", "recycler")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, errutil.ReasonInvalidRange, errorReason(t, w))

	w = do(r, http.MethodGet, "/dashboard", "recycler")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "INTERNAL", errorReason(t, w))
}
