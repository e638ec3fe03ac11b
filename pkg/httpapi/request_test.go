package httpapi

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/errutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(target string, s *auth.Session) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("GET", target, nil)
	if s != nil {
		req = req.WithContext(auth.WithSession(req.Context(), s))
	}
	c.Request = req
	return c
}

func TestResolveRecycler(t *testing.T) {
	recycler := &auth.Session{Subject: "r1", Role: auth.RoleRecycler}

	id, err := ResolveRecycler(newContext("/", recycler), "")
	require.NoError(t, err)
	require.Equal(t, "r1", id)

	_, err = ResolveRecycler(newContext("/", recycler), "r2")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusForbidden, be.Code)

	id, err = ResolveRecycler(newContext("/", &auth.Session{Subject: "a", Role: auth.RoleAdmin}), "r2")
	require.NoError(t, err)
	require.Equal(t, "r2", id)

	id, err = ResolveRecycler(newContext("/", &auth.Session{Subject: "o", Role: auth.RoleOrganizer}), "r2", auth.RoleOrganizer)
	require.NoError(t, err)
	require.Equal(t, "r2", id)

	_, err = ResolveRecycler(newContext("/", nil), "")
	require.Error(t, err)
}

func TestDateRange(t *testing.T) {
	now := time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)

	from, to, err := DateRange(newContext("/?from=2025-01-01&to=2025-01-05", nil), now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), to)

	from, to, err = DateRange(newContext("/", nil), now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), to)

	_, _, err = DateRange(newContext("/?from=01-02-2025", nil), now)
	require.Error(t, err)
}
