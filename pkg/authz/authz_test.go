package authz

import (
	"testing"

	"community-recycle-tracker/pkg/auth"

	"github.com/stretchr/testify/require"
)

func TestDefaultPolicies(t *testing.T) {
	a, err := NewDefault()
	require.NoError(t, err)

	cases := []struct {
		role, path, method string
		want               bool
	}{
		{auth.RoleRecycler, "/events", "GET", true},
		{auth.RoleRecycler, "/events/42/join", "POST", true},
		{auth.RoleRecycler, "/events", "POST", false},
		{auth.RoleRecycler, "/events/42/participants/7/check-in", "POST", false},
		{auth.RoleRecycler, "/material-logs", "POST", true},
		{auth.RoleRecycler, "/ledger/balance", "GET", true},
		{auth.RoleRecycler, "/recyclers/7/verification", "PATCH", false},
		{auth.RoleOrganizer, "/events", "POST", true},
		{auth.RoleOrganizer, "/events/42/participants/7/check-in", "POST", true},
		{auth.RoleOrganizer, "/earnings", "GET", true},
		{auth.RoleOrganizer, "/rates/plastic", "PUT", false},
		{auth.RoleAdmin, "/rates/plastic", "PUT", true},
		{auth.RoleAdmin, "/recyclers/7/verification", "PATCH", true},
		{"guest", "/events", "GET", false},
	}

	for _, tc := range cases {
		ok, err := a.Allow(tc.role, tc.path, tc.method)
		require.NoError(t, err)
		require.Equal(t, tc.want, ok, "%s %s %s", tc.role, tc.method, tc.path)
	}
}
