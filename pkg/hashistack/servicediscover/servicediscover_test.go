package servicediscover

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConsulRegistry(t *testing.T) {
	r, err := NewConsulRegistry("127.0.0.1:8500", "recycle", "recycle-1", "10.0.0.5", 8080)
	require.NoError(t, err)
	require.Equal(t, "recycle-1", r.serviceID)
	require.Equal(t, "http://10.0.0.5:8080/health/readiness", r.service.Check.HTTP)
}
