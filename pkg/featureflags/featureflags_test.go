package featureflags

import (
	"context"
	"testing"

	"community-recycle-tracker/pkg/config"

	"github.com/stretchr/testify/require"
)

func TestValueWithoutClient(t *testing.T) {
	ff := ProvideFeatureFlag(FeatureParams{Config: &config.Config{}})

	v, ok := ff.Value(context.Background(), "recycler-1", CapacityPolicy)
	require.False(t, ok)
	require.Empty(t, v)
}
