package otelcol

import (
	"testing"

	"community-recycle-tracker/pkg/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestNewTracerProviderDisabled(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	tp, err := NewTracerProvider(lc, &config.Config{})
	require.NoError(t, err)
	require.NotNil(t, tp)
}

func TestNewTracerProviderUnknownProtocol(t *testing.T) {
	cfg := &config.Config{}
	cfg.Otel.Addr = "localhost:4318"
	cfg.Otel.Protocol = "carrier-pigeon"

	_, err := NewTracerProvider(fxtest.NewLifecycle(t), cfg)
	require.Error(t, err)
}
