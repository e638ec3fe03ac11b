package minio

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/errutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestStorageDisabledWithoutEndpoint(t *testing.T) {
	cfg := &config.Config{}
	client, err := registerClient(cfg)
	require.NoError(t, err)
	require.Nil(t, client)

	s := NewStorage(client, cfg)

	err = s.Put(context.Background(), "k", "image/png", strings.NewReader("x"), 1)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusServiceUnavailable, be.Code)

	_, err = s.PresignedURL(context.Background(), "k", time.Minute)
	require.Error(t, err)
}
