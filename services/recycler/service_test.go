package recycler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, *testutil.FakeStorage) {
	t.Helper()

	db := testutil.NewTestDB(t, &Recycler{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	storage := testutil.NewFakeStorage()
	svc := NewService(ServiceParams{
		DB:      db,
		Node:    node,
		Storage: storage,
		Config:  &config.Config{},
	})
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC) }
	return svc, storage
}

func TestRegisterAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.Register(ctx, RegisterRequest{Name: " Ana ", Email: "Ana@Example.com"})
	require.NoError(t, err)
	require.Equal(t, "Ana", r.Name)
	require.Equal(t, "ana@example.com", r.Email)
	require.False(t, r.Verified)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, r.ID, got.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Other", Email: "ana@example.com"})
	require.Error(t, err)
	require.Equal(t, errutil.StatusConflict, errutil.FromError(err).Code)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "", Email: "a@b.co"})
	require.Equal(t, errutil.StatusBadRequest, errutil.FromError(err).Code)

	_, err = svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "not-an-email"})
	require.Equal(t, errutil.StatusBadRequest, errutil.FromError(err).Code)
}

func TestGetMissingRecycler(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	require.True(t, errors.Is(err, errutil.ErrNotFound))
}

func TestSetVerified(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	v, err := svc.SetVerified(ctx, r.ID, true)
	require.NoError(t, err)
	require.True(t, v.Verified)
	require.NotNil(t, v.VerifiedAt)

	v, err = svc.SetVerified(ctx, r.ID, false)
	require.NoError(t, err)
	require.False(t, v.Verified)
	require.Nil(t, v.VerifiedAt)
}

func TestUploadPhoto(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	r, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	_, err = svc.PhotoURL(ctx, r.ID)
	require.True(t, errors.Is(err, errutil.ErrNotFound))

	body := []byte("png-bytes")
	require.NoError(t, svc.UploadPhoto(ctx, r.ID, "image/png", bytes.NewReader(body), int64(len(body))))
	require.Equal(t, body, storage.Objects["recyclers/"+r.ID+"/photo"])

	u, err := svc.PhotoURL(ctx, r.ID)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(u.Path, "recyclers/"+r.ID+"/photo"))
}

func TestUploadPhotoRejectsNonImage(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.UploadPhoto(context.Background(), "r1", "text/plain", strings.NewReader("x"), 1)
	require.Equal(t, errutil.StatusUnsupportedMediaType, errutil.FromError(err).Code)

	err = svc.UploadPhoto(context.Background(), "r1", "image/png", strings.NewReader(""), MaxPhotoSize+1)
	require.Equal(t, errutil.StatusBadRequest, errutil.FromError(err).Code)
}
