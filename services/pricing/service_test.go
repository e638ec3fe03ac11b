package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &MaterialRate{})
	cfg := &config.Config{}
	cfg.Pricing.DefaultMaterial = "mixed"
	cfg.Pricing.CacheTTL = time.Minute
	cfg.Pricing.Rates = map[string]string{
		"mixed":   "weight * 0.20",
		"plastic": "weight * 0.30",
		"metal":   `material == "metal" ? weight * 0.5 : 0.0`,
	}

	svc, err := NewService(ServiceParams{DB: db, Config: cfg})
	require.NoError(t, err)
	return svc
}

func TestQuoteUsesDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	q, err := svc.Quote(ctx, "", 40)
	require.NoError(t, err)
	require.Equal(t, "mixed", q.Material)
	require.Equal(t, "8", q.Earnings.String())
	require.Equal(t, "0.2", q.Rate.String())

	q, err = svc.Quote(ctx, " Metal ", 3)
	require.NoError(t, err)
	require.Equal(t, "metal", q.Material)
	require.Equal(t, "1.5", q.Earnings.String())
}

func TestQuoteRoundsToCents(t *testing.T) {
	svc := newTestService(t)

	q, err := svc.Quote(context.Background(), "plastic", 0.333)
	require.NoError(t, err)
	require.Equal(t, "0.1", q.Earnings.String())
}

func TestQuoteRejectsBadInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Quote(ctx, "glass", 1)
	require.True(t, errors.Is(err, errutil.ErrUnknownMaterial))

	_, err = svc.Quote(ctx, "mixed", 0)
	require.True(t, errors.Is(err, errutil.ErrInvalidWeight))
}

func TestUpsertRateOverridesDefault(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Quote(ctx, "mixed", 10)
	require.NoError(t, err)

	rate, err := svc.UpsertRate(ctx, "mixed", UpsertRateRequest{Expression: "weight * 0.25", Description: "summer drive"})
	require.NoError(t, err)
	require.Equal(t, SourceStore, rate.Source)

	q, err := svc.Quote(ctx, "mixed", 10)
	require.NoError(t, err)
	require.Equal(t, "2.5", q.Earnings.String())

	_, err = svc.UpsertRate(ctx, "mixed", UpsertRateRequest{Expression: "weight * 0.5"})
	require.NoError(t, err)

	q, err = svc.Quote(ctx, "mixed", 10)
	require.NoError(t, err)
	require.Equal(t, "5", q.Earnings.String())

	_, err = svc.UpsertRate(ctx, "glass", UpsertRateRequest{Expression: "weight * 0.1"})
	require.NoError(t, err)

	rates, err := svc.ListRates(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 4)
	require.Equal(t, "glass", rates[0].Material)
	require.Equal(t, "mixed", rates[2].Material)
	require.Equal(t, SourceStore, rates[2].Source)
	require.Equal(t, SourceConfig, rates[3].Source)
}

func TestUpsertRateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertRate(ctx, "Mixed Paper", UpsertRateRequest{Expression: "weight"})
	require.Error(t, err)

	_, err = svc.UpsertRate(ctx, "paper", UpsertRateRequest{Expression: `"cheap"`})
	require.Equal(t, errutil.StatusBadRequest, errutil.FromError(err).Code)

	_, err = svc.UpsertRate(ctx, "paper", UpsertRateRequest{Expression: "weight *"})
	require.Equal(t, errutil.StatusBadRequest, errutil.FromError(err).Code)
}

func TestGetRate(t *testing.T) {
	svc := newTestService(t)

	r, err := svc.GetRate(context.Background(), "plastic")
	require.NoError(t, err)
	require.Equal(t, "weight * 0.30", r.Expression)

	_, err = svc.GetRate(context.Background(), "glass")
	require.True(t, errors.Is(err, errutil.ErrNotFound))
}

func TestNewServiceRejectsInvalidDefault(t *testing.T) {
	cfg := &config.Config{}
	cfg.Pricing.Rates = map[string]string{"mixed": "weight > 1"}

	_, err := NewService(ServiceParams{DB: testutil.NewTestDB(t), Config: cfg})
	require.Error(t, err)
}

func TestRateCacheExpires(t *testing.T) {
	c := newRateCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, ok := c.get()
	require.False(t, ok)

	c.set(&rateTable{loadedAt: now})
	_, ok = c.get()
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.get()
	require.False(t, ok)
}

func TestQuoteConcurrent(t *testing.T) {
	svc := newTestService(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := svc.Quote(context.Background(), "plastic", 10)
			require.NoError(t, err)
			require.Equal(t, "3", q.Earnings.String())
		}()
	}
	wg.Wait()
}
