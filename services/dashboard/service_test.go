package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/services/earnings"
	"community-recycle-tracker/services/event"
	"community-recycle-tracker/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type earningsStub struct {
	items    []earnings.DailyEarning
	err      error
	from, to time.Time
}

func (s *earningsStub) DailyEarnings(ctx context.Context, recyclerID string, from, to time.Time) ([]earnings.DailyEarning, error) {
	s.from, s.to = from, to
	return s.items, s.err
}

type eventsStub struct {
	items []*event.JoinedEvent
	err   error
}

func (s *eventsStub) ListJoinedEvents(ctx context.Context, recyclerID string) ([]*event.JoinedEvent, error) {
	return s.items, s.err
}

var today = time.Date(2024, 1, 8, 15, 30, 0, 0, time.UTC)

func TestDashboardOK(t *testing.T) {
	e := &earningsStub{items: []earnings.DailyEarning{{Date: "2024-01-02", Earnings: decimal.NewFromInt(8)}}}
	ev := &eventsStub{items: []*event.JoinedEvent{{Event: event.Event{ID: "e1"}, Status: event.StatusJoined}}}

	d := NewService(e, ev).Dashboard(context.Background(), "r1", today)

	require.Equal(t, StatusOK, d.Earnings.Status)
	require.Len(t, d.Earnings.Items, 1)
	require.Equal(t, "2024-01-02", d.Earnings.From)
	require.Equal(t, "2024-01-08", d.Earnings.To)
	require.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), e.from)
	require.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), e.to)
	// Seven calendar days including today.
	require.Equal(t, 6*24*time.Hour, e.to.Sub(e.from))
	require.Equal(t, StatusOK, d.Events.Status)
	require.Len(t, d.Events.Items, 1)
}

func TestDashboardEmpty(t *testing.T) {
	d := NewService(&earningsStub{}, &eventsStub{}).Dashboard(context.Background(), "r1", today)

	require.Equal(t, StatusEmpty, d.Earnings.Status)
	require.Equal(t, "No earnings data available.", d.Earnings.Message)
	require.NotNil(t, d.Earnings.Items)
	require.Equal(t, StatusEmpty, d.Events.Status)
	require.Equal(t, "No events joined yet.", d.Events.Message)
}

func TestDashboardSectionsFailIndependently(t *testing.T) {
	ev := &eventsStub{items: []*event.JoinedEvent{{Event: event.Event{ID: "e1"}}}}

	d := NewService(&earningsStub{err: errors.New("store down")}, ev).Dashboard(context.Background(), "r1", today)

	require.Equal(t, StatusError, d.Earnings.Status)
	require.Equal(t, "Failed to fetch earnings.", d.Earnings.Message)
	require.Equal(t, StatusOK, d.Events.Status)

	d = NewService(&earningsStub{}, &eventsStub{err: errors.New("store down")}).Dashboard(context.Background(), "r1", today)
	require.Equal(t, StatusEmpty, d.Earnings.Status)
	require.Equal(t, StatusError, d.Events.Status)
}

func TestDashboardHandler(t *testing.T) {
	engine, router := testutil.NewRouter(&auth.Session{Subject: "r1", Role: auth.RoleRecycler})
	h := NewHandler(NewService(&earningsStub{err: errors.New("down")}, &eventsStub{}))
	h.now = func() time.Time { return today }
	h.RegisterRoutes(router)

	w := testutil.Do(t, engine, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"error"`)

	w = testutil.Do(t, engine, http.MethodGet, "/dashboard?recyclerId=r2", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}
