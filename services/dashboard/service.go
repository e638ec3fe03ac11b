package dashboard

import (
	"context"
	"time"

	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/services/earnings"
	"community-recycle-tracker/services/event"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SectionStatus string

const (
	StatusOK    SectionStatus = "ok"
	StatusEmpty SectionStatus = "empty"
	StatusError SectionStatus = "error"
)

const (
	msgNoEarnings     = "No earnings data available."
	msgEarningsFailed = "Failed to fetch earnings."
	msgNoEvents       = "No events joined yet."
	msgEventsFailed   = "Failed to fetch events."
)

type EarningsSection struct {
	Status  SectionStatus           `json:"status"`
	Message string                  `json:"message,omitempty"`
	From    string                  `json:"from"`
	To      string                  `json:"to"`
	Items   []earnings.DailyEarning `json:"items"`
}

type EventsSection struct {
	Status  SectionStatus        `json:"status"`
	Message string               `json:"message,omitempty"`
	Items   []*event.JoinedEvent `json:"items"`
}

type Dashboard struct {
	RecyclerID string          `json:"recyclerId"`
	Earnings   EarningsSection `json:"earnings"`
	Events     EventsSection   `json:"events"`
}

type EarningsSource interface {
	DailyEarnings(ctx context.Context, recyclerID string, from, to time.Time) ([]earnings.DailyEarning, error)
}

type EventSource interface {
	ListJoinedEvents(ctx context.Context, recyclerID string) ([]*event.JoinedEvent, error)
}

type Service struct {
	earnings EarningsSource
	events   EventSource
}

func NewService(e EarningsSource, ev EventSource) *Service {
	return &Service{earnings: e, events: ev}
}

// Dashboard loads both sections concurrently. A failing section is
// reported in its status and never fails the whole response.
func (s *Service) Dashboard(ctx context.Context, recyclerID string, today time.Time) *Dashboard {
	y, m, d := today.UTC().Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -6)

	out := &Dashboard{
		RecyclerID: recyclerID,
		Earnings: EarningsSection{
			From:  from.Format("2006-01-02"),
			To:    to.Format("2006-01-02"),
			Items: []earnings.DailyEarning{},
		},
		Events: EventsSection{Items: []*event.JoinedEvent{}},
	}

	var g errgroup.Group
	g.Go(func() error {
		items, err := s.earnings.DailyEarnings(ctx, recyclerID, from, to)
		switch {
		case err != nil:
			logger.FromContext(ctx).Error("dashboard earnings failed", zap.String("recycler_id", recyclerID), zap.Error(err))
			out.Earnings.Status, out.Earnings.Message = StatusError, msgEarningsFailed
		case len(items) == 0:
			out.Earnings.Status, out.Earnings.Message = StatusEmpty, msgNoEarnings
		default:
			out.Earnings.Status, out.Earnings.Items = StatusOK, items
		}
		return nil
	})
	g.Go(func() error {
		items, err := s.events.ListJoinedEvents(ctx, recyclerID)
		switch {
		case err != nil:
			logger.FromContext(ctx).Error("dashboard events failed", zap.String("recycler_id", recyclerID), zap.Error(err))
			out.Events.Status, out.Events.Message = StatusError, msgEventsFailed
		case len(items) == 0:
			out.Events.Status, out.Events.Message = StatusEmpty, msgNoEvents
		default:
			out.Events.Status, out.Events.Items = StatusOK, items
		}
		return nil
	})
	_ = g.Wait()

	return out
}
