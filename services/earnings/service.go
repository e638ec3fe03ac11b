package earnings

import (
	"context"
	"time"

	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/services/material"
)

type LogLister interface {
	ListLogs(ctx context.Context, recyclerID string, from, to time.Time) ([]*material.MaterialLog, error)
}

type Service struct {
	logs LogLister
}

func NewService(logs LogLister) *Service {
	return &Service{logs: logs}
}

func (s *Service) DailyEarnings(ctx context.Context, recyclerID string, from, to time.Time) ([]DailyEarning, error) {
	if day(from).After(day(to)) {
		return nil, errutil.InvalidRange("")
	}

	logs, err := s.logs.ListLogs(ctx, recyclerID, from, to)
	if err != nil {
		return nil, err
	}
	return Aggregate(logs), nil
}

func (s *Service) WeeklyEarnings(ctx context.Context, recyclerID string, from, to time.Time) ([]WeeklyEarning, error) {
	if day(from).After(day(to)) {
		return nil, errutil.InvalidRange("")
	}

	logs, err := s.logs.ListLogs(ctx, recyclerID, from, to)
	if err != nil {
		return nil, err
	}
	return AggregateWeekly(logs), nil
}

// day truncates t to its UTC calendar day.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
