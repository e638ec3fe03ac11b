package earnings

import (
	"encoding/json"
	"sort"
	"time"

	"community-recycle-tracker/services/material"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type DailyEarning struct {
	Date     string          `json:"date"`
	Earnings decimal.Decimal `json:"earnings"`
}

// MarshalJSON renders earnings as a JSON number.
func (d DailyEarning) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date     string      `json:"date"`
		Earnings json.Number `json:"earnings"`
	}{d.Date, json.Number(d.Earnings.String())})
}

type WeeklyEarning struct {
	WeekStart string          `json:"weekStart"`
	WeekEnd   string          `json:"weekEnd"`
	Earnings  decimal.Decimal `json:"earnings"`
	LogCount  int             `json:"logCount"`
}

func (w WeeklyEarning) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		WeekStart string      `json:"weekStart"`
		WeekEnd   string      `json:"weekEnd"`
		Earnings  json.Number `json:"earnings"`
		LogCount  int         `json:"logCount"`
	}{w.WeekStart, w.WeekEnd, json.Number(w.Earnings.String()), w.LogCount})
}

// Aggregate sums earnings per UTC day. Only days with at least one log
// appear, sorted by date. The result does not depend on the order of logs.
func Aggregate(logs []*material.MaterialLog) []DailyEarning {
	totals := make(map[string]decimal.Decimal)
	for _, l := range logs {
		key := l.LoggedAt.UTC().Format(dateLayout)
		totals[key] = totals[key].Add(l.Earnings)
	}

	out := make([]DailyEarning, 0, len(totals))
	for date, total := range totals {
		out = append(out, DailyEarning{Date: date, Earnings: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// weekStart returns the Monday at 00:00 UTC of the week containing t.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AggregateWeekly sums earnings per Monday-start UTC week.
func AggregateWeekly(logs []*material.MaterialLog) []WeeklyEarning {
	type bucket struct {
		total decimal.Decimal
		count int
	}

	buckets := make(map[time.Time]*bucket)
	for _, l := range logs {
		start := weekStart(l.LoggedAt)
		b, ok := buckets[start]
		if !ok {
			b = &bucket{}
			buckets[start] = b
		}
		b.total = b.total.Add(l.Earnings)
		b.count++
	}

	out := make([]WeeklyEarning, 0, len(buckets))
	for start, b := range buckets {
		out = append(out, WeeklyEarning{
			WeekStart: start.Format(dateLayout),
			WeekEnd:   start.AddDate(0, 0, 6).Format(dateLayout),
			Earnings:  b.total,
			LogCount:  b.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart < out[j].WeekStart })
	return out
}
