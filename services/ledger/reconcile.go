package ledger

import (
	"context"
	"errors"
	"time"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/db/option"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/pkg/repository"
	"community-recycle-tracker/pkg/task"
	"community-recycle-tracker/pkg/taskname"
	"community-recycle-tracker/services/material"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LogSource interface {
	ListSince(ctx context.Context, from, before time.Time) ([]*material.MaterialLog, error)
}

type materialLogs struct {
	repo repository.Repository[material.MaterialLog]
}

func NewLogSource(db *gorm.DB, cfg *config.Config) LogSource {
	return &materialLogs{repo: repository.ProvideStore[material.MaterialLog](db, repository.WithTimeout(cfg.Database.QueryTimeout))}
}

// ListSince returns logs with logged_at in [from, before), oldest first.
func (m *materialLogs) ListSince(ctx context.Context, from, before time.Time) ([]*material.MaterialLog, error) {
	return m.repo.Find(ctx, &material.MaterialLog{},
		option.ApplyConditions(
			option.Condition{Field: "logged_at", Operator: option.GTE, Value: from.UTC()},
			option.Condition{Field: "logged_at", Operator: option.LT, Value: before.UTC()},
		),
		option.WithSortBy(option.QuerySortBy{SortBy: "logged_at", OrderBy: "asc"}),
	)
}

// Reconciler credits material logs whose ledger task never arrived.
type Reconciler struct {
	ledger   *Service
	logs     LogSource
	lookback int
	now      func() time.Time
}

func NewReconciler(svc *Service, logs LogSource, cfg *config.Config) *Reconciler {
	lookback := cfg.Reconcile.LookbackDays
	if lookback <= 0 {
		lookback = 7
	}
	return &Reconciler{ledger: svc, logs: logs, lookback: lookback, now: func() time.Time { return time.Now().UTC() }}
}

// Reconcile returns how many logs it credited.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	zapLog := logger.FromContext(ctx)

	now := r.now()
	logs, err := r.logs.ListSince(ctx, now.AddDate(0, 0, -r.lookback), now)
	if err != nil {
		zapLog.Error("[Reconcile] failed to list material logs", zap.Error(err))
		return 0, err
	}

	ids := make([]string, 0, len(logs))
	for _, l := range logs {
		ids = append(ids, l.ID)
	}

	credited, err := r.ledger.HasReferences(ctx, ids)
	if err != nil {
		zapLog.Error("[Reconcile] failed to query ledger references", zap.Error(err))
		return 0, err
	}

	var n int
	for _, l := range logs {
		if credited[l.ID] || !l.Earnings.IsPositive() {
			continue
		}

		_, created, err := r.ledger.Credit(ctx, creditFor(l.ID, l.RecyclerID, l.ReceiptCode, l.Earnings, "reconcile"))
		if err != nil {
			return n, err
		}
		if created {
			n++
		}
	}

	zapLog.Info("[Reconcile] finished", zap.Int("scanned", len(logs)), zap.Int("credited", n))
	return n, nil
}

// Scheduler enqueues one reconcile task per day at the configured UTC hour.
type Scheduler struct {
	enqueuer task.Enqueuer
	hour     int
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(enqueuer task.Enqueuer, cfg *config.Config) *Scheduler {
	hour := cfg.Reconcile.Hour
	if hour < 0 || hour > 23 {
		hour = 1
	}
	return &Scheduler{enqueuer: enqueuer, hour: hour, now: func() time.Time { return time.Now().UTC() }}
}

func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			s.cancel = cancel
			s.done = make(chan struct{})
			go s.run(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if s.cancel == nil {
				return nil
			}
			s.cancel()
			select {
			case <-s.done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	zap.L().Info("[Scheduler] started ledger reconcile scheduler", zap.Int("hour_utc", s.hour))

	for {
		now := s.now()
		next := nextRunTime(now, s.hour, 0)

		zap.L().Info("[Scheduler] next run scheduled",
			zap.Time("next_run", next),
			zap.Duration("sleep_for", next.Sub(now)),
		)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			s.runDaily(ctx, next)
		case <-ctx.Done():
			timer.Stop()
			zap.L().Info("[Scheduler] stopped")
			return
		}
	}
}

// runDaily enqueues the reconcile task. The task id carries the date so
// replicas running the same schedule queue it once.
func (s *Scheduler) runDaily(ctx context.Context, at time.Time) {
	t := asynq.NewTask(taskname.LedgerReconcile, nil,
		asynq.Queue(task.QueueLow),
		asynq.TaskID(taskname.LedgerReconcile+":"+at.Format("20060102")),
		asynq.Retention(24*time.Hour),
	)

	if _, err := s.enqueuer.Enqueue(ctx, t); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		zap.L().Error("[Scheduler] failed to enqueue reconcile", zap.Error(err))
		return
	}
	zap.L().Info("[Scheduler] reconcile enqueued", zap.Time("run_at", at))
}

// nextRunTime returns the next hour:minute strictly after now, in now's location.
func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
