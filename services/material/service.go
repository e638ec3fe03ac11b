package material

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/db/option"
	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/pkg/repository"
	"community-recycle-tracker/pkg/sequence"
	"community-recycle-tracker/pkg/task"
	"community-recycle-tracker/services/event"
	materialtask "community-recycle-tracker/services/material/task"
	"community-recycle-tracker/services/pricing"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errNoCapacity = errors.New("no capacity left")

type Service struct {
	db             *gorm.DB
	node           *snowflake.Node
	quoter         pricing.Quoter
	sequence       sequence.Generator
	enqueuer       task.Enqueuer
	policy         *event.PolicyResolver
	recyclers      event.RecyclerLookup
	timeout        time.Duration
	logs           repository.Repository[MaterialLog]
	events         repository.Repository[event.Event]
	participations repository.Repository[event.Participation]
	now            func() time.Time
}

type ServiceParams struct {
	fx.In
	DB        *gorm.DB
	Node      *snowflake.Node
	Config    *config.Config
	Quoter    pricing.Quoter
	Sequence  sequence.Generator
	Enqueuer  task.Enqueuer
	Policy    *event.PolicyResolver
	Recyclers event.RecyclerLookup
}

func NewService(p ServiceParams) *Service {
	timeout := repository.WithTimeout(p.Config.Database.QueryTimeout)
	return &Service{
		db:             p.DB,
		node:           p.Node,
		quoter:         p.Quoter,
		sequence:       p.Sequence,
		enqueuer:       p.Enqueuer,
		policy:         p.Policy,
		recyclers:      p.Recyclers,
		timeout:        p.Config.Database.QueryTimeout,
		logs:           repository.ProvideStore[MaterialLog](p.DB, timeout),
		events:         repository.ProvideStore[event.Event](p.DB, timeout),
		participations: repository.ProvideStore[event.Participation](p.DB, timeout),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// RecordMaterial validates, prices and persists a material log, then queues
// the ledger credit.
func (s *Service) RecordMaterial(ctx context.Context, req RecordRequest) (*MaterialLog, error) {
	zapLog := logger.FromContext(ctx).With(zap.String("recycler_id", req.RecyclerID))

	if req.Weight == nil {
		return nil, errutil.InvalidWeight("weight is required")
	}
	weight := *req.Weight
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return nil, errutil.InvalidWeight("")
	}

	if _, err := s.recyclers.Get(ctx, req.RecyclerID); err != nil {
		return nil, err
	}

	var eventID *string
	if req.EventID != nil && strings.TrimSpace(*req.EventID) != "" {
		id := strings.TrimSpace(*req.EventID)
		eventID = &id
		if err := s.ensureParticipating(ctx, req.RecyclerID, id); err != nil {
			return nil, err
		}
	}

	quote, err := s.quoter.Quote(ctx, req.Material, weight)
	if err != nil {
		return nil, err
	}

	now := s.now()
	log := &MaterialLog{
		ID:          s.node.Generate().String(),
		ReceiptCode: s.receiptCode(ctx, now),
		RecyclerID:  req.RecyclerID,
		EventID:     eventID,
		Material:    quote.Material,
		Weight:      weight,
		Rate:        quote.Rate,
		Earnings:    quote.Earnings,
		LoggedAt:    now,
		CreatedAt:   now,
	}

	err = repository.Transaction(ctx, s.db, s.timeout, func(tx *gorm.DB) error {
		if eventID != nil {
			// A cancel may have committed since the first check.
			if err := s.participating(ctx, s.participations.WithTrx(tx), req.RecyclerID, *eventID, option.WithLockingUpdate()); err != nil {
				return err
			}
			if err := s.consumeCapacity(ctx, tx, *eventID, weight, s.policy.Resolve(ctx, req.RecyclerID)); err != nil {
				return err
			}
		}
		return s.logs.WithTrx(tx).Create(ctx, log)
	})
	if errors.Is(err, errNoCapacity) {
		return nil, errutil.CapacityExceeded("event weight capacity exceeded")
	}
	if err != nil {
		zapLog.Error("failed to record material", zap.Error(err))
		return nil, err
	}

	zapLog.Info("material recorded",
		zap.String("material_log_id", log.ID),
		zap.String("receipt_code", log.ReceiptCode),
		zap.String("earnings", log.Earnings.String()),
	)

	s.enqueueCredit(ctx, log)
	return log, nil
}

func (s *Service) ensureParticipating(ctx context.Context, recyclerID, eventID string) error {
	e, err := s.events.FindOne(ctx, &event.Event{ID: eventID})
	if err != nil {
		return err
	}
	if e == nil {
		return errutil.NotFound("event not found", nil)
	}

	return s.participating(ctx, s.participations, recyclerID, eventID)
}

// participating fails with EventNotAttended unless the recycler holds a
// joined or attended participation in the event.
func (s *Service) participating(ctx context.Context, repo repository.Repository[event.Participation], recyclerID, eventID string, opts ...option.QueryOption) error {
	opts = append([]option.QueryOption{option.ApplyOperator(option.Condition{
		Field:    "status",
		Operator: option.IN,
		Value:    []event.Status{event.StatusJoined, event.StatusAttended},
	})}, opts...)

	p, err := repo.FindOne(ctx, &event.Participation{RecyclerID: recyclerID, EventID: eventID}, opts...)
	if err != nil {
		return err
	}
	if p == nil {
		return errutil.EventNotAttended("")
	}
	return nil
}

// consumeCapacity adds weight to the event's collected weight. When the
// policy enforces capacity at log time the update only applies if the
// event has room, all in one statement.
func (s *Service) consumeCapacity(ctx context.Context, tx *gorm.DB, eventID string, weight float64, policy event.Policy) error {
	opts := []option.QueryOption{
		option.ApplyOperator(option.Condition{Field: "id", Operator: option.EQ, Value: eventID}),
	}
	if policy.AtLog() {
		opts = append(opts, func(db *gorm.DB) *gorm.DB {
			return db.Where("collected_weight + ? <= weight_capacity", weight)
		})
	}

	n, err := s.events.WithTrx(tx).UpdateWhere(ctx, map[string]any{
		"collected_weight": gorm.Expr("collected_weight + ?", weight),
	}, opts...)
	if err != nil {
		return err
	}
	if n == 0 {
		return errNoCapacity
	}
	return nil
}

// receiptCode falls back to a snowflake based code when the sequence store
// is unreachable.
func (s *Service) receiptCode(ctx context.Context, at time.Time) string {
	code, err := s.sequence.NextReceiptCode(ctx, at)
	if err == nil {
		return code
	}

	logger.FromContext(ctx).Warn("receipt sequence unavailable, using fallback", zap.Error(err))
	return "MAT-" + at.Format("060102") + "-" + s.node.Generate().Base36()
}

func (s *Service) enqueueCredit(ctx context.Context, log *MaterialLog) {
	zapLog := logger.FromContext(ctx)

	t, err := materialtask.NewMaterialRecordedTask(materialtask.MaterialRecordedPayload{
		MaterialLogID: log.ID,
		ReceiptCode:   log.ReceiptCode,
		RecyclerID:    log.RecyclerID,
		Material:      log.Material,
		Weight:        log.Weight,
		Earnings:      log.Earnings.String(),
		LoggedAt:      log.LoggedAt,
	})
	if err != nil {
		zapLog.Error("failed to build material task", zap.Error(err))
		return
	}

	// The daily reconciliation credits logs whose task never made it.
	if _, err := s.enqueuer.Enqueue(ctx, t); err != nil {
		zapLog.Warn("failed to enqueue ledger credit", zap.String("material_log_id", log.ID), zap.Error(err))
	}
}

// ListLogs returns the recycler's logs with logged_at on any day in
// [from, to], oldest first.
func (s *Service) ListLogs(ctx context.Context, recyclerID string, from, to time.Time) ([]*MaterialLog, error) {
	from, to = day(from), day(to)
	if from.After(to) {
		return nil, errutil.InvalidRange("")
	}

	logs, err := s.logs.Find(ctx, &MaterialLog{RecyclerID: recyclerID},
		option.ApplyConditions(
			option.Condition{Field: "logged_at", Operator: option.GTE, Value: from},
			option.Condition{Field: "logged_at", Operator: option.LT, Value: to.AddDate(0, 0, 1)},
		),
		option.WithSortBy(option.QuerySortBy{SortBy: "logged_at", OrderBy: "asc"}),
		option.WithSortBy(option.QuerySortBy{SortBy: "id", OrderBy: "asc"}),
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list material logs", zap.String("recycler_id", recyclerID), zap.Error(err))
		return nil, err
	}
	return logs, nil
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
