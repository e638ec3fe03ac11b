package event

import (
	"context"
	"math"
	"strings"
	"time"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/db/option"
	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/pkg/repository"
	"community-recycle-tracker/services/recycler"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecyclerLookup resolves recyclers for join guards.
type RecyclerLookup interface {
	Get(ctx context.Context, id string) (*recycler.Recycler, error)
}

type Service struct {
	db             *gorm.DB
	node           *snowflake.Node
	recyclers      RecyclerLookup
	timeout        time.Duration
	policy         *PolicyResolver
	events         repository.Repository[Event]
	participations repository.Repository[Participation]
	transitions    repository.Repository[ParticipationTransition]
	now            func() time.Time
}

type ServiceParams struct {
	fx.In
	DB        *gorm.DB
	Node      *snowflake.Node
	Config    *config.Config
	Recyclers RecyclerLookup
	Policy    *PolicyResolver
}

func NewService(p ServiceParams) *Service {
	timeout := repository.WithTimeout(p.Config.Database.QueryTimeout)
	return &Service{
		db:             p.DB,
		node:           p.Node,
		recyclers:      p.Recyclers,
		timeout:        p.Config.Database.QueryTimeout,
		policy:         p.Policy,
		events:         repository.ProvideStore[Event](p.DB, timeout),
		participations: repository.ProvideStore[Participation](p.DB, timeout),
		transitions:    repository.ProvideStore[ParticipationTransition](p.DB, timeout),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var byStartTime = []option.QueryOption{
	option.WithSortBy(option.QuerySortBy{SortBy: "start_time", OrderBy: "asc"}),
	option.WithSortBy(option.QuerySortBy{SortBy: "id", OrderBy: "asc"}),
}

func activeStatuses() option.QueryOption {
	return option.ApplyOperator(option.Condition{
		Field:    "status",
		Operator: option.IN,
		Value:    []Status{StatusJoined, StatusAttended},
	})
}

func (s *Service) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, errutil.BadRequest("address is required", nil)
	}
	if req.StartTime.IsZero() {
		return nil, errutil.BadRequest("startTime is required", nil)
	}
	if math.IsNaN(req.WeightCapacity) || math.IsInf(req.WeightCapacity, 0) || req.WeightCapacity <= 0 {
		return nil, errutil.BadRequest("weightCapacity must be greater than zero", nil)
	}

	start := req.StartTime.UTC()
	e := &Event{
		ID:             s.node.Generate().String(),
		Slug:           slug.Make(address + " " + start.Format("2006-01-02")),
		Address:        address,
		StartTime:      start,
		WeightCapacity: req.WeightCapacity,
		CreatedAt:      s.now(),
	}

	if err := s.events.Create(ctx, e); err != nil {
		logger.FromContext(ctx).Error("failed to create event", zap.Error(err))
		return nil, err
	}

	logger.FromContext(ctx).Info("event created", zap.String("event_id", e.ID), zap.String("slug", e.Slug))
	return e, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*Event, error) {
	e, err := s.events.FindOne(ctx, &Event{ID: id})
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errutil.NotFound("event not found", nil)
	}
	return e, nil
}

func (s *Service) activeParticipations(ctx context.Context, recyclerID string) ([]*Participation, error) {
	return s.participations.Find(ctx, &Participation{RecyclerID: recyclerID}, activeStatuses())
}

// ListEligibleEvents returns events the recycler holds no active
// participation in, earliest first.
func (s *Service) ListEligibleEvents(ctx context.Context, recyclerID string) ([]*Event, error) {
	active, err := s.activeParticipations(ctx, recyclerID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list participations", zap.String("recycler_id", recyclerID), zap.Error(err))
		return nil, err
	}

	opts := append([]option.QueryOption{}, byStartTime...)
	if len(active) > 0 {
		ids := make([]string, 0, len(active))
		for _, p := range active {
			ids = append(ids, p.EventID)
		}
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "id", Operator: option.NOTIN, Value: ids}))
	}

	events, err := s.events.Find(ctx, &Event{}, opts...)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list events", zap.Error(err))
		return nil, err
	}
	return events, nil
}

// ListJoinedEvents returns events with a joined or attended participation,
// earliest first.
func (s *Service) ListJoinedEvents(ctx context.Context, recyclerID string) ([]*JoinedEvent, error) {
	active, err := s.activeParticipations(ctx, recyclerID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list participations", zap.String("recycler_id", recyclerID), zap.Error(err))
		return nil, err
	}
	if len(active) == 0 {
		return []*JoinedEvent{}, nil
	}

	byEvent := make(map[string]*Participation, len(active))
	ids := make([]string, 0, len(active))
	for _, p := range active {
		byEvent[p.EventID] = p
		ids = append(ids, p.EventID)
	}

	opts := append([]option.QueryOption{
		option.ApplyOperator(option.Condition{Field: "id", Operator: option.IN, Value: ids}),
	}, byStartTime...)

	events, err := s.events.Find(ctx, &Event{}, opts...)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list events", zap.Error(err))
		return nil, err
	}

	out := make([]*JoinedEvent, 0, len(events))
	for _, e := range events {
		p := byEvent[e.ID]
		out = append(out, &JoinedEvent{Event: *e, ParticipationID: p.ID, Status: p.Status})
	}
	return out, nil
}
