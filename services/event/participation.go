package event

import (
	"context"
	"errors"

	"community-recycle-tracker/pkg/db/option"
	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/pkg/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Join moves a recycler from eligible to joined.
func (s *Service) Join(ctx context.Context, recyclerID, eventID string) (*Participation, error) {
	zapLog := logger.FromContext(ctx).With(zap.String("recycler_id", recyclerID), zap.String("event_id", eventID))

	r, err := s.recyclers.Get(ctx, recyclerID)
	if err != nil {
		return nil, err
	}
	if !r.Verified {
		return nil, errutil.NotVerified("")
	}

	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	existing, err := s.participations.FindOne(ctx, &Participation{RecyclerID: recyclerID, EventID: eventID}, activeStatuses())
	if err != nil {
		zapLog.Error("failed to query participation", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, errutil.AlreadyJoined("", nil)
	}

	policy := s.policy.Resolve(ctx, recyclerID)
	if policy.AtJoin() && e.Full() {
		return nil, errutil.CapacityExceeded("event is full")
	}

	now := s.now()
	p := &Participation{
		ID:         s.node.Generate().String(),
		RecyclerID: recyclerID,
		EventID:    eventID,
		Status:     StatusJoined,
		ActiveKey:  activeKey(recyclerID, eventID),
		JoinedAt:   now,
	}

	err = repository.Transaction(ctx, s.db, s.timeout, func(tx *gorm.DB) error {
		if err := s.participations.WithTrx(tx).Create(ctx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errutil.AlreadyJoined("", err)
			}
			return err
		}
		return s.record(ctx, tx, p, StatusEligible, recyclerID, datatypes.JSONMap{"capacity_policy": string(policy)})
	})
	if err != nil {
		if !errors.Is(err, errutil.ErrAlreadyJoined) {
			zapLog.Error("failed to join event", zap.Error(err))
		}
		return nil, err
	}

	zapLog.Info("recycler joined event", zap.String("participation_id", p.ID))
	return p, nil
}

// CheckIn moves a joined participation to attended.
func (s *Service) CheckIn(ctx context.Context, actorID, eventID, recyclerID string) (*Participation, error) {
	p, err := s.participations.FindOne(ctx, &Participation{RecyclerID: recyclerID, EventID: eventID}, activeStatuses())
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errutil.NotFound("participation not found", nil)
	}

	now := s.now()
	if err := s.transition(ctx, p, StatusAttended, actorID, map[string]any{"attended_at": now}); err != nil {
		return nil, err
	}

	p.Status = StatusAttended
	p.AttendedAt = &now
	return p, nil
}

// Cancel moves a joined participation to cancelled and releases the seat.
func (s *Service) Cancel(ctx context.Context, recyclerID, eventID string) (*Participation, error) {
	p, err := s.participations.FindOne(ctx, &Participation{RecyclerID: recyclerID, EventID: eventID}, activeStatuses())
	if err != nil {
		return nil, err
	}
	if p == nil {
		// Only cancelled rows remain, if any.
		p, err = s.participations.FindOne(ctx, &Participation{RecyclerID: recyclerID, EventID: eventID, Status: StatusCancelled})
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, errutil.NotFound("participation not found", nil)
		}
	}

	now := s.now()
	if err := s.transition(ctx, p, StatusCancelled, recyclerID, map[string]any{"cancelled_at": now, "active_key": nil}); err != nil {
		return nil, err
	}

	p.Status = StatusCancelled
	p.CancelledAt = &now
	p.ActiveKey = nil
	return p, nil
}

func (s *Service) GetParticipation(ctx context.Context, id string) (*Participation, error) {
	p, err := s.participations.FindOne(ctx, &Participation{ID: id})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errutil.NotFound("participation not found", nil)
	}
	return p, nil
}

// History lists the transitions of a participation in the order they happened.
func (s *Service) History(ctx context.Context, participationID string) ([]*ParticipationTransition, error) {
	if _, err := s.GetParticipation(ctx, participationID); err != nil {
		return nil, err
	}

	return s.transitions.Find(ctx, &ParticipationTransition{ParticipationID: participationID},
		option.WithSortBy(option.QuerySortBy{SortBy: "occurred_at", OrderBy: "asc"}),
		option.WithSortBy(option.QuerySortBy{SortBy: "id", OrderBy: "asc"}),
	)
}

// transitions lists the legal moves out of each stored status.
var transitions = map[Status][]Status{
	StatusJoined: {StatusAttended, StatusCancelled},
}

func allowed(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// transition applies from -> to as a compare-and-set on the current status
// and appends the audit row in the same transaction.
func (s *Service) transition(ctx context.Context, p *Participation, to Status, actorID string, updates map[string]any) error {
	zapLog := logger.FromContext(ctx).With(
		zap.String("participation_id", p.ID),
		zap.String("from", string(p.Status)),
		zap.String("to", string(to)),
	)

	if !allowed(p.Status, to) {
		return errutil.InvalidTransition("cannot move participation from " + string(p.Status) + " to " + string(to))
	}

	from := p.Status
	updates["status"] = to

	err := repository.Transaction(ctx, s.db, s.timeout, func(tx *gorm.DB) error {
		n, err := s.participations.WithTrx(tx).UpdateWhere(ctx, updates, option.ApplyConditions(
			option.Condition{Field: "id", Operator: option.EQ, Value: p.ID},
			option.Condition{Field: "status", Operator: option.EQ, Value: from},
		))
		if err != nil {
			return err
		}
		if n == 0 {
			return errutil.InvalidTransition("participation changed concurrently")
		}
		return s.record(ctx, tx, &Participation{
			ID:         p.ID,
			RecyclerID: p.RecyclerID,
			EventID:    p.EventID,
			Status:     to,
		}, from, actorID, nil)
	})
	if err != nil {
		if !errors.Is(err, errutil.ErrInvalidTransition) {
			zapLog.Error("failed to apply transition", zap.Error(err))
		}
		return err
	}

	zapLog.Info("participation transitioned")
	return nil
}

func (s *Service) record(ctx context.Context, tx *gorm.DB, p *Participation, from Status, actorID string, meta datatypes.JSONMap) error {
	return s.transitions.WithTrx(tx).Create(ctx, &ParticipationTransition{
		ID:              s.node.Generate().String(),
		ParticipationID: p.ID,
		RecyclerID:      p.RecyclerID,
		EventID:         p.EventID,
		FromStatus:      from,
		ToStatus:        p.Status,
		ActorID:         actorID,
		OccurredAt:      s.now(),
		Metadata:        meta,
	})
}
