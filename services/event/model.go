package event

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	// StatusEligible is implicit: it is never stored on a participation and
	// only appears as the from_status of a join transition.
	StatusEligible  Status = "eligible"
	StatusJoined    Status = "joined"
	StatusAttended  Status = "attended"
	StatusCancelled Status = "cancelled"
)

// Active reports whether the participation still holds the recycler's seat.
func (s Status) Active() bool {
	return s == StatusJoined || s == StatusAttended
}

type Event struct {
	ID              string    `gorm:"column:id;primaryKey" json:"id"`
	Slug            string    `gorm:"column:slug;index" json:"slug"`
	Address         string    `gorm:"column:address" json:"address"`
	StartTime       time.Time `gorm:"column:start_time;index" json:"startTime"`
	WeightCapacity  float64   `gorm:"column:weight_capacity" json:"weightCapacity"`
	CollectedWeight float64   `gorm:"column:collected_weight;default:0" json:"collectedWeight"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Event) TableName() string { return "events" }

// Full reports whether the event has no weight capacity left.
func (e *Event) Full() bool {
	return e.CollectedWeight >= e.WeightCapacity
}

type Participation struct {
	ID          string     `gorm:"column:id;primaryKey" json:"id"`
	RecyclerID  string     `gorm:"column:recycler_id;index:idx_participation_recycler_event" json:"recyclerId"`
	EventID     string     `gorm:"column:event_id;index:idx_participation_recycler_event" json:"eventId"`
	Status      Status     `gorm:"column:status" json:"status"`
	ActiveKey   *string    `gorm:"column:active_key;uniqueIndex" json:"-"`
	JoinedAt    time.Time  `gorm:"column:joined_at" json:"joinedAt"`
	AttendedAt  *time.Time `gorm:"column:attended_at" json:"attendedAt,omitempty"`
	CancelledAt *time.Time `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
}

func (Participation) TableName() string { return "participations" }

// activeKey is unique across participations that hold a seat, so at most
// one joined or attended row exists per recycler and event.
func activeKey(recyclerID, eventID string) *string {
	k := recyclerID + ":" + eventID
	return &k
}

type ParticipationTransition struct {
	ID              string            `gorm:"column:id;primaryKey" json:"id"`
	ParticipationID string            `gorm:"column:participation_id;index" json:"participationId"`
	RecyclerID      string            `gorm:"column:recycler_id" json:"recyclerId"`
	EventID         string            `gorm:"column:event_id" json:"eventId"`
	FromStatus      Status            `gorm:"column:from_status" json:"fromStatus"`
	ToStatus        Status            `gorm:"column:to_status" json:"toStatus"`
	ActorID         string            `gorm:"column:actor_id" json:"actorId"`
	OccurredAt      time.Time         `gorm:"column:occurred_at" json:"occurredAt"`
	Metadata        datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
}

func (ParticipationTransition) TableName() string { return "participation_transitions" }

type JoinedEvent struct {
	Event
	ParticipationID string `json:"participationId"`
	Status          Status `json:"status"`
}

type CreateEventRequest struct {
	Address        string    `json:"address"`
	StartTime      time.Time `json:"startTime"`
	WeightCapacity float64   `json:"weightCapacity"`
}
