package event

import (
	"time"

	"github.com/courtside/ranking/internal/domain/scoring"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Event is one tournament inside a season. Override, when set, replaces the
// season's default scoring table for results written to this event; results
// already recorded keep the points they were written with.
type Event struct {
	ID        string
	SeasonID  string
	Name      string
	StartsAt  time.Time
	EndsAt    time.Time
	Status    Status
	Override  *scoring.Table
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusAt derives the lifecycle status at a point in time. Completion is the
// only stored transition (the first recorded result sets it); before that the
// event reports scheduled until its start date passes and in progress after,
// until results arrive to complete it.
func (e Event) StatusAt(now time.Time) Status {
	if e.Status == StatusCompleted {
		return StatusCompleted
	}
	if now.Before(e.StartsAt) {
		return StatusScheduled
	}
	return StatusInProgress
}
