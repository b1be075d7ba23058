package usecase

import (
	"context"
	"time"
)

// ChangeEvent is published after standing-affecting admin actions so an
// external collaborator (mail, chat, audit trail) can react. Delivery is best
// effort; publication failures never roll back the action that triggered them.
type ChangeEvent struct {
	Type       string         `json:"type"`
	AthleteID  string         `json:"athleteId,omitempty"`
	SeasonID   string         `json:"seasonId,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

const (
	EventAthletePromoted  = "athlete.promoted"
	EventAthleteDemoted   = "athlete.demoted"
	EventDemotionRejected = "athlete.demotion_rejected"
	EventAthletesMerged   = "athlete.merged"
	EventSeasonActivated  = "season.activated"
	EventSeasonArchived   = "season.archived"
)

type Notifier interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// NopNotifier drops every event. Used when no webhook is configured.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, ChangeEvent) error { return nil }
