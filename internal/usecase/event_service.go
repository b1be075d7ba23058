package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/scoring"
	"github.com/courtside/ranking/internal/domain/season"
	"github.com/courtside/ranking/internal/platform/id"
)

type EventService struct {
	eventRepo  event.Repository
	seasonRepo season.Repository
	idGen      id.Generator
	now        func() time.Time
}

type CreateEventInput struct {
	SeasonID string
	Name     string
	StartsAt time.Time
	EndsAt   time.Time
	Override *scoring.Table
}

func NewEventService(eventRepo event.Repository, seasonRepo season.Repository, idGen id.Generator) *EventService {
	return &EventService{
		eventRepo:  eventRepo,
		seasonRepo: seasonRepo,
		idGen:      idGen,
		now:        time.Now,
	}
}

func (s *EventService) Create(ctx context.Context, input CreateEventInput) (event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.Create")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return event.Event{}, fmt.Errorf("%w: event name is required", ErrInvalidInput)
	}
	seasonID := strings.TrimSpace(input.SeasonID)
	if seasonID == "" {
		return event.Event{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if input.StartsAt.IsZero() {
		return event.Event{}, fmt.Errorf("%w: event start date is required", ErrInvalidInput)
	}
	if !input.EndsAt.IsZero() && input.EndsAt.Before(input.StartsAt) {
		return event.Event{}, fmt.Errorf("%w: event end date precedes start date", ErrInvalidInput)
	}
	if input.Override != nil {
		if err := input.Override.Validate(); err != nil {
			return event.Event{}, fmt.Errorf("%w: override table: %v", ErrInvalidInput, err)
		}
	}

	owner, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return event.Event{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return event.Event{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	if owner.Archived() {
		return event.Event{}, fmt.Errorf("%w: season %s is archived", ErrInvalidInput, seasonID)
	}

	eventID, err := s.idGen.NewID()
	if err != nil {
		return event.Event{}, fmt.Errorf("generate event id: %w", err)
	}

	now := s.now().UTC()
	created := event.Event{
		ID:        eventID,
		SeasonID:  seasonID,
		Name:      name,
		StartsAt:  input.StartsAt.UTC(),
		EndsAt:    input.EndsAt.UTC(),
		Status:    event.StatusScheduled,
		Override:  input.Override,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.eventRepo.Create(ctx, created); err != nil {
		return event.Event{}, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

func (s *EventService) Get(ctx context.Context, eventID string) (event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.Get")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return event.Event{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	item, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return event.Event{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	item.Status = item.StatusAt(s.now().UTC())
	return item, nil
}

func (s *EventService) ListBySeason(ctx context.Context, seasonID string) ([]event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.ListBySeason")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return nil, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	items, err := s.eventRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list events by season: %w", err)
	}
	now := s.now().UTC()
	for i := range items {
		items[i].Status = items[i].StatusAt(now)
	}
	return items, nil
}

// SetOverride replaces or clears the event's scoring override. Results already
// recorded against the event keep the points they were written with; the new
// table only affects results written or edited afterwards.
func (s *EventService) SetOverride(ctx context.Context, eventID string, override *scoring.Table) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.SetOverride")
	defer span.End()

	if _, err := s.Get(ctx, eventID); err != nil {
		return err
	}
	if override != nil {
		if err := override.Validate(); err != nil {
			return fmt.Errorf("%w: override table: %v", ErrInvalidInput, err)
		}
	}

	if err := s.eventRepo.SetOverride(ctx, strings.TrimSpace(eventID), override); err != nil {
		return fmt.Errorf("set event override: %w", err)
	}
	return nil
}
