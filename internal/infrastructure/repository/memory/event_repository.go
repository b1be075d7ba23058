package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/scoring"
)

type EventRepository struct {
	store *Store
}

var _ event.Repository = (*EventRepository)(nil)

func NewEventRepository(store *Store) *EventRepository {
	return &EventRepository{store: store}
}

func (r *EventRepository) Create(_ context.Context, e event.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.events[e.ID]; exists {
		return fmt.Errorf("event %s already exists", e.ID)
	}
	r.store.events[e.ID] = e
	r.store.eventOrder = append(r.store.eventOrder, e.ID)
	return nil
}

func (r *EventRepository) GetByID(_ context.Context, eventID string) (event.Event, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.events[eventID]
	if !ok {
		return event.Event{}, false, nil
	}
	return item, true, nil
}

func (r *EventRepository) ListBySeason(_ context.Context, seasonID string) ([]event.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]event.Event, 0)
	for _, id := range r.store.eventOrder {
		if r.store.events[id].SeasonID == seasonID {
			out = append(out, r.store.events[id])
		}
	}
	return out, nil
}

func (r *EventRepository) SetStatus(_ context.Context, eventID string, status event.Status) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	item.Status = status
	item.UpdatedAt = time.Now().UTC()
	r.store.events[eventID] = item
	return nil
}

func (r *EventRepository) SetOverride(_ context.Context, eventID string, override *scoring.Table) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	if override != nil {
		copied := *override
		item.Override = &copied
	} else {
		item.Override = nil
	}
	item.UpdatedAt = time.Now().UTC()
	r.store.events[eventID] = item
	return nil
}
