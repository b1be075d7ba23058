package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/ranking/internal/domain/season"
)

type SeasonRepository struct {
	store *Store
}

var _ season.Repository = (*SeasonRepository)(nil)

func NewSeasonRepository(store *Store) *SeasonRepository {
	return &SeasonRepository{store: store}
}

func (r *SeasonRepository) Create(_ context.Context, s season.Season) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.seasons[s.ID]; exists {
		return fmt.Errorf("%w: season=%s", season.ErrDuplicateID, s.ID)
	}
	if s.Active {
		for _, id := range r.store.seasonOrder {
			if r.store.seasons[id].Active {
				return fmt.Errorf("season %s is already active", id)
			}
		}
	}
	r.store.seasons[s.ID] = s
	r.store.seasonOrder = append(r.store.seasonOrder, s.ID)
	return nil
}

func (r *SeasonRepository) GetByID(_ context.Context, seasonID string) (season.Season, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.seasons[seasonID]
	if !ok {
		return season.Season{}, false, nil
	}
	return item, true, nil
}

func (r *SeasonRepository) GetActive(_ context.Context) (season.Season, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, id := range r.store.seasonOrder {
		if r.store.seasons[id].Active {
			return r.store.seasons[id], true, nil
		}
	}
	return season.Season{}, false, nil
}

func (r *SeasonRepository) List(_ context.Context) ([]season.Season, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]season.Season, 0, len(r.store.seasonOrder))
	for _, id := range r.store.seasonOrder {
		out = append(out, r.store.seasons[id])
	}
	return out, nil
}

func (r *SeasonRepository) Activate(_ context.Context, seasonID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	target, ok := r.store.seasons[seasonID]
	if !ok {
		return fmt.Errorf("season %s not found", seasonID)
	}
	if target.Archived() {
		return fmt.Errorf("season %s is archived", seasonID)
	}

	for _, id := range r.store.seasonOrder {
		current := r.store.seasons[id]
		if current.Active && current.ID != seasonID {
			current.Active = false
			current.UpdatedAt = at
			r.store.seasons[id] = current
		}
	}

	target.Active = true
	target.UpdatedAt = at
	r.store.seasons[seasonID] = target
	return nil
}

func (r *SeasonRepository) Archive(_ context.Context, seasonID string, endedAt time.Time, entries []season.SnapshotEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	target, ok := r.store.seasons[seasonID]
	if !ok {
		return fmt.Errorf("season %s not found", seasonID)
	}
	if target.Archived() {
		return fmt.Errorf("season %s is already archived", seasonID)
	}

	ended := endedAt
	target.EndedAt = &ended
	target.Active = false
	target.UpdatedAt = endedAt
	r.store.seasons[seasonID] = target
	r.store.snapshots[seasonID] = append([]season.SnapshotEntry(nil), entries...)
	return nil
}

func (r *SeasonRepository) ListSnapshot(_ context.Context, seasonID string) ([]season.SnapshotEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := r.store.snapshots[seasonID]
	out := make([]season.SnapshotEntry, len(entries))
	copy(out, entries)
	return out, nil
}
