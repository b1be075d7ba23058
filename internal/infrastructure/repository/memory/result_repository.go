package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/result"
)

type ResultRepository struct {
	store *Store
}

var _ result.Repository = (*ResultRepository)(nil)

func NewResultRepository(store *Store) *ResultRepository {
	return &ResultRepository{store: store}
}

func (r *ResultRepository) Create(_ context.Context, item result.Result) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.results[item.ID]; exists {
		return fmt.Errorf("result %s already exists", item.ID)
	}
	r.store.results[item.ID] = item
	r.store.resultOrder = append(r.store.resultOrder, item.ID)
	return nil
}

func (r *ResultRepository) GetByID(_ context.Context, resultID string) (result.Result, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.results[resultID]
	if !ok {
		return result.Result{}, false, nil
	}
	return item, true, nil
}

func (r *ResultRepository) UpdatePlacement(_ context.Context, resultID, placement string, points int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.results[resultID]
	if !ok {
		return fmt.Errorf("result %s not found", resultID)
	}
	item.Placement = placement
	item.Points = points
	item.UpdatedAt = time.Now().UTC()
	r.store.results[resultID] = item
	return nil
}

func (r *ResultRepository) Delete(_ context.Context, resultID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.results[resultID]; !ok {
		return fmt.Errorf("result %s not found", resultID)
	}
	delete(r.store.results, resultID)
	r.store.resultOrder = removeID(r.store.resultOrder, resultID)
	return nil
}

func (r *ResultRepository) ExistsForEventAndAthlete(_ context.Context, eventID, athleteID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, id := range r.store.resultOrder {
		item := r.store.results[id]
		if item.EventID == eventID && item.AthleteID == athleteID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ResultRepository) ListByEvent(_ context.Context, eventID string) ([]result.Result, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]result.Result, 0)
	for _, id := range r.store.resultOrder {
		if r.store.results[id].EventID == eventID {
			out = append(out, r.store.results[id])
		}
	}
	return out, nil
}

func (r *ResultRepository) ListByAthlete(_ context.Context, athleteID string) ([]result.Result, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]result.Result, 0)
	for _, id := range r.store.resultOrder {
		if r.store.results[id].AthleteID == athleteID {
			out = append(out, r.store.results[id])
		}
	}
	return out, nil
}

func (r *ResultRepository) ListQualifying(_ context.Context, athleteID string, cat category.Category, windowStart time.Time) ([]result.Result, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]result.Result, 0)
	for _, id := range r.store.resultOrder {
		item := r.store.results[id]
		if item.AthleteID != athleteID || item.CategoryPlayed != cat {
			continue
		}
		owner, ok := r.store.events[item.EventID]
		if !ok || owner.StartsAt.Before(windowStart) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
