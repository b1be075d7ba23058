package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
)

type AthleteRepository struct {
	store *Store
}

var _ athlete.Repository = (*AthleteRepository)(nil)

func NewAthleteRepository(store *Store) *AthleteRepository {
	return &AthleteRepository{store: store}
}

func (r *AthleteRepository) Create(_ context.Context, a athlete.Athlete, initialEntry category.HistoryEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.athletes[a.ID]; exists {
		return fmt.Errorf("athlete %s already exists", a.ID)
	}

	r.store.athletes[a.ID] = a
	r.store.athleteOrder = append(r.store.athleteOrder, a.ID)
	r.store.entries[initialEntry.ID] = initialEntry
	r.store.entryOrder = append(r.store.entryOrder, initialEntry.ID)
	return nil
}

func (r *AthleteRepository) GetByID(_ context.Context, athleteID string) (athlete.Athlete, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.athletes[athleteID]
	if !ok {
		return athlete.Athlete{}, false, nil
	}
	return item, true, nil
}

func (r *AthleteRepository) GetByName(_ context.Context, name string) (athlete.Athlete, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	name = strings.TrimSpace(name)
	for _, id := range r.store.athleteOrder {
		if strings.TrimSpace(r.store.athletes[id].Name) == name {
			return r.store.athletes[id], true, nil
		}
	}
	return athlete.Athlete{}, false, nil
}

func (r *AthleteRepository) List(_ context.Context) ([]athlete.Athlete, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]athlete.Athlete, 0, len(r.store.athleteOrder))
	for _, id := range r.store.athleteOrder {
		out = append(out, r.store.athletes[id])
	}
	return out, nil
}

func (r *AthleteRepository) UpdateStanding(_ context.Context, athleteID string, totalPoints, tournamentsPlayed, expectedVersion int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.athletes[athleteID]
	if !ok {
		return fmt.Errorf("athlete %s not found", athleteID)
	}
	if item.Version != expectedVersion {
		return athlete.ErrVersionConflict
	}

	item.TotalPoints = totalPoints
	item.TournamentsPlayed = tournamentsPlayed
	item.Version++
	item.UpdatedAt = time.Now().UTC()
	r.store.athletes[athleteID] = item
	return nil
}

func (r *AthleteRepository) ResetAllStandings(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	for id, item := range r.store.athletes {
		item.TotalPoints = 0
		item.TournamentsPlayed = 0
		item.Version++
		item.UpdatedAt = now
		r.store.athletes[id] = item
	}
	return int64(len(r.store.athletes)), nil
}

func (r *AthleteRepository) Merge(_ context.Context, keepID string, removeIDs []string, closedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.athletes[keepID]; !ok {
		return fmt.Errorf("athlete %s not found", keepID)
	}
	absorbed := make(map[string]struct{}, len(removeIDs))
	for _, removeID := range removeIDs {
		if _, ok := r.store.athletes[removeID]; !ok {
			return fmt.Errorf("athlete %s not found", removeID)
		}
		absorbed[removeID] = struct{}{}
	}

	for id, item := range r.store.results {
		if _, owned := absorbed[item.AthleteID]; owned {
			item.AthleteID = keepID
			r.store.results[id] = item
		}
	}

	for id, entry := range r.store.entries {
		if _, owned := absorbed[entry.AthleteID]; !owned {
			continue
		}
		entry.AthleteID = keepID
		if entry.Open() {
			exitedAt := closedAt
			entry.ExitedAt = &exitedAt
			entry.ExitReason = category.ExitAdminOverride
		}
		r.store.entries[id] = entry
	}

	for absorbedID := range absorbed {
		delete(r.store.athletes, absorbedID)
		r.store.athleteOrder = removeID(r.store.athleteOrder, absorbedID)
	}
	return nil
}
