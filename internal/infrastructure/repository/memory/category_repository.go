package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/courtside/ranking/internal/domain/category"
)

type CategoryRepository struct {
	store *Store
}

var _ category.Repository = (*CategoryRepository)(nil)

func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) OpenEntry(_ context.Context, athleteID string) (category.HistoryEntry, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, id := range r.store.entryOrder {
		entry := r.store.entries[id]
		if entry.AthleteID == athleteID && entry.Open() {
			return entry, true, nil
		}
	}
	return category.HistoryEntry{}, false, nil
}

func (r *CategoryRepository) LatestClosedEntry(_ context.Context, athleteID string, cat category.Category) (category.HistoryEntry, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var (
		latest category.HistoryEntry
		found  bool
	)
	for _, id := range r.store.entryOrder {
		entry := r.store.entries[id]
		if entry.AthleteID != athleteID || entry.Category != cat || entry.Open() {
			continue
		}
		if !found || entry.ExitedAt.After(*latest.ExitedAt) {
			latest = entry
			found = true
		}
	}
	return latest, found, nil
}

func (r *CategoryRepository) ListHistoryByAthlete(_ context.Context, athleteID string) ([]category.HistoryEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]category.HistoryEntry, 0)
	for _, id := range r.store.entryOrder {
		if r.store.entries[id].AthleteID == athleteID {
			out = append(out, r.store.entries[id])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EnteredAt.Before(out[j].EnteredAt)
	})
	return out, nil
}

func (r *CategoryRepository) ApplyTransition(_ context.Context, transition category.Transition) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.athletes[transition.AthleteID]
	if !ok {
		return fmt.Errorf("athlete %s not found", transition.AthleteID)
	}

	openID := ""
	for _, id := range r.store.entryOrder {
		entry := r.store.entries[id]
		if entry.AthleteID == transition.AthleteID && entry.Open() {
			openID = id
			break
		}
	}
	if openID == "" {
		return fmt.Errorf("athlete %s has no open history entry", transition.AthleteID)
	}

	exitedAt := transition.At
	open := r.store.entries[openID]
	open.Points = transition.ClosedPoints
	open.ExitedAt = &exitedAt
	open.ExitReason = transition.ExitReason
	r.store.entries[openID] = open

	r.store.entries[transition.NewEntryID] = category.HistoryEntry{
		ID:        transition.NewEntryID,
		AthleteID: transition.AthleteID,
		Category:  transition.To,
		Points:    transition.SeedPoints,
		EnteredAt: transition.At,
	}
	r.store.entryOrder = append(r.store.entryOrder, transition.NewEntryID)

	current.Category = transition.To
	current.TotalPoints = transition.SeedPoints
	current.Version++
	current.UpdatedAt = transition.At
	r.store.athletes[transition.AthleteID] = current

	if transition.RequestID != "" {
		request, ok := r.store.requests[transition.RequestID]
		if !ok {
			return fmt.Errorf("change request %s not found", transition.RequestID)
		}
		respondedAt := transition.At
		request.Status = category.RequestApproved
		request.RespondedAt = &respondedAt
		request.AdminID = transition.AdminID
		request.AdminResponse = transition.AdminResponse
		r.store.requests[transition.RequestID] = request
	}
	return nil
}

func (r *CategoryRepository) CreateRequest(_ context.Context, request category.ChangeRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.requests[request.ID]; exists {
		return fmt.Errorf("change request %s already exists", request.ID)
	}
	for _, id := range r.store.requestOrder {
		existing := r.store.requests[id]
		if existing.AthleteID == request.AthleteID && existing.Status == category.RequestPending {
			return fmt.Errorf("%w: athlete=%s", category.ErrPendingRequestExists, request.AthleteID)
		}
	}

	r.store.requests[request.ID] = request
	r.store.requestOrder = append(r.store.requestOrder, request.ID)
	return nil
}

func (r *CategoryRepository) GetRequest(_ context.Context, requestID string) (category.ChangeRequest, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	request, ok := r.store.requests[requestID]
	if !ok {
		return category.ChangeRequest{}, false, nil
	}
	return request, true, nil
}

func (r *CategoryRepository) PendingRequestByAthlete(_ context.Context, athleteID string) (category.ChangeRequest, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, id := range r.store.requestOrder {
		request := r.store.requests[id]
		if request.AthleteID == athleteID && request.Status == category.RequestPending {
			return request, true, nil
		}
	}
	return category.ChangeRequest{}, false, nil
}

func (r *CategoryRepository) ListRequestsByStatus(_ context.Context, status category.RequestStatus) ([]category.ChangeRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]category.ChangeRequest, 0)
	for _, id := range r.store.requestOrder {
		if r.store.requests[id].Status == status {
			out = append(out, r.store.requests[id])
		}
	}
	return out, nil
}

func (r *CategoryRepository) UpdateRequest(_ context.Context, request category.ChangeRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.requests[request.ID]; !exists {
		return fmt.Errorf("change request %s not found", request.ID)
	}
	r.store.requests[request.ID] = request
	return nil
}
