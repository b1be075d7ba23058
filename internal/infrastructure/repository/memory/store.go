package memory

import (
	"sync"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/result"
	"github.com/courtside/ranking/internal/domain/season"
)

// Store is the shared state behind the in-memory repositories. One lock
// covers everything so multi-record writes (merge, category transition,
// season activation) are atomic the same way a database transaction is.
type Store struct {
	mu sync.RWMutex

	athletes     map[string]athlete.Athlete
	athleteOrder []string

	entries    map[string]category.HistoryEntry
	entryOrder []string

	requests     map[string]category.ChangeRequest
	requestOrder []string

	events     map[string]event.Event
	eventOrder []string

	results     map[string]result.Result
	resultOrder []string

	seasons     map[string]season.Season
	seasonOrder []string

	snapshots map[string][]season.SnapshotEntry
}

func NewStore() *Store {
	return &Store{
		athletes:  make(map[string]athlete.Athlete),
		entries:   make(map[string]category.HistoryEntry),
		requests:  make(map[string]category.ChangeRequest),
		events:    make(map[string]event.Event),
		results:   make(map[string]result.Result),
		seasons:   make(map[string]season.Season),
		snapshots: make(map[string][]season.SnapshotEntry),
	}
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, candidate := range order {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
