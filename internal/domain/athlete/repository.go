package athlete

import (
	"context"
	"errors"
	"time"

	"github.com/courtside/ranking/internal/domain/category"
)

// ErrVersionConflict reports that a standing update lost an optimistic
// concurrency race and should be retried by the caller.
var ErrVersionConflict = errors.New("athlete version conflict")

type Repository interface {
	// Create inserts the athlete together with their initial open history
	// entry, atomically, so the one-open-entry invariant holds from birth.
	Create(ctx context.Context, a Athlete, initialEntry category.HistoryEntry) error
	GetByID(ctx context.Context, athleteID string) (Athlete, bool, error)
	// GetByName matches the exact name after whitespace trim.
	GetByName(ctx context.Context, name string) (Athlete, bool, error)
	List(ctx context.Context) ([]Athlete, error)

	// UpdateStanding overwrites the cached projection. expectedVersion guards
	// against concurrent recomputes; ErrVersionConflict when it is stale.
	UpdateStanding(ctx context.Context, athleteID string, totalPoints, tournamentsPlayed, expectedVersion int) error
	ResetAllStandings(ctx context.Context) (int64, error)

	// Merge reassigns every result and history entry owned by removeIDs to
	// keepID, closes the absorbed open history entries with admin-override,
	// and deletes the absorbed athlete rows, all in one transaction.
	Merge(ctx context.Context, keepID string, removeIDs []string, closedAt time.Time) error
}
