package season

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateID reports a primary-key collision on insert.
var ErrDuplicateID = errors.New("season id already exists")

type Repository interface {
	Create(ctx context.Context, s Season) error
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	GetActive(ctx context.Context) (Season, bool, error)
	List(ctx context.Context) ([]Season, error)

	// Activate atomically deactivates whichever season is active and
	// activates the target, under an exclusivity guarantee strong enough
	// that two concurrent calls cannot leave two active seasons.
	Activate(ctx context.Context, seasonID string, at time.Time) error

	// Archive persists the snapshot entries and closes the season (end date
	// set, active cleared) in a single transaction.
	Archive(ctx context.Context, seasonID string, endedAt time.Time, entries []SnapshotEntry) error
	ListSnapshot(ctx context.Context, seasonID string) ([]SnapshotEntry, error)
}
