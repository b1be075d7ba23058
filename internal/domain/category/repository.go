package category

import (
	"context"
	"errors"
	"time"
)

// ErrPendingRequestExists reports that the athlete already holds a pending
// change request. The partial unique index on change_requests backs the same
// invariant at the storage level, so a lost race surfaces as this error.
var ErrPendingRequestExists = errors.New("pending change request exists")

// Transition is the atomic write set of a category change: close the open
// history entry, open a new one, and update the athlete row. When RequestID is
// set the matching change request is marked approved in the same transaction.
type Transition struct {
	AthleteID    string
	From         Category
	To           Category
	ExitReason   ExitReason
	ClosedPoints int
	NewEntryID   string
	SeedPoints   int
	At           time.Time

	RequestID     string
	AdminID       string
	AdminResponse string
}

type Repository interface {
	OpenEntry(ctx context.Context, athleteID string) (HistoryEntry, bool, error)
	LatestClosedEntry(ctx context.Context, athleteID string, cat Category) (HistoryEntry, bool, error)
	ListHistoryByAthlete(ctx context.Context, athleteID string) ([]HistoryEntry, error)
	ApplyTransition(ctx context.Context, transition Transition) error

	CreateRequest(ctx context.Context, request ChangeRequest) error
	GetRequest(ctx context.Context, requestID string) (ChangeRequest, bool, error)
	PendingRequestByAthlete(ctx context.Context, athleteID string) (ChangeRequest, bool, error)
	ListRequestsByStatus(ctx context.Context, status RequestStatus) ([]ChangeRequest, error)
	UpdateRequest(ctx context.Context, request ChangeRequest) error
}
