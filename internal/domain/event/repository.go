package event

import (
	"context"

	"github.com/courtside/ranking/internal/domain/scoring"
)

type Repository interface {
	Create(ctx context.Context, e Event) error
	GetByID(ctx context.Context, eventID string) (Event, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Event, error)
	SetStatus(ctx context.Context, eventID string, status Status) error
	// SetOverride replaces the event's scoring override; nil clears it.
	// Already-recorded results are untouched either way.
	SetOverride(ctx context.Context, eventID string, override *scoring.Table) error
}
