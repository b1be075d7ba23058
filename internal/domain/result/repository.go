package result

import (
	"context"
	"time"

	"github.com/courtside/ranking/internal/domain/category"
)

type Repository interface {
	Create(ctx context.Context, r Result) error
	GetByID(ctx context.Context, resultID string) (Result, bool, error)
	// UpdatePlacement stores a new placement and its re-resolved points.
	UpdatePlacement(ctx context.Context, resultID, placement string, points int) error
	Delete(ctx context.Context, resultID string) error

	ExistsForEventAndAthlete(ctx context.Context, eventID, athleteID string) (bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]Result, error)
	ListByAthlete(ctx context.Context, athleteID string) ([]Result, error)

	// ListQualifying returns the athlete's results played at the given
	// category whose owning event starts on or after the window start.
	ListQualifying(ctx context.Context, athleteID string, cat category.Category, windowStart time.Time) ([]Result, error)
}
