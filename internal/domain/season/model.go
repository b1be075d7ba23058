package season

import (
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/scoring"
)

// Season is a bounded competitive period. At most one season is active across
// the whole system; the store enforces that, not just the service.
type Season struct {
	ID           string
	Year         int
	Name         string
	StartsAt     time.Time
	EndedAt      *time.Time
	Active       bool
	DefaultTable scoring.Table
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s Season) Archived() bool {
	return s.EndedAt != nil
}

// SnapshotEntry is a write-once copy of one athlete's standing at the moment
// a season was archived. Position is 1-based within the category+gender group.
type SnapshotEntry struct {
	SeasonID          string
	AthleteID         string
	AthleteName       string
	Category          category.Category
	Gender            athlete.Gender
	Points            int
	TournamentsPlayed int
	Position          int
	CreatedAt         time.Time
}
