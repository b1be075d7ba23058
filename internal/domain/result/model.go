package result

import (
	"time"

	"github.com/courtside/ranking/internal/domain/category"
)

// Result is one athlete's outcome at one event. Points are resolved once, at
// write time, from the event's scoring table and stored; they are re-resolved
// only when the result itself is edited. CategoryPlayed is the tier the
// athlete competed in, which can differ from their current tier if a
// promotion happened since.
type Result struct {
	ID             string
	EventID        string
	AthleteID      string
	Placement      string
	CategoryPlayed category.Category
	Points         int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
