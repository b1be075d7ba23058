package athlete

import (
	"time"

	"github.com/courtside/ranking/internal/domain/category"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Athlete carries a cached standing (TotalPoints, TournamentsPlayed) that is a
// derived projection of the result ledger. The ledger is the source of truth;
// the cache is always rebuilt by full recompute, never adjusted incrementally.
type Athlete struct {
	ID                string
	Name              string
	Gender            Gender
	Category          category.Category
	TotalPoints       int
	TournamentsPlayed int
	Email             string
	Phone             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int
}
