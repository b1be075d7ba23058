package memory

import (
	"fmt"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/scoring"
	"github.com/courtside/ranking/internal/domain/season"
)

// Seed loads a small roster, an active season, and one played event so the
// API is explorable without a database. Dev mode only.
func Seed(store *Store, now time.Time) {
	now = now.UTC()

	activeSeason := season.Season{
		ID:           "season-current",
		Year:         now.Year(),
		Name:         fmt.Sprintf("Circuito %d", now.Year()),
		StartsAt:     time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		Active:       true,
		DefaultTable: scoring.DefaultTable(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	store.seasons[activeSeason.ID] = activeSeason
	store.seasonOrder = append(store.seasonOrder, activeSeason.ID)

	opener := event.Event{
		ID:        "event-opener",
		SeasonID:  activeSeason.ID,
		Name:      "Season Opener",
		StartsAt:  now.AddDate(0, -2, 0),
		EndsAt:    now.AddDate(0, -2, 2),
		Status:    event.StatusCompleted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	store.events[opener.ID] = opener
	store.eventOrder = append(store.eventOrder, opener.ID)

	roster := []struct {
		id       string
		name     string
		gender   athlete.Gender
		category category.Category
	}{
		{"athlete-maria", "Maria Silva", athlete.GenderFemale, category.B},
		{"athlete-jose", "José da Silva", athlete.GenderMale, category.C},
		{"athlete-jose-dup", "Jose Silva", athlete.GenderMale, category.C},
		{"athlete-ana", "Ana Souza", athlete.GenderFemale, category.D},
		{"athlete-pedro", "Pedro Lima", athlete.GenderMale, category.Fun},
	}
	for _, item := range roster {
		entered := now.AddDate(0, -6, 0)
		store.athletes[item.id] = athlete.Athlete{
			ID:        item.id,
			Name:      item.name,
			Gender:    item.gender,
			Category:  item.category,
			CreatedAt: entered,
			UpdatedAt: entered,
			Version:   1,
		}
		store.athleteOrder = append(store.athleteOrder, item.id)

		entryID := "entry-" + item.id
		store.entries[entryID] = category.HistoryEntry{
			ID:        entryID,
			AthleteID: item.id,
			Category:  item.category,
			EnteredAt: entered,
		}
		store.entryOrder = append(store.entryOrder, entryID)
	}
}
