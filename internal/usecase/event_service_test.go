package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/scoring"
)

func TestEventService_Create_Validation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)
	starts := now.AddDate(0, 1, 0)

	cases := []struct {
		name  string
		input CreateEventInput
	}{
		{"blank name", CreateEventInput{SeasonID: active.ID, StartsAt: starts}},
		{"blank season", CreateEventInput{Name: "Etapa", StartsAt: starts}},
		{"zero start", CreateEventInput{SeasonID: active.ID, Name: "Etapa"}},
		{"end before start", CreateEventInput{SeasonID: active.ID, Name: "Etapa", StartsAt: starts, EndsAt: starts.AddDate(0, 0, -1)}},
		{"negative override", CreateEventInput{SeasonID: active.ID, Name: "Etapa", StartsAt: starts, Override: &scoring.Table{Champion: -1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := f.events.Create(t.Context(), tc.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if _, err := f.events.Create(t.Context(), CreateEventInput{SeasonID: "missing", Name: "Etapa", StartsAt: starts}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown season, got %v", err)
	}
}

func TestEventService_Create_RejectsArchivedSeason(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	old := f.createActiveSeason(t, 2026)
	if err := f.seasons.Archive(t.Context(), old.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	_, err := f.events.Create(t.Context(), CreateEventInput{
		SeasonID: old.ID,
		Name:     "Etapa Tardia",
		StartsAt: now,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for archived season, got %v", err)
	}
}

func TestEventService_SetOverride_AffectsOnlyLaterWrites(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)
	stage := f.createEvent(t, active.ID, "Etapa 1", now.AddDate(0, -1, 0), nil)

	early := f.registerAthlete(t, "Maria Silva", athlete.GenderFemale, category.B)
	late := f.registerAthlete(t, "Ana Souza", athlete.GenderFemale, category.B)

	before := f.recordResult(t, stage.ID, early.ID, "Champion", category.B)
	if before.Points != 100 {
		t.Fatalf("pre-override points = %d, want 100", before.Points)
	}

	if err := f.events.SetOverride(t.Context(), stage.ID, &scoring.Table{Champion: 200, RunnerUp: 150, Third: 100, Quarterfinal: 50, RoundOf16: 20, Participation: 10}); err != nil {
		t.Fatalf("set override: %v", err)
	}

	after := f.recordResult(t, stage.ID, late.ID, "Champion", category.B)
	if after.Points != 200 {
		t.Fatalf("post-override points = %d, want 200", after.Points)
	}

	// Stored results keep what they were written with.
	kept, err := f.results.ListByAthlete(t.Context(), early.ID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(kept) != 1 || kept[0].Points != 100 {
		t.Fatalf("existing result changed by override: %+v", kept)
	}

	// Clearing the override returns the event to the season default.
	if err := f.events.SetOverride(t.Context(), stage.ID, nil); err != nil {
		t.Fatalf("clear override: %v", err)
	}
	updated, err := f.events.Get(t.Context(), stage.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if updated.Override != nil {
		t.Fatalf("override should be cleared, got %+v", updated.Override)
	}
}

func TestEventService_ListBySeason(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)

	first := f.createEvent(t, active.ID, "Etapa 1", now.AddDate(0, -2, 0), nil)
	second := f.createEvent(t, active.ID, "Etapa 2", now.AddDate(0, 1, 0), nil)

	items, err := f.events.ListBySeason(t.Context(), active.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 events, got %d", len(items))
	}
	if items[0].ID != first.ID || items[1].ID != second.ID {
		t.Fatalf("unexpected order: %+v", items)
	}
	if items[0].Status != event.StatusInProgress {
		t.Fatalf("started event status = %s, want in progress", items[0].Status)
	}
	if items[1].Status != event.StatusScheduled {
		t.Fatalf("future event status = %s, want scheduled", items[1].Status)
	}
}

func TestEventService_Get_DerivesLifecycleStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)

	upcoming := f.createEvent(t, active.ID, "Etapa Futura", now.AddDate(0, 2, 0), nil)
	if got, err := f.events.Get(t.Context(), upcoming.ID); err != nil {
		t.Fatalf("get event: %v", err)
	} else if got.Status != event.StatusScheduled {
		t.Fatalf("future event status = %s, want scheduled", got.Status)
	}

	underway := f.createEvent(t, active.ID, "Etapa Corrente", now.AddDate(0, 0, -1), nil)
	if got, err := f.events.Get(t.Context(), underway.ID); err != nil {
		t.Fatalf("get event: %v", err)
	} else if got.Status != event.StatusInProgress {
		t.Fatalf("started event status = %s, want in progress", got.Status)
	}

	// The first recorded result completes the event; completion wins over
	// the date-derived status.
	player := f.registerAthlete(t, "Maria Silva", athlete.GenderFemale, category.B)
	f.recordResult(t, underway.ID, player.ID, "Champion", category.B)
	if got, err := f.events.Get(t.Context(), underway.ID); err != nil {
		t.Fatalf("get event: %v", err)
	} else if got.Status != event.StatusCompleted {
		t.Fatalf("completed event status = %s, want completed", got.Status)
	}
}
