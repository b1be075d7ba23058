package usecase

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
)

func TestImportService_ImportEventResults_RecordsWholeBatch(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)
	f.registerAthlete(t, "Maria Silva", athlete.GenderFemale, category.B)
	f.registerAthlete(t, "Ana Souza", athlete.GenderFemale, category.B)
	stage := f.createEvent(t, active.ID, "Etapa 1", now.AddDate(0, -1, 0), nil)

	recorded, err := f.importer.ImportEventResults(t.Context(), stage.ID, []ImportRow{
		{AthleteName: "Maria Silva", Placement: "Champion", CategoryPlayed: category.B},
		{AthleteName: "Ana Souza", Placement: "Runner-up", CategoryPlayed: category.B},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(recorded) != 2 {
		t.Fatalf("imported %d rows, want 2", len(recorded))
	}
	if recorded[0].Points != 100 || recorded[1].Points != 75 {
		t.Fatalf("imported points = %d/%d, want 100/75", recorded[0].Points, recorded[1].Points)
	}

	entries, err := f.ranking.ListRankings(t.Context(), category.B, athlete.GenderFemale)
	if err != nil {
		t.Fatalf("list rankings: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "Maria Silva" {
		t.Fatalf("unexpected standings after import: %+v", entries)
	}
}

func TestImportService_ImportEventResults_UnknownNamesRejectBeforeAnyWrite(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)
	known := f.registerAthlete(t, "Maria Silva", athlete.GenderFemale, category.B)
	stage := f.createEvent(t, active.ID, "Etapa 1", now.AddDate(0, -1, 0), nil)

	_, err := f.importer.ImportEventResults(t.Context(), stage.ID, []ImportRow{
		{AthleteName: "Maria Silva", Placement: "Champion", CategoryPlayed: category.B},
		{AthleteName: "Fulana Desconhecida", Placement: "Third", CategoryPlayed: category.B},
		{AthleteName: "Beltrana Incerta", Placement: "Third", CategoryPlayed: category.B},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown names, got %v", err)
	}
	if !strings.Contains(err.Error(), "Fulana Desconhecida") || !strings.Contains(err.Error(), "Beltrana Incerta") {
		t.Fatalf("error should list every unknown name, got %v", err)
	}

	items, err := f.results.ListByEvent(t.Context(), stage.ID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("rejected batch must not write any row, found %d", len(items))
	}
	if got := f.getAthlete(t, known.ID).TotalPoints; got != 0 {
		t.Fatalf("known athlete standing touched by rejected batch: %d", got)
	}
}

func TestImportService_ImportEventResults_RowValidation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)
	f.registerAthlete(t, "Maria Silva", athlete.GenderFemale, category.B)
	stage := f.createEvent(t, active.ID, "Etapa 1", now.AddDate(0, -1, 0), nil)

	cases := []struct {
		name string
		rows []ImportRow
	}{
		{"no rows", nil},
		{"blank name", []ImportRow{{AthleteName: "  ", Placement: "Champion", CategoryPlayed: category.B}}},
		{"blank placement", []ImportRow{{AthleteName: "Maria Silva", Placement: " ", CategoryPlayed: category.B}}},
		{"unknown category", []ImportRow{{AthleteName: "Maria Silva", Placement: "Champion", CategoryPlayed: category.Category("PRO")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := f.importer.ImportEventResults(t.Context(), stage.ID, tc.rows); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if _, err := f.importer.ImportEventResults(t.Context(), "  ", []ImportRow{
		{AthleteName: "Maria Silva", Placement: "Champion", CategoryPlayed: category.B},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank event id, got %v", err)
	}
}

func TestImportService_ImportEventResults_DuplicateRowSurfacesPartialWrite(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)
	f.registerAthlete(t, "Maria Silva", athlete.GenderFemale, category.B)
	stage := f.createEvent(t, active.ID, "Etapa 1", now.AddDate(0, -1, 0), nil)

	recorded, err := f.importer.ImportEventResults(t.Context(), stage.ID, []ImportRow{
		{AthleteName: "Maria Silva", Placement: "Champion", CategoryPlayed: category.B},
		{AthleteName: "Maria Silva", Placement: "Third", CategoryPlayed: category.B},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicated athlete row, got %v", err)
	}
	// The first row landed before the duplicate was caught; the error reports
	// the rows that made it so the caller can reconcile.
	if len(recorded) != 1 {
		t.Fatalf("expected the rows written before the failure, got %d", len(recorded))
	}
}
