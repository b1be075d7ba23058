package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/infrastructure/repository/memory"
)

func TestAthleteService_Register_OpensInitialHistoryEntry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	service := NewAthleteService(memory.NewAthleteRepository(store), memory.NewCategoryRepository(store), staticIDGenerator{id: "fixed-id"})
	service.now = func() time.Time { return now }

	created, err := service.Register(t.Context(), RegisterAthleteInput{
		Name:     "  Maria Silva  ",
		Gender:   athlete.GenderFemale,
		Category: category.B,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID != "fixed-id" {
		t.Fatalf("athlete id = %s, want fixed-id", created.ID)
	}
	if created.Name != "Maria Silva" {
		t.Fatalf("name = %q, want trimmed", created.Name)
	}
	if created.Version != 1 {
		t.Fatalf("version = %d, want 1", created.Version)
	}

	history, err := service.ListHistory(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one history entry at birth, got %d", len(history))
	}
	if history[0].Category != category.B || !history[0].Open() {
		t.Fatalf("initial entry must be open at the registration category, got %+v", history[0])
	}
}

func TestAthleteService_Register_Validation(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC))

	cases := []struct {
		name  string
		input RegisterAthleteInput
	}{
		{"blank name", RegisterAthleteInput{Name: " ", Gender: athlete.GenderFemale, Category: category.B}},
		{"unknown gender", RegisterAthleteInput{Name: "Maria", Gender: athlete.Gender("other"), Category: category.B}},
		{"unknown category", RegisterAthleteInput{Name: "Maria", Gender: athlete.GenderFemale, Category: category.Category("PRO")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := f.athletes.Register(t.Context(), tc.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAthleteService_Register_AllowsDuplicateNames(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC))

	first := f.registerAthlete(t, "Alex Santos", athlete.GenderMale, category.C)
	second := f.registerAthlete(t, "Alex Santos", athlete.GenderMale, category.D)
	if first.ID == second.ID {
		t.Fatalf("distinct people with the same name must get distinct records")
	}

	roster, err := f.athletes.List(t.Context())
	if err != nil {
		t.Fatalf("list athletes: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 athletes, got %d", len(roster))
	}
}

func TestAthleteService_ListHistory_UnknownAthlete(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC))

	if _, err := f.athletes.ListHistory(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
