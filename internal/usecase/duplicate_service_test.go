package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
)

func TestDuplicateService_DetectClusters_GroupsLikelyDoubles(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)

	anchor := f.registerAthlete(t, "José da Silva", athlete.GenderMale, category.C)
	double := f.registerAthlete(t, "Jose Silva", athlete.GenderMale, category.C)
	f.registerAthlete(t, "Maria Silva", athlete.GenderFemale, category.B)
	f.registerAthlete(t, "Pedro Lima", athlete.GenderMale, category.Fun)

	clusters, err := f.duplicates.DetectClusters(t.Context(), false)
	if err != nil {
		t.Fatalf("detect clusters: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("expected one cluster, got %d: %+v", len(clusters), clusters)
	}
	if clusters[0].Anchor.ID != anchor.ID {
		t.Fatalf("anchor = %s, want %s", clusters[0].Anchor.ID, anchor.ID)
	}
	if len(clusters[0].Members) != 1 || clusters[0].Members[0].Athlete.ID != double.ID {
		t.Fatalf("unexpected members: %+v", clusters[0].Members)
	}
	if clusters[0].Members[0].Score < athlete.SimilarityThreshold {
		t.Fatalf("member score %d below threshold %d", clusters[0].Members[0].Score, athlete.SimilarityThreshold)
	}
}

func TestDuplicateService_DetectClusters_GenderPartitions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)

	// Identical names but different record genders never cluster together
	// in the default scan.
	f.registerAthlete(t, "Alex Santos", athlete.GenderMale, category.C)
	f.registerAthlete(t, "Alex Santos", athlete.GenderFemale, category.C)

	clusters, err := f.duplicates.DetectClusters(t.Context(), false)
	if err != nil {
		t.Fatalf("detect clusters: %v", err)
	}
	if len(clusters) != 0 {
		t.Fatalf("expected no clusters across genders, got %+v", clusters)
	}
}

func TestDuplicateService_DetectClusters_AcrossGendersMode(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)

	// A mis-entered gender hides a double from the default scan; the
	// partition-free mode surfaces it.
	anchor := f.registerAthlete(t, "Carla Mendes Rocha", athlete.GenderFemale, category.B)
	double := f.registerAthlete(t, "Carla Mendes", athlete.GenderMale, category.B)

	clusters, err := f.duplicates.DetectClusters(t.Context(), true)
	if err != nil {
		t.Fatalf("detect clusters: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("expected one cluster across genders, got %d: %+v", len(clusters), clusters)
	}
	if clusters[0].Anchor.ID != anchor.ID {
		t.Fatalf("anchor = %s, want %s", clusters[0].Anchor.ID, anchor.ID)
	}
	if len(clusters[0].Members) != 1 || clusters[0].Members[0].Athlete.ID != double.ID {
		t.Fatalf("unexpected members: %+v", clusters[0].Members)
	}
}

func TestDuplicateService_DetectClusters_AnchorLinkedNotTransitive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)

	// B is similar to both A and C, but C is not similar to A. Membership is
	// decided against the anchor alone, so C stays out of A's cluster.
	anchor := f.registerAthlete(t, "Ana Beatriz Costa", athlete.GenderFemale, category.C)
	bridge := f.registerAthlete(t, "Ana Beatriz Costa Ferreira", athlete.GenderFemale, category.C)
	outsider := f.registerAthlete(t, "Beatriz Costa Ferreira Almeida Rocha", athlete.GenderFemale, category.C)

	clusters, err := f.duplicates.DetectClusters(t.Context(), false)
	if err != nil {
		t.Fatalf("detect clusters: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("expected one cluster, got %d: %+v", len(clusters), clusters)
	}
	if clusters[0].Anchor.ID != anchor.ID {
		t.Fatalf("anchor = %s, want %s", clusters[0].Anchor.ID, anchor.ID)
	}
	if len(clusters[0].Members) != 1 || clusters[0].Members[0].Athlete.ID != bridge.ID {
		t.Fatalf("expected only the direct match in the cluster, got %+v", clusters[0].Members)
	}
	_ = outsider
}

func TestDuplicateService_Merge_ReassignsAndRecomputes(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)

	keeper := f.registerAthlete(t, "José da Silva", athlete.GenderMale, category.C)
	double := f.registerAthlete(t, "Jose Silva", athlete.GenderMale, category.C)

	first := f.createEvent(t, active.ID, "Etapa 1", now.AddDate(0, -3, 0), nil)
	second := f.createEvent(t, active.ID, "Etapa 2", now.AddDate(0, -1, 0), nil)
	f.recordResult(t, first.ID, keeper.ID, "Champion", category.C)
	f.recordResult(t, second.ID, double.ID, "Runner-up", category.C)

	if err := f.duplicates.Merge(t.Context(), keeper.ID, []string{double.ID}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if _, err := f.athletes.Get(t.Context(), double.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("absorbed athlete should be gone, got %v", err)
	}

	owned, err := f.results.ListByAthlete(t.Context(), keeper.ID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("keeper owns %d results after merge, want 2", len(owned))
	}

	merged := f.getAthlete(t, keeper.ID)
	if merged.TotalPoints != 175 {
		t.Fatalf("keeper total = %d, want 175 across both histories", merged.TotalPoints)
	}
	if merged.TournamentsPlayed != 2 {
		t.Fatalf("keeper played = %d, want 2", merged.TournamentsPlayed)
	}

	if got := f.notifier.byType(EventAthletesMerged); len(got) != 1 {
		t.Fatalf("expected one merge event, got %d", len(got))
	}
}

func TestDuplicateService_Merge_Validation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	keeper := f.registerAthlete(t, "Ana Souza", athlete.GenderFemale, category.D)

	if err := f.duplicates.Merge(t.Context(), "", []string{keeper.ID}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty keep id, got %v", err)
	}
	if err := f.duplicates.Merge(t.Context(), keeper.ID, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty merge set, got %v", err)
	}
	if err := f.duplicates.Merge(t.Context(), keeper.ID, []string{keeper.ID}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for self merge, got %v", err)
	}
	if err := f.duplicates.Merge(t.Context(), keeper.ID, []string{"missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown absorbed athlete, got %v", err)
	}
	if err := f.duplicates.Merge(t.Context(), "missing", []string{keeper.ID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown keep athlete, got %v", err)
	}
}
