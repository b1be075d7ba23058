package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/platform/cache"
)

// racingCategoryRepo loses every CreateRequest to the storage-level pending
// uniqueness, as if a concurrent request landed between pre-check and insert.
type racingCategoryRepo struct {
	category.Repository
}

func (racingCategoryRepo) CreateRequest(context.Context, category.ChangeRequest) error {
	return fmt.Errorf("insert change request: %w", category.ErrPendingRequestExists)
}

func TestCategoryService_Promote_ClosesTenureAndResetsPoints(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)
	player := f.registerAthlete(t, "Maria Silva", athlete.GenderFemale, category.C)
	stage := f.createEvent(t, active.ID, "Etapa 1", now.AddDate(0, -1, 0), nil)
	f.recordResult(t, stage.ID, player.ID, "Champion", category.C)

	if err := f.categories.Promote(t.Context(), player.ID, category.B); err != nil {
		t.Fatalf("promote: %v", err)
	}

	promoted := f.getAthlete(t, player.ID)
	if promoted.Category != category.B {
		t.Fatalf("category = %s, want B", promoted.Category)
	}
	if promoted.TotalPoints != 0 {
		t.Fatalf("total points = %d, want 0 at the new tier", promoted.TotalPoints)
	}

	history, err := f.athletes.ListHistory(t.Context(), player.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected closed C tenure plus open B tenure, got %d entries", len(history))
	}
	closed := history[0]
	if closed.Category != category.C || closed.Open() {
		t.Fatalf("first entry should be the closed C tenure, got %+v", closed)
	}
	if closed.Points != 100 {
		t.Fatalf("closed tenure points = %d, want the 100 held at promotion", closed.Points)
	}
	if closed.ExitReason != category.ExitPromoted {
		t.Fatalf("exit reason = %s, want promoted", closed.ExitReason)
	}
	open := history[1]
	if open.Category != category.B || !open.Open() {
		t.Fatalf("second entry should be the open B tenure, got %+v", open)
	}

	if got := f.notifier.byType(EventAthletePromoted); len(got) != 1 {
		t.Fatalf("expected one promotion event, got %d", len(got))
	}
}

func TestCategoryService_Promote_RejectsNonUpwardTargets(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	player := f.registerAthlete(t, "Pedro Lima", athlete.GenderMale, category.B)

	for _, target := range []category.Category{category.B, category.C, category.Fun} {
		if err := f.categories.Promote(t.Context(), player.ID, target); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("promote to %s: expected ErrInvalidInput, got %v", target, err)
		}
	}
	if err := f.categories.Promote(t.Context(), player.ID, category.Category("PRO")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown category, got %v", err)
	}
	if err := f.categories.Promote(t.Context(), "missing", category.A); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown athlete, got %v", err)
	}
}

func TestCategoryService_RequestDemotion_OnePendingPerAthlete(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	player := f.registerAthlete(t, "Ana Souza", athlete.GenderFemale, category.B)

	request, err := f.categories.RequestDemotion(t.Context(), player.ID, category.C, "injury season")
	if err != nil {
		t.Fatalf("request demotion: %v", err)
	}
	if request.Status != category.RequestPending {
		t.Fatalf("request status = %s, want pending", request.Status)
	}
	if request.FromCategory != category.B || request.ToCategory != category.C {
		t.Fatalf("request spans %s->%s, want B->C", request.FromCategory, request.ToCategory)
	}

	if _, err := f.categories.RequestDemotion(t.Context(), player.ID, category.D, "second try"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for second pending request, got %v", err)
	}

	if _, err := f.categories.RequestDemotion(t.Context(), player.ID, category.A, "up"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for upward demotion target, got %v", err)
	}
}

func TestCategoryService_ApproveDemotion_RestoresPriorTenurePoints(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)
	player := f.registerAthlete(t, "Carlos Nunes", athlete.GenderMale, category.C)

	// Earn 100 at C, get promoted to B, earn 75 there, then come back down.
	first := f.createEvent(t, active.ID, "Etapa 1", now.AddDate(0, -3, 0), nil)
	f.recordResult(t, first.ID, player.ID, "Champion", category.C)
	if err := f.categories.Promote(t.Context(), player.ID, category.B); err != nil {
		t.Fatalf("promote: %v", err)
	}
	second := f.createEvent(t, active.ID, "Etapa 2", now.AddDate(0, -1, 0), nil)
	f.recordResult(t, second.ID, player.ID, "Runner-up", category.B)

	request, err := f.categories.RequestDemotion(t.Context(), player.ID, category.C, "level mismatch")
	if err != nil {
		t.Fatalf("request demotion: %v", err)
	}
	if err := f.categories.ApproveDemotion(t.Context(), request.ID, "admin-1", "agreed"); err != nil {
		t.Fatalf("approve demotion: %v", err)
	}

	demoted := f.getAthlete(t, player.ID)
	if demoted.Category != category.C {
		t.Fatalf("category = %s, want C", demoted.Category)
	}
	if demoted.TotalPoints != 100 {
		t.Fatalf("total points = %d, want the 100 frozen on the closed C tenure", demoted.TotalPoints)
	}

	approved, err := f.categories.GetRequest(t.Context(), request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if approved.Status != category.RequestApproved {
		t.Fatalf("request status = %s, want approved", approved.Status)
	}
	if approved.AdminID != "admin-1" {
		t.Fatalf("admin id = %s, want admin-1", approved.AdminID)
	}

	if got := f.notifier.byType(EventAthleteDemoted); len(got) != 1 {
		t.Fatalf("expected one demotion event, got %d", len(got))
	}
}

func TestCategoryService_ApproveDemotion_ZeroWhenTierNeverHeld(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	active := f.createActiveSeason(t, 2026)
	player := f.registerAthlete(t, "Bruno Faria", athlete.GenderMale, category.B)
	stage := f.createEvent(t, active.ID, "Etapa 1", now.AddDate(0, -1, 0), nil)
	f.recordResult(t, stage.ID, player.ID, "Champion", category.B)

	request, err := f.categories.RequestDemotion(t.Context(), player.ID, category.D, "sandbagging review")
	if err != nil {
		t.Fatalf("request demotion: %v", err)
	}
	if err := f.categories.ApproveDemotion(t.Context(), request.ID, "admin-1", ""); err != nil {
		t.Fatalf("approve demotion: %v", err)
	}

	demoted := f.getAthlete(t, player.ID)
	if demoted.Category != category.D {
		t.Fatalf("category = %s, want D", demoted.Category)
	}
	if demoted.TotalPoints != 0 {
		t.Fatalf("total points = %d, want 0 for a tier never held before", demoted.TotalPoints)
	}
}

func TestCategoryService_ApproveDemotion_RequiresAdmin(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	player := f.registerAthlete(t, "Julia Reis", athlete.GenderFemale, category.B)

	request, err := f.categories.RequestDemotion(t.Context(), player.ID, category.C, "")
	if err != nil {
		t.Fatalf("request demotion: %v", err)
	}

	if err := f.categories.ApproveDemotion(t.Context(), request.ID, "  ", "fine"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank admin id, got %v", err)
	}
	if err := f.categories.ApproveDemotion(t.Context(), "missing", "admin-1", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown request, got %v", err)
	}
}

func TestCategoryService_RejectDemotion_LeavesAthleteUntouched(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	player := f.registerAthlete(t, "Sofia Alves", athlete.GenderFemale, category.B)

	request, err := f.categories.RequestDemotion(t.Context(), player.ID, category.C, "wants easier draws")
	if err != nil {
		t.Fatalf("request demotion: %v", err)
	}

	if err := f.categories.RejectDemotion(t.Context(), request.ID, "admin-1", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty rejection response, got %v", err)
	}
	if err := f.categories.RejectDemotion(t.Context(), request.ID, "admin-1", "recent results justify staying"); err != nil {
		t.Fatalf("reject demotion: %v", err)
	}

	unchanged := f.getAthlete(t, player.ID)
	if unchanged.Category != category.B {
		t.Fatalf("category = %s, want untouched B", unchanged.Category)
	}

	rejected, err := f.categories.GetRequest(t.Context(), request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if rejected.Status != category.RequestRejected {
		t.Fatalf("request status = %s, want rejected", rejected.Status)
	}
	if rejected.AdminResponse == "" {
		t.Fatalf("rejection must carry the admin response")
	}

	// A settled request no longer blocks a new one.
	if _, err := f.categories.RequestDemotion(t.Context(), player.ID, category.C, "second attempt"); err != nil {
		t.Fatalf("request after rejection: %v", err)
	}

	if err := f.categories.RejectDemotion(t.Context(), request.ID, "admin-1", "again"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when rejecting a settled request, got %v", err)
	}
}

func TestCategoryService_ListRequests_FiltersByStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	first := f.registerAthlete(t, "Atleta Um", athlete.GenderMale, category.B)
	second := f.registerAthlete(t, "Atleta Dois", athlete.GenderMale, category.B)

	pending, err := f.categories.RequestDemotion(t.Context(), first.ID, category.C, "")
	if err != nil {
		t.Fatalf("request demotion: %v", err)
	}
	settled, err := f.categories.RequestDemotion(t.Context(), second.ID, category.C, "")
	if err != nil {
		t.Fatalf("request demotion: %v", err)
	}
	if err := f.categories.RejectDemotion(t.Context(), settled.ID, "admin-1", "no"); err != nil {
		t.Fatalf("reject demotion: %v", err)
	}

	open, err := f.categories.ListRequests(t.Context(), category.RequestPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(open) != 1 || open[0].ID != pending.ID {
		t.Fatalf("unexpected pending list: %+v", open)
	}

	if _, err := f.categories.ListRequests(t.Context(), category.RequestStatus("stale")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestCategoryService_RequestDemotion_LostRaceIsConflict(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(now)
	player := f.registerAthlete(t, "Joana Prado", athlete.GenderFemale, category.B)

	svc := NewCategoryService(
		f.athleteRepo,
		racingCategoryRepo{Repository: f.categoryRepo},
		cache.NewStore(time.Minute),
		nil, nil,
		&seqIDGenerator{},
	)
	svc.now = func() time.Time { return now }

	_, err := svc.RequestDemotion(t.Context(), player.ID, category.C, "lesão")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for the lost request race, got %v", err)
	}
}
