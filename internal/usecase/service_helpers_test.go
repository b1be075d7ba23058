package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/result"
	"github.com/courtside/ranking/internal/domain/scoring"
	"github.com/courtside/ranking/internal/domain/season"
	"github.com/courtside/ranking/internal/infrastructure/repository/memory"
	"github.com/courtside/ranking/internal/platform/cache"
)

type seqIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (n *recordingNotifier) Publish(_ context.Context, event ChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) byType(eventType string) []ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]ChangeEvent, 0)
	for _, event := range n.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// conflictingAthleteRepo fails UpdateStanding a fixed number of times before
// delegating, to simulate recompute races.
type conflictingAthleteRepo struct {
	athlete.Repository

	mu        sync.Mutex
	conflicts int
}

func (r *conflictingAthleteRepo) UpdateStanding(ctx context.Context, athleteID string, totalPoints, tournamentsPlayed, expectedVersion int) error {
	r.mu.Lock()
	remaining := r.conflicts
	if remaining > 0 {
		r.conflicts--
	}
	r.mu.Unlock()

	if remaining > 0 {
		return athlete.ErrVersionConflict
	}
	return r.Repository.UpdateStanding(ctx, athleteID, totalPoints, tournamentsPlayed, expectedVersion)
}

// serviceFixture wires every service against one shared in-memory store,
// with a frozen clock and sequential ids.
type serviceFixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	now      time.Time

	athleteRepo  *memory.AthleteRepository
	categoryRepo *memory.CategoryRepository
	eventRepo    *memory.EventRepository
	resultRepo   *memory.ResultRepository
	seasonRepo   *memory.SeasonRepository

	ranking    *RankingService
	athletes   *AthleteService
	events     *EventService
	results    *ResultService
	categories *CategoryService
	seasons    *SeasonService
	rollovers  *RolloverService
	duplicates *DuplicateService
	importer   *ImportService
}

func newServiceFixture(now time.Time) *serviceFixture {
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	idGen := &seqIDGenerator{}
	listCache := cache.NewStore(time.Minute)
	clock := func() time.Time { return now }

	f := &serviceFixture{
		store:        store,
		notifier:     notifier,
		now:          now,
		athleteRepo:  memory.NewAthleteRepository(store),
		categoryRepo: memory.NewCategoryRepository(store),
		eventRepo:    memory.NewEventRepository(store),
		resultRepo:   memory.NewResultRepository(store),
		seasonRepo:   memory.NewSeasonRepository(store),
	}

	f.ranking = NewRankingService(f.athleteRepo, f.resultRepo, listCache, 4)
	f.ranking.now = clock
	f.athletes = NewAthleteService(f.athleteRepo, f.categoryRepo, idGen)
	f.athletes.now = clock
	f.events = NewEventService(f.eventRepo, f.seasonRepo, idGen)
	f.events.now = clock
	f.results = NewResultService(f.athleteRepo, f.eventRepo, f.resultRepo, f.seasonRepo, f.ranking, idGen)
	f.results.now = clock
	f.categories = NewCategoryService(f.athleteRepo, f.categoryRepo, listCache, notifier, nil, idGen)
	f.categories.now = clock
	f.seasons = NewSeasonService(f.seasonRepo, f.athleteRepo, listCache, notifier, nil, idGen)
	f.seasons.now = clock
	f.rollovers = NewRolloverService(f.seasons, nil, idGen)
	f.rollovers.now = clock
	f.duplicates = NewDuplicateService(f.athleteRepo, f.ranking, notifier, nil)
	f.duplicates.now = clock
	f.importer = NewImportService(f.athleteRepo, f.results)
	return f
}

func (f *serviceFixture) registerAthlete(t *testing.T, name string, gender athlete.Gender, cat category.Category) athlete.Athlete {
	t.Helper()

	created, err := f.athletes.Register(t.Context(), RegisterAthleteInput{
		Name:     name,
		Gender:   gender,
		Category: cat,
	})
	if err != nil {
		t.Fatalf("register athlete %q: %v", name, err)
	}
	return created
}

func (f *serviceFixture) createActiveSeason(t *testing.T, year int) season.Season {
	t.Helper()

	created, err := f.seasons.Create(t.Context(), CreateSeasonInput{
		Year:     year,
		Name:     fmt.Sprintf("Circuito %d", year),
		StartsAt: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create season: %v", err)
	}
	if err := f.seasons.Activate(t.Context(), created.ID); err != nil {
		t.Fatalf("activate season: %v", err)
	}
	created.Active = true
	return created
}

func (f *serviceFixture) createEvent(t *testing.T, seasonID, name string, startsAt time.Time, override *scoring.Table) event.Event {
	t.Helper()

	created, err := f.events.Create(t.Context(), CreateEventInput{
		SeasonID: seasonID,
		Name:     name,
		StartsAt: startsAt,
		Override: override,
	})
	if err != nil {
		t.Fatalf("create event %q: %v", name, err)
	}
	return created
}

func (f *serviceFixture) recordResult(t *testing.T, eventID, athleteID, placement string, cat category.Category) result.Result {
	t.Helper()

	created, err := f.results.Record(t.Context(), RecordResultInput{
		EventID:        eventID,
		AthleteID:      athleteID,
		Placement:      placement,
		CategoryPlayed: cat,
	})
	if err != nil {
		t.Fatalf("record result event=%s athlete=%s: %v", eventID, athleteID, err)
	}
	return created
}

func (f *serviceFixture) getAthlete(t *testing.T, athleteID string) athlete.Athlete {
	t.Helper()

	current, err := f.athletes.Get(t.Context(), athleteID)
	if err != nil {
		t.Fatalf("get athlete %s: %v", athleteID, err)
	}
	return current
}
