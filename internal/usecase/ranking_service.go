package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/result"
	"github.com/courtside/ranking/internal/platform/cache"
	"github.com/courtside/ranking/internal/platform/resilience"
)

const (
	// bestResultsCounted caps how many results feed the point total; every
	// qualifying result still counts toward the tournaments-played counter.
	bestResultsCounted = 10

	recomputeRetries        = 3
	defaultRecomputeWorkers = 8
	rankingsCacheKeyPrefix  = "rankings:"
)

// RankingService recomputes the cached athlete standing from the result
// ledger. The cached total is never adjusted incrementally: every ledger
// mutation triggers a full recompute, which is idempotent and self-healing.
type RankingService struct {
	athleteRepo athlete.Repository
	resultRepo  result.Repository

	recomputeMu resilience.KeyedMutex
	listCache   *cache.Store
	maxWorkers  int
	now         func() time.Time
}

type RankingEntry struct {
	Position          int
	AthleteID         string
	Name              string
	Category          category.Category
	Gender            athlete.Gender
	Points            int
	TournamentsPlayed int
}

func NewRankingService(athleteRepo athlete.Repository, resultRepo result.Repository, listCache *cache.Store, maxWorkers int) *RankingService {
	if maxWorkers < 1 {
		maxWorkers = defaultRecomputeWorkers
	}
	return &RankingService{
		athleteRepo: athleteRepo,
		resultRepo:  resultRepo,
		listCache:   listCache,
		maxWorkers:  maxWorkers,
		now:         time.Now,
	}
}

// RecomputeTotal rebuilds one athlete's cached total and tournaments-played
// count from the ledger. Only results played at the athlete's current
// category, whose event starts within the trailing twelve months, qualify;
// the total is the sum of the ten highest-valued qualifying results while the
// played counter counts them all. Concurrent recomputes for the same athlete
// serialize on a per-athlete lock, and a stale write loses the optimistic
// version check and retries with fresh state.
func (s *RankingService) RecomputeTotal(ctx context.Context, athleteID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.RecomputeTotal")
	defer span.End()

	athleteID = strings.TrimSpace(athleteID)
	if athleteID == "" {
		return 0, fmt.Errorf("%w: athlete id is required", ErrInvalidInput)
	}

	s.recomputeMu.Lock(athleteID)
	defer s.recomputeMu.Unlock(athleteID)

	var total int
	for attempt := 0; attempt < recomputeRetries; attempt++ {
		current, exists, err := s.athleteRepo.GetByID(ctx, athleteID)
		if err != nil {
			return 0, fmt.Errorf("get athlete for recompute: %w", err)
		}
		if !exists {
			return 0, fmt.Errorf("%w: athlete=%s", ErrNotFound, athleteID)
		}

		windowStart := s.now().UTC().AddDate(-1, 0, 0)
		qualifying, err := s.resultRepo.ListQualifying(ctx, athleteID, current.Category, windowStart)
		if err != nil {
			return 0, fmt.Errorf("list qualifying results: %w", err)
		}

		total = sumBestPoints(qualifying)
		played := len(qualifying)

		err = s.athleteRepo.UpdateStanding(ctx, athleteID, total, played, current.Version)
		if errors.Is(err, athlete.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("update athlete standing: %w", err)
		}

		s.listCache.InvalidatePrefix(rankingsCacheKeyPrefix)
		return total, nil
	}

	return 0, fmt.Errorf("%w: athlete=%s lost recompute race %d times", ErrConflict, athleteID, recomputeRetries)
}

// RecomputeAll rebuilds every athlete's cached standing through a bounded
// worker pool. Used after merges of historical data and as a repair tool.
func (s *RankingService) RecomputeAll(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.RecomputeAll")
	defer span.End()

	athletes, err := s.athleteRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list athletes for recompute: %w", err)
	}
	if len(athletes) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return 0, fmt.Errorf("create recompute pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for _, item := range athletes {
		athleteID := item.ID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if _, recomputeErr := s.RecomputeTotal(ctx, athleteID); recomputeErr != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("recompute athlete=%s: %w", athleteID, recomputeErr)
				}
				errMu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			errMu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit recompute athlete=%s: %w", athleteID, submitErr)
			}
			errMu.Unlock()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return 0, firstErr
	}
	return len(athletes), nil
}

// ListRankings returns the current standing for one category and gender,
// ordered by points descending, tournaments played descending, then name
// ascending, with 1-based positions. Listings are served from a short-lived
// cache that every standing mutation invalidates.
func (s *RankingService) ListRankings(ctx context.Context, cat category.Category, gender athlete.Gender) ([]RankingEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.ListRankings")
	defer span.End()

	if !cat.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, cat)
	}
	if !gender.Valid() {
		return nil, fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, gender)
	}

	key := rankingsCacheKeyPrefix + string(cat) + ":" + string(gender)
	value, err := s.listCache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.buildRankings(ctx, cat, gender)
	})
	if err != nil {
		return nil, err
	}

	entries, ok := value.([]RankingEntry)
	if !ok {
		return s.buildRankings(ctx, cat, gender)
	}
	return entries, nil
}

func (s *RankingService) buildRankings(ctx context.Context, cat category.Category, gender athlete.Gender) ([]RankingEntry, error) {
	athletes, err := s.athleteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list athletes for rankings: %w", err)
	}

	entries := make([]RankingEntry, 0, len(athletes))
	for _, item := range athletes {
		if item.Category != cat || item.Gender != gender {
			continue
		}
		entries = append(entries, RankingEntry{
			AthleteID:         item.ID,
			Name:              item.Name,
			Category:          item.Category,
			Gender:            item.Gender,
			Points:            item.TotalPoints,
			TournamentsPlayed: item.TournamentsPlayed,
		})
	}

	SortStandings(entries)
	for idx := range entries {
		entries[idx].Position = idx + 1
	}
	return entries, nil
}

// SortStandings orders ranking entries by points descending, tournaments
// played descending, then name ascending. Season archival reuses the same
// ordering when it assigns snapshot positions.
func SortStandings(entries []RankingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if entries[i].TournamentsPlayed != entries[j].TournamentsPlayed {
			return entries[i].TournamentsPlayed > entries[j].TournamentsPlayed
		}
		return entries[i].Name < entries[j].Name
	})
}

func sumBestPoints(results []result.Result) int {
	points := make([]int, 0, len(results))
	for _, item := range results {
		points = append(points, item.Points)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(points)))

	total := 0
	for idx, value := range points {
		if idx >= bestResultsCounted {
			break
		}
		total += value
	}
	return total
}
