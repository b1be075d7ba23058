package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/scoring"
	"github.com/courtside/ranking/internal/domain/season"
	"github.com/courtside/ranking/internal/platform/cache"
	"github.com/courtside/ranking/internal/platform/id"
	"github.com/courtside/ranking/internal/platform/logging"
)

// SeasonService governs the season state machine: created inactive, activated
// exclusively, archived with a write-once standings snapshot. The bulk point
// reset lives here too; sequencing it safely against archive is the rollover
// workflow's job.
type SeasonService struct {
	seasonRepo  season.Repository
	athleteRepo athlete.Repository
	listCache   *cache.Store
	notifier    Notifier
	logger      *logging.Logger
	idGen       id.Generator
	now         func() time.Time
}

type CreateSeasonInput struct {
	Year         int
	Name         string
	StartsAt     time.Time
	DefaultTable *scoring.Table
}

func NewSeasonService(
	seasonRepo season.Repository,
	athleteRepo athlete.Repository,
	listCache *cache.Store,
	notifier Notifier,
	logger *logging.Logger,
	idGen id.Generator,
) *SeasonService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SeasonService{
		seasonRepo:  seasonRepo,
		athleteRepo: athleteRepo,
		listCache:   listCache,
		notifier:    notifier,
		logger:      logger,
		idGen:       idGen,
		now:         time.Now,
	}
}

func (s *SeasonService) Create(ctx context.Context, input CreateSeasonInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Create")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return season.Season{}, fmt.Errorf("%w: season name is required", ErrInvalidInput)
	}
	if input.Year < 1900 {
		return season.Season{}, fmt.Errorf("%w: season year %d is out of range", ErrInvalidInput, input.Year)
	}
	if input.StartsAt.IsZero() {
		return season.Season{}, fmt.Errorf("%w: season start date is required", ErrInvalidInput)
	}

	table := scoring.DefaultTable()
	if input.DefaultTable != nil {
		if err := input.DefaultTable.Validate(); err != nil {
			return season.Season{}, fmt.Errorf("%w: default table: %v", ErrInvalidInput, err)
		}
		table = *input.DefaultTable
	}

	seasonID, err := s.idGen.NewID()
	if err != nil {
		return season.Season{}, fmt.Errorf("generate season id: %w", err)
	}

	now := s.now().UTC()
	created := season.Season{
		ID:           seasonID,
		Year:         input.Year,
		Name:         name,
		StartsAt:     input.StartsAt.UTC(),
		Active:       false,
		DefaultTable: table,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.seasonRepo.Create(ctx, created); err != nil {
		// Generated ids collide only under pathological id reuse; a retry
		// mints a fresh id, so the caller sees a retryable conflict.
		if errors.Is(err, season.ErrDuplicateID) {
			return season.Season{}, fmt.Errorf("%w: season id collision", ErrConflict)
		}
		return season.Season{}, fmt.Errorf("create season: %w", err)
	}
	return created, nil
}

func (s *SeasonService) Get(ctx context.Context, seasonID string) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Get")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return season.Season{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	item, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	return item, nil
}

func (s *SeasonService) GetActive(ctx context.Context) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.GetActive")
	defer span.End()

	item, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return season.Season{}, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: no active season", ErrNotFound)
	}
	return item, nil
}

func (s *SeasonService) List(ctx context.Context) ([]season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.List")
	defer span.End()

	items, err := s.seasonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	return items, nil
}

// Activate flips the target season active and whichever season held the flag
// inactive, atomically. The store enforces at-most-one-active; a race between
// two concurrent activations surfaces as a conflict, never as two actives.
func (s *SeasonService) Activate(ctx context.Context, seasonID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Activate")
	defer span.End()

	target, err := s.Get(ctx, seasonID)
	if err != nil {
		return err
	}
	if target.Archived() {
		return fmt.Errorf("%w: season %s is archived", ErrInvalidInput, target.ID)
	}
	if target.Active {
		return nil
	}

	now := s.now().UTC()
	if err := s.seasonRepo.Activate(ctx, target.ID, now); err != nil {
		return fmt.Errorf("activate season: %w", err)
	}

	s.publish(ctx, ChangeEvent{
		Type:       EventSeasonActivated,
		SeasonID:   target.ID,
		OccurredAt: now,
	})
	return nil
}

// Archive snapshots every athlete's standing and closes the season in one
// transaction. Positions are assigned per category and gender, ordered by
// points descending, tournaments played descending, then name ascending.
// Archiving never changes athlete points; only the bulk reset does.
func (s *SeasonService) Archive(ctx context.Context, seasonID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Archive")
	defer span.End()

	target, err := s.Get(ctx, seasonID)
	if err != nil {
		return err
	}
	if target.Archived() {
		return fmt.Errorf("%w: season %s is already archived", ErrInvalidInput, target.ID)
	}

	athletes, err := s.athleteRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list athletes for snapshot: %w", err)
	}

	now := s.now().UTC()
	entries := buildSnapshot(target.ID, athletes, now)
	if err := s.seasonRepo.Archive(ctx, target.ID, now, entries); err != nil {
		return fmt.Errorf("archive season: %w", err)
	}

	s.publish(ctx, ChangeEvent{
		Type:     EventSeasonArchived,
		SeasonID: target.ID,
		Detail: map[string]any{
			"snapshotEntries": len(entries),
		},
		OccurredAt: now,
	})
	return nil
}

// ResetAllPoints zeroes every athlete's cached total and tournaments-played
// count in one bulk statement. Irreversible; it has no linkage to archive on
// purpose, and the rollover workflow is what enforces archive-before-reset.
func (s *SeasonService) ResetAllPoints(ctx context.Context) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ResetAllPoints")
	defer span.End()

	affected, err := s.athleteRepo.ResetAllStandings(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset athlete standings: %w", err)
	}

	s.listCache.InvalidatePrefix(rankingsCacheKeyPrefix)
	s.logger.InfoContext(ctx, "all athlete points reset", "athletes", affected)
	return affected, nil
}

func (s *SeasonService) ListSnapshot(ctx context.Context, seasonID string) ([]season.SnapshotEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ListSnapshot")
	defer span.End()

	target, err := s.Get(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	entries, err := s.seasonRepo.ListSnapshot(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("list season snapshot: %w", err)
	}
	return entries, nil
}

func buildSnapshot(seasonID string, athletes []athlete.Athlete, at time.Time) []season.SnapshotEntry {
	groups := make(map[string][]RankingEntry)
	for _, item := range athletes {
		key := string(item.Category) + ":" + string(item.Gender)
		groups[key] = append(groups[key], RankingEntry{
			AthleteID:         item.ID,
			Name:              item.Name,
			Category:          item.Category,
			Gender:            item.Gender,
			Points:            item.TotalPoints,
			TournamentsPlayed: item.TournamentsPlayed,
		})
	}

	entries := make([]season.SnapshotEntry, 0, len(athletes))
	for _, cat := range category.Hierarchy {
		for _, gender := range []athlete.Gender{athlete.GenderFemale, athlete.GenderMale} {
			group := groups[string(cat)+":"+string(gender)]
			if len(group) == 0 {
				continue
			}
			SortStandings(group)
			for idx, standing := range group {
				entries = append(entries, season.SnapshotEntry{
					SeasonID:          seasonID,
					AthleteID:         standing.AthleteID,
					AthleteName:       standing.Name,
					Category:          standing.Category,
					Gender:            standing.Gender,
					Points:            standing.Points,
					TournamentsPlayed: standing.TournamentsPlayed,
					Position:          idx + 1,
					CreatedAt:         at,
				})
			}
		}
	}
	return entries
}

func (s *SeasonService) publish(ctx context.Context, event ChangeEvent) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish change event", "type", event.Type, "error", err)
	}
}
