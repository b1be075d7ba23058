package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/result"
	"github.com/courtside/ranking/internal/domain/scoring"
	"github.com/courtside/ranking/internal/domain/season"
	"github.com/courtside/ranking/internal/platform/id"
)

// ResultService owns the result ledger. Points are resolved once, at write
// time, against the owning event's scoring table; editing a result re-resolves
// against the same table. Every mutation ends with a full recompute of the
// owning athlete's cached standing.
type ResultService struct {
	athleteRepo athlete.Repository
	eventRepo   event.Repository
	resultRepo  result.Repository
	seasonRepo  season.Repository
	ranking     *RankingService
	idGen       id.Generator
	now         func() time.Time
}

type RecordResultInput struct {
	EventID        string
	AthleteID      string
	Placement      string
	CategoryPlayed category.Category
}

func NewResultService(
	athleteRepo athlete.Repository,
	eventRepo event.Repository,
	resultRepo result.Repository,
	seasonRepo season.Repository,
	ranking *RankingService,
	idGen id.Generator,
) *ResultService {
	return &ResultService{
		athleteRepo: athleteRepo,
		eventRepo:   eventRepo,
		resultRepo:  resultRepo,
		seasonRepo:  seasonRepo,
		ranking:     ranking,
		idGen:       idGen,
		now:         time.Now,
	}
}

// Record writes one result. An event-athlete pair may hold at most one result;
// a second write is rejected before anything lands. Recording also marks the
// event completed if it was not already.
func (s *ResultService) Record(ctx context.Context, input RecordResultInput) (result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.Record")
	defer span.End()

	eventID := strings.TrimSpace(input.EventID)
	athleteID := strings.TrimSpace(input.AthleteID)
	placement := strings.TrimSpace(input.Placement)
	if eventID == "" {
		return result.Result{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	if athleteID == "" {
		return result.Result{}, fmt.Errorf("%w: athlete id is required", ErrInvalidInput)
	}
	if placement == "" {
		return result.Result{}, fmt.Errorf("%w: placement is required", ErrInvalidInput)
	}
	if !input.CategoryPlayed.Valid() {
		return result.Result{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, input.CategoryPlayed)
	}

	owner, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return result.Result{}, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return result.Result{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	if _, exists, err = s.athleteRepo.GetByID(ctx, athleteID); err != nil {
		return result.Result{}, fmt.Errorf("get athlete: %w", err)
	} else if !exists {
		return result.Result{}, fmt.Errorf("%w: athlete=%s", ErrNotFound, athleteID)
	}

	taken, err := s.resultRepo.ExistsForEventAndAthlete(ctx, eventID, athleteID)
	if err != nil {
		return result.Result{}, fmt.Errorf("check duplicate result: %w", err)
	}
	if taken {
		return result.Result{}, fmt.Errorf("%w: athlete=%s already has a result for event=%s", ErrInvalidInput, athleteID, eventID)
	}

	points, _, err := s.resolvePoints(ctx, owner, placement)
	if err != nil {
		return result.Result{}, err
	}

	resultID, err := s.idGen.NewID()
	if err != nil {
		return result.Result{}, fmt.Errorf("generate result id: %w", err)
	}

	now := s.now().UTC()
	created := result.Result{
		ID:             resultID,
		EventID:        eventID,
		AthleteID:      athleteID,
		Placement:      placement,
		CategoryPlayed: input.CategoryPlayed,
		Points:         points,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.resultRepo.Create(ctx, created); err != nil {
		return result.Result{}, fmt.Errorf("create result: %w", err)
	}

	if owner.Status != event.StatusCompleted {
		if err := s.eventRepo.SetStatus(ctx, eventID, event.StatusCompleted); err != nil {
			return result.Result{}, fmt.Errorf("mark event completed: %w", err)
		}
	}

	if _, err := s.ranking.RecomputeTotal(ctx, athleteID); err != nil {
		return result.Result{}, err
	}
	return created, nil
}

// Edit re-resolves points for a new placement using the same event's scoring
// table, unchanged. CategoryPlayed is frozen at record time and never edited.
func (s *ResultService) Edit(ctx context.Context, resultID, newPlacement string) (result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.Edit")
	defer span.End()

	resultID = strings.TrimSpace(resultID)
	newPlacement = strings.TrimSpace(newPlacement)
	if resultID == "" {
		return result.Result{}, fmt.Errorf("%w: result id is required", ErrInvalidInput)
	}
	if newPlacement == "" {
		return result.Result{}, fmt.Errorf("%w: placement is required", ErrInvalidInput)
	}

	current, exists, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		return result.Result{}, fmt.Errorf("get result: %w", err)
	}
	if !exists {
		return result.Result{}, fmt.Errorf("%w: result=%s", ErrNotFound, resultID)
	}

	owner, exists, err := s.eventRepo.GetByID(ctx, current.EventID)
	if err != nil {
		return result.Result{}, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return result.Result{}, fmt.Errorf("%w: event=%s", ErrNotFound, current.EventID)
	}

	points, _, err := s.resolvePoints(ctx, owner, newPlacement)
	if err != nil {
		return result.Result{}, err
	}

	if err := s.resultRepo.UpdatePlacement(ctx, resultID, newPlacement, points); err != nil {
		return result.Result{}, fmt.Errorf("update result placement: %w", err)
	}
	if _, err := s.ranking.RecomputeTotal(ctx, current.AthleteID); err != nil {
		return result.Result{}, err
	}

	current.Placement = newPlacement
	current.Points = points
	return current, nil
}

func (s *ResultService) Delete(ctx context.Context, resultID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.Delete")
	defer span.End()

	resultID = strings.TrimSpace(resultID)
	if resultID == "" {
		return fmt.Errorf("%w: result id is required", ErrInvalidInput)
	}

	current, exists, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		return fmt.Errorf("get result: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: result=%s", ErrNotFound, resultID)
	}

	if err := s.resultRepo.Delete(ctx, resultID); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if _, err := s.ranking.RecomputeTotal(ctx, current.AthleteID); err != nil {
		return err
	}
	return nil
}

func (s *ResultService) ListByEvent(ctx context.Context, eventID string) ([]result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.ListByEvent")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	items, err := s.resultRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list results by event: %w", err)
	}
	return items, nil
}

func (s *ResultService) ListByAthlete(ctx context.Context, athleteID string) ([]result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.ListByAthlete")
	defer span.End()

	athleteID = strings.TrimSpace(athleteID)
	if athleteID == "" {
		return nil, fmt.Errorf("%w: athlete id is required", ErrInvalidInput)
	}

	items, err := s.resultRepo.ListByAthlete(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("list results by athlete: %w", err)
	}
	return items, nil
}

func (s *ResultService) resolvePoints(ctx context.Context, owner event.Event, placement string) (int, scoring.Tier, error) {
	owningSeason, exists, err := s.seasonRepo.GetByID(ctx, owner.SeasonID)
	if err != nil {
		return 0, "", fmt.Errorf("get season for scoring: %w", err)
	}
	if !exists {
		return 0, "", fmt.Errorf("%w: season=%s", ErrNotFound, owner.SeasonID)
	}

	points, tier := scoring.Resolve(placement, owningSeason.DefaultTable, owner.Override)
	return points, tier, nil
}
