package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/courtside/ranking/internal/platform/id"
	"github.com/courtside/ranking/internal/platform/logging"
)

// RolloverStep names the stages of the season rollover workflow, in order.
type RolloverStep string

const (
	StepPrepared      RolloverStep = "prepared"
	StepArchived      RolloverStep = "archived"
	StepSeasonCreated RolloverStep = "season_created"
	StepPointsReset   RolloverStep = "points_reset"
	StepActivated     RolloverStep = "activated"
)

var rolloverOrder = []RolloverStep{
	StepPrepared,
	StepArchived,
	StepSeasonCreated,
	StepPointsReset,
	StepActivated,
}

// Rollover is the state of one season transition in flight.
type Rollover struct {
	ID           string
	OldSeasonID  string
	NextSeasonID string
	Step         RolloverStep
	StartedAt    time.Time
	UpdatedAt    time.Time
}

func (r Rollover) Done() bool {
	return r.Step == StepActivated
}

// RolloverService is the guard rail around the irreversible season
// transition. Resetting points before archiving would silently destroy the
// historical snapshot, so each step checks its precondition and refuses any
// out-of-order call before a single write happens. One rollover runs at a
// time; a completed rollover must finish before the next begins.
type RolloverService struct {
	seasons *SeasonService
	logger  *logging.Logger
	idGen   id.Generator
	now     func() time.Time

	mu      sync.Mutex
	current *Rollover
}

func NewRolloverService(seasons *SeasonService, logger *logging.Logger, idGen id.Generator) *RolloverService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RolloverService{
		seasons: seasons,
		logger:  logger,
		idGen:   idGen,
		now:     time.Now,
	}
}

// Begin opens a rollover against the currently active season.
func (s *RolloverService) Begin(ctx context.Context) (Rollover, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RolloverService.Begin")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && !s.current.Done() {
		return Rollover{}, fmt.Errorf("%w: rollover %s is already in progress at step %s", ErrInvalidInput, s.current.ID, s.current.Step)
	}

	active, err := s.seasons.GetActive(ctx)
	if err != nil {
		return Rollover{}, err
	}

	rolloverID, err := s.idGen.NewID()
	if err != nil {
		return Rollover{}, fmt.Errorf("generate rollover id: %w", err)
	}

	now := s.now().UTC()
	s.current = &Rollover{
		ID:          rolloverID,
		OldSeasonID: active.ID,
		Step:        StepPrepared,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	s.logger.InfoContext(ctx, "season rollover started", "rollover_id", rolloverID, "old_season_id", active.ID)
	return *s.current, nil
}

// ArchiveOld snapshots and closes the outgoing season. Requires Begin.
func (s *RolloverService) ArchiveOld(ctx context.Context) (Rollover, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RolloverService.ArchiveOld")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStep(StepPrepared); err != nil {
		return Rollover{}, err
	}
	if err := s.seasons.Archive(ctx, s.current.OldSeasonID); err != nil {
		return Rollover{}, err
	}

	s.advance(StepArchived)
	return *s.current, nil
}

// CreateNext creates the incoming season, inactive. Requires ArchiveOld.
func (s *RolloverService) CreateNext(ctx context.Context, input CreateSeasonInput) (Rollover, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RolloverService.CreateNext")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStep(StepArchived); err != nil {
		return Rollover{}, err
	}

	created, err := s.seasons.Create(ctx, input)
	if err != nil {
		return Rollover{}, err
	}

	s.current.NextSeasonID = created.ID
	s.advance(StepSeasonCreated)
	return *s.current, nil
}

// ResetPoints zeroes every athlete's standing. Requires CreateNext, which in
// turn requires the archive, so the snapshot is always safe before the wipe.
func (s *RolloverService) ResetPoints(ctx context.Context) (Rollover, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RolloverService.ResetPoints")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStep(StepSeasonCreated); err != nil {
		return Rollover{}, err
	}
	if _, err := s.seasons.ResetAllPoints(ctx); err != nil {
		return Rollover{}, err
	}

	s.advance(StepPointsReset)
	return *s.current, nil
}

// ActivateNext makes the incoming season the single active one and completes
// the rollover.
func (s *RolloverService) ActivateNext(ctx context.Context) (Rollover, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RolloverService.ActivateNext")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStep(StepPointsReset); err != nil {
		return Rollover{}, err
	}
	if err := s.seasons.Activate(ctx, s.current.NextSeasonID); err != nil {
		return Rollover{}, err
	}

	s.advance(StepActivated)
	s.logger.InfoContext(ctx, "season rollover completed",
		"rollover_id", s.current.ID,
		"old_season_id", s.current.OldSeasonID,
		"next_season_id", s.current.NextSeasonID,
	)
	return *s.current, nil
}

// Status reports the rollover in flight, if any.
func (s *RolloverService) Status() (Rollover, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Rollover{}, false
	}
	return *s.current, true
}

func (s *RolloverService) requireStep(expected RolloverStep) error {
	if s.current == nil {
		return fmt.Errorf("%w: no rollover in progress", ErrInvalidInput)
	}
	if s.current.Step != expected {
		return fmt.Errorf("%w: rollover is at step %s, expected %s (order: %v)", ErrInvalidInput, s.current.Step, expected, rolloverOrder)
	}
	return nil
}

func (s *RolloverService) advance(next RolloverStep) {
	s.current.Step = next
	s.current.UpdatedAt = s.now().UTC()
}
