package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/platform/id"
)

type AthleteService struct {
	athleteRepo  athlete.Repository
	categoryRepo category.Repository
	idGen        id.Generator
	now          func() time.Time
}

type RegisterAthleteInput struct {
	Name     string
	Gender   athlete.Gender
	Category category.Category
	Email    string
	Phone    string
}

func NewAthleteService(athleteRepo athlete.Repository, categoryRepo category.Repository, idGen id.Generator) *AthleteService {
	return &AthleteService{
		athleteRepo:  athleteRepo,
		categoryRepo: categoryRepo,
		idGen:        idGen,
		now:          time.Now,
	}
}

// Register creates an athlete together with their first open category history
// entry. Names are stored as entered; uniqueness is deliberately not enforced
// here because real rosters contain distinct people with identical names, and
// the duplicate resolver exists to clean up the genuine doubles.
func (s *AthleteService) Register(ctx context.Context, input RegisterAthleteInput) (athlete.Athlete, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AthleteService.Register")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return athlete.Athlete{}, fmt.Errorf("%w: athlete name is required", ErrInvalidInput)
	}
	if !input.Gender.Valid() {
		return athlete.Athlete{}, fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, input.Gender)
	}
	if !input.Category.Valid() {
		return athlete.Athlete{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, input.Category)
	}

	athleteID, err := s.idGen.NewID()
	if err != nil {
		return athlete.Athlete{}, fmt.Errorf("generate athlete id: %w", err)
	}
	entryID, err := s.idGen.NewID()
	if err != nil {
		return athlete.Athlete{}, fmt.Errorf("generate history entry id: %w", err)
	}

	now := s.now().UTC()
	created := athlete.Athlete{
		ID:        athleteID,
		Name:      name,
		Gender:    input.Gender,
		Category:  input.Category,
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	initialEntry := category.HistoryEntry{
		ID:        entryID,
		AthleteID: athleteID,
		Category:  input.Category,
		EnteredAt: now,
	}

	if err := s.athleteRepo.Create(ctx, created, initialEntry); err != nil {
		return athlete.Athlete{}, fmt.Errorf("create athlete: %w", err)
	}
	return created, nil
}

func (s *AthleteService) Get(ctx context.Context, athleteID string) (athlete.Athlete, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AthleteService.Get")
	defer span.End()

	athleteID = strings.TrimSpace(athleteID)
	if athleteID == "" {
		return athlete.Athlete{}, fmt.Errorf("%w: athlete id is required", ErrInvalidInput)
	}

	item, exists, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		return athlete.Athlete{}, fmt.Errorf("get athlete: %w", err)
	}
	if !exists {
		return athlete.Athlete{}, fmt.Errorf("%w: athlete=%s", ErrNotFound, athleteID)
	}
	return item, nil
}

func (s *AthleteService) List(ctx context.Context) ([]athlete.Athlete, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AthleteService.List")
	defer span.End()

	items, err := s.athleteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list athletes: %w", err)
	}
	return items, nil
}

func (s *AthleteService) ListHistory(ctx context.Context, athleteID string) ([]category.HistoryEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AthleteService.ListHistory")
	defer span.End()

	if _, err := s.Get(ctx, athleteID); err != nil {
		return nil, err
	}

	entries, err := s.categoryRepo.ListHistoryByAthlete(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("list category history: %w", err)
	}
	return entries, nil
}
