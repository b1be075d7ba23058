package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/result"
)

// ImportService records batches of already-parsed result rows for one event.
// The caller owns file formats and name parsing; this service only resolves
// each athlete name to an id by exact match and rejects the whole batch,
// before any write, when a name is unknown.
type ImportService struct {
	athleteRepo athlete.Repository
	results     *ResultService
}

type ImportRow struct {
	AthleteName    string
	Placement      string
	CategoryPlayed category.Category
}

func NewImportService(athleteRepo athlete.Repository, results *ResultService) *ImportService {
	return &ImportService{
		athleteRepo: athleteRepo,
		results:     results,
	}
}

func (s *ImportService) ImportEventResults(ctx context.Context, eventID string, rows []ImportRow) ([]result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportEventResults")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to import", ErrInvalidInput)
	}

	resolved := make([]string, len(rows))
	unknown := make([]string, 0)
	for idx, row := range rows {
		name := strings.TrimSpace(row.AthleteName)
		if name == "" {
			return nil, fmt.Errorf("%w: row %d has no athlete name", ErrInvalidInput, idx+1)
		}
		if strings.TrimSpace(row.Placement) == "" {
			return nil, fmt.Errorf("%w: row %d has no placement", ErrInvalidInput, idx+1)
		}
		if !row.CategoryPlayed.Valid() {
			return nil, fmt.Errorf("%w: row %d has unknown category %q", ErrInvalidInput, idx+1, row.CategoryPlayed)
		}

		match, exists, err := s.athleteRepo.GetByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve athlete name %q: %w", name, err)
		}
		if !exists {
			unknown = append(unknown, name)
			continue
		}
		resolved[idx] = match.ID
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown athletes: %s", ErrInvalidInput, strings.Join(unknown, ", "))
	}

	recorded := make([]result.Result, 0, len(rows))
	for idx, row := range rows {
		created, err := s.results.Record(ctx, RecordResultInput{
			EventID:        eventID,
			AthleteID:      resolved[idx],
			Placement:      row.Placement,
			CategoryPlayed: row.CategoryPlayed,
		})
		if err != nil {
			return recorded, fmt.Errorf("import row %d (%s): %w", idx+1, row.AthleteName, err)
		}
		recorded = append(recorded, created)
	}
	return recorded, nil
}
