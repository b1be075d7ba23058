package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/platform/cache"
	"github.com/courtside/ranking/internal/platform/id"
	"github.com/courtside/ranking/internal/platform/logging"
)

// CategoryService runs the tier state machine: promotion is instant and
// irreversible, demotion goes through a pending request an admin must approve
// or reject. Every transition closes the athlete's open history entry and
// opens a new one in the same transaction, so exactly one entry is open per
// athlete at all times.
type CategoryService struct {
	athleteRepo  athlete.Repository
	categoryRepo category.Repository
	listCache    *cache.Store
	notifier     Notifier
	logger       *logging.Logger
	idGen        id.Generator
	now          func() time.Time
}

func NewCategoryService(
	athleteRepo athlete.Repository,
	categoryRepo category.Repository,
	listCache *cache.Store,
	notifier Notifier,
	logger *logging.Logger,
	idGen id.Generator,
) *CategoryService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CategoryService{
		athleteRepo:  athleteRepo,
		categoryRepo: categoryRepo,
		listCache:    listCache,
		notifier:     notifier,
		logger:       logger,
		idGen:        idGen,
		now:          time.Now,
	}
}

// Promote moves an athlete to a strictly higher category, immediately and
// without undo. The open history entry is closed with the points accumulated
// so far, and the athlete starts at the new tier with zero points.
func (s *CategoryService) Promote(ctx context.Context, athleteID string, toCategory category.Category) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CategoryService.Promote")
	defer span.End()

	current, err := s.getAthlete(ctx, athleteID)
	if err != nil {
		return err
	}
	if !toCategory.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, toCategory)
	}
	if !toCategory.Above(current.Category) {
		return fmt.Errorf("%w: promotion target %s is not above %s", ErrInvalidInput, toCategory, current.Category)
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate history entry id: %w", err)
	}

	now := s.now().UTC()
	transition := category.Transition{
		AthleteID:    current.ID,
		From:         current.Category,
		To:           toCategory,
		ExitReason:   category.ExitPromoted,
		ClosedPoints: current.TotalPoints,
		NewEntryID:   entryID,
		SeedPoints:   0,
		At:           now,
	}
	if err := s.categoryRepo.ApplyTransition(ctx, transition); err != nil {
		return fmt.Errorf("apply promotion: %w", err)
	}

	s.listCache.InvalidatePrefix(rankingsCacheKeyPrefix)
	s.publish(ctx, ChangeEvent{
		Type:      EventAthletePromoted,
		AthleteID: current.ID,
		Detail: map[string]any{
			"from": string(current.Category),
			"to":   string(toCategory),
		},
		OccurredAt: now,
	})
	return nil
}

// RequestDemotion opens a pending change request toward a strictly lower
// category. At most one pending request may exist per athlete.
func (s *CategoryService) RequestDemotion(ctx context.Context, athleteID string, toCategory category.Category, reason string) (category.ChangeRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CategoryService.RequestDemotion")
	defer span.End()

	current, err := s.getAthlete(ctx, athleteID)
	if err != nil {
		return category.ChangeRequest{}, err
	}
	if !toCategory.Valid() {
		return category.ChangeRequest{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, toCategory)
	}
	if !toCategory.Below(current.Category) {
		return category.ChangeRequest{}, fmt.Errorf("%w: demotion target %s is not below %s", ErrInvalidInput, toCategory, current.Category)
	}

	if _, pending, err := s.categoryRepo.PendingRequestByAthlete(ctx, current.ID); err != nil {
		return category.ChangeRequest{}, fmt.Errorf("check pending request: %w", err)
	} else if pending {
		return category.ChangeRequest{}, fmt.Errorf("%w: athlete=%s already has a pending request", ErrInvalidInput, current.ID)
	}

	requestID, err := s.idGen.NewID()
	if err != nil {
		return category.ChangeRequest{}, fmt.Errorf("generate request id: %w", err)
	}

	request := category.ChangeRequest{
		ID:           requestID,
		AthleteID:    current.ID,
		FromCategory: current.Category,
		ToCategory:   toCategory,
		Reason:       strings.TrimSpace(reason),
		Status:       category.RequestPending,
		RequestedAt:  s.now().UTC(),
	}
	if err := s.categoryRepo.CreateRequest(ctx, request); err != nil {
		// A concurrent request can slip past the pre-check and lose the race
		// against the storage invariant; that loss is retryable.
		if errors.Is(err, category.ErrPendingRequestExists) {
			return category.ChangeRequest{}, fmt.Errorf("%w: athlete=%s already has a pending request", ErrConflict, current.ID)
		}
		return category.ChangeRequest{}, fmt.Errorf("create change request: %w", err)
	}
	return request, nil
}

// ApproveDemotion executes a pending request. The athlete is restored to
// exactly the points recorded on their most recent closed history entry at
// the target category, or zero if they never held it. Request flip, history
// close/open, and athlete update land in one transaction.
func (s *CategoryService) ApproveDemotion(ctx context.Context, requestID, adminID, response string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CategoryService.ApproveDemotion")
	defer span.End()

	request, err := s.getPendingRequest(ctx, requestID)
	if err != nil {
		return err
	}
	adminID = strings.TrimSpace(adminID)
	if adminID == "" {
		return fmt.Errorf("%w: admin id is required", ErrInvalidInput)
	}

	current, err := s.getAthlete(ctx, request.AthleteID)
	if err != nil {
		return err
	}

	restored := 0
	if previous, held, err := s.categoryRepo.LatestClosedEntry(ctx, current.ID, request.ToCategory); err != nil {
		return fmt.Errorf("look up prior tenure: %w", err)
	} else if held {
		restored = previous.Points
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate history entry id: %w", err)
	}

	now := s.now().UTC()
	transition := category.Transition{
		AthleteID:     current.ID,
		From:          current.Category,
		To:            request.ToCategory,
		ExitReason:    category.ExitDemoted,
		ClosedPoints:  current.TotalPoints,
		NewEntryID:    entryID,
		SeedPoints:    restored,
		At:            now,
		RequestID:     request.ID,
		AdminID:       adminID,
		AdminResponse: strings.TrimSpace(response),
	}
	if err := s.categoryRepo.ApplyTransition(ctx, transition); err != nil {
		return fmt.Errorf("apply demotion: %w", err)
	}

	s.listCache.InvalidatePrefix(rankingsCacheKeyPrefix)
	s.publish(ctx, ChangeEvent{
		Type:      EventAthleteDemoted,
		AthleteID: current.ID,
		Detail: map[string]any{
			"from":           string(current.Category),
			"to":             string(request.ToCategory),
			"restoredPoints": restored,
		},
		OccurredAt: now,
	})
	return nil
}

// RejectDemotion closes a pending request without touching the athlete.
// The admin response text is mandatory on rejection.
func (s *CategoryService) RejectDemotion(ctx context.Context, requestID, adminID, response string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CategoryService.RejectDemotion")
	defer span.End()

	request, err := s.getPendingRequest(ctx, requestID)
	if err != nil {
		return err
	}
	adminID = strings.TrimSpace(adminID)
	if adminID == "" {
		return fmt.Errorf("%w: admin id is required", ErrInvalidInput)
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return fmt.Errorf("%w: rejection response is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	request.Status = category.RequestRejected
	request.RespondedAt = &now
	request.AdminID = adminID
	request.AdminResponse = response
	if err := s.categoryRepo.UpdateRequest(ctx, request); err != nil {
		return fmt.Errorf("reject change request: %w", err)
	}

	s.publish(ctx, ChangeEvent{
		Type:      EventDemotionRejected,
		AthleteID: request.AthleteID,
		Detail: map[string]any{
			"requestId": request.ID,
			"response":  response,
		},
		OccurredAt: now,
	})
	return nil
}

func (s *CategoryService) GetRequest(ctx context.Context, requestID string) (category.ChangeRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CategoryService.GetRequest")
	defer span.End()

	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return category.ChangeRequest{}, fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}

	request, exists, err := s.categoryRepo.GetRequest(ctx, requestID)
	if err != nil {
		return category.ChangeRequest{}, fmt.Errorf("get change request: %w", err)
	}
	if !exists {
		return category.ChangeRequest{}, fmt.Errorf("%w: request=%s", ErrNotFound, requestID)
	}
	return request, nil
}

func (s *CategoryService) ListRequests(ctx context.Context, status category.RequestStatus) ([]category.ChangeRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CategoryService.ListRequests")
	defer span.End()

	switch status {
	case category.RequestPending, category.RequestApproved, category.RequestRejected:
	default:
		return nil, fmt.Errorf("%w: unknown request status %q", ErrInvalidInput, status)
	}

	items, err := s.categoryRepo.ListRequestsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return items, nil
}

func (s *CategoryService) getAthlete(ctx context.Context, athleteID string) (athlete.Athlete, error) {
	athleteID = strings.TrimSpace(athleteID)
	if athleteID == "" {
		return athlete.Athlete{}, fmt.Errorf("%w: athlete id is required", ErrInvalidInput)
	}

	current, exists, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		return athlete.Athlete{}, fmt.Errorf("get athlete: %w", err)
	}
	if !exists {
		return athlete.Athlete{}, fmt.Errorf("%w: athlete=%s", ErrNotFound, athleteID)
	}
	return current, nil
}

func (s *CategoryService) getPendingRequest(ctx context.Context, requestID string) (category.ChangeRequest, error) {
	request, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return category.ChangeRequest{}, err
	}
	if request.Status != category.RequestPending {
		return category.ChangeRequest{}, fmt.Errorf("%w: request=%s is %s, not pending", ErrInvalidInput, request.ID, request.Status)
	}
	return request, nil
}

func (s *CategoryService) publish(ctx context.Context, event ChangeEvent) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish change event", "type", event.Type, "error", err)
	}
}
