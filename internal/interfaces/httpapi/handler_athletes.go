package httpapi

import (
	"net/http"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/usecase"
)

type registerAthleteRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Gender   string `json:"gender" validate:"required"`
	Category string `json:"category" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=32"`
}

type promoteAthleteRequest struct {
	ToCategory string `json:"toCategory" validate:"required"`
}

type requestDemotionRequest struct {
	ToCategory string `json:"toCategory" validate:"required"`
	Reason     string `json:"reason" validate:"max=500"`
}

type athleteDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Gender            string `json:"gender"`
	Category          string `json:"category"`
	TotalPoints       int    `json:"totalPoints"`
	TournamentsPlayed int    `json:"tournamentsPlayed"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

type historyEntryDTO struct {
	ID         string `json:"id"`
	AthleteID  string `json:"athleteId"`
	Category   string `json:"category"`
	Points     int    `json:"points"`
	EnteredAt  string `json:"enteredAt"`
	ExitedAt   string `json:"exitedAt,omitempty"`
	ExitReason string `json:"exitReason,omitempty"`
}

func (h *Handler) RegisterAthlete(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterAthlete")
	defer span.End()

	var req registerAthleteRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.athleteService.Register(ctx, usecase.RegisterAthleteInput{
		Name:     req.Name,
		Gender:   athlete.Gender(req.Gender),
		Category: category.Category(req.Category),
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register athlete failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, athleteToDTO(created))
}

func (h *Handler) ListAthletes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAthletes")
	defer span.End()

	athletes, err := h.athleteService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list athletes failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]athleteDTO, 0, len(athletes))
	for _, a := range athletes {
		items = append(items, athleteToDTO(a))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetAthlete(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAthlete")
	defer span.End()

	athleteID := r.PathValue("athleteID")
	item, err := h.athleteService.Get(ctx, athleteID)
	if err != nil {
		h.logger.WarnContext(ctx, "get athlete failed", "athlete_id", athleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, athleteToDTO(item))
}

func (h *Handler) ListAthleteResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAthleteResults")
	defer span.End()

	athleteID := r.PathValue("athleteID")
	if _, err := h.athleteService.Get(ctx, athleteID); err != nil {
		writeError(ctx, w, err)
		return
	}

	results, err := h.resultService.ListByAthlete(ctx, athleteID)
	if err != nil {
		h.logger.WarnContext(ctx, "list athlete results failed", "athlete_id", athleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]resultDTO, 0, len(results))
	for _, item := range results {
		items = append(items, resultToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListAthleteHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAthleteHistory")
	defer span.End()

	athleteID := r.PathValue("athleteID")
	entries, err := h.athleteService.ListHistory(ctx, athleteID)
	if err != nil {
		h.logger.WarnContext(ctx, "list athlete history failed", "athlete_id", athleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, historyEntryToDTO(entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) PromoteAthlete(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PromoteAthlete")
	defer span.End()

	athleteID := r.PathValue("athleteID")
	var req promoteAthleteRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.categoryService.Promote(ctx, athleteID, category.Category(req.ToCategory)); err != nil {
		h.logger.WarnContext(ctx, "promote athlete failed", "athlete_id", athleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	item, err := h.athleteService.Get(ctx, athleteID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, athleteToDTO(item))
}

func (h *Handler) RequestDemotion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestDemotion")
	defer span.End()

	athleteID := r.PathValue("athleteID")
	var req requestDemotionRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	request, err := h.categoryService.RequestDemotion(ctx, athleteID, category.Category(req.ToCategory), req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "request demotion failed", "athlete_id", athleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, changeRequestToDTO(request))
}

func athleteToDTO(v athlete.Athlete) athleteDTO {
	return athleteDTO{
		ID:                v.ID,
		Name:              v.Name,
		Gender:            string(v.Gender),
		Category:          string(v.Category),
		TotalPoints:       v.TotalPoints,
		TournamentsPlayed: v.TournamentsPlayed,
		Email:             v.Email,
		Phone:             v.Phone,
		CreatedAt:         formatTimestamp(v.CreatedAt),
		UpdatedAt:         formatTimestamp(v.UpdatedAt),
	}
}

func historyEntryToDTO(v category.HistoryEntry) historyEntryDTO {
	return historyEntryDTO{
		ID:         v.ID,
		AthleteID:  v.AthleteID,
		Category:   string(v.Category),
		Points:     v.Points,
		EnteredAt:  formatTimestamp(v.EnteredAt),
		ExitedAt:   formatOptionalTimestamp(v.ExitedAt),
		ExitReason: string(v.ExitReason),
	}
}
