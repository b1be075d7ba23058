package httpapi

import (
	"net/http"

	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/result"
	"github.com/courtside/ranking/internal/domain/scoring"
	"github.com/courtside/ranking/internal/usecase"
)

type createEventRequest struct {
	SeasonID string           `json:"seasonId" validate:"required"`
	Name     string           `json:"name" validate:"required,max=200"`
	StartsAt string           `json:"startsAt" validate:"required"`
	EndsAt   string           `json:"endsAt"`
	Override *scoringTableDTO `json:"override"`
}

type setOverrideRequest struct {
	Override *scoringTableDTO `json:"override"`
}

type recordResultRequest struct {
	AthleteID      string `json:"athleteId" validate:"required"`
	Placement      string `json:"placement" validate:"required,max=50"`
	CategoryPlayed string `json:"categoryPlayed" validate:"required"`
}

type editResultRequest struct {
	Placement string `json:"placement" validate:"required,max=50"`
}

type importResultsRequest struct {
	Rows []importRowRequest `json:"rows" validate:"required,min=1,dive"`
}

type importRowRequest struct {
	AthleteName    string `json:"athleteName" validate:"required,max=200"`
	Placement      string `json:"placement" validate:"required,max=50"`
	CategoryPlayed string `json:"categoryPlayed" validate:"required"`
}

type eventDTO struct {
	ID        string           `json:"id"`
	SeasonID  string           `json:"seasonId"`
	Name      string           `json:"name"`
	StartsAt  string           `json:"startsAt"`
	EndsAt    string           `json:"endsAt,omitempty"`
	Status    string           `json:"status"`
	Override  *scoringTableDTO `json:"override,omitempty"`
	CreatedAt string           `json:"createdAt"`
	UpdatedAt string           `json:"updatedAt"`
}

type resultDTO struct {
	ID             string `json:"id"`
	EventID        string `json:"eventId"`
	AthleteID      string `json:"athleteId"`
	Placement      string `json:"placement"`
	CategoryPlayed string `json:"categoryPlayed"`
	Points         int    `json:"points"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateEvent")
	defer span.End()

	var req createEventRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	startsAt, err := parseTimestamp("startsAt", req.StartsAt)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	endsAt, err := parseTimestamp("endsAt", req.EndsAt)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var override *scoring.Table
	if req.Override != nil {
		table := req.Override.toDomain()
		override = &table
	}

	created, err := h.eventService.Create(ctx, usecase.CreateEventInput{
		SeasonID: req.SeasonID,
		Name:     req.Name,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Override: override,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create event failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventToDTO(created))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEvent")
	defer span.End()

	eventID := r.PathValue("eventID")
	item, err := h.eventService.Get(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "get event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(item))
}

// SetEventOverride replaces or clears the event's scoring override. A null
// override in the payload clears it; results already on the ledger keep the
// points they were written with either way.
func (h *Handler) SetEventOverride(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetEventOverride")
	defer span.End()

	eventID := r.PathValue("eventID")
	var req setOverrideRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var override *scoring.Table
	if req.Override != nil {
		table := req.Override.toDomain()
		override = &table
	}

	if err := h.eventService.SetOverride(ctx, eventID, override); err != nil {
		h.logger.WarnContext(ctx, "set event override failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	item, err := h.eventService.Get(ctx, eventID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(item))
}

func (h *Handler) ListEventResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEventResults")
	defer span.End()

	eventID := r.PathValue("eventID")
	if _, err := h.eventService.Get(ctx, eventID); err != nil {
		writeError(ctx, w, err)
		return
	}

	results, err := h.resultService.ListByEvent(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "list event results failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]resultDTO, 0, len(results))
	for _, item := range results {
		items = append(items, resultToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RecordResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordResult")
	defer span.End()

	eventID := r.PathValue("eventID")
	var req recordResultRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.resultService.Record(ctx, usecase.RecordResultInput{
		EventID:        eventID,
		AthleteID:      req.AthleteID,
		Placement:      req.Placement,
		CategoryPlayed: category.Category(req.CategoryPlayed),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record result failed", "event_id", eventID, "athlete_id", req.AthleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, resultToDTO(created))
}

func (h *Handler) ImportEventResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportEventResults")
	defer span.End()

	eventID := r.PathValue("eventID")
	var req importResultsRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rows := make([]usecase.ImportRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, usecase.ImportRow{
			AthleteName:    row.AthleteName,
			Placement:      row.Placement,
			CategoryPlayed: category.Category(row.CategoryPlayed),
		})
	}

	recorded, err := h.importService.ImportEventResults(ctx, eventID, rows)
	if err != nil {
		h.logger.WarnContext(ctx, "import event results failed", "event_id", eventID, "rows", len(rows), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]resultDTO, 0, len(recorded))
	for _, item := range recorded {
		items = append(items, resultToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusCreated, items)
}

func (h *Handler) EditResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EditResult")
	defer span.End()

	resultID := r.PathValue("resultID")
	var req editResultRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.resultService.Edit(ctx, resultID, req.Placement)
	if err != nil {
		h.logger.WarnContext(ctx, "edit result failed", "result_id", resultID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resultToDTO(updated))
}

func (h *Handler) DeleteResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteResult")
	defer span.End()

	resultID := r.PathValue("resultID")
	if err := h.resultService.Delete(ctx, resultID); err != nil {
		h.logger.WarnContext(ctx, "delete result failed", "result_id", resultID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"deleted": resultID})
}

func eventToDTO(v event.Event) eventDTO {
	endsAt := ""
	if !v.EndsAt.IsZero() {
		endsAt = formatTimestamp(v.EndsAt)
	}
	return eventDTO{
		ID:        v.ID,
		SeasonID:  v.SeasonID,
		Name:      v.Name,
		StartsAt:  formatTimestamp(v.StartsAt),
		EndsAt:    endsAt,
		Status:    string(v.Status),
		Override:  optionalTableToDTO(v.Override),
		CreatedAt: formatTimestamp(v.CreatedAt),
		UpdatedAt: formatTimestamp(v.UpdatedAt),
	}
}

func resultToDTO(v result.Result) resultDTO {
	return resultDTO{
		ID:             v.ID,
		EventID:        v.EventID,
		AthleteID:      v.AthleteID,
		Placement:      v.Placement,
		CategoryPlayed: string(v.CategoryPlayed),
		Points:         v.Points,
		CreatedAt:      formatTimestamp(v.CreatedAt),
		UpdatedAt:      formatTimestamp(v.UpdatedAt),
	}
}
