package httpapi

import (
	"net/http"

	"github.com/courtside/ranking/internal/domain/scoring"
	"github.com/courtside/ranking/internal/domain/season"
	"github.com/courtside/ranking/internal/usecase"
)

type createSeasonRequest struct {
	Year         int              `json:"year" validate:"required,min=1900"`
	Name         string           `json:"name" validate:"required,max=200"`
	StartsAt     string           `json:"startsAt" validate:"required"`
	DefaultTable *scoringTableDTO `json:"defaultTable"`
}

type seasonDTO struct {
	ID           string          `json:"id"`
	Year         int             `json:"year"`
	Name         string          `json:"name"`
	StartsAt     string          `json:"startsAt"`
	EndedAt      string          `json:"endedAt,omitempty"`
	Active       bool            `json:"active"`
	DefaultTable scoringTableDTO `json:"defaultTable"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}

type snapshotEntryDTO struct {
	SeasonID          string `json:"seasonId"`
	AthleteID         string `json:"athleteId"`
	AthleteName       string `json:"athleteName"`
	Category          string `json:"category"`
	Gender            string `json:"gender"`
	Points            int    `json:"points"`
	TournamentsPlayed int    `json:"tournamentsPlayed"`
	Position          int    `json:"position"`
}

func (h *Handler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSeason")
	defer span.End()

	var req createSeasonRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	startsAt, err := parseTimestamp("startsAt", req.StartsAt)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var table *scoring.Table
	if req.DefaultTable != nil {
		domainTable := req.DefaultTable.toDomain()
		table = &domainTable
	}

	created, err := h.seasonService.Create(ctx, usecase.CreateSeasonInput{
		Year:         req.Year,
		Name:         req.Name,
		StartsAt:     startsAt,
		DefaultTable: table,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create season failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, seasonToDTO(created))
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	seasons, err := h.seasonService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list seasons failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonDTO, 0, len(seasons))
	for _, item := range seasons {
		items = append(items, seasonToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetActiveSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveSeason")
	defer span.End()

	item, err := h.seasonService.GetActive(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get active season failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeason")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	item, err := h.seasonService.Get(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) ListSeasonEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasonEvents")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	if _, err := h.seasonService.Get(ctx, seasonID); err != nil {
		writeError(ctx, w, err)
		return
	}

	events, err := h.eventService.ListBySeason(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "list season events failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]eventDTO, 0, len(events))
	for _, item := range events {
		items = append(items, eventToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ActivateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ActivateSeason")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	if err := h.seasonService.Activate(ctx, seasonID); err != nil {
		h.logger.WarnContext(ctx, "activate season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	item, err := h.seasonService.Get(ctx, seasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) ArchiveSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ArchiveSeason")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	if err := h.seasonService.Archive(ctx, seasonID); err != nil {
		h.logger.WarnContext(ctx, "archive season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	item, err := h.seasonService.Get(ctx, seasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) ListSeasonSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasonSnapshot")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	entries, err := h.seasonService.ListSnapshot(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "list season snapshot failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]snapshotEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, snapshotEntryToDTO(entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ResetAllPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetAllPoints")
	defer span.End()

	affected, err := h.seasonService.ResetAllPoints(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "reset all points failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int64{"athletesReset": affected})
}

func (h *Handler) RecomputeAllTotals(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeAllTotals")
	defer span.End()

	recomputed, err := h.rankingService.RecomputeAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "recompute all totals failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"athletesRecomputed": recomputed})
}

func seasonToDTO(v season.Season) seasonDTO {
	return seasonDTO{
		ID:           v.ID,
		Year:         v.Year,
		Name:         v.Name,
		StartsAt:     formatTimestamp(v.StartsAt),
		EndedAt:      formatOptionalTimestamp(v.EndedAt),
		Active:       v.Active,
		DefaultTable: tableToDTO(v.DefaultTable),
		CreatedAt:    formatTimestamp(v.CreatedAt),
		UpdatedAt:    formatTimestamp(v.UpdatedAt),
	}
}

func snapshotEntryToDTO(v season.SnapshotEntry) snapshotEntryDTO {
	return snapshotEntryDTO{
		SeasonID:          v.SeasonID,
		AthleteID:         v.AthleteID,
		AthleteName:       v.AthleteName,
		Category:          string(v.Category),
		Gender:            string(v.Gender),
		Points:            v.Points,
		TournamentsPlayed: v.TournamentsPlayed,
		Position:          v.Position,
	}
}
