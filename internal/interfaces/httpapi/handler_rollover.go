package httpapi

import (
	"net/http"

	"github.com/courtside/ranking/internal/domain/scoring"
	"github.com/courtside/ranking/internal/usecase"
)

type rolloverDTO struct {
	ID           string `json:"id"`
	OldSeasonID  string `json:"oldSeasonId"`
	NextSeasonID string `json:"nextSeasonId,omitempty"`
	Step         string `json:"step"`
	StartedAt    string `json:"startedAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func (h *Handler) BeginRollover(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BeginRollover")
	defer span.End()

	state, err := h.rolloverService.Begin(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "begin rollover failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, rolloverToDTO(state))
}

func (h *Handler) RolloverArchiveOld(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RolloverArchiveOld")
	defer span.End()

	state, err := h.rolloverService.ArchiveOld(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "rollover archive failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rolloverToDTO(state))
}

func (h *Handler) RolloverCreateNext(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RolloverCreateNext")
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

	state, err := h.rolloverService.CreateNext(ctx, usecase.CreateSeasonInput{
		Year:         req.Year,
		Name:         req.Name,
		StartsAt:     startsAt,
		DefaultTable: table,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "rollover create next failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rolloverToDTO(state))
}

func (h *Handler) RolloverResetPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RolloverResetPoints")
	defer span.End()

	state, err := h.rolloverService.ResetPoints(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "rollover reset points failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rolloverToDTO(state))
}

func (h *Handler) RolloverActivateNext(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RolloverActivateNext")
	defer span.End()

	state, err := h.rolloverService.ActivateNext(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "rollover activate next failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rolloverToDTO(state))
}

func (h *Handler) RolloverStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RolloverStatus")
	defer span.End()

	state, active := h.rolloverService.Status()
	if !active {
		writeSuccess(ctx, w, http.StatusOK, nil)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rolloverToDTO(state))
}

func rolloverToDTO(v usecase.Rollover) rolloverDTO {
	return rolloverDTO{
		ID:           v.ID,
		OldSeasonID:  v.OldSeasonID,
		NextSeasonID: v.NextSeasonID,
		Step:         string(v.Step),
		StartedAt:    formatTimestamp(v.StartedAt),
		UpdatedAt:    formatTimestamp(v.UpdatedAt),
	}
}
