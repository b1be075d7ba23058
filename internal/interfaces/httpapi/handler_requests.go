package httpapi

import (
	"net/http"
	"strings"

	"github.com/courtside/ranking/internal/domain/category"
)

type respondToRequestRequest struct {
	AdminID  string `json:"adminId" validate:"required,max=100"`
	Response string `json:"response" validate:"max=500"`
}

type changeRequestDTO struct {
	ID            string `json:"id"`
	AthleteID     string `json:"athleteId"`
	FromCategory  string `json:"fromCategory"`
	ToCategory    string `json:"toCategory"`
	Reason        string `json:"reason,omitempty"`
	Status        string `json:"status"`
	RequestedAt   string `json:"requestedAt"`
	RespondedAt   string `json:"respondedAt,omitempty"`
	AdminID       string `json:"adminId,omitempty"`
	AdminResponse string `json:"adminResponse,omitempty"`
}

func (h *Handler) ListDemotionRequests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDemotionRequests")
	defer span.End()

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status == "" {
		status = string(category.RequestPending)
	}

	requests, err := h.categoryService.ListRequests(ctx, category.RequestStatus(status))
	if err != nil {
		h.logger.WarnContext(ctx, "list demotion requests failed", "status", status, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]changeRequestDTO, 0, len(requests))
	for _, request := range requests {
		items = append(items, changeRequestToDTO(request))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetDemotionRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDemotionRequest")
	defer span.End()

	requestID := r.PathValue("requestID")
	request, err := h.categoryService.GetRequest(ctx, requestID)
	if err != nil {
		h.logger.WarnContext(ctx, "get demotion request failed", "request_id", requestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, changeRequestToDTO(request))
}

func (h *Handler) ApproveDemotion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveDemotion")
	defer span.End()

	requestID := r.PathValue("requestID")
	var req respondToRequestRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.categoryService.ApproveDemotion(ctx, requestID, req.AdminID, req.Response); err != nil {
		h.logger.WarnContext(ctx, "approve demotion failed", "request_id", requestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	request, err := h.categoryService.GetRequest(ctx, requestID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, changeRequestToDTO(request))
}

func (h *Handler) RejectDemotion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectDemotion")
	defer span.End()

	requestID := r.PathValue("requestID")
	var req respondToRequestRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.categoryService.RejectDemotion(ctx, requestID, req.AdminID, req.Response); err != nil {
		h.logger.WarnContext(ctx, "reject demotion failed", "request_id", requestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	request, err := h.categoryService.GetRequest(ctx, requestID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, changeRequestToDTO(request))
}

func changeRequestToDTO(v category.ChangeRequest) changeRequestDTO {
	return changeRequestDTO{
		ID:            v.ID,
		AthleteID:     v.AthleteID,
		FromCategory:  string(v.FromCategory),
		ToCategory:    string(v.ToCategory),
		Reason:        v.Reason,
		Status:        string(v.Status),
		RequestedAt:   formatTimestamp(v.RequestedAt),
		RespondedAt:   formatOptionalTimestamp(v.RespondedAt),
		AdminID:       v.AdminID,
		AdminResponse: v.AdminResponse,
	}
}
