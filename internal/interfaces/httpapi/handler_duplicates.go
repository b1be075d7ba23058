package httpapi

import (
	"net/http"

	"github.com/courtside/ranking/internal/usecase"
)

type mergeAthletesRequest struct {
	KeepID    string   `json:"keepId" validate:"required"`
	RemoveIDs []string `json:"removeIds" validate:"required,min=1,dive,required"`
}

type clusterDTO struct {
	Anchor  athleteDTO         `json:"anchor"`
	Members []clusterMemberDTO `json:"members"`
}

type clusterMemberDTO struct {
	Athlete athleteDTO `json:"athlete"`
	Score   int        `json:"score"`
}

func (h *Handler) ListDuplicateClusters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDuplicateClusters")
	defer span.End()

	// scope=all ignores the gender partition, catching records whose gender
	// was entered wrong.
	acrossGenders := r.URL.Query().Get("scope") == "all"
	clusters, err := h.duplicateService.DetectClusters(ctx, acrossGenders)
	if err != nil {
		h.logger.ErrorContext(ctx, "detect duplicate clusters failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]clusterDTO, 0, len(clusters))
	for _, cluster := range clusters {
		items = append(items, clusterToDTO(cluster))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) MergeAthletes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MergeAthletes")
	defer span.End()

	var req mergeAthletesRequest
	if err := h.decodeRequest(ctx, r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.duplicateService.Merge(ctx, req.KeepID, req.RemoveIDs); err != nil {
		h.logger.WarnContext(ctx, "merge athletes failed", "keep_id", req.KeepID, "error", err)
		writeError(ctx, w, err)
		return
	}

	kept, err := h.athleteService.Get(ctx, req.KeepID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, athleteToDTO(kept))
}

func clusterToDTO(v usecase.Cluster) clusterDTO {
	members := make([]clusterMemberDTO, 0, len(v.Members))
	for _, member := range v.Members {
		members = append(members, clusterMemberDTO{
			Athlete: athleteToDTO(member.Athlete),
			Score:   member.Score,
		})
	}
	return clusterDTO{
		Anchor:  athleteToDTO(v.Anchor),
		Members: members,
	}
}
