package httpapi

import (
	"net/http"
	"strings"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/usecase"
)

type rankingEntryDTO struct {
	Position          int    `json:"position"`
	AthleteID         string `json:"athleteId"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	Gender            string `json:"gender"`
	Points            int    `json:"points"`
	TournamentsPlayed int    `json:"tournamentsPlayed"`
}

func (h *Handler) ListRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRankings")
	defer span.End()

	cat := strings.TrimSpace(r.URL.Query().Get("category"))
	gender := strings.TrimSpace(r.URL.Query().Get("gender"))

	entries, err := h.rankingService.ListRankings(ctx, category.Category(cat), athlete.Gender(gender))
	if err != nil {
		h.logger.WarnContext(ctx, "list rankings failed", "category", cat, "gender", gender, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]rankingEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, rankingEntryToDTO(entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func rankingEntryToDTO(v usecase.RankingEntry) rankingEntryDTO {
	return rankingEntryDTO{
		Position:          v.Position,
		AthleteID:         v.AthleteID,
		Name:              v.Name,
		Category:          string(v.Category),
		Gender:            string(v.Gender),
		Points:            v.Points,
		TournamentsPlayed: v.TournamentsPlayed,
	}
}
