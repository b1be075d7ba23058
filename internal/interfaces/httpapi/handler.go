package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/courtside/ranking/internal/domain/scoring"
	"github.com/courtside/ranking/internal/platform/logging"
	"github.com/courtside/ranking/internal/usecase"
)

type Handler struct {
	athleteService   *usecase.AthleteService
	rankingService   *usecase.RankingService
	eventService     *usecase.EventService
	resultService    *usecase.ResultService
	categoryService  *usecase.CategoryService
	seasonService    *usecase.SeasonService
	rolloverService  *usecase.RolloverService
	duplicateService *usecase.DuplicateService
	importService    *usecase.ImportService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	athleteService *usecase.AthleteService,
	rankingService *usecase.RankingService,
	eventService *usecase.EventService,
	resultService *usecase.ResultService,
	categoryService *usecase.CategoryService,
	seasonService *usecase.SeasonService,
	rolloverService *usecase.RolloverService,
	duplicateService *usecase.DuplicateService,
	importService *usecase.ImportService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Handler{
		athleteService:   athleteService,
		rankingService:   rankingService,
		eventService:     eventService,
		resultService:    resultService,
		categoryService:  categoryService,
		seasonService:    seasonService,
		rolloverService:  rolloverService,
		duplicateService: duplicateService,
		importService:    importService,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(ctx context.Context, body io.Reader, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parseTimestamp(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC 3339: %v", usecase.ErrInvalidInput, field, err)
	}
	return parsed, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTimestamp(*t)
}

type scoringTableDTO struct {
	Champion      int `json:"champion" validate:"min=0"`
	RunnerUp      int `json:"runnerUp" validate:"min=0"`
	Third         int `json:"third" validate:"min=0"`
	Quarterfinal  int `json:"quarterfinal" validate:"min=0"`
	RoundOf16     int `json:"roundOf16" validate:"min=0"`
	Participation int `json:"participation" validate:"min=0"`
}

func (d scoringTableDTO) toDomain() scoring.Table {
	return scoring.Table{
		Champion:      d.Champion,
		RunnerUp:      d.RunnerUp,
		Third:         d.Third,
		Quarterfinal:  d.Quarterfinal,
		RoundOf16:     d.RoundOf16,
		Participation: d.Participation,
	}
}

func tableToDTO(t scoring.Table) scoringTableDTO {
	return scoringTableDTO{
		Champion:      t.Champion,
		RunnerUp:      t.RunnerUp,
		Third:         t.Third,
		Quarterfinal:  t.Quarterfinal,
		RoundOf16:     t.RoundOf16,
		Participation: t.Participation,
	}
}

func optionalTableToDTO(t *scoring.Table) *scoringTableDTO {
	if t == nil {
		return nil
	}
	dto := tableToDTO(*t)
	return &dto
}
