package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courtside/ranking/internal/domain/category"
	qb "github.com/courtside/ranking/internal/platform/querybuilder"
)

type CategoryRepository struct {
	db *sqlx.DB
}

var _ category.Repository = (*CategoryRepository)(nil)

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) OpenEntry(ctx context.Context, athleteID string) (category.HistoryEntry, bool, error) {
	query, args, err := qb.Select("*").From("category_history").
		Where(
			qb.Eq("athlete_id", athleteID),
			qb.IsNull("exited_at"),
		).
		ToSQL()
	if err != nil {
		return category.HistoryEntry{}, false, fmt.Errorf("build get open entry query: %w", err)
	}

	var row historyTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return category.HistoryEntry{}, false, nil
		}
		return category.HistoryEntry{}, false, fmt.Errorf("get open entry: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *CategoryRepository) LatestClosedEntry(ctx context.Context, athleteID string, cat category.Category) (category.HistoryEntry, bool, error) {
	query, args, err := qb.Select("*").From("category_history").
		Where(
			qb.Eq("athlete_id", athleteID),
			qb.Eq("category", string(cat)),
			qb.Expr("exited_at IS NOT NULL"),
		).
		OrderBy("exited_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return category.HistoryEntry{}, false, fmt.Errorf("build latest closed entry query: %w", err)
	}

	var row historyTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return category.HistoryEntry{}, false, nil
		}
		return category.HistoryEntry{}, false, fmt.Errorf("get latest closed entry: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *CategoryRepository) ListHistoryByAthlete(ctx context.Context, athleteID string) ([]category.HistoryEntry, error) {
	query, args, err := qb.Select("*").From("category_history").
		Where(qb.Eq("athlete_id", athleteID)).
		OrderBy("entered_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list history query: %w", err)
	}

	var rows []historyTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list history entries: %w", err)
	}

	out := make([]category.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *CategoryRepository) ApplyTransition(ctx context.Context, transition category.Transition) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for category transition: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	closeEntry, closeArgs, err := qb.Update("category_history").
		Set("points", transition.ClosedPoints).
		Set("exited_at", transition.At).
		Set("exit_reason", string(transition.ExitReason)).
		Where(
			qb.Eq("athlete_id", transition.AthleteID),
			qb.IsNull("exited_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build close open entry query: %w", err)
	}
	res, err := tx.ExecContext(ctx, closeEntry, closeArgs...)
	if err != nil {
		return fmt.Errorf("close open entry: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("count closed entries: %w", err)
	} else if affected != 1 {
		return fmt.Errorf("athlete %s has no open history entry", transition.AthleteID)
	}

	openEntry, openArgs, err := qb.InsertModel("category_history", historyInsertRow{
		ID:        transition.NewEntryID,
		AthleteID: transition.AthleteID,
		Category:  string(transition.To),
		Points:    transition.SeedPoints,
		EnteredAt: transition.At,
	}, "")
	if err != nil {
		return fmt.Errorf("build open entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, openEntry, openArgs...); err != nil {
		return fmt.Errorf("open new entry: %w", err)
	}

	updateAthlete, athleteArgs, err := qb.Update("athletes").
		Set("category", string(transition.To)).
		Set("total_points", transition.SeedPoints).
		SetExpr("version", "version + 1").
		Set("updated_at", transition.At).
		Where(qb.Eq("id", transition.AthleteID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update athlete category query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, updateAthlete, athleteArgs...); err != nil {
		return fmt.Errorf("update athlete category: %w", err)
	}

	if transition.RequestID != "" {
		approve, approveArgs, err := qb.Update("change_requests").
			Set("status", string(category.RequestApproved)).
			Set("responded_at", transition.At).
			Set("admin_id", transition.AdminID).
			Set("admin_response", transition.AdminResponse).
			Where(
				qb.Eq("id", transition.RequestID),
				qb.Eq("status", string(category.RequestPending)),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build approve request query: %w", err)
		}
		res, err := tx.ExecContext(ctx, approve, approveArgs...)
		if err != nil {
			return fmt.Errorf("approve change request: %w", err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("count approved requests: %w", err)
		} else if affected != 1 {
			return fmt.Errorf("change request %s is not pending", transition.RequestID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit category transition tx: %w", err)
	}
	return nil
}

func (r *CategoryRepository) CreateRequest(ctx context.Context, request category.ChangeRequest) error {
	query, args, err := qb.InsertModel("change_requests", requestInsertModel(request), "")
	if err != nil {
		return fmt.Errorf("build insert change request query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: athlete=%s", category.ErrPendingRequestExists, request.AthleteID)
		}
		return fmt.Errorf("insert change request: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetRequest(ctx context.Context, requestID string) (category.ChangeRequest, bool, error) {
	query, args, err := qb.Select("*").From("change_requests").
		Where(qb.Eq("id", requestID)).
		ToSQL()
	if err != nil {
		return category.ChangeRequest{}, false, fmt.Errorf("build get change request query: %w", err)
	}

	var row requestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return category.ChangeRequest{}, false, nil
		}
		return category.ChangeRequest{}, false, fmt.Errorf("get change request: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *CategoryRepository) PendingRequestByAthlete(ctx context.Context, athleteID string) (category.ChangeRequest, bool, error) {
	query, args, err := qb.Select("*").From("change_requests").
		Where(
			qb.Eq("athlete_id", athleteID),
			qb.Eq("status", string(category.RequestPending)),
		).
		ToSQL()
	if err != nil {
		return category.ChangeRequest{}, false, fmt.Errorf("build pending request query: %w", err)
	}

	var row requestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return category.ChangeRequest{}, false, nil
		}
		return category.ChangeRequest{}, false, fmt.Errorf("get pending request: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *CategoryRepository) ListRequestsByStatus(ctx context.Context, status category.RequestStatus) ([]category.ChangeRequest, error) {
	query, args, err := qb.Select("*").From("change_requests").
		Where(qb.Eq("status", string(status))).
		OrderBy("requested_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list change requests query: %w", err)
	}

	var rows []requestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}

	out := make([]category.ChangeRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *CategoryRepository) UpdateRequest(ctx context.Context, request category.ChangeRequest) error {
	builder := qb.Update("change_requests").
		Set("status", string(request.Status)).
		Set("admin_id", request.AdminID).
		Set("admin_response", request.AdminResponse).
		Where(qb.Eq("id", request.ID))
	if request.RespondedAt != nil {
		builder = builder.Set("responded_at", *request.RespondedAt)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build update change request query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update change request: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("count updated requests: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("change request %s not found", request.ID)
	}
	return nil
}
