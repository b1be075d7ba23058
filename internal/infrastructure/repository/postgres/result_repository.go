package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/result"
	qb "github.com/courtside/ranking/internal/platform/querybuilder"
)

type ResultRepository struct {
	db *sqlx.DB
}

var _ result.Repository = (*ResultRepository)(nil)

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) Create(ctx context.Context, item result.Result) error {
	query, args, err := qb.InsertModel("results", resultInsertModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert result query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (r *ResultRepository) GetByID(ctx context.Context, resultID string) (result.Result, bool, error) {
	query, args, err := qb.Select("*").From("results").
		Where(qb.Eq("id", resultID)).
		ToSQL()
	if err != nil {
		return result.Result{}, false, fmt.Errorf("build get result query: %w", err)
	}

	var row resultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return result.Result{}, false, nil
		}
		return result.Result{}, false, fmt.Errorf("get result: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *ResultRepository) UpdatePlacement(ctx context.Context, resultID, placement string, points int) error {
	query, args, err := qb.Update("results").
		Set("placement", placement).
		Set("points", points).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", resultID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update result query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update result placement: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("count updated results: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("result %s not found", resultID)
	}
	return nil
}

func (r *ResultRepository) Delete(ctx context.Context, resultID string) error {
	query, args, err := qb.DeleteFrom("results").
		Where(qb.Eq("id", resultID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete result query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("count deleted results: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("result %s not found", resultID)
	}
	return nil
}

func (r *ResultRepository) ExistsForEventAndAthlete(ctx context.Context, eventID, athleteID string) (bool, error) {
	query, args, err := qb.Select("COUNT(*)").From("results").
		Where(
			qb.Eq("event_id", eventID),
			qb.Eq("athlete_id", athleteID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build count results query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("count results for event and athlete: %w", err)
	}
	return count > 0, nil
}

func (r *ResultRepository) ListByEvent(ctx context.Context, eventID string) ([]result.Result, error) {
	return r.list(ctx, qb.Eq("event_id", eventID))
}

func (r *ResultRepository) ListByAthlete(ctx context.Context, athleteID string) ([]result.Result, error) {
	return r.list(ctx, qb.Eq("athlete_id", athleteID))
}

func (r *ResultRepository) ListQualifying(ctx context.Context, athleteID string, cat category.Category, windowStart time.Time) ([]result.Result, error) {
	query, args, err := qb.Select(
		"r.id", "r.event_id", "r.athlete_id", "r.placement",
		"r.category_played", "r.points", "r.created_at", "r.updated_at",
	).
		From("results r JOIN events e ON e.id = r.event_id").
		Where(
			qb.Eq("r.athlete_id", athleteID),
			qb.Eq("r.category_played", string(cat)),
			qb.Gte("e.starts_at", windowStart),
		).
		OrderBy("r.points DESC", "r.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list qualifying results query: %w", err)
	}

	var rows []resultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list qualifying results: %w", err)
	}

	out := make([]result.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ResultRepository) list(ctx context.Context, condition qb.Condition) ([]result.Result, error) {
	query, args, err := qb.Select("*").From("results").
		Where(condition).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list results query: %w", err)
	}

	var rows []resultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	out := make([]result.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
