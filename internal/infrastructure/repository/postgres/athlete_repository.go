package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	qb "github.com/courtside/ranking/internal/platform/querybuilder"
)

type AthleteRepository struct {
	db *sqlx.DB
}

var _ athlete.Repository = (*AthleteRepository)(nil)

func NewAthleteRepository(db *sqlx.DB) *AthleteRepository {
	return &AthleteRepository{db: db}
}

func (r *AthleteRepository) Create(ctx context.Context, a athlete.Athlete, initialEntry category.HistoryEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for athlete create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertAthlete, athleteArgs, err := qb.InsertModel("athletes", athleteInsertModel(a), "")
	if err != nil {
		return fmt.Errorf("build insert athlete query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertAthlete, athleteArgs...); err != nil {
		return fmt.Errorf("insert athlete: %w", err)
	}

	insertEntry, entryArgs, err := qb.InsertModel("category_history", historyInsertModel(initialEntry), "")
	if err != nil {
		return fmt.Errorf("build insert history entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertEntry, entryArgs...); err != nil {
		return fmt.Errorf("insert initial history entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit athlete create tx: %w", err)
	}
	return nil
}

func (r *AthleteRepository) GetByID(ctx context.Context, athleteID string) (athlete.Athlete, bool, error) {
	query, args, err := qb.Select("*").From("athletes").
		Where(qb.Eq("id", athleteID)).
		ToSQL()
	if err != nil {
		return athlete.Athlete{}, false, fmt.Errorf("build get athlete by id query: %w", err)
	}

	var row athleteTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return athlete.Athlete{}, false, nil
		}
		return athlete.Athlete{}, false, fmt.Errorf("get athlete by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *AthleteRepository) GetByName(ctx context.Context, name string) (athlete.Athlete, bool, error) {
	query, args, err := qb.Select("*").From("athletes").
		Where(qb.Expr("btrim(name) = ?", strings.TrimSpace(name))).
		OrderBy("created_at").
		Limit(1).
		ToSQL()
	if err != nil {
		return athlete.Athlete{}, false, fmt.Errorf("build get athlete by name query: %w", err)
	}

	var row athleteTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return athlete.Athlete{}, false, nil
		}
		return athlete.Athlete{}, false, fmt.Errorf("get athlete by name: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *AthleteRepository) List(ctx context.Context) ([]athlete.Athlete, error) {
	query, args, err := qb.Select("*").From("athletes").
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select athletes query: %w", err)
	}

	var rows []athleteTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select athletes: %w", err)
	}

	out := make([]athlete.Athlete, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *AthleteRepository) UpdateStanding(ctx context.Context, athleteID string, totalPoints, tournamentsPlayed, expectedVersion int) error {
	query, args, err := qb.Update("athletes").
		Set("total_points", totalPoints).
		Set("tournaments_played", tournamentsPlayed).
		SetExpr("version", "version + 1").
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("id", athleteID),
			qb.Eq("version", expectedVersion),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update athlete standing query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update athlete standing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("count updated athlete rows: %w", err)
	}
	if affected == 0 {
		return athlete.ErrVersionConflict
	}
	return nil
}

func (r *AthleteRepository) ResetAllStandings(ctx context.Context) (int64, error) {
	const query = `
UPDATE athletes
SET total_points = 0,
    tournaments_played = 0,
    version = version + 1,
    updated_at = NOW()`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("reset athlete standings: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count reset athlete rows: %w", err)
	}
	return affected, nil
}

func (r *AthleteRepository) Merge(ctx context.Context, keepID string, removeIDs []string, closedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for athlete merge: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	absorbed := make([]any, 0, len(removeIDs))
	for _, removeID := range removeIDs {
		absorbed = append(absorbed, removeID)
	}

	// Close the absorbed open entries before reassigning ownership, otherwise
	// the keeper would briefly hold two open entries and trip the partial
	// unique index on category_history(athlete_id) WHERE exited_at IS NULL.
	closeOpen, closeArgs, err := qb.Update("category_history").
		Set("exited_at", closedAt).
		Set("exit_reason", string(category.ExitAdminOverride)).
		Where(
			qb.In("athlete_id", absorbed),
			qb.IsNull("exited_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build close absorbed entries query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, closeOpen, closeArgs...); err != nil {
		return fmt.Errorf("close absorbed open entries: %w", err)
	}

	reassignHistory, historyArgs, err := qb.Update("category_history").
		Set("athlete_id", keepID).
		Where(qb.In("athlete_id", absorbed)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reassign history query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, reassignHistory, historyArgs...); err != nil {
		return fmt.Errorf("reassign history entries: %w", err)
	}

	reassignResults, resultArgs, err := qb.Update("results").
		Set("athlete_id", keepID).
		Where(qb.In("athlete_id", absorbed)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reassign results query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, reassignResults, resultArgs...); err != nil {
		return fmt.Errorf("reassign results: %w", err)
	}

	deleteAthletes, deleteArgs, err := qb.DeleteFrom("athletes").
		Where(qb.In("id", absorbed)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete absorbed athletes query: %w", err)
	}
	res, err := tx.ExecContext(ctx, deleteAthletes, deleteArgs...)
	if err != nil {
		return fmt.Errorf("delete absorbed athletes: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("count deleted athlete rows: %w", err)
	}
	if deleted != int64(len(removeIDs)) {
		return fmt.Errorf("merge deleted %d athletes, expected %d", deleted, len(removeIDs))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit athlete merge tx: %w", err)
	}
	return nil
}
