package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtside/ranking/internal/domain/season"
	qb "github.com/courtside/ranking/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

var _ season.Repository = (*SeasonRepository)(nil)

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) Create(ctx context.Context, s season.Season) error {
	table, err := encodeTable(s.DefaultTable)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("seasons", seasonTableModel{
		ID:           s.ID,
		Year:         s.Year,
		Name:         s.Name,
		StartsAt:     s.StartsAt,
		EndedAt:      s.EndedAt,
		Active:       s.Active,
		DefaultTable: table,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert season query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: season=%s", season.ErrDuplicateID, s.ID)
		}
		return fmt.Errorf("insert season: %w", err)
	}
	return nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("id", seasonID)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season: %w", err)
	}

	out, err := row.toDomain()
	if err != nil {
		return season.Season{}, false, err
	}
	return out, true, nil
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("active", true)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get active season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get active season: %w", err)
	}

	out, err := row.toDomain()
	if err != nil {
		return season.Season{}, false, err
	}
	return out, true, nil
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		OrderBy("year DESC", "starts_at DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list seasons query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Activate holds a table lock for the flip so two concurrent calls cannot
// both observe "no active season" and commit. The partial unique index on
// seasons(active) WHERE active backs the same invariant at the storage level.
func (r *SeasonRepository) Activate(ctx context.Context, seasonID string, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for season activation: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "LOCK TABLE seasons IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return fmt.Errorf("lock seasons table: %w", err)
	}

	deactivate, deactivateArgs, err := qb.Update("seasons").
		Set("active", false).
		Set("updated_at", at).
		Where(
			qb.Eq("active", true),
			qb.Expr("id <> ?", seasonID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build deactivate season query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deactivate, deactivateArgs...); err != nil {
		return fmt.Errorf("deactivate current season: %w", err)
	}

	activate, activateArgs, err := qb.Update("seasons").
		Set("active", true).
		Set("updated_at", at).
		Where(
			qb.Eq("id", seasonID),
			qb.IsNull("ended_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build activate season query: %w", err)
	}
	res, err := tx.ExecContext(ctx, activate, activateArgs...)
	if err != nil {
		return fmt.Errorf("activate season: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("count activated seasons: %w", err)
	} else if affected != 1 {
		return fmt.Errorf("season %s not found or archived", seasonID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit season activation tx: %w", err)
	}
	return nil
}

func (r *SeasonRepository) Archive(ctx context.Context, seasonID string, endedAt time.Time, entries []season.SnapshotEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for season archive: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	closeSeason, closeArgs, err := qb.Update("seasons").
		Set("ended_at", endedAt).
		Set("active", false).
		Set("updated_at", endedAt).
		Where(
			qb.Eq("id", seasonID),
			qb.IsNull("ended_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build close season query: %w", err)
	}
	res, err := tx.ExecContext(ctx, closeSeason, closeArgs...)
	if err != nil {
		return fmt.Errorf("close season: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("count closed seasons: %w", err)
	} else if affected != 1 {
		return fmt.Errorf("season %s not found or already archived", seasonID)
	}

	if len(entries) > 0 {
		builder := qb.InsertInto("ranking_snapshots").Columns(
			"season_id", "athlete_id", "athlete_name", "category",
			"gender", "points", "tournaments_played", "position", "created_at",
		)
		for _, entry := range entries {
			builder = builder.Values(
				entry.SeasonID, entry.AthleteID, entry.AthleteName, string(entry.Category),
				string(entry.Gender), entry.Points, entry.TournamentsPlayed, entry.Position, entry.CreatedAt,
			)
		}
		insert, insertArgs, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert snapshot query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
			return fmt.Errorf("insert snapshot entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit season archive tx: %w", err)
	}
	return nil
}

func (r *SeasonRepository) ListSnapshot(ctx context.Context, seasonID string) ([]season.SnapshotEntry, error) {
	query, args, err := qb.Select("*").From("ranking_snapshots").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("category", "gender", "position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list snapshot query: %w", err)
	}

	var rows []snapshotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list snapshot entries: %w", err)
	}

	out := make([]season.SnapshotEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
