package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/scoring"
	qb "github.com/courtside/ranking/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*EventRepository)(nil)

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e event.Event) error {
	var override []byte
	if e.Override != nil {
		encoded, err := encodeTable(*e.Override)
		if err != nil {
			return err
		}
		override = encoded
	}

	query, args, err := qb.InsertModel("events", eventTableModel{
		ID:        e.ID,
		SeasonID:  e.SeasonID,
		Name:      e.Name,
		StartsAt:  e.StartsAt,
		EndsAt:    e.EndsAt,
		Status:    string(e.Status),
		Override:  override,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert event query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, eventID string) (event.Event, bool, error) {
	query, args, err := qb.Select("*").From("events").
		Where(qb.Eq("id", eventID)).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build get event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("get event: %w", err)
	}

	out, err := row.toDomain()
	if err != nil {
		return event.Event{}, false, err
	}
	return out, true, nil
}

func (r *EventRepository) ListBySeason(ctx context.Context, seasonID string) ([]event.Event, error) {
	query, args, err := qb.Select("*").From("events").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("starts_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list events query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list events by season: %w", err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *EventRepository) SetStatus(ctx context.Context, eventID string, status event.Status) error {
	query, args, err := qb.Update("events").
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", eventID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update event status query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("count updated events: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("event %s not found", eventID)
	}
	return nil
}

func (r *EventRepository) SetOverride(ctx context.Context, eventID string, override *scoring.Table) error {
	var encoded []byte
	if override != nil {
		raw, err := encodeTable(*override)
		if err != nil {
			return err
		}
		encoded = raw
	}

	query, args, err := qb.Update("events").
		Set("override", encoded).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", eventID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update event override query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update event override: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("count updated events: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("event %s not found", eventID)
	}
	return nil
}
