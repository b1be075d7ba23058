package postgres

import (
	"time"

	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/result"
)

type resultTableModel struct {
	ID             string    `db:"id"`
	EventID        string    `db:"event_id"`
	AthleteID      string    `db:"athlete_id"`
	Placement      string    `db:"placement"`
	CategoryPlayed string    `db:"category_played"`
	Points         int       `db:"points"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m resultTableModel) toDomain() result.Result {
	return result.Result{
		ID:             m.ID,
		EventID:        m.EventID,
		AthleteID:      m.AthleteID,
		Placement:      m.Placement,
		CategoryPlayed: category.Category(m.CategoryPlayed),
		Points:         m.Points,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func resultInsertModel(item result.Result) resultTableModel {
	return resultTableModel{
		ID:             item.ID,
		EventID:        item.EventID,
		AthleteID:      item.AthleteID,
		Placement:      item.Placement,
		CategoryPlayed: string(item.CategoryPlayed),
		Points:         item.Points,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}
