package postgres

import (
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
	"github.com/courtside/ranking/internal/domain/season"
)

type seasonTableModel struct {
	ID           string     `db:"id"`
	Year         int        `db:"year"`
	Name         string     `db:"name"`
	StartsAt     time.Time  `db:"starts_at"`
	EndedAt      *time.Time `db:"ended_at"`
	Active       bool       `db:"active"`
	DefaultTable []byte     `db:"default_table"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (m seasonTableModel) toDomain() (season.Season, error) {
	table, err := decodeTable(m.DefaultTable)
	if err != nil {
		return season.Season{}, err
	}
	return season.Season{
		ID:           m.ID,
		Year:         m.Year,
		Name:         m.Name,
		StartsAt:     m.StartsAt,
		EndedAt:      m.EndedAt,
		Active:       m.Active,
		DefaultTable: table,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

type snapshotTableModel struct {
	SeasonID          string    `db:"season_id"`
	AthleteID         string    `db:"athlete_id"`
	AthleteName       string    `db:"athlete_name"`
	Category          string    `db:"category"`
	Gender            string    `db:"gender"`
	Points            int       `db:"points"`
	TournamentsPlayed int       `db:"tournaments_played"`
	Position          int       `db:"position"`
	CreatedAt         time.Time `db:"created_at"`
}

func (m snapshotTableModel) toDomain() season.SnapshotEntry {
	return season.SnapshotEntry{
		SeasonID:          m.SeasonID,
		AthleteID:         m.AthleteID,
		AthleteName:       m.AthleteName,
		Category:          category.Category(m.Category),
		Gender:            athlete.Gender(m.Gender),
		Points:            m.Points,
		TournamentsPlayed: m.TournamentsPlayed,
		Position:          m.Position,
		CreatedAt:         m.CreatedAt,
	}
}
