package postgres

import (
	"time"

	"github.com/courtside/ranking/internal/domain/athlete"
	"github.com/courtside/ranking/internal/domain/category"
)

type athleteTableModel struct {
	ID                string    `db:"id"`
	Name              string    `db:"name"`
	Gender            string    `db:"gender"`
	Category          string    `db:"category"`
	TotalPoints       int       `db:"total_points"`
	TournamentsPlayed int       `db:"tournaments_played"`
	Email             string    `db:"email"`
	Phone             string    `db:"phone"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
	Version           int       `db:"version"`
}

func (m athleteTableModel) toDomain() athlete.Athlete {
	return athlete.Athlete{
		ID:                m.ID,
		Name:              m.Name,
		Gender:            athlete.Gender(m.Gender),
		Category:          category.Category(m.Category),
		TotalPoints:       m.TotalPoints,
		TournamentsPlayed: m.TournamentsPlayed,
		Email:             m.Email,
		Phone:             m.Phone,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Version:           m.Version,
	}
}

func athleteInsertModel(a athlete.Athlete) athleteTableModel {
	return athleteTableModel{
		ID:                a.ID,
		Name:              a.Name,
		Gender:            string(a.Gender),
		Category:          string(a.Category),
		TotalPoints:       a.TotalPoints,
		TournamentsPlayed: a.TournamentsPlayed,
		Email:             a.Email,
		Phone:             a.Phone,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
		Version:           a.Version,
	}
}
