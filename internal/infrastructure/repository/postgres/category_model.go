package postgres

import (
	"database/sql"
	"time"

	"github.com/courtside/ranking/internal/domain/category"
)

type historyTableModel struct {
	ID         string         `db:"id"`
	AthleteID  string         `db:"athlete_id"`
	Category   string         `db:"category"`
	Points     int            `db:"points"`
	EnteredAt  time.Time      `db:"entered_at"`
	ExitedAt   *time.Time     `db:"exited_at"`
	ExitReason sql.NullString `db:"exit_reason"`
}

func (m historyTableModel) toDomain() category.HistoryEntry {
	return category.HistoryEntry{
		ID:         m.ID,
		AthleteID:  m.AthleteID,
		Category:   category.Category(m.Category),
		Points:     m.Points,
		EnteredAt:  m.EnteredAt,
		ExitedAt:   m.ExitedAt,
		ExitReason: category.ExitReason(m.ExitReason.String),
	}
}

type historyInsertRow struct {
	ID        string    `db:"id"`
	AthleteID string    `db:"athlete_id"`
	Category  string    `db:"category"`
	Points    int       `db:"points"`
	EnteredAt time.Time `db:"entered_at"`
}

func historyInsertModel(e category.HistoryEntry) historyInsertRow {
	return historyInsertRow{
		ID:        e.ID,
		AthleteID: e.AthleteID,
		Category:  string(e.Category),
		Points:    e.Points,
		EnteredAt: e.EnteredAt,
	}
}

type requestTableModel struct {
	ID            string         `db:"id"`
	AthleteID     string         `db:"athlete_id"`
	FromCategory  string         `db:"from_category"`
	ToCategory    string         `db:"to_category"`
	Reason        string         `db:"reason"`
	Status        string         `db:"status"`
	RequestedAt   time.Time      `db:"requested_at"`
	RespondedAt   *time.Time     `db:"responded_at"`
	AdminID       sql.NullString `db:"admin_id"`
	AdminResponse sql.NullString `db:"admin_response"`
}

func (m requestTableModel) toDomain() category.ChangeRequest {
	return category.ChangeRequest{
		ID:            m.ID,
		AthleteID:     m.AthleteID,
		FromCategory:  category.Category(m.FromCategory),
		ToCategory:    category.Category(m.ToCategory),
		Reason:        m.Reason,
		Status:        category.RequestStatus(m.Status),
		RequestedAt:   m.RequestedAt,
		RespondedAt:   m.RespondedAt,
		AdminID:       m.AdminID.String,
		AdminResponse: m.AdminResponse.String,
	}
}

type requestInsertRow struct {
	ID           string    `db:"id"`
	AthleteID    string    `db:"athlete_id"`
	FromCategory string    `db:"from_category"`
	ToCategory   string    `db:"to_category"`
	Reason       string    `db:"reason"`
	Status       string    `db:"status"`
	RequestedAt  time.Time `db:"requested_at"`
}

func requestInsertModel(request category.ChangeRequest) requestInsertRow {
	return requestInsertRow{
		ID:           request.ID,
		AthleteID:    request.AthleteID,
		FromCategory: string(request.FromCategory),
		ToCategory:   string(request.ToCategory),
		Reason:       request.Reason,
		Status:       string(request.Status),
		RequestedAt:  request.RequestedAt,
	}
}
