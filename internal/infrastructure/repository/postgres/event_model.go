package postgres

import (
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/courtside/ranking/internal/domain/event"
	"github.com/courtside/ranking/internal/domain/scoring"
)

// scoringTableJSON is the jsonb encoding shared by the season default table
// and the per-event override column.
type scoringTableJSON struct {
	Champion      int `json:"champion"`
	RunnerUp      int `json:"runnerUp"`
	Third         int `json:"third"`
	Quarterfinal  int `json:"quarterfinal"`
	RoundOf16     int `json:"roundOf16"`
	Participation int `json:"participation"`
}

func encodeTable(t scoring.Table) ([]byte, error) {
	raw, err := sonic.Marshal(scoringTableJSON{
		Champion:      t.Champion,
		RunnerUp:      t.RunnerUp,
		Third:         t.Third,
		Quarterfinal:  t.Quarterfinal,
		RoundOf16:     t.RoundOf16,
		Participation: t.Participation,
	})
	if err != nil {
		return nil, fmt.Errorf("encode scoring table: %w", err)
	}
	return raw, nil
}

func decodeTable(raw []byte) (scoring.Table, error) {
	var decoded scoringTableJSON
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return scoring.Table{}, fmt.Errorf("decode scoring table: %w", err)
	}
	return scoring.Table{
		Champion:      decoded.Champion,
		RunnerUp:      decoded.RunnerUp,
		Third:         decoded.Third,
		Quarterfinal:  decoded.Quarterfinal,
		RoundOf16:     decoded.RoundOf16,
		Participation: decoded.Participation,
	}, nil
}

type eventTableModel struct {
	ID        string    `db:"id"`
	SeasonID  string    `db:"season_id"`
	Name      string    `db:"name"`
	StartsAt  time.Time `db:"starts_at"`
	EndsAt    time.Time `db:"ends_at"`
	Status    string    `db:"status"`
	Override  []byte    `db:"override"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m eventTableModel) toDomain() (event.Event, error) {
	out := event.Event{
		ID:        m.ID,
		SeasonID:  m.SeasonID,
		Name:      m.Name,
		StartsAt:  m.StartsAt,
		EndsAt:    m.EndsAt,
		Status:    event.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if len(m.Override) > 0 {
		table, err := decodeTable(m.Override)
		if err != nil {
			return event.Event{}, err
		}
		out.Override = &table
	}
	return out, nil
}
