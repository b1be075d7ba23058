package scoring

import "fmt"

// Tier names one of the six scored placements.
type Tier string

const (
	TierChampion      Tier = "champion"
	TierRunnerUp      Tier = "runner_up"
	TierThird         Tier = "third"
	TierQuarterfinal  Tier = "quarterfinal"
	TierRoundOf16     Tier = "round_of_16"
	TierParticipation Tier = "participation"
)

// Table maps the six tiers to point values. A season carries exactly one
// default table; an event may carry an override that fully replaces the
// default for that event, never a partial one.
type Table struct {
	Champion      int
	RunnerUp      int
	Third         int
	Quarterfinal  int
	RoundOf16     int
	Participation int
}

func (t Table) Value(tier Tier) int {
	switch tier {
	case TierChampion:
		return t.Champion
	case TierRunnerUp:
		return t.RunnerUp
	case TierThird:
		return t.Third
	case TierQuarterfinal:
		return t.Quarterfinal
	case TierRoundOf16:
		return t.RoundOf16
	default:
		return t.Participation
	}
}

func (t Table) Validate() error {
	values := map[Tier]int{
		TierChampion:      t.Champion,
		TierRunnerUp:      t.RunnerUp,
		TierThird:         t.Third,
		TierQuarterfinal:  t.Quarterfinal,
		TierRoundOf16:     t.RoundOf16,
		TierParticipation: t.Participation,
	}
	for tier, value := range values {
		if value < 0 {
			return fmt.Errorf("tier %s has negative points %d", tier, value)
		}
	}
	return nil
}

// DefaultTable is the seed table for new seasons until an admin tunes it.
func DefaultTable() Table {
	return Table{
		Champion:      100,
		RunnerUp:      75,
		Third:         50,
		Quarterfinal:  25,
		RoundOf16:     10,
		Participation: 5,
	}
}
