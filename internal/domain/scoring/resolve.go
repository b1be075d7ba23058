package scoring

import (
	"strings"

	"github.com/courtside/ranking/internal/platform/textutil"
)

// Placement labels arrive as free-ish text from imports and admin forms, in
// more than one language. Keys are normalized forms (see NormalizePlacement).
var placementAliases = map[string]Tier{
	"champion":       TierChampion,
	"campeao":        TierChampion,
	"1st":            TierChampion,
	"first":          TierChampion,
	"runnerup":       TierRunnerUp,
	"vice":           TierRunnerUp,
	"vicecampeao":    TierRunnerUp,
	"2nd":            TierRunnerUp,
	"second":         TierRunnerUp,
	"third":          TierThird,
	"terceiro":       TierThird,
	"3rd":            TierThird,
	"semifinal":      TierThird,
	"quarterfinal":   TierQuarterfinal,
	"quarterfinals":  TierQuarterfinal,
	"quartas":        TierQuarterfinal,
	"quartasdefinal": TierQuarterfinal,
	"roundof16":      TierRoundOf16,
	"oitavas":        TierRoundOf16,
	"oitavasdefinal": TierRoundOf16,
}

// NormalizePlacement folds case and diacritics and drops everything that is
// not a letter or digit, so "Vice-Campeão" and "vice campeao" compare equal.
func NormalizePlacement(placement string) string {
	stripped := textutil.FoldStripped(placement)
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveTier maps a placement label onto a tier. Unrecognized labels resolve
// to participation on purpose: an unknown placement still counts as having
// played, it just earns the floor value.
func ResolveTier(placement string) Tier {
	if tier, ok := placementAliases[NormalizePlacement(placement)]; ok {
		return tier
	}
	return TierParticipation
}

// Resolve returns the points a placement earns under the season default
// table, or under the event override when one is present. The override
// replaces the default wholesale for that event.
func Resolve(placement string, seasonDefault Table, eventOverride *Table) (int, Tier) {
	table := seasonDefault
	if eventOverride != nil {
		table = *eventOverride
	}
	tier := ResolveTier(placement)
	return table.Value(tier), tier
}
