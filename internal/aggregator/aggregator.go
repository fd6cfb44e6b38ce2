package aggregator

import (
	"github.com/pable/aflcorr/internal/model"
)

// Key identifies one aggregated row.
type Key struct {
	Round    int
	Player   string
	Position string // "" when missing
	HasPos   bool
}

func keyOf(o model.Observation) Key {
	k := Key{Round: o.Round, Player: o.Player, HasPos: o.HasPosition}
	if o.HasPosition {
		k.Position = o.Position
	}
	return k
}

// SumDuplicates is the duplicate-row policy: rows sharing a (round, player,
// position) key are collapsed into one by summing each statistic. Missing
// values are excluded from the sum, but a statistic missing in every
// member of the group stays missing.
func SumDuplicates(group []model.Observation, stats []string) model.Observation {
	first := group[0]
	out := model.Observation{
		Round:       first.Round,
		Player:      first.Player,
		Team:        first.Team,
		Position:    first.Position,
		HasPosition: first.HasPosition,
		Stats:       make(map[string]float64, len(stats)),
	}
	for _, stat := range stats {
		var sum float64
		seen := false
		for _, o := range group {
			if v, ok := o.Value(stat); ok {
				sum += v
				seen = true
			}
		}
		if seen {
			out.Stats[stat] = sum
		}
	}
	return out
}

// Aggregate groups rows by (round, player, position) and collapses each
// group with SumDuplicates, keeping only the named statistics. The output
// has exactly one row per distinct key, in first-seen key order.
func Aggregate(rows []model.Observation, stats []string) []model.Observation {
	groups := make(map[Key][]model.Observation)
	var order []Key
	for _, o := range rows {
		k := keyOf(o)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], o)
	}

	out := make([]model.Observation, 0, len(order))
	for _, k := range order {
		out = append(out, SumDuplicates(groups[k], stats))
	}
	return out
}

// Duplicates returns the number of input rows that were folded into another
// row by Aggregate.
func Duplicates(rows []model.Observation) int {
	seen := make(map[Key]struct{}, len(rows))
	dups := 0
	for _, o := range rows {
		k := keyOf(o)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}
