// Package series reshapes aggregated rows into per-player round series and
// applies the availability filter.
package series

import (
	"sort"

	"github.com/pable/aflcorr/internal/model"
)

// Pivot builds one series per player for stat, indexed by round. Every
// player present in rows gets a series, possibly empty. Rounds without a
// value are absent keys. A second row for the same (round, player) means
// aggregation was skipped or broken, and Pivot fails with an
// *model.InvariantError rather than picking one of the values.
func Pivot(rows []model.Observation, stat string) (model.SeriesSet, error) {
	set := model.SeriesSet{Stat: stat, ByPlayer: make(map[string]model.Series)}
	type cell struct {
		round  int
		player string
	}
	seen := make(map[cell]struct{}, len(rows))
	for _, o := range rows {
		c := cell{o.Round, o.Player}
		if _, dup := seen[c]; dup {
			return model.SeriesSet{}, &model.InvariantError{Round: o.Round, Player: o.Player, Stat: stat}
		}
		seen[c] = struct{}{}

		s, ok := set.ByPlayer[o.Player]
		if !ok {
			s = make(model.Series)
			set.ByPlayer[o.Player] = s
		}
		if v, ok := o.Value(stat); ok {
			s[o.Round] = v
		}
	}
	return set, nil
}

// Counts returns the number of non-missing observations per player.
func Counts(set model.SeriesSet) map[string]int {
	out := make(map[string]int, len(set.ByPlayer))
	for p, s := range set.ByPlayer {
		out[p] = s.Count()
	}
	return out
}

// Available returns the players with at least minGames observations, in
// lexical order.
func Available(set model.SeriesSet, minGames int) []string {
	var out []string
	for p, s := range set.ByPlayer {
		if s.Count() >= minGames {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// NonConstant returns the players whose series takes at least two distinct
// values. A constant series has no variance to correlate.
func NonConstant(set model.SeriesSet, players []string) []string {
	var out []string
	for _, p := range players {
		if set.ByPlayer[p].Distinct() > 1 {
			out = append(out, p)
		}
	}
	return out
}

// Filter is the availability filter for one matrix axis.
type Filter struct {
	Team         string
	Axis         model.Axis
	MinGames     int
	DropConstant bool
}

// Apply returns the players of set that pass the filter, in lexical order,
// or an *model.EmptySelectionError when none remain.
func (f Filter) Apply(set model.SeriesSet) ([]string, error) {
	players := Available(set, f.MinGames)
	if f.DropConstant {
		players = NonConstant(set, players)
	}
	if len(players) < 1 {
		return nil, &model.EmptySelectionError{
			Team:      f.Team,
			Stat:      set.Stat,
			Axis:      f.Axis,
			Threshold: f.MinGames,
			Remaining: len(players),
			Need:      1,
		}
	}
	return players, nil
}

// Subset returns a series set restricted to players.
func Subset(set model.SeriesSet, players []string) model.SeriesSet {
	out := model.SeriesSet{Stat: set.Stat, ByPlayer: make(map[string]model.Series, len(players))}
	for _, p := range players {
		if s, ok := set.ByPlayer[p]; ok {
			out.ByPlayer[p] = s
		}
	}
	return out
}
