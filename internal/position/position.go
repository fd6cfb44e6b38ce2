// Package position orders players by their on-field role.
package position

import (
	"sort"
	"strings"

	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/normalize"
)

// Order is the fixed ordinal list of position categories, forward to back.
var Order = []string{
	"Key Forward",
	"Gen. Forward",
	"Mid-Forward",
	"Midfielder",
	"Ruck",
	"Gen. Defender",
	"Key Defender",
}

// UnknownRank is the rank of a player whose position is missing or not in
// Order. It sorts after every listed position.
var UnknownRank = len(Order)

var rankByName = func() map[string]int {
	m := make(map[string]int, len(Order))
	for i, p := range Order {
		m[normalize.Normalize(p)] = i
	}
	return m
}()

// Rank returns the rank of a (possibly missing) position label.
func Rank(pos string, ok bool) int {
	if !ok {
		return UnknownRank
	}
	if r, found := rankByName[normalize.Normalize(pos)]; found {
		return r
	}
	return UnknownRank
}

// FirstObservedPosition is the representative-position policy: a player's
// position is the first non-missing value in source row order. Later,
// different values are ignored; this tie-break is arbitrary but defined.
func FirstObservedPosition(rows []model.Observation, players []string) map[string]string {
	want := make(map[string]bool, len(players))
	for _, p := range players {
		want[p] = true
	}
	out := make(map[string]string, len(players))
	for _, r := range rows {
		if !want[r.Player] || !r.HasPosition {
			continue
		}
		if _, done := out[r.Player]; !done {
			out[r.Player] = r.Position
		}
	}
	return out
}

// Key is a player's sort key: rank ascending, then lowercase name.
type Key struct {
	Rank int
	Name string
}

// Less orders keys by rank, then lowercase name.
func (k Key) Less(o Key) bool {
	if k.Rank != o.Rank {
		return k.Rank < o.Rank
	}
	return k.Name < o.Name
}

// Ranker maps players to their sort key.
type Ranker struct {
	positions map[string]string
}

// NewRanker resolves each player's representative position from rows.
func NewRanker(rows []model.Observation, players []string) *Ranker {
	return &Ranker{positions: FirstObservedPosition(rows, players)}
}

// Position returns the representative position and whether one was observed.
func (r *Ranker) Position(player string) (string, bool) {
	p, ok := r.positions[player]
	return p, ok
}

// Key returns the sort key for player.
func (r *Ranker) Key(player string) Key {
	pos, ok := r.positions[player]
	return Key{Rank: Rank(pos, ok), Name: strings.ToLower(player)}
}

// Sort returns a copy of players ordered by Key. The original name breaks
// ties between names that differ only in case, so the order is total.
func (r *Ranker) Sort(players []string) []string {
	out := append([]string(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := r.Key(out[i]), r.Key(out[j])
		if ki != kj {
			return ki.Less(kj)
		}
		return out[i] < out[j]
	})
	return out
}
