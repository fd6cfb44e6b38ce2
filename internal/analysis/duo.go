package analysis

import (
	"sort"

	"github.com/pable/aflcorr/internal/corr"
	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/normalize"
)

// DuoRequest asks for the side-by-side series of two players.
type DuoRequest struct {
	Team    string
	Stat    string
	PlayerA string
	PlayerB string
	Rounds  int // season length; 0 means the last observed round
	Method  model.Method
}

// Duo is the per-round comparison of two players on one statistic.
// A[i] and B[i] belong to round i+1 and are only meaningful where OkA[i]
// and OkB[i] hold; a missing round is a gap, never zero.
type Duo struct {
	Team     string
	Stat     string
	Method   model.Method
	PlayerA  string
	PlayerB  string
	A, B     []float64
	OkA, OkB []bool
	Coef     float64 // NaN when fewer than two joint rounds
	Joint    int
}

// BuildDuo reindexes both players onto rounds 1..N and correlates them
// over their jointly observed rounds within that window, so the
// coefficient covers exactly the rounds shown.
func BuildDuo(table *model.Table, req DuoRequest) (*Duo, error) {
	if req.Method == "" {
		req.Method = model.Pearson
	}
	if _, err := corr.FuncFor(req.Method); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, &model.MissingInputError{Path: req.Team}
	}
	set, err := PlayerSeries(table, req.Stat)
	if err != nil {
		return nil, err
	}

	a, b := normalize.Normalize(req.PlayerA), normalize.Normalize(req.PlayerB)
	for _, p := range []string{a, b} {
		if _, ok := set.ByPlayer[p]; !ok {
			return nil, &model.EmptySelectionError{Team: req.Team, Stat: req.Stat, Player: p, Axis: model.AxisBoth, Need: 1}
		}
	}

	n := req.Rounds
	if n <= 0 {
		n = lastRound(set.ByPlayer[a], set.ByPlayer[b])
	}
	d := &Duo{Team: req.Team, Stat: req.Stat, Method: req.Method, PlayerA: a, PlayerB: b}
	if d.Team == "" {
		d.Team = table.Team
	}
	d.A, d.OkA = set.ByPlayer[a].Reindex(n)
	d.B, d.OkB = set.ByPlayer[b].Reindex(n)
	d.Coef, d.Joint, err = corr.Pair(window(set.ByPlayer[a], n), window(set.ByPlayer[b], n), req.Method)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// window returns the rounds of s in 1..n.
func window(s model.Series, n int) model.Series {
	out := make(model.Series, len(s))
	for r, v := range s {
		if r >= 1 && r <= n {
			out[r] = v
		}
	}
	return out
}

func lastRound(series ...model.Series) int {
	var all []int
	for _, s := range series {
		all = append(all, s.Rounds()...)
	}
	if len(all) == 0 {
		return 0
	}
	sort.Ints(all)
	return all[len(all)-1]
}
