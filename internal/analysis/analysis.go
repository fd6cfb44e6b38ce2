// Package analysis builds one correlation matrix from a team statistics
// table: normalize, aggregate, pivot, filter each axis, order by position
// and correlate.
package analysis

import (
	"fmt"

	"github.com/pable/aflcorr/internal/aggregator"
	"github.com/pable/aflcorr/internal/corr"
	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/normalize"
	"github.com/pable/aflcorr/internal/position"
	"github.com/pable/aflcorr/internal/series"
)

// DefaultMinGames is the default per-axis availability threshold.
const DefaultMinGames = 12

// MinDistinctPlayers is the fewest distinct players across both axes for
// a meaningful matrix.
const MinDistinctPlayers = 2

// Request is the complete configuration of one invocation. It carries no
// shared state, so independent requests may run concurrently.
type Request struct {
	Team          string
	RowStat       string
	ColStat       string // defaults to RowStat
	MinGamesRow   int    // defaults to DefaultMinGames
	MinGamesCol   int    // defaults to MinGamesRow
	Method        model.Method
	SuppressLower bool // only honoured when the matrix is square
	DropConstant  bool
}

// withDefaults fills unset fields.
func (r Request) withDefaults() Request {
	if r.ColStat == "" {
		r.ColStat = r.RowStat
	}
	if r.MinGamesRow <= 0 {
		r.MinGamesRow = DefaultMinGames
	}
	if r.MinGamesCol <= 0 {
		r.MinGamesCol = r.MinGamesRow
	}
	if r.Method == "" {
		r.Method = model.Pearson
	}
	return r
}

// Validate reports configuration errors that make the request meaningless.
func (r Request) Validate() error {
	r = r.withDefaults()
	if r.RowStat == "" {
		return fmt.Errorf("%w: statistic name is required", model.ErrSchemaViolation)
	}
	if _, err := corr.FuncFor(r.Method); err != nil {
		return err
	}
	return nil
}

// SameStat reports whether both axes use the same statistic.
func (r Request) SameStat() bool {
	r = r.withDefaults()
	return r.RowStat == r.ColStat
}

// Build produces the ordered matrix and display mask for req over table.
// Any violated precondition aborts the whole build; a partially filled
// matrix is never returned.
func Build(table *model.Table, req Request) (*model.Result, error) {
	req = req.withDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, &model.MissingInputError{Path: req.Team}
	}
	if err := table.Require(model.ColRound, model.ColPlayer, model.ColPosition, req.RowStat, req.ColStat); err != nil {
		return nil, err
	}

	res := &model.Result{
		Team:        req.Team,
		MinGamesRow: req.MinGamesRow,
		MinGamesCol: req.MinGamesCol,
	}
	if res.Team == "" {
		res.Team = table.Team
	}

	rows := Normalized(table.Rows)
	agg := aggregator.Aggregate(rows, uniqueStats(req.RowStat, req.ColStat))

	rowSet, err := series.Pivot(agg, req.RowStat)
	if err != nil {
		return nil, err
	}
	colSet := rowSet
	if !req.SameStat() {
		if colSet, err = series.Pivot(agg, req.ColStat); err != nil {
			return nil, err
		}
	}

	rowPlayers, err := series.Filter{Team: res.Team, Axis: model.AxisRow, MinGames: req.MinGamesRow, DropConstant: req.DropConstant}.Apply(rowSet)
	if err != nil {
		return nil, err
	}
	colPlayers, err := series.Filter{Team: res.Team, Axis: model.AxisCol, MinGames: req.MinGamesCol, DropConstant: req.DropConstant}.Apply(colSet)
	if err != nil {
		return nil, err
	}
	if n := distinct(rowPlayers, colPlayers); n < MinDistinctPlayers {
		return nil, &model.EmptySelectionError{
			Team:      res.Team,
			Stat:      statLabel(req),
			Axis:      model.AxisBoth,
			Threshold: req.MinGamesRow,
			Remaining: n,
			Need:      MinDistinctPlayers,
		}
	}

	ranker := position.NewRanker(rows, append(append([]string(nil), rowPlayers...), colPlayers...))
	rowAxis := corr.Axis{Set: series.Subset(rowSet, rowPlayers), Order: ranker.Sort(rowPlayers)}
	colAxis := corr.Axis{Set: series.Subset(colSet, colPlayers), Order: ranker.Sort(colPlayers)}

	m, err := corr.Build(rowAxis, colAxis, req.Method)
	if err != nil {
		return nil, err
	}

	suppress := req.SuppressLower
	if suppress && !m.Square() {
		suppress = false
		if m.SameStat() {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("mask-lower ignored: %s rows and columns differ (%dx%d)", req.RowStat, len(m.Rows), len(m.Cols)))
		} else {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("mask-lower ignored: %s vs %s is a cross-statistic matrix", req.RowStat, req.ColStat))
		}
	}
	mask, err := corr.NewMask(&m, suppress)
	if err != nil {
		return nil, err
	}

	res.Matrix = m
	res.Mask = mask
	res.SuppressLower = suppress
	return res, nil
}

// Normalized returns a copy of rows with player, team and position labels
// normalized. A position that normalizes to empty is treated as missing.
func Normalized(rows []model.Observation) []model.Observation {
	out := make([]model.Observation, len(rows))
	for i, o := range rows {
		o.Player = normalize.Normalize(o.Player)
		o.Team = normalize.Normalize(o.Team)
		if o.HasPosition {
			o.Position = normalize.Normalize(o.Position)
			o.HasPosition = o.Position != ""
		}
		if !o.HasPosition {
			o.Position = ""
		}
		out[i] = o
	}
	return out
}

// PlayerSeries runs the normalize, aggregate and pivot steps for a single
// statistic, for callers that look at individual players.
func PlayerSeries(table *model.Table, stat string) (model.SeriesSet, error) {
	if err := table.Require(model.ColRound, model.ColPlayer, stat); err != nil {
		return model.SeriesSet{}, err
	}
	agg := aggregator.Aggregate(Normalized(table.Rows), []string{stat})
	return series.Pivot(agg, stat)
}

func uniqueStats(a, b string) []string {
	if a == b {
		return []string{a}
	}
	return []string{a, b}
}

func distinct(a, b []string) int {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, p := range a {
		seen[p] = struct{}{}
	}
	for _, p := range b {
		seen[p] = struct{}{}
	}
	return len(seen)
}

func statLabel(req Request) string {
	if req.RowStat == req.ColStat {
		return req.RowStat
	}
	return req.RowStat + " vs " + req.ColStat
}
