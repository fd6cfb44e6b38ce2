package model

import (
	"math"
	"sort"
	"strings"
)

// Fixed column names of a team statistics table.
const (
	ColRound    = "Round"
	ColPlayer   = "Player"
	ColTeam     = "Team"
	ColPosition = "Position"
)

// Method selects the correlation coefficient computed for every cell.
type Method string

const (
	Pearson  Method = "pearson"
	Spearman Method = "spearman"
	Kendall  Method = "kendall"
)

// Methods lists the supported correlation methods.
var Methods = []Method{Pearson, Spearman, Kendall}

// ParseMethod resolves a case-insensitive method name.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

func (m Method) String() string { return string(m) }

// ---- Input table ----

// Observation is one (round, player) row of a team statistics table.
// A statistic that is absent from Stats is missing for that row.
type Observation struct {
	Round       int
	Player      string
	Team        string
	Position    string
	HasPosition bool
	Stats       map[string]float64
}

// Value returns the statistic value and whether it is present.
// NaN values count as missing.
func (o Observation) Value(stat string) (float64, bool) {
	v, ok := o.Stats[stat]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Table is a team statistics table: one row per (round, player) plus
// arbitrary named numeric statistic columns. Rows keep source order.
type Table struct {
	Team    string
	Source  string // path or key the table was loaded from
	Columns []string
	Rows    []Observation
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Require checks that every named column is present and returns a
// *SchemaError listing exactly the absent ones.
func (t *Table) Require(cols ...string) error {
	var missing []string
	seen := make(map[string]bool)
	for _, c := range cols {
		if seen[c] {
			continue
		}
		seen[c] = true
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &SchemaError{Source: t.Source, Missing: missing}
}

// StatColumns returns the columns that are not one of the fixed key columns.
func (t *Table) StatColumns() []string {
	var out []string
	for _, c := range t.Columns {
		switch c {
		case ColRound, ColPlayer, ColTeam, ColPosition:
			continue
		}
		out = append(out, c)
	}
	return out
}

// Players returns the distinct player names in first-seen order.
func (t *Table) Players() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Rows {
		if !seen[r.Player] {
			seen[r.Player] = true
			out = append(out, r.Player)
		}
	}
	return out
}

// ---- Series ----

// Series maps round number to a single value for one player and one
// statistic. A round with no observation is an absent key, never zero.
type Series map[int]float64

// Count returns the number of observed rounds.
func (s Series) Count() int { return len(s) }

// Rounds returns the observed rounds in ascending order.
func (s Series) Rounds() []int {
	out := make([]int, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// Distinct returns the number of distinct observed values.
func (s Series) Distinct() int {
	vals := make(map[float64]struct{}, len(s))
	for _, v := range s {
		vals[v] = struct{}{}
	}
	return len(vals)
}

// Reindex returns the values for rounds 1..n; ok[i] is false where round
// i+1 has no observation.
func (s Series) Reindex(n int) (vals []float64, ok []bool) {
	vals = make([]float64, n)
	ok = make([]bool, n)
	for i := 0; i < n; i++ {
		if v, found := s[i+1]; found {
			vals[i], ok[i] = v, true
		}
	}
	return vals, ok
}

// SeriesSet holds one series per player for a single statistic.
type SeriesSet struct {
	Stat     string
	ByPlayer map[string]Series
}

// Players returns the player names in lexical order.
func (s SeriesSet) Players() []string {
	out := make([]string, 0, len(s.ByPlayer))
	for p := range s.ByPlayer {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ---- Output ----

// Matrix is a rows x cols grid of correlation coefficients. Undefined
// cells hold NaN. A Matrix is never mutated after construction.
type Matrix struct {
	RowStat string
	ColStat string
	Method  Method
	Rows    []string
	Cols    []string
	Values  [][]float64
}

// SameStat reports whether both axes describe the same statistic.
func (m *Matrix) SameStat() bool { return m.RowStat == m.ColStat }

// Square reports whether the matrix is a same-statistic matrix whose row
// and column players are identical and in the same order. Per-axis
// thresholds can make a same-statistic matrix rectangular.
func (m *Matrix) Square() bool {
	if !m.SameStat() || len(m.Rows) != len(m.Cols) {
		return false
	}
	for i := range m.Rows {
		if m.Rows[i] != m.Cols[i] {
			return false
		}
	}
	return true
}

// At returns the coefficient at (i, j) and whether it is defined.
func (m *Matrix) At(i, j int) (float64, bool) {
	v := m.Values[i][j]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Undefined counts the cells that hold no coefficient.
func (m *Matrix) Undefined() int {
	n := 0
	for _, row := range m.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// CellState classifies a matrix cell for display.
type CellState uint8

const (
	CellVisible    CellState = iota
	CellDiagonal             // self-correlation, not applicable
	CellSuppressed           // redundant half, hidden from display
)

func (c CellState) String() string {
	switch c {
	case CellDiagonal:
		return "diagonal"
	case CellSuppressed:
		return "suppressed"
	default:
		return "visible"
	}
}

// Mask holds one CellState per matrix cell.
type Mask struct {
	States [][]CellState
}

// Hidden returns the boolean display mask: true for suppressed cells.
func (m Mask) Hidden() [][]bool {
	out := make([][]bool, len(m.States))
	for i, row := range m.States {
		out[i] = make([]bool, len(row))
		for j, s := range row {
			out[i][j] = s == CellSuppressed
		}
	}
	return out
}

// Diagonal returns true for cells that are not applicable.
func (m Mask) Diagonal() [][]bool {
	out := make([][]bool, len(m.States))
	for i, row := range m.States {
		out[i] = make([]bool, len(row))
		for j, s := range row {
			out[i][j] = s == CellDiagonal
		}
	}
	return out
}

// State returns the state of cell (i, j).
func (m Mask) State(i, j int) CellState { return m.States[i][j] }

// Result is the complete output of one matrix build: the numeric matrix,
// its display mask, the axis ordering, and the request context needed to
// name and render it.
type Result struct {
	Team          string
	Matrix        Matrix
	Mask          Mask
	MinGamesRow   int
	MinGamesCol   int
	SuppressLower bool // true only when the lower triangle was actually masked
	Warnings      []string
}
