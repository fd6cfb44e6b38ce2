package corr

import (
	"errors"
	"math"

	"github.com/pable/aflcorr/internal/model"
)

// ErrRectangularMask is returned when triangular suppression is requested for
// a cross-statistic matrix, whose axes are not interchangeable.
var ErrRectangularMask = errors.New("triangular mask requested for a rectangular matrix")

// Axis is one side of a matrix: a series set and its display order.
type Axis struct {
	Set   model.SeriesSet
	Order []string
}

// Build computes a rows x cols matrix of pairwise-complete coefficients.
// Each cell uses only rounds observed for both players; fewer than
// MinJointObservations leaves the cell NaN. When both axes carry the same
// statistic the diagonal is NaN by convention and never computed.
func Build(rows, cols Axis, method model.Method) (model.Matrix, error) {
	f, err := FuncFor(method)
	if err != nil {
		return model.Matrix{}, err
	}

	m := model.Matrix{
		RowStat: rows.Set.Stat,
		ColStat: cols.Set.Stat,
		Method:  method,
		Rows:    append([]string(nil), rows.Order...),
		Cols:    append([]string(nil), cols.Order...),
		Values:  make([][]float64, len(rows.Order)),
	}
	sameStat := m.SameStat()

	rowIndex := make(map[string]int, len(rows.Order))
	for i, p := range rows.Order {
		rowIndex[p] = i
	}
	colIndex := make(map[string]int, len(cols.Order))
	for j, p := range cols.Order {
		colIndex[p] = j
	}

	for i, rp := range rows.Order {
		m.Values[i] = make([]float64, len(cols.Order))
		for j, cp := range cols.Order {
			if sameStat && rp == cp {
				m.Values[i][j] = math.NaN()
				continue
			}
			// Reuse the mirrored cell when it was already computed so the
			// same-statistic matrix is exactly symmetric.
			if sameStat {
				ri, rok := rowIndex[cp]
				ci, cok := colIndex[rp]
				if rok && cok && ri < i {
					m.Values[i][j] = m.Values[ri][ci]
					continue
				}
			}
			x, y := Paired(rows.Set.ByPlayer[rp], cols.Set.ByPlayer[cp])
			m.Values[i][j] = f(x, y)
		}
	}
	return m, nil
}

// NewMask classifies every cell of m. In the same-statistic case cells
// pairing a player with itself are not applicable. When suppressLower is
// set the strictly lower triangle (row > col) of a square matrix is
// hidden. Requesting suppression for a rectangular matrix, including a
// same-statistic one with differing axes, is an error.
func NewMask(m *model.Matrix, suppressLower bool) (model.Mask, error) {
	if suppressLower && !m.Square() {
		return model.Mask{}, ErrRectangularMask
	}
	states := make([][]model.CellState, len(m.Rows))
	for i := range m.Rows {
		states[i] = make([]model.CellState, len(m.Cols))
		if !m.SameStat() {
			continue
		}
		for j := range m.Cols {
			switch {
			case m.Rows[i] == m.Cols[j]:
				states[i][j] = model.CellDiagonal
			case suppressLower && i > j:
				states[i][j] = model.CellSuppressed
			}
		}
	}
	return model.Mask{States: states}, nil
}
