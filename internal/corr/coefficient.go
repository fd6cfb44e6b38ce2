// Package corr computes pairwise-complete correlation matrices between
// player series and the display mask that goes with them.
package corr

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pable/aflcorr/internal/model"
)

// MinJointObservations is the fewest jointly observed rounds for which a
// coefficient is defined.
const MinJointObservations = 2

// ErrUnknownMethod is returned for a method outside model.Methods.
var ErrUnknownMethod = errors.New("unknown correlation method")

// Func computes a coefficient over two equal-length samples. It returns NaN
// when the coefficient is undefined.
type Func func(x, y []float64) float64

// FuncFor returns the coefficient function for method.
func FuncFor(method model.Method) (Func, error) {
	switch method {
	case model.Pearson:
		return PearsonCoef, nil
	case model.Spearman:
		return SpearmanCoef, nil
	case model.Kendall:
		return KendallCoef, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// PearsonCoef is the linear correlation coefficient.
func PearsonCoef(x, y []float64) float64 {
	if len(x) < MinJointObservations || constant(x) || constant(y) {
		return math.NaN()
	}
	return clamp(stat.Correlation(x, y, nil))
}

// SpearmanCoef is the Pearson coefficient of the average ranks.
func SpearmanCoef(x, y []float64) float64 {
	if len(x) < MinJointObservations {
		return math.NaN()
	}
	return PearsonCoef(Ranks(x), Ranks(y))
}

// KendallCoef is Kendall's tau-b, corrected for ties on either side.
func KendallCoef(x, y []float64) float64 {
	n := len(x)
	if n < MinJointObservations {
		return math.NaN()
	}
	var concordant, discordant, tiesX, tiesY float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := sign(x[i] - x[j])
			dy := sign(y[i] - y[j])
			if dx == 0 {
				tiesX++
			}
			if dy == 0 {
				tiesY++
			}
			switch p := dx * dy; {
			case p > 0:
				concordant++
			case p < 0:
				discordant++
			}
		}
	}
	pairs := float64(n*(n-1)) / 2
	denom := math.Sqrt((pairs - tiesX) * (pairs - tiesY))
	if denom == 0 {
		return math.NaN()
	}
	return clamp((concordant - discordant) / denom)
}

// Ranks returns 1-based ranks of x, giving tied values their average rank.
func Ranks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// Paired returns the values of a and b on the rounds observed in both, in
// round order.
func Paired(a, b model.Series) (x, y []float64) {
	for _, r := range a.Rounds() {
		if vb, ok := b[r]; ok {
			x = append(x, a[r])
			y = append(y, vb)
		}
	}
	return x, y
}

// Pair computes the pairwise-complete coefficient of two series and
// returns it with the number of jointly observed rounds.
func Pair(a, b model.Series, method model.Method) (float64, int, error) {
	f, err := FuncFor(method)
	if err != nil {
		return math.NaN(), 0, err
	}
	x, y := Paired(a, b)
	return f(x, y), len(x), nil
}

func constant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(-1, math.Min(1, v))
}
