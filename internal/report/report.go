// Package report writes correlation results as CSV and JSON artifacts and
// prints them as terminal tables.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/aflcorr/internal/analysis"
	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/storage"
)

// Cell glyphs for cells without a displayed coefficient.
const (
	GlyphUndefined = "—"
	GlyphHidden    = "·"
	GlyphDiagonal  = "╲"
)

var (
	cStrongPos = color.New(color.FgGreen, color.Bold)
	cPos       = color.New(color.FgGreen)
	cStrongNeg = color.New(color.FgRed, color.Bold)
	cNeg       = color.New(color.FgRed)
	cWeak      = color.New(color.Faint)
	cWarn      = color.New(color.FgYellow)
	cErr       = color.New(color.FgRed, color.Bold)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// ShortName abbreviates "Jeremy Cameron" to "J.Cameron" for column headers.
func ShortName(player string) string {
	parts := strings.Fields(player)
	if len(parts) < 2 {
		return player
	}
	return string([]rune(parts[0])[0]) + "." + strings.Join(parts[1:], " ")
}

// FormatCoef renders a coefficient with the given decimals, coloured by
// sign and magnitude.
func FormatCoef(v float64, precision int) string {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	switch a := math.Abs(v); {
	case a < 0.2:
		return cWeak.Sprint(s)
	case v >= 0.5:
		return cStrongPos.Sprint(s)
	case v > 0:
		return cPos.Sprint(s)
	case v <= -0.5:
		return cStrongNeg.Sprint(s)
	default:
		return cNeg.Sprint(s)
	}
}

// PrintMatrix prints res as a heatmap table, one row per row player.
func PrintMatrix(w io.Writer, res *model.Result, precision int) {
	m := res.Matrix
	title := m.RowStat
	if !m.SameStat() {
		title = m.RowStat + " vs " + m.ColStat
	}
	fmt.Fprintf(w, "\n%s  |  %s  |  %s  |  min games %d/%d  |  %dx%d\n\n",
		res.Team, title, m.Method, res.MinGamesRow, res.MinGamesCol, len(m.Rows), len(m.Cols))

	table := newTable(w)
	header := make([]any, 0, len(m.Cols)+1)
	header = append(header, "PLAYER")
	for _, c := range m.Cols {
		header = append(header, ShortName(c))
	}
	table.Header(header...)

	for i, label := range m.Rows {
		row := make([]any, 0, len(m.Cols)+1)
		row = append(row, label)
		for j := range m.Cols {
			row = append(row, cellText(res, i, j, precision))
		}
		table.Append(row...)
	}
	table.Render()

	for _, warn := range res.Warnings {
		cWarn.Fprintf(w, "warning: %s\n", warn)
	}
}

func cellText(res *model.Result, i, j, precision int) string {
	if i < len(res.Mask.States) && j < len(res.Mask.States[i]) {
		switch res.Mask.State(i, j) {
		case model.CellDiagonal:
			return GlyphDiagonal
		case model.CellSuppressed:
			return GlyphHidden
		}
	}
	v, ok := res.Matrix.At(i, j)
	if !ok {
		return GlyphUndefined
	}
	return FormatCoef(v, precision)
}

// BatchRow is the outcome of one team in a batch build.
type BatchRow struct {
	Team     string
	Rows     int
	Cols     int
	Undef    int
	RunID    string
	CSVPath  string
	Duration time.Duration
	Err      error
}

// PrintBatch prints one line per team; failures show their error kind.
func PrintBatch(w io.Writer, rows []BatchRow) {
	table := newTable(w)
	table.Header("TEAM", "PLAYERS", "UNDEF", "RUN", "TIME", "RESULT")
	failed := 0
	for _, r := range rows {
		if r.Err != nil {
			failed++
			table.Append(r.Team, "—", "—", "—", r.Duration.Round(time.Millisecond).String(),
				cErr.Sprint(model.Kind(r.Err)+": "+r.Err.Error()))
			continue
		}
		table.Append(
			r.Team,
			fmt.Sprintf("%dx%d", r.Rows, r.Cols),
			strconv.Itoa(r.Undef),
			shortID(r.RunID),
			r.Duration.Round(time.Millisecond).String(),
			r.CSVPath,
		)
	}
	table.Render()
	fmt.Fprintf(w, "\n%d teams, %d failed\n", len(rows), failed)
}

// PrintDuo prints the round-by-round series of two players with gaps.
func PrintDuo(w io.Writer, d *analysis.Duo, precision int) {
	fmt.Fprintf(w, "\n%s  |  %s  |  %s vs %s\n\n", d.Team, d.Stat, d.PlayerA, d.PlayerB)

	table := newTable(w)
	table.Header("ROUND", ShortName(d.PlayerA), ShortName(d.PlayerB))
	for i := range d.A {
		table.Append(strconv.Itoa(i+1), seriesText(d.A[i], d.OkA[i]), seriesText(d.B[i], d.OkB[i]))
	}
	table.Render()

	coef := GlyphUndefined
	if !math.IsNaN(d.Coef) {
		coef = FormatCoef(d.Coef, precision)
	}
	fmt.Fprintf(w, "\n%s = %s over %d joint rounds\n", d.Method, coef, d.Joint)
}

func seriesText(v float64, ok bool) string {
	if !ok {
		return GlyphUndefined
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PrintTeams lists imported team tables.
func PrintTeams(w io.Writer, teams []storage.TeamSummary) {
	table := newTable(w)
	table.Header("TEAM", "ROWS", "PLAYERS", "ROUNDS")
	for _, t := range teams {
		table.Append(t.Team, strconv.Itoa(t.Rows), strconv.Itoa(t.Players), strconv.Itoa(t.Rounds))
	}
	table.Render()
}

// PrintRuns lists stored matrix runs.
func PrintRuns(w io.Writer, runs []storage.RunSummary) {
	table := newTable(w)
	table.Header("ID", "TEAM", "STAT", "METHOD", "MIN", "SIZE", "MASK", "CREATED")
	for _, r := range runs {
		stat := r.RowStat
		if r.ColStat != r.RowStat {
			stat = r.RowStat + " vs " + r.ColStat
		}
		mask := ""
		if r.SuppressLower {
			mask = "lower"
		}
		table.Append(
			shortID(r.ID),
			r.Team,
			stat,
			string(r.Method),
			fmt.Sprintf("%d/%d", r.MinGamesRow, r.MinGamesCol),
			fmt.Sprintf("%dx%d", r.Rows, r.Cols),
			mask,
			r.CreatedAt,
		)
	}
	table.Render()
}

// PrintRaw prints the columns and rows of an ad hoc query.
func PrintRaw(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
