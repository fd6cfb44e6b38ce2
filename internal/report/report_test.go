package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/pable/aflcorr/internal/analysis"
	"github.com/pable/aflcorr/internal/model"
)

func init() {
	color.NoColor = true
}

func squareResult() *model.Result {
	nan := math.NaN()
	return &model.Result{
		Team:          "Geelong",
		MinGamesRow:   12,
		MinGamesCol:   12,
		SuppressLower: true,
		Matrix: model.Matrix{
			RowStat: "Disposals",
			ColStat: "Disposals",
			Method:  model.Pearson,
			Rows:    []string{"Jeremy Cameron", "Patrick Dangerfield", "Max Holmes"},
			Cols:    []string{"Jeremy Cameron", "Patrick Dangerfield", "Max Holmes"},
			Values: [][]float64{
				{nan, 1, nan},
				{1, nan, -0.41234},
				{nan, -0.41234, nan},
			},
		},
		Mask: model.Mask{States: [][]model.CellState{
			{model.CellDiagonal, model.CellVisible, model.CellVisible},
			{model.CellSuppressed, model.CellDiagonal, model.CellVisible},
			{model.CellSuppressed, model.CellSuppressed, model.CellDiagonal},
		}},
	}
}

func TestArtifactPaths(t *testing.T) {
	res := squareResult()
	csvPath, jsonPath := ArtifactPaths("results", res)
	if want := filepath.Join("results", "Geelong", "geelong_disposals_pearson.csv"); csvPath != want {
		t.Errorf("csv path = %s, want %s", csvPath, want)
	}
	if !strings.HasSuffix(jsonPath, "geelong_disposals_pearson.json") {
		t.Errorf("json path = %s", jsonPath)
	}

	res.Team = "West Coast"
	res.Matrix.ColStat = "Marks"
	res.Matrix.Method = model.Kendall
	csvPath, _ = ArtifactPaths("out", res)
	if want := filepath.Join("out", "West Coast", "west_coast_disposals_vs_marks_kendall.csv"); csvPath != want {
		t.Errorf("cross path = %s, want %s", csvPath, want)
	}
}

func TestWriteMatrixCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMatrixCSV(&buf, squareResult(), 3); err != nil {
		t.Fatalf("WriteMatrixCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d: %q", len(lines), lines)
	}
	if lines[0] != "Player,Jeremy Cameron,Patrick Dangerfield,Max Holmes" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "Jeremy Cameron,,1.000," {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "Patrick Dangerfield,1.000,,-0.412" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResultJSON(&buf, squareResult()); err != nil {
		t.Fatalf("WriteResultJSON: %v", err)
	}
	var got MatrixJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Values[0][0] != nil {
		t.Error("undefined cell should encode as null")
	}
	if got.Values[0][1] == nil || *got.Values[0][1] != 1 {
		t.Errorf("cell (0,1) = %v", got.Values[0][1])
	}
	if !got.Hidden[2][0] || got.Hidden[0][2] {
		t.Errorf("hidden mask = %v", got.Hidden)
	}
	if !got.Diagonal[1][1] || got.Diagonal[1][2] {
		t.Errorf("diagonal mask = %v", got.Diagonal)
	}
	if got.Method != "pearson" || got.Team != "Geelong" || !got.SuppressLower {
		t.Errorf("metadata = %+v", got)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	csvPath, jsonPath, err := WriteArtifacts(dir, squareResult(), 3)
	if err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}
	for _, p := range []string{csvPath, jsonPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
}

func TestPrintMatrix(t *testing.T) {
	res := squareResult()
	res.Warnings = []string{"mask-lower ignored"}
	var buf bytes.Buffer
	PrintMatrix(&buf, res, 2)
	out := buf.String()

	for _, want := range []string{"Patrick Dangerfield", "Max Holmes", "1.00", "-0.41", GlyphDiagonal, GlyphHidden, "warning: mask-lower ignored"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, GlyphUndefined) {
		t.Errorf("expected undefined glyph for (0,2):\n%s", out)
	}
}

func TestShortName(t *testing.T) {
	cases := map[string]string{
		"Jeremy Cameron":  "J.Cameron",
		"Toby Conway-Ptr": "T.Conway-Ptr",
		"Rookie":          "Rookie",
		"Bailey Smith Jr": "B.Smith Jr",
	}
	for in, want := range cases {
		if got := ShortName(in); got != want {
			t.Errorf("ShortName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintDuo(t *testing.T) {
	d := &analysis.Duo{
		Team: "Geelong", Stat: "Goals", Method: model.Pearson,
		PlayerA: "Jeremy Cameron", PlayerB: "Tom Hawkins",
		A: []float64{3, 0, 2}, OkA: []bool{true, false, true},
		B: []float64{1, 2, 4}, OkB: []bool{true, true, true},
		Coef: 1, Joint: 2,
	}
	var buf bytes.Buffer
	PrintDuo(&buf, d, 3)
	out := buf.String()
	if !strings.Contains(out, "pearson = 1.000 over 2 joint rounds") {
		t.Errorf("missing coefficient line:\n%s", out)
	}
	if !strings.Contains(out, GlyphUndefined) {
		t.Errorf("missing gap glyph:\n%s", out)
	}
}

func TestPrintBatch(t *testing.T) {
	var buf bytes.Buffer
	PrintBatch(&buf, []BatchRow{
		{Team: "Geelong", Rows: 20, Cols: 20, Undef: 20, RunID: "0123456789abcdef", CSVPath: "results/Geelong/x.csv"},
		{Team: "Carlton", Err: &model.MissingInputError{Path: "data/Carlton", Err: errors.New("no such file")}},
	})
	out := buf.String()
	for _, want := range []string{"20x20", "01234567", "missing_input", "2 teams, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
