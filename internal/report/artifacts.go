package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pable/aflcorr/internal/model"
)

// Slug turns a team or statistic name into a file name component.
func Slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// BaseName is the artifact file stem for res, without extension.
func BaseName(res *model.Result) string {
	m := res.Matrix
	if m.SameStat() {
		return fmt.Sprintf("%s_%s_%s", Slug(res.Team), Slug(m.RowStat), m.Method)
	}
	return fmt.Sprintf("%s_%s_vs_%s_%s", Slug(res.Team), Slug(m.RowStat), Slug(m.ColStat), m.Method)
}

// ArtifactPaths returns the CSV and JSON paths of res under resultsDir:
// <results>/<Team>/<stem>.csv and .json.
func ArtifactPaths(resultsDir string, res *model.Result) (csvPath, jsonPath string) {
	base := filepath.Join(resultsDir, res.Team, BaseName(res))
	return base + ".csv", base + ".json"
}

// WriteMatrixCSV writes the labelled matrix with the given number of
// decimals. Undefined cells are left empty.
func WriteMatrixCSV(w io.Writer, res *model.Result, precision int) error {
	m := res.Matrix
	cw := csv.NewWriter(w)

	header := append([]string{model.ColPlayer}, m.Cols...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, label := range m.Rows {
		rec := make([]string, 0, len(m.Cols)+1)
		rec = append(rec, label)
		for j := range m.Cols {
			if v, ok := m.At(i, j); ok {
				rec = append(rec, strconv.FormatFloat(v, 'f', precision, 64))
			} else {
				rec = append(rec, "")
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MatrixJSON is the renderer-facing view of a result.
type MatrixJSON struct {
	Team          string       `json:"team"`
	RowStat       string       `json:"row_stat"`
	ColStat       string       `json:"col_stat"`
	Method        string       `json:"method"`
	MinGamesRow   int          `json:"min_games_row"`
	MinGamesCol   int          `json:"min_games_col"`
	SuppressLower bool         `json:"suppress_lower"`
	Rows          []string     `json:"rows"`
	Cols          []string     `json:"cols"`
	Values        [][]*float64 `json:"values"`
	Hidden        [][]bool     `json:"hidden"`
	Diagonal      [][]bool     `json:"diagonal"`
	Warnings      []string     `json:"warnings,omitempty"`
}

// NewMatrixJSON converts res, mapping undefined cells to null.
func NewMatrixJSON(res *model.Result) MatrixJSON {
	m := res.Matrix
	out := MatrixJSON{
		Team:          res.Team,
		RowStat:       m.RowStat,
		ColStat:       m.ColStat,
		Method:        string(m.Method),
		MinGamesRow:   res.MinGamesRow,
		MinGamesCol:   res.MinGamesCol,
		SuppressLower: res.SuppressLower,
		Rows:          m.Rows,
		Cols:          m.Cols,
		Values:        make([][]*float64, len(m.Rows)),
		Hidden:        res.Mask.Hidden(),
		Diagonal:      res.Mask.Diagonal(),
		Warnings:      res.Warnings,
	}
	for i := range m.Rows {
		out.Values[i] = make([]*float64, len(m.Cols))
		for j := range m.Cols {
			if v, ok := m.At(i, j); ok {
				v := v
				out.Values[i][j] = &v
			}
		}
	}
	return out
}

// WriteResultJSON writes the renderer-facing view of res.
func WriteResultJSON(w io.Writer, res *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewMatrixJSON(res))
}

// WriteArtifacts writes both artifacts of res under resultsDir, creating
// the team directory, and returns their paths.
func WriteArtifacts(resultsDir string, res *model.Result, precision int) (csvPath, jsonPath string, err error) {
	csvPath, jsonPath = ArtifactPaths(resultsDir, res)
	if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
		return "", "", fmt.Errorf("create results dir: %w", err)
	}
	if err := writeFile(csvPath, func(w io.Writer) error { return WriteMatrixCSV(w, res, precision) }); err != nil {
		return "", "", err
	}
	if err := writeFile(jsonPath, func(w io.Writer) error { return WriteResultJSON(w, res) }); err != nil {
		return "", "", err
	}
	return csvPath, jsonPath, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
