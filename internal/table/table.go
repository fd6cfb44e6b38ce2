// Package table loads team statistics tables from CSV files and merges raw
// per-round files into a single team table.
package table

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/normalize"
)

// NaNTokens are the cell values read as missing.
var NaNTokens = []string{"", "NA", "NaN", "nan", "<NA>", "<nil>"}

// Layout locates team tables under a data directory.
type Layout struct {
	DataDir string
}

// TeamDir is <data>/<Team>_R1-24.
func (l Layout) TeamDir(team string) string {
	return filepath.Join(l.DataDir, team+"_R1-24")
}

// TeamCSV is the cleaned team table: <data>/<Team>_R1-24/<team>_stats_clean.csv.
func (l Layout) TeamCSV(team string) string {
	return filepath.Join(l.TeamDir(team), strings.ToLower(team)+"_stats_clean.csv")
}

// MergedCSV is the merged, uncleaned team table written by MergeRounds callers.
func (l Layout) MergedCSV(team string) string {
	return filepath.Join(l.TeamDir(team), strings.ToLower(team)+"_stats.csv")
}

// ReadCSV loads the team table at path. A file that cannot be opened or
// parsed is reported as *model.MissingInputError.
func ReadCSV(path, team string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.MissingInputError{Path: path, Err: err}
	}
	defer f.Close()
	return Read(f, path, team)
}

// Read loads a team table from r. When the Round or Player column is
// absent the table carries its columns but no rows, so the schema check of
// the caller can report every missing column at once.
func Read(r io.Reader, source, team string) (*model.Table, error) {
	df, err := load(r)
	if err != nil {
		return nil, &model.MissingInputError{Path: source, Err: err}
	}
	t := &model.Table{Team: team, Source: source, Columns: trimmedNames(df)}
	if !t.HasColumn(model.ColRound) || !t.HasColumn(model.ColPlayer) {
		return t, nil
	}
	rows, err := frameRows(df, t.Columns, source, 0)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Team == "" {
			rows[i].Team = team
		}
	}
	t.Rows = rows
	return t, nil
}

func load(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NaNTokens),
	)
	if df.Err != nil {
		return df, fmt.Errorf("read csv: %w", df.Err)
	}
	return df, nil
}

func trimmedNames(df dataframe.DataFrame) []string {
	names := df.Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.TrimSpace(n)
	}
	return out
}

// column is one column of a frame as raw strings and a missing flag.
type column struct {
	recs []string
	nan  []bool
}

func (c column) missing(i int) bool {
	return c.nan[i] || strings.TrimSpace(c.recs[i]) == ""
}

// frameRows converts df into observations. Numeric cells that do not parse
// are missing. When round > 0 it overrides the Round column.
func frameRows(df dataframe.DataFrame, names []string, source string, round int) ([]model.Observation, error) {
	raw := df.Names()
	cols := make(map[string]column, len(names))
	for i, n := range names {
		s := df.Col(raw[i])
		cols[n] = column{recs: s.Records(), nan: s.IsNaN()}
	}

	rows := make([]model.Observation, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		o := model.Observation{Round: round, Stats: make(map[string]float64)}
		for _, n := range names {
			c := cols[n]
			switch n {
			case model.ColRound:
				if round > 0 {
					continue
				}
				r, err := parseRound(c, i)
				if err != nil {
					return nil, fmt.Errorf("%w: %s row %d: %v", model.ErrSchemaViolation, source, i+2, err)
				}
				o.Round = r
			case model.ColPlayer:
				if !c.missing(i) {
					o.Player = c.recs[i]
				}
			case model.ColTeam:
				if !c.missing(i) {
					o.Team = c.recs[i]
				}
			case model.ColPosition:
				if !c.missing(i) {
					o.Position, o.HasPosition = c.recs[i], true
				}
			default:
				if c.missing(i) {
					continue
				}
				v, err := strconv.ParseFloat(strings.TrimSpace(c.recs[i]), 64)
				if err != nil || math.IsNaN(v) {
					continue
				}
				o.Stats[n] = v
			}
		}
		if normalize.Normalize(o.Player) == "" {
			continue
		}
		rows = append(rows, o)
	}
	return rows, nil
}

func parseRound(c column, i int) (int, error) {
	if c.missing(i) {
		return 0, fmt.Errorf("missing Round")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(c.recs[i]), 64)
	if err != nil || f != math.Trunc(f) || f < 1 {
		return 0, fmt.Errorf("invalid Round %q", c.recs[i])
	}
	return int(f), nil
}

// roundFile is an R<n>.csv file.
type roundFile struct {
	round int
	path  string
}

func roundFiles(dir string) ([]roundFile, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "R*.csv"))
	if err != nil {
		return nil, err
	}
	var out []roundFile
	for _, m := range matches {
		stem := strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
		n, err := strconv.Atoi(stem[1:])
		if err != nil || n < 1 {
			continue
		}
		out = append(out, roundFile{round: n, path: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].round < out[j].round })
	return out, nil
}

// MergeRounds builds one team table from per-round files R1.csv, R2.csv, ...
// in dir, keeping the rows of team and stamping each with the round taken
// from the file name. Columns are Round, Player, Team, then the remaining
// columns in first-seen order.
func MergeRounds(dir, team string) (*model.Table, error) {
	files, err := roundFiles(dir)
	if err != nil {
		return nil, &model.MissingInputError{Path: dir, Err: err}
	}
	if len(files) == 0 {
		return nil, &model.MissingInputError{Path: filepath.Join(dir, "R*.csv")}
	}

	want := normalize.Normalize(team)
	t := &model.Table{
		Team:    team,
		Source:  dir,
		Columns: []string{model.ColRound, model.ColPlayer, model.ColTeam},
	}
	for _, rf := range files {
		f, err := os.Open(rf.path)
		if err != nil {
			return nil, &model.MissingInputError{Path: rf.path, Err: err}
		}
		df, err := load(f)
		f.Close()
		if err != nil {
			return nil, &model.MissingInputError{Path: rf.path, Err: err}
		}
		names := trimmedNames(df)
		for _, n := range names {
			if !t.HasColumn(n) {
				t.Columns = append(t.Columns, n)
			}
		}
		rows, err := frameRows(df, names, rf.path, rf.round)
		if err != nil {
			return nil, err
		}
		for _, o := range rows {
			if normalize.Normalize(o.Team) == want {
				t.Rows = append(t.Rows, o)
			}
		}
	}
	if len(t.Rows) == 0 {
		return nil, &model.MissingInputError{Path: dir, Err: fmt.Errorf("no rows for team %q", team)}
	}
	return t, nil
}

// WriteCSV writes t with its column order; missing values are empty cells.
func WriteCSV(w io.Writer, t *model.Table) error {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string(nil), t.Columns...))
	for _, o := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			switch c {
			case model.ColRound:
				rec[i] = strconv.Itoa(o.Round)
			case model.ColPlayer:
				rec[i] = o.Player
			case model.ColTeam:
				rec[i] = o.Team
			case model.ColPosition:
				if o.HasPosition {
					rec[i] = o.Position
				}
			default:
				if v, ok := o.Value(c); ok {
					rec[i] = strconv.FormatFloat(v, 'f', -1, 64)
				}
			}
		}
		records = append(records, rec)
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"<nil>"}),
	)
	if df.Err != nil {
		return fmt.Errorf("build frame: %w", df.Err)
	}
	return df.WriteCSV(w)
}
