package storage

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pable/aflcorr/internal/model"
)

// RunSummary describes one stored matrix build.
type RunSummary struct {
	ID            string
	Team          string
	RowStat       string
	ColStat       string
	Method        model.Method
	MinGamesRow   int
	MinGamesCol   int
	SuppressLower bool
	CreatedAt     string
	Rows, Cols    int
}

// InsertRun stores res under a new run id, which it returns.
func (db *DB) InsertRun(res *model.Result) (string, error) {
	id := uuid.NewString()
	m := res.Matrix

	tx, err := db.conn.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs(id, team, row_stat, col_stat, method, min_games_row, min_games_col, suppress_lower, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, res.Team, m.RowStat, m.ColStat, string(m.Method),
		res.MinGamesRow, res.MinGamesCol, boolInt(res.SuppressLower),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	labelStmt, err := tx.Prepare("INSERT INTO run_labels(run_id, axis, idx, player) VALUES (?, ?, ?, ?)")
	if err != nil {
		return "", err
	}
	defer labelStmt.Close()
	for axis, labels := range map[model.Axis][]string{model.AxisRow: m.Rows, model.AxisCol: m.Cols} {
		for i, p := range labels {
			if _, err := labelStmt.Exec(id, string(axis), i, p); err != nil {
				return "", fmt.Errorf("insert run label: %w", err)
			}
		}
	}

	cellStmt, err := tx.Prepare("INSERT INTO run_cells(run_id, row_idx, col_idx, value, state) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return "", err
	}
	defer cellStmt.Close()
	for i, row := range m.Values {
		for j, v := range row {
			var val sql.NullFloat64
			if !math.IsNaN(v) {
				val = sql.NullFloat64{Float64: v, Valid: true}
			}
			state := model.CellVisible
			if i < len(res.Mask.States) && j < len(res.Mask.States[i]) {
				state = res.Mask.States[i][j]
			}
			if _, err := cellStmt.Exec(id, i, j, val, int(state)); err != nil {
				return "", fmt.Errorf("insert run cell: %w", err)
			}
		}
	}
	return id, tx.Commit()
}

const runColumns = `
	r.id, r.team, r.row_stat, r.col_stat, r.method, r.min_games_row, r.min_games_col,
	r.suppress_lower, r.created_at,
	(SELECT COUNT(1) FROM run_labels l WHERE l.run_id = r.id AND l.axis = 'row'),
	(SELECT COUNT(1) FROM run_labels l WHERE l.run_id = r.id AND l.axis = 'col')`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunSummary, error) {
	var (
		r        RunSummary
		method   string
		suppress int
	)
	err := s.Scan(&r.ID, &r.Team, &r.RowStat, &r.ColStat, &method, &r.MinGamesRow, &r.MinGamesCol,
		&suppress, &r.CreatedAt, &r.Rows, &r.Cols)
	r.Method = model.Method(method)
	r.SuppressLower = suppress != 0
	return r, err
}

// ListRuns returns stored runs, newest first. An empty team lists all.
func (db *DB) ListRuns(team string) ([]RunSummary, error) {
	rows, err := db.conn.Query(`SELECT `+runColumns+`
		FROM runs r WHERE (? = '' OR r.team = ?)
		ORDER BY r.created_at DESC, r.rowid DESC`, team, team)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRunByPrefix finds the first run whose id starts with prefix and
// rebuilds its result. It returns nil, nil when nothing matches.
func (db *DB) GetRunByPrefix(prefix string) (*RunSummary, *model.Result, error) {
	r, err := scanRun(db.conn.QueryRow(`SELECT `+runColumns+`
		FROM runs r WHERE r.id LIKE ? ORDER BY r.created_at DESC LIMIT 1`, prefix+"%"))
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	res := &model.Result{
		Team:          r.Team,
		MinGamesRow:   r.MinGamesRow,
		MinGamesCol:   r.MinGamesCol,
		SuppressLower: r.SuppressLower,
		Matrix: model.Matrix{
			RowStat: r.RowStat,
			ColStat: r.ColStat,
			Method:  r.Method,
			Rows:    make([]string, r.Rows),
			Cols:    make([]string, r.Cols),
		},
	}

	labels, err := db.conn.Query("SELECT axis, idx, player FROM run_labels WHERE run_id = ?", r.ID)
	if err != nil {
		return nil, nil, err
	}
	for labels.Next() {
		var (
			axis, player string
			idx          int
		)
		if err := labels.Scan(&axis, &idx, &player); err != nil {
			labels.Close()
			return nil, nil, err
		}
		switch {
		case axis == string(model.AxisRow) && idx < r.Rows:
			res.Matrix.Rows[idx] = player
		case axis == string(model.AxisCol) && idx < r.Cols:
			res.Matrix.Cols[idx] = player
		}
	}
	labels.Close()
	if err := labels.Err(); err != nil {
		return nil, nil, err
	}

	res.Matrix.Values = make([][]float64, r.Rows)
	res.Mask.States = make([][]model.CellState, r.Rows)
	for i := range res.Matrix.Values {
		res.Matrix.Values[i] = make([]float64, r.Cols)
		res.Mask.States[i] = make([]model.CellState, r.Cols)
		for j := range res.Matrix.Values[i] {
			res.Matrix.Values[i][j] = math.NaN()
		}
	}

	cells, err := db.conn.Query("SELECT row_idx, col_idx, value, state FROM run_cells WHERE run_id = ?", r.ID)
	if err != nil {
		return nil, nil, err
	}
	defer cells.Close()
	for cells.Next() {
		var (
			i, j, state int
			v           sql.NullFloat64
		)
		if err := cells.Scan(&i, &j, &v, &state); err != nil {
			return nil, nil, err
		}
		if i >= r.Rows || j >= r.Cols {
			continue
		}
		if v.Valid {
			res.Matrix.Values[i][j] = v.Float64
		}
		res.Mask.States[i][j] = model.CellState(state)
	}
	if err := cells.Err(); err != nil {
		return nil, nil, err
	}
	return &r, res, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DeleteRun removes a stored run and its cells.
func (db *DB) DeleteRun(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, q := range []string{
		"DELETE FROM run_cells WHERE run_id = ?",
		"DELETE FROM run_labels WHERE run_id = ?",
		"DELETE FROM runs WHERE id = ?",
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("delete run %s: %w", id, err)
		}
	}
	return tx.Commit()
}
