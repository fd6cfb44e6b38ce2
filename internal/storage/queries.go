package storage

import (
	"database/sql"
	"fmt"

	"github.com/pable/aflcorr/internal/model"
)

// TeamSummary describes one imported team table.
type TeamSummary struct {
	Team    string
	Rows    int
	Players int
	Rounds  int
}

// ReplaceTeamTable stores t under t.Team, replacing any earlier import of
// that team, in one transaction. Rows are stored as-is: duplicates are not
// collapsed and source order is kept.
func (db *DB) ReplaceTeamTable(t *model.Table) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM team_columns WHERE team = ?",
		"DELETE FROM observations WHERE team = ?",
		"DELETE FROM observation_stats WHERE team = ?",
	} {
		if _, err := tx.Exec(q, t.Team); err != nil {
			return fmt.Errorf("clear team %s: %w", t.Team, err)
		}
	}

	colStmt, err := tx.Prepare("INSERT INTO team_columns(team, idx, name) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer colStmt.Close()
	for i, c := range t.Columns {
		if _, err := colStmt.Exec(t.Team, i, c); err != nil {
			return fmt.Errorf("insert column %s: %w", c, err)
		}
	}

	rowStmt, err := tx.Prepare(`
		INSERT INTO observations(team, seq, round, player, row_team, position)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer rowStmt.Close()
	statStmt, err := tx.Prepare("INSERT INTO observation_stats(team, seq, stat, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer statStmt.Close()

	for seq, o := range t.Rows {
		var pos sql.NullString
		if o.HasPosition {
			pos = sql.NullString{String: o.Position, Valid: true}
		}
		if _, err := rowStmt.Exec(t.Team, seq, o.Round, o.Player, o.Team, pos); err != nil {
			return fmt.Errorf("insert observation %d: %w", seq, err)
		}
		for stat := range o.Stats {
			v, ok := o.Value(stat)
			if !ok {
				continue
			}
			if _, err := statStmt.Exec(t.Team, seq, stat, v); err != nil {
				return fmt.Errorf("insert observation %d %s: %w", seq, stat, err)
			}
		}
	}
	return tx.Commit()
}

// LoadTeamTable reads the team table stored under team. An unknown team is
// reported as *model.MissingInputError.
func (db *DB) LoadTeamTable(team string) (*model.Table, error) {
	t := &model.Table{Team: team, Source: "db:" + team}

	cols, err := db.conn.Query("SELECT name FROM team_columns WHERE team = ? ORDER BY idx", team)
	if err != nil {
		return nil, err
	}
	for cols.Next() {
		var name string
		if err := cols.Scan(&name); err != nil {
			cols.Close()
			return nil, err
		}
		t.Columns = append(t.Columns, name)
	}
	cols.Close()
	if err := cols.Err(); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, &model.MissingInputError{Path: t.Source}
	}

	rows, err := db.conn.Query(`
		SELECT seq, round, player, row_team, position
		FROM observations WHERE team = ? ORDER BY seq`, team)
	if err != nil {
		return nil, err
	}
	bySeq := make(map[int]int)
	for rows.Next() {
		var (
			seq int
			o   model.Observation
			pos sql.NullString
		)
		if err := rows.Scan(&seq, &o.Round, &o.Player, &o.Team, &pos); err != nil {
			rows.Close()
			return nil, err
		}
		o.Position, o.HasPosition = pos.String, pos.Valid
		o.Stats = make(map[string]float64)
		bySeq[seq] = len(t.Rows)
		t.Rows = append(t.Rows, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats, err := db.conn.Query("SELECT seq, stat, value FROM observation_stats WHERE team = ?", team)
	if err != nil {
		return nil, err
	}
	defer stats.Close()
	for stats.Next() {
		var (
			seq  int
			stat string
			v    float64
		)
		if err := stats.Scan(&seq, &stat, &v); err != nil {
			return nil, err
		}
		if i, ok := bySeq[seq]; ok {
			t.Rows[i].Stats[stat] = v
		}
	}
	return t, stats.Err()
}

// ListTeams returns one summary per imported team, ordered by name.
func (db *DB) ListTeams() ([]TeamSummary, error) {
	rows, err := db.conn.Query(`
		SELECT c.team,
		       (SELECT COUNT(1) FROM observations o WHERE o.team = c.team),
		       (SELECT COUNT(DISTINCT player) FROM observations o WHERE o.team = c.team),
		       (SELECT COUNT(DISTINCT round) FROM observations o WHERE o.team = c.team)
		FROM (SELECT DISTINCT team FROM team_columns) c
		ORDER BY c.team`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamSummary
	for rows.Next() {
		var s TeamSummary
		if err := rows.Scan(&s.Team, &s.Rows, &s.Players, &s.Rounds); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and rows as strings.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// DeleteTeam removes an imported team table. It reports whether anything was removed.
func (db *DB) DeleteTeam(team string) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM team_columns WHERE team = ?", team)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	for _, q := range []string{
		"DELETE FROM observations WHERE team = ?",
		"DELETE FROM observation_stats WHERE team = ?",
	} {
		if _, err := tx.Exec(q, team); err != nil {
			return false, err
		}
	}
	return n > 0, tx.Commit()
}
