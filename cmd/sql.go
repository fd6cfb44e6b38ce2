package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/aflcorr/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the database",
	Long: `Run an arbitrary SQL query against the database and print results as a table.

Schema overview:
  team_columns(team, idx, name)
  observations(team, seq, round, player, row_team, position)
  observation_stats(team, seq, stat, value)   -- present values only
  runs(id, team, row_stat, col_stat, method, min_games_row, min_games_col, suppress_lower, created_at)
  run_labels(run_id, axis, idx, player)        -- axis is 'row' or 'col'
  run_cells(run_id, row_idx, col_idx, value, state)   -- value NULL when undefined

Example:
  aflcorr sql "SELECT o.player, SUM(s.value) FROM observations o
    JOIN observation_stats s USING (team, seq)
    WHERE o.team = 'Geelong' AND s.stat = 'Goals' GROUP BY o.player ORDER BY 2 DESC"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "(no rows)")
		return nil
	}
	report.PrintRaw(os.Stdout, cols, rows)
	return nil
}
