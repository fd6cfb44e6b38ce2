package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/table"
	"github.com/pable/aflcorr/pkg/logger"
)

var (
	importFile      string
	importRoundsDir string
	importWriteCSV  bool
)

var importCmd = &cobra.Command{
	Use:   "import <team>",
	Short: "Load a team statistics table into the database",
	Long: `Load a team statistics table into the database, replacing any earlier import of that team.

By default the cleaned table is read from <data_dir>/<Team>_R1-24/<team>_stats_clean.csv.
--file reads another CSV instead. --rounds-dir merges raw per-round files
(R1.csv, R2.csv, ...) keeping only rows whose Team column matches <team>.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "team CSV to import instead of the data layout path")
	importCmd.Flags().StringVar(&importRoundsDir, "rounds-dir", "", "merge raw per-round CSV files from this directory")
	importCmd.Flags().BoolVar(&importWriteCSV, "write-merged", false, "with --rounds-dir, also write the merged table to the data layout")
	importCmd.MarkFlagsMutuallyExclusive("file", "rounds-dir")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	team := args[0]
	layout := table.Layout{DataDir: cfg.DataDir}

	var (
		t   *model.Table
		err error
	)
	switch {
	case importRoundsDir != "":
		t, err = table.MergeRounds(importRoundsDir, team)
		if err == nil && importWriteCSV {
			err = writeMerged(layout, t)
		}
	case importFile != "":
		t, err = table.ReadCSV(importFile, team)
	default:
		t, err = table.ReadCSV(layout.TeamCSV(team), team)
	}
	if err != nil {
		log.Error(ctx, "import failed", logger.String("team", team), logger.String("kind", model.Kind(err)), logger.Error(err))
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ReplaceTeamTable(t); err != nil {
		return fmt.Errorf("store team table: %w", err)
	}
	log.Info(ctx, "team imported",
		logger.String("team", team),
		logger.String("source", t.Source),
		logger.Int("rows", len(t.Rows)),
		logger.Int("players", len(t.Players())),
	)
	fmt.Fprintf(os.Stdout, "Imported %s: %d rows, %d players, %d columns\n",
		team, len(t.Rows), len(t.Players()), len(t.Columns))
	return nil
}

func writeMerged(layout table.Layout, t *model.Table) error {
	path := layout.MergedCSV(t.Team)
	if err := os.MkdirAll(layout.TeamDir(t.Team), 0o755); err != nil {
		return fmt.Errorf("create team dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := table.WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
