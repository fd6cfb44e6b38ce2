package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/aflcorr/internal/report"
	"github.com/pable/aflcorr/pkg/logger"
	"github.com/pable/aflcorr/pkg/metrics"
)

var (
	batchTeams       string
	batchWorkers     int
	batchMetricsFile string
)

var batchCmd = &cobra.Command{
	Use:   "batch <stat>",
	Short: "Build the same matrix for many teams in parallel",
	Long: `Build the correlation matrix of <stat> for every team in --teams (default: the
teams from config). Builds run in parallel, at most --workers at a time. A
team that fails is reported in the summary and never stops the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	addBuildFlags(batchCmd)
	batchCmd.Flags().StringVar(&batchTeams, "teams", "", "comma-separated teams (default from config)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "parallel builds (default from config)")
	batchCmd.Flags().StringVar(&batchMetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	base, err := buildRequest("", args[0])
	if err != nil {
		return err
	}
	teams := cfg.Teams
	if batchTeams != "" {
		teams = splitTeams(batchTeams)
	}
	if len(teams) == 0 {
		return fmt.Errorf("no teams to build")
	}
	workers := cfg.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}

	runner, closeFn, err := newRunner()
	if err != nil {
		return err
	}
	defer closeFn()
	runner.Metrics = metrics.NewManager()

	start := time.Now()
	outs := runner.Batch(ctx, teams, base, workers)

	rows := make([]report.BatchRow, len(outs))
	failed := 0
	for i, o := range outs {
		rows[i] = report.BatchRow{Team: o.Team, RunID: o.RunID, CSVPath: o.CSVPath, Duration: o.Duration, Err: o.Err}
		if o.Err != nil {
			failed++
			logFailure(ctx, o)
			continue
		}
		m := o.Result.Matrix
		rows[i].Rows, rows[i].Cols, rows[i].Undef = len(m.Rows), len(m.Cols), m.Undefined()
		for _, w := range o.Result.Warnings {
			log.Warn(ctx, w, logger.String("team", o.Team))
		}
	}
	log.Info(ctx, "batch finished",
		logger.Int("teams", len(teams)),
		logger.Int("failed", failed),
		logger.Int("workers", workers),
		logger.Any("duration", time.Since(start)),
	)

	report.PrintBatch(os.Stdout, rows)

	if batchMetricsFile != "" {
		if err := runner.Metrics.WriteTextfile(batchMetricsFile); err != nil {
			return err
		}
		log.Info(ctx, "metrics written", logger.String("path", batchMetricsFile))
	}
	if failed == len(outs) {
		return fmt.Errorf("all %d builds failed", failed)
	}
	return nil
}

func splitTeams(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
