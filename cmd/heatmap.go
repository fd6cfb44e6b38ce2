package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/aflcorr/internal/analysis"
	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/pipeline"
	"github.com/pable/aflcorr/internal/report"
	"github.com/pable/aflcorr/internal/storage"
	"github.com/pable/aflcorr/internal/table"
	"github.com/pable/aflcorr/pkg/logger"
)

// Build flags shared by heatmap and batch.
var (
	buildVs           string
	buildMinGames     int
	buildMinGamesCol  int
	buildMethod       string
	buildMaskLower    bool
	buildKeepConstant bool
	buildSource       string
	buildOut          string
	buildNoStore      bool
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap <team> <stat>",
	Short: "Build one player correlation matrix for a team",
	Long: `Build the player-to-player correlation matrix of <stat> for <team>.

Players below --min-games on an axis are dropped from that axis. Both axes are
ordered by position (forwards first) and then by name. --vs builds a
cross-statistic matrix with <stat> on the rows and the --vs statistic on the
columns. The matrix is printed, written to <results_dir>/<Team>/ as CSV and
JSON, and stored as a run unless --no-store is given.`,
	Args: cobra.ExactArgs(2),
	RunE: runHeatmap,
}

func init() {
	addBuildFlags(heatmapCmd)
}

func addBuildFlags(c *cobra.Command) {
	c.Flags().StringVar(&buildVs, "vs", "", "column statistic for a cross-statistic matrix")
	c.Flags().IntVar(&buildMinGames, "min-games", 0, "minimum games on the row axis (default from config)")
	c.Flags().IntVar(&buildMinGamesCol, "min-games-col", 0, "minimum games on the column axis (default --min-games)")
	c.Flags().StringVar(&buildMethod, "method", "", "pearson, spearman or kendall (default from config)")
	c.Flags().BoolVar(&buildMaskLower, "mask-lower", false, "hide the redundant lower triangle of a same-statistic matrix")
	c.Flags().BoolVar(&buildKeepConstant, "keep-constant", false, "keep players whose series never changes")
	c.Flags().StringVar(&buildSource, "source", "db", "where team tables come from: db or csv")
	c.Flags().StringVar(&buildOut, "out", "", "results directory (default from config)")
	c.Flags().BoolVar(&buildNoStore, "no-store", false, "do not store the run in the database")
}

// buildRequest assembles the request from flags over config defaults.
func buildRequest(team, stat string) (analysis.Request, error) {
	method := cfg.DefaultMethod()
	if buildMethod != "" {
		m, ok := model.ParseMethod(buildMethod)
		if !ok {
			return analysis.Request{}, fmt.Errorf("unknown method %q (want pearson, spearman or kendall)", buildMethod)
		}
		method = m
	}
	minGames := buildMinGames
	if minGames <= 0 {
		minGames = cfg.MinGames
	}
	return analysis.Request{
		Team:          team,
		RowStat:       stat,
		ColStat:       buildVs,
		MinGamesRow:   minGames,
		MinGamesCol:   buildMinGamesCol,
		Method:        method,
		SuppressLower: buildMaskLower,
		DropConstant:  cfg.DropConstant && !buildKeepConstant,
	}, nil
}

// newRunner wires the source, store and results directory from flags. The
// returned close func releases the database.
func newRunner() (*pipeline.Runner, func(), error) {
	r := &pipeline.Runner{
		ResultsDir: cfg.ResultsDir,
		Precision:  cfg.Precision,
	}
	if buildOut != "" {
		r.ResultsDir = buildOut
	}

	var db *storage.DB
	if buildSource == "db" || !buildNoStore {
		var err error
		if db, err = openDB(); err != nil {
			return nil, nil, err
		}
	}
	switch buildSource {
	case "db":
		r.Source = db
	case "csv":
		r.Source = pipeline.CSVSource{Layout: table.Layout{DataDir: cfg.DataDir}}
	default:
		if db != nil {
			db.Close()
		}
		return nil, nil, fmt.Errorf("unknown source %q (want db or csv)", buildSource)
	}
	if !buildNoStore {
		r.Store = db
	}
	closeFn := func() {
		if db != nil {
			db.Close()
		}
	}
	return r, closeFn, nil
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	req, err := buildRequest(args[0], args[1])
	if err != nil {
		return err
	}
	runner, closeFn, err := newRunner()
	if err != nil {
		return err
	}
	defer closeFn()

	out := runner.Run(ctx, req)
	if out.Err != nil {
		logFailure(ctx, out)
		return out.Err
	}
	for _, w := range out.Result.Warnings {
		log.Warn(ctx, w, logger.String("team", out.Team))
	}
	log.Info(ctx, "matrix built",
		logger.String("team", out.Team),
		logger.String("method", string(out.Result.Matrix.Method)),
		logger.Int("rows", len(out.Result.Matrix.Rows)),
		logger.Int("cols", len(out.Result.Matrix.Cols)),
		logger.Int("undefined", out.Result.Matrix.Undefined()),
		logger.Any("duration", out.Duration),
	)

	report.PrintMatrix(os.Stdout, out.Result, cfg.Precision)
	if out.CSVPath != "" {
		fmt.Fprintf(os.Stdout, "\nWrote %s\n      %s\n", out.CSVPath, out.JSONPath)
	}
	if out.RunID != "" {
		fmt.Fprintf(os.Stdout, "Run %s\n", out.RunID)
	}
	return nil
}

func logFailure(ctx context.Context, out pipeline.Outcome) {
	log.Error(ctx, "matrix build failed",
		logger.String("team", out.Team),
		logger.String("kind", model.Kind(out.Err)),
		logger.Error(out.Err),
	)
}
