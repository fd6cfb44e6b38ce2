// Package pipeline runs matrix builds end to end: load the team table,
// build, write artifacts, store the run and record metrics.
package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pable/aflcorr/internal/analysis"
	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/report"
	"github.com/pable/aflcorr/internal/table"
	"github.com/pable/aflcorr/pkg/metrics"
)

// Source provides team statistics tables.
type Source interface {
	LoadTeamTable(team string) (*model.Table, error)
}

// RunStore persists built results.
type RunStore interface {
	InsertRun(res *model.Result) (string, error)
}

// CSVSource reads the cleaned team CSV located by a data layout.
type CSVSource struct {
	Layout table.Layout
}

// LoadTeamTable reads <data>/<Team>_R1-24/<team>_stats_clean.csv.
func (s CSVSource) LoadTeamTable(team string) (*model.Table, error) {
	return table.ReadCSV(s.Layout.TeamCSV(team), team)
}

// Runner builds matrices. Store, Metrics and ResultsDir are optional:
// a nil Store skips persistence and an empty ResultsDir skips artifacts.
type Runner struct {
	Source     Source
	Store      RunStore
	Metrics    *metrics.Manager
	ResultsDir string
	Precision  int
}

// Outcome is the result of one build.
type Outcome struct {
	Team     string
	Result   *model.Result
	RunID    string
	CSVPath  string
	JSONPath string
	Duration time.Duration
	Err      error
}

// Run performs one build for req.Team.
func (r *Runner) Run(_ context.Context, req analysis.Request) Outcome {
	start := time.Now()
	out := Outcome{Team: req.Team}
	out.Result, out.Err = r.build(req)
	if out.Err == nil {
		out.Err = r.persist(&out)
	}
	out.Duration = time.Since(start)

	if r.Metrics != nil {
		if out.Err != nil {
			r.Metrics.RecordFailure(model.Kind(out.Err), out.Duration)
		} else {
			r.Metrics.RecordBuild(string(out.Result.Matrix.Method), out.Result.Matrix.Undefined(), out.Duration)
		}
	}
	return out
}

func (r *Runner) build(req analysis.Request) (*model.Result, error) {
	t, err := r.Source.LoadTeamTable(req.Team)
	if err != nil {
		return nil, err
	}
	return analysis.Build(t, req)
}

func (r *Runner) persist(out *Outcome) error {
	var err error
	if r.ResultsDir != "" {
		if out.CSVPath, out.JSONPath, err = report.WriteArtifacts(r.ResultsDir, out.Result, r.Precision); err != nil {
			return err
		}
	}
	if r.Store != nil {
		if out.RunID, err = r.Store.InsertRun(out.Result); err != nil {
			return err
		}
	}
	return nil
}

// Batch runs base once per team with at most workers builds in flight.
// Outcomes are returned in team order. A failing team never cancels the
// others; its error is reported in its Outcome.
func (r *Runner) Batch(ctx context.Context, teams []string, base analysis.Request, workers int) []Outcome {
	out := make([]Outcome, len(teams))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, team := range teams {
		req := base
		req.Team = team
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i] = Outcome{Team: team, Err: err}
				return nil
			}
			out[i] = r.Run(ctx, req)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
