// Package mcpserver exposes the matrix builder as MCP tools over
// streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pable/aflcorr/internal/analysis"
	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/report"
	"github.com/pable/aflcorr/internal/storage"
	"github.com/pable/aflcorr/pkg/metrics"
)

// Store is the read side of the statistics store the tools query.
type Store interface {
	LoadTeamTable(team string) (*model.Table, error)
	ListTeams() ([]storage.TeamSummary, error)
}

// Defaults apply when a tool call leaves an argument unset.
type Defaults struct {
	MinGames     int
	Method       model.Method
	DropConstant bool
	Rounds       int
}

// MatrixArgs are the arguments of correlation_matrix.
type MatrixArgs struct {
	Team        string `json:"team" jsonschema:"Team name as imported (required)"`
	Stat        string `json:"stat" jsonschema:"Statistic column (required)"`
	VsStat      string `json:"vs_stat,omitempty" jsonschema:"Column statistic for a cross-statistic matrix"`
	MinGames    int    `json:"min_games,omitempty" jsonschema:"Minimum games on the row axis (default 12)"`
	MinGamesCol int    `json:"min_games_col,omitempty" jsonschema:"Minimum games on the column axis (default min_games)"`
	Method      string `json:"method,omitempty" jsonschema:"pearson|spearman|kendall (default pearson)"`
	MaskLower   bool   `json:"mask_lower,omitempty" jsonschema:"Hide the redundant lower triangle"`
}

// DuoArgs are the arguments of player_duo.
type DuoArgs struct {
	Team    string `json:"team" jsonschema:"Team name as imported (required)"`
	PlayerA string `json:"player_a" jsonschema:"First player (required)"`
	PlayerB string `json:"player_b" jsonschema:"Second player (required)"`
	Stat    string `json:"stat" jsonschema:"Statistic column (required)"`
	Method  string `json:"method,omitempty" jsonschema:"pearson|spearman|kendall (default pearson)"`
}

type emptyArgs struct{}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Server holds the MCP server and the tool registry it advertises.
type Server struct {
	mcp      *mcp.Server
	store    Store
	defaults Defaults
	metrics  *metrics.Manager
	registry []toolInfo
}

// New builds the MCP server with every tool registered. m may be nil.
func New(store Store, defaults Defaults, m *metrics.Manager, version string) *Server {
	s := &Server{
		mcp:      mcp.NewServer(&mcp.Implementation{Name: "aflcorr", Version: version}, nil),
		store:    store,
		defaults: defaults,
		metrics:  m,
	}

	addTool(s, &mcp.Tool{
		Name:        "list_teams",
		Description: "Imported teams with row, player and round counts",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(s.ListTeams())
	})

	addTool(s, &mcp.Tool{
		Name:        "correlation_matrix",
		Description: "Player-to-player correlation matrix for one team, ordered by position",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args MatrixArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(s.Matrix(args))
	})

	addTool(s, &mcp.Tool{
		Name:        "player_duo",
		Description: "Round-by-round series of two teammates and their correlation",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args DuoArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(s.Duo(args))
	})

	return s
}

func addTool[T any](s *Server, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	s.registry = append(s.registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(s.mcp, tool, handler)
}

// ListTeams is the list_teams tool body.
func (s *Server) ListTeams() (any, error) {
	teams, err := s.store.ListTeams()
	if err != nil {
		return nil, err
	}
	return map[string]any{"teams": teams}, nil
}

// Matrix is the correlation_matrix tool body.
func (s *Server) Matrix(args MatrixArgs) (any, error) {
	if args.Team == "" || args.Stat == "" {
		return nil, fmt.Errorf("team and stat are required")
	}
	method, err := s.method(args.Method)
	if err != nil {
		return nil, err
	}
	req := analysis.Request{
		Team:          args.Team,
		RowStat:       args.Stat,
		ColStat:       args.VsStat,
		MinGamesRow:   firstPositive(args.MinGames, s.defaults.MinGames),
		MinGamesCol:   args.MinGamesCol,
		Method:        method,
		SuppressLower: args.MaskLower,
		DropConstant:  s.defaults.DropConstant,
	}

	start := time.Now()
	res, err := s.build(req)
	if s.metrics != nil {
		if err != nil {
			s.metrics.RecordFailure(model.Kind(err), time.Since(start))
		} else {
			s.metrics.RecordBuild(string(method), res.Matrix.Undefined(), time.Since(start))
		}
	}
	if err != nil {
		return nil, err
	}
	return report.NewMatrixJSON(res), nil
}

func (s *Server) build(req analysis.Request) (*model.Result, error) {
	t, err := s.store.LoadTeamTable(req.Team)
	if err != nil {
		return nil, err
	}
	return analysis.Build(t, req)
}

// duoJSON is the wire form of a duo; gaps are null.
type duoJSON struct {
	Team    string     `json:"team"`
	Stat    string     `json:"stat"`
	Method  string     `json:"method"`
	PlayerA string     `json:"player_a"`
	PlayerB string     `json:"player_b"`
	A       []*float64 `json:"a"`
	B       []*float64 `json:"b"`
	Coef    *float64   `json:"coef"`
	Joint   int        `json:"joint_rounds"`
}

// Duo is the player_duo tool body.
func (s *Server) Duo(args DuoArgs) (any, error) {
	if args.Team == "" || args.Stat == "" || args.PlayerA == "" || args.PlayerB == "" {
		return nil, fmt.Errorf("team, stat, player_a and player_b are required")
	}
	method, err := s.method(args.Method)
	if err != nil {
		return nil, err
	}
	t, err := s.store.LoadTeamTable(args.Team)
	if err != nil {
		return nil, err
	}
	d, err := analysis.BuildDuo(t, analysis.DuoRequest{
		Team: args.Team, Stat: args.Stat, PlayerA: args.PlayerA, PlayerB: args.PlayerB,
		Rounds: s.defaults.Rounds, Method: method,
	})
	if err != nil {
		return nil, err
	}
	return duoJSON{
		Team: d.Team, Stat: d.Stat, Method: string(d.Method),
		PlayerA: d.PlayerA, PlayerB: d.PlayerB,
		A: gaps(d.A, d.OkA), B: gaps(d.B, d.OkB),
		Coef: optional(d.Coef), Joint: d.Joint,
	}, nil
}

func (s *Server) method(name string) (model.Method, error) {
	if name == "" {
		if s.defaults.Method != "" {
			return s.defaults.Method, nil
		}
		return model.Pearson, nil
	}
	m, ok := model.ParseMethod(name)
	if !ok {
		return "", fmt.Errorf("unknown method %q", name)
	}
	return m, nil
}

// Handler serves the MCP endpoint at mcpPath plus /health, /tools and,
// when metrics are enabled, /metrics.
func (s *Server) Handler(mcpPath string) http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcp
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/tools", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, _ := json.MarshalIndent(map[string]any{"tools": s.registry}, "", "  ")
		w.Write(b)
	})
	if s.metrics != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}
	mux.Handle(mcpPath, handler)
	return mux
}

func toolJSON(v any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}

func gaps(vals []float64, ok []bool) []*float64 {
	out := make([]*float64, len(vals))
	for i := range vals {
		if ok[i] {
			v := vals[i]
			out[i] = &v
		}
	}
	return out
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
