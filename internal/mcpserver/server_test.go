package mcpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pable/aflcorr/internal/model"
	"github.com/pable/aflcorr/internal/report"
	"github.com/pable/aflcorr/internal/storage"
	"github.com/pable/aflcorr/pkg/metrics"
)

func seededStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tbl := &model.Table{
		Team:    "Geelong",
		Source:  "test",
		Columns: []string{model.ColRound, model.ColPlayer, model.ColTeam, model.ColPosition, "Kicks", "Marks"},
	}
	for r := 1; r <= 14; r++ {
		tbl.Rows = append(tbl.Rows,
			model.Observation{Round: r, Player: "Alpha One", Team: "Geelong", Position: "Midfielder", HasPosition: true,
				Stats: map[string]float64{"Kicks": float64(r), "Marks": float64(r % 3)}},
			model.Observation{Round: r, Player: "Bravo Two", Team: "Geelong", Position: "Key Forward", HasPosition: true,
				Stats: map[string]float64{"Kicks": float64(2 * r), "Marks": float64(r % 4)}},
		)
	}
	if err := db.ReplaceTeamTable(tbl); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func newServer(t *testing.T) *Server {
	return New(seededStore(t), Defaults{MinGames: 12, DropConstant: true, Rounds: 16}, metrics.NewManager(), "test")
}

func TestMatrixTool(t *testing.T) {
	s := newServer(t)
	v, err := s.Matrix(MatrixArgs{Team: "Geelong", Stat: "Kicks", MaskLower: true})
	if err != nil {
		t.Fatalf("Matrix: %v", err)
	}
	m, ok := v.(report.MatrixJSON)
	if !ok {
		t.Fatalf("unexpected type %T", v)
	}
	if len(m.Rows) != 2 || m.Rows[0] != "Bravo Two" {
		t.Errorf("rows = %v", m.Rows)
	}
	if m.Values[0][1] == nil || *m.Values[0][1] < 0.999 {
		t.Errorf("lockstep players should correlate at 1, got %v", m.Values[0][1])
	}
	if !m.Hidden[1][0] || m.Values[0][0] != nil {
		t.Errorf("expected hidden lower cell and undefined diagonal: %+v", m)
	}
}

func TestMatrixToolErrors(t *testing.T) {
	s := newServer(t)
	if _, err := s.Matrix(MatrixArgs{Team: "Geelong"}); err == nil {
		t.Error("expected error for missing stat")
	}
	if _, err := s.Matrix(MatrixArgs{Team: "Geelong", Stat: "Kicks", Method: "tau"}); err == nil {
		t.Error("expected error for unknown method")
	}
	if _, err := s.Matrix(MatrixArgs{Team: "Carlton", Stat: "Kicks"}); !errors.Is(err, model.ErrMissingInput) {
		t.Errorf("expected missing input, got %v", err)
	}
	if _, err := s.Matrix(MatrixArgs{Team: "Geelong", Stat: "Handballs"}); !errors.Is(err, model.ErrSchemaViolation) {
		t.Errorf("expected schema violation, got %v", err)
	}
	if _, err := s.Matrix(MatrixArgs{Team: "Geelong", Stat: "Kicks", MinGames: 20}); !errors.Is(err, model.ErrEmptySelection) {
		t.Errorf("expected empty selection, got %v", err)
	}
}

func TestDuoTool(t *testing.T) {
	s := newServer(t)
	v, err := s.Duo(DuoArgs{Team: "Geelong", Stat: "Kicks", PlayerA: "Alpha One", PlayerB: "Bravo Two"})
	if err != nil {
		t.Fatalf("Duo: %v", err)
	}
	d := v.(duoJSON)
	if len(d.A) != 16 || d.A[15] != nil || d.A[0] == nil {
		t.Errorf("expected 16 rounds with trailing gaps, got %v", d.A)
	}
	if d.Coef == nil || d.Joint != 14 {
		t.Errorf("coef = %v joint = %d", d.Coef, d.Joint)
	}
}

func TestToolJSON(t *testing.T) {
	res, _, _ := toolJSON(nil, errors.New("boom"))
	if !res.IsError {
		t.Error("expected error result")
	}
	res, _, _ = toolJSON(map[string]int{"n": 1}, nil)
	if res.IsError || len(res.Content) != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestHandler(t *testing.T) {
	s := newServer(t)
	srv := httptest.NewServer(s.Handler("/mcp"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/tools")
	if err != nil {
		t.Fatalf("GET /tools: %v", err)
	}
	var body struct {
		Tools []toolInfo `json:"tools"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if len(body.Tools) != 3 {
		t.Errorf("expected 3 tools, got %+v", body.Tools)
	}

	s.Matrix(MatrixArgs{Team: "Geelong", Stat: "Kicks"})
	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(raw), "aflcorr_matrices_built_total") {
		t.Errorf("metrics output missing counter:\n%s", raw)
	}
}
