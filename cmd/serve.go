package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/aflcorr/internal/mcpserver"
	"github.com/pable/aflcorr/pkg/logger"
	"github.com/pable/aflcorr/pkg/metrics"
)

var (
	serveAddr string
	servePath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matrix builder as MCP tools over HTTP",
	Long: `Start a streamable-HTTP MCP server exposing list_teams, correlation_matrix and
player_duo over the imported team tables. /health, /tools and /metrics are
served alongside the MCP endpoint.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&servePath, "path", "", "HTTP path of the MCP endpoint (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, path := cfg.Addr, cfg.MCPPath
	if serveAddr != "" {
		addr = serveAddr
	}
	if servePath != "" {
		path = servePath
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	srv := mcpserver.New(db, mcpserver.Defaults{
		MinGames:     cfg.MinGames,
		Method:       cfg.DefaultMethod(),
		DropConstant: cfg.DropConstant,
		Rounds:       cfg.Rounds,
	}, metrics.NewManager(), version)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(path),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "MCP HTTP server listening", logger.String("addr", addr), logger.String("path", path))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info(shutdownCtx, "shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
