package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/indexadvisor/internal/advisor/costeval"
	"github.com/conduit-lang/indexadvisor/internal/advisor/server"
	"github.com/conduit-lang/indexadvisor/internal/advisor/server/auth"
	websocket "github.com/conduit-lang/indexadvisor/internal/advisor/server/stream"
	"github.com/conduit-lang/indexadvisor/internal/cli/config"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the advisor as an HTTP service",
		Long: `Start the advisor's HTTP API: POST /recommend to run Extend over a posted
workload, GET /ws to stream a run's progress, GET /healthz for liveness.

indexadvisor.yml (or the ADVISOR_ environment) supplies the connector, dsn,
cache, server_addr, and auth_secret parameters.`,
		Example: `  indexadvisor serve`,
		RunE:    runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	conn, err := buildConnector(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build connector: %w", err)
	}
	defer conn.Close(ctx)

	store, err := buildCacheStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build cache: %w", err)
	}
	eval := costeval.New(conn, store)

	hub := websocket.NewHub(ctx)
	websocket.RegisterDefaultHandlers(hub)
	go hub.Run()
	defer hub.Shutdown()

	secret, _ := cfg["auth_secret"].(string)
	if secret == "" {
		return fmt.Errorf("serve requires auth_secret to be configured")
	}
	tokens := auth.NewTokenService(secret, 24*time.Hour)

	apiKeyHash, _ := cfg["auth_api_key_hash"].(string)
	handlers := &server.Handlers{Eval: eval, Tokens: tokens, Hub: hub, APIKeyHash: apiKeyHash}

	addr, _ := cfg["server_addr"].(string)
	if addr == "" {
		addr = ":8080"
	}

	srvCfg := server.DefaultConfig(handlers.Routes())
	srvCfg.Address = addr

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
