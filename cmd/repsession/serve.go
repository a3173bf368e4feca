package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"tailscale.com/tsnet"

	sessionmcp "github.com/claude/repsession/internal/mcp"
	"github.com/claude/repsession/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the current session behind the companion HTTP API",
	Long: `Resolves today's session and exposes it over HTTP so a phone, watch or
MCP client can drive it. Listens on server.host:server.port, or on the
tailnet when tailscale.enabled is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(os.Stderr)
		if err != nil {
			return err
		}
		defer rt.Close()
		log := rt.log
		log.Info("repsession starting", "version", Version)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sess, err := rt.openSession(ctx, nil)
		if err != nil {
			return err
		}
		defer sess.Close()

		srv := server.New(sess.Tracker, rt.cfg.Server.APIKey, log)
		srv.SetMetrics(rt.registry)
		mcpSrv := sessionmcp.New(sessionmcp.NewLocalSession(sess.Tracker), Version, log)
		srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

		// tsnet or plain HTTP
		var listener net.Listener
		if rt.cfg.Tailscale.Enabled {
			tsServer := &tsnet.Server{
				Hostname: rt.cfg.Tailscale.Hostname,
				Dir:      rt.cfg.Tailscale.StateDir,
			}
			if err := tsServer.Start(); err != nil {
				return fmt.Errorf("tsnet start failed: %w", err)
			}
			defer tsServer.Close()

			listener, err = tsServer.Listen("tcp", ":80")
			if err != nil {
				return fmt.Errorf("tsnet listen failed: %w", err)
			}
			log.Info("tsnet server starting", "hostname", rt.cfg.Tailscale.Hostname)
		} else {
			addr := rt.cfg.Server.Addr()
			listener, err = net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s failed: %w", addr, err)
			}
			log.Info("server starting", "addr", addr, "mode", "tcp (no tailscale)")
		}

		httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}
		serveErr := make(chan error, 1)
		go func() {
			if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case <-ctx.Done():
			log.Info("shutting down")
		case err := <-serveErr:
			return fmt.Errorf("server error: %w", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
		log.Info("server stopped")
		return nil
	},
}
