package main

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	sessionmcp "github.com/claude/repsession/internal/mcp"
)

var (
	mcpRemote string
	mcpAPIKey string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the session tools over MCP stdio",
	Long: `Runs an MCP server on stdin/stdout. By default it opens the current session
in-process. With --remote it drives the session of a running "repsession serve"
through its companion API instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol; logs go to the file only
		rt, err := newRuntime(nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		var sess sessionmcp.Session
		if mcpRemote != "" {
			rt.log.Info("mcp remote mode", "url", mcpRemote)
			sess = sessionmcp.NewHTTPClient(mcpRemote, mcpAPIKey)
		} else {
			s, err := rt.openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()
			sess = sessionmcp.NewLocalSession(s.Tracker)
		}

		if err := mcpserver.ServeStdio(sessionmcp.New(sess, Version, rt.log)); err != nil {
			return fmt.Errorf("mcp stdio: %w", err)
		}
		return nil
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpRemote, "remote", "", "companion API base URL of a running serve (e.g. http://repsession.tail1234.ts.net)")
	mcpCmd.Flags().StringVar(&mcpAPIKey, "api-key", "", "X-API-Key for the remote companion API")
}
