package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/docsync/internal/mcp"
	"github.com/dshills/docsync/internal/watcher"
)

var flagServeWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start a Model Context Protocol server exposing the sync_docs and
get_status tools over stdio. With --watch, documents are also synced
whenever they change on disk.

MCP client configuration:
  {
    "mcpServers": {
      "docsync": {
        "command": "/path/to/docsync",
        "args": ["serve", "--root", "/path/to/docs"]
      }
    }
  }`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagServeWatch, "watch", false, "sync when documents change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), appConfig)
	if err != nil {
		return err
	}
	defer a.close()

	mcp.ServerVersion = version
	server := mcp.NewServer(a.indexer, syncRoot)

	var w *watcher.Watcher
	if flagServeWatch {
		w, err = watcher.New(a.root, a.cfg.Extensions, watcher.DefaultDebounce)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Closing stdin ends the session and the watcher with it
		defer cancel()
		slog.InfoContext(gctx, "MCP server ready, listening on stdio", "version", version, "root", a.root)
		return server.Serve(gctx)
	})

	if w != nil {
		g.Go(func() error {
			return w.Run(gctx, func(ctx context.Context) error {
				_, err := a.indexer.Sync(ctx, syncRoot, nil)
				return err
			})
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
