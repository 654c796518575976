package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/docsync/internal/indexer"
	"github.com/dshills/docsync/internal/watcher"
)

var (
	flagRefresh bool
	flagWatch   bool
	flagStrict  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the search index with the documentation tree",
	Long: `Walks the documentation root and brings the index up to date.
Documents whose content checksum matches the stored one are skipped;
changed and new documents have their sections replaced and re-embedded.

A document that fails is reported and left marked for the next run; the
other documents are still processed. Use --strict to exit non-zero when
any document failed.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "reprocess every document regardless of its checksum")
	syncCmd.Flags().BoolVar(&flagWatch, "watch", false, "keep running and sync again when documents change")
	syncCmd.Flags().BoolVar(&flagStrict, "strict", false, "exit non-zero when any document failed")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, appConfig)
	if err != nil {
		return err
	}
	defer a.close()

	if err := syncOnce(ctx, cmd.OutOrStdout(), a, flagRefresh); err != nil {
		return err
	}
	if !flagWatch {
		return nil
	}

	w, err := watcher.New(a.root, a.cfg.Extensions, watcher.DefaultDebounce)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	cmd.PrintErrf("Watching %s for changes...\n", a.root)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, func(ctx context.Context) error {
			return syncOnce(ctx, cmd.OutOrStdout(), a, false)
		})
	})
	return g.Wait()
}

// syncOnce runs one sync and prints its summary. Per-document failures only
// produce an error in strict mode.
func syncOnce(ctx context.Context, out io.Writer, a *app, refresh bool) error {
	stats, err := a.indexer.Sync(ctx, syncRoot, &indexer.SyncConfig{Refresh: refresh})
	if stats != nil {
		printSummary(out, stats)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("sync interrupted: %w", err)
		}
		return fmt.Errorf("sync failed: %w", err)
	}
	if flagStrict && stats.HasFailures() {
		return fmt.Errorf("%d of %d documents failed", stats.Failed, stats.Discovered)
	}
	return nil
}

func printSummary(out io.Writer, stats *indexer.Statistics) {
	fmt.Fprintf(out, "Run %s finished in %s\n", stats.RunID, stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  Discovered:       %d\n", stats.Discovered)
	fmt.Fprintf(out, "  Skipped:          %d\n", stats.Skipped)
	fmt.Fprintf(out, "  Indexed:          %d\n", stats.Indexed)
	fmt.Fprintf(out, "  Failed:           %d\n", stats.Failed)
	fmt.Fprintf(out, "  Sections written: %d (%d replaced)\n", stats.SectionsInserted, stats.SectionsDeleted)
	fmt.Fprintf(out, "  Embedding calls:  %d (%d tokens)\n", stats.EmbeddingCalls, stats.TokensUsed)
	for _, f := range stats.Failures {
		fmt.Fprintf(out, "  FAILED %s [%s]: %v\n", f.Path, f.Stage, f.Err)
	}
}
