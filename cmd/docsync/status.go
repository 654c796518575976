package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the index holds",
	Long: `Reports the number of indexed documents, the documents pending
reprocessing (those without a checksum) and the number of stored sections.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd.Context(), appConfig)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backend:   %s\n", status.Backend)
	fmt.Fprintf(out, "Documents: %d (%d pending)\n", status.Documents, status.Pending)
	fmt.Fprintf(out, "Sections:  %d\n", status.Sections)
	return nil
}
