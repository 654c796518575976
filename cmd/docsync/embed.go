package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/docsync/internal/embedder"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embedding provider commands",
}

var embedProbeCmd = &cobra.Command{
	Use:   "probe [text]",
	Short: "Embed a sample text with the configured provider",
	Long: `Sends one text to the configured embedding provider and prints the
provider, model, vector dimension and token count. Useful for checking
credentials and rate limits before a full sync.`,
	Args: cobra.ArbitraryArgs,
	RunE: runEmbedProbe,
}

func init() {
	embedCmd.AddCommand(embedProbeCmd)
	rootCmd.AddCommand(embedCmd)
}

func runEmbedProbe(cmd *cobra.Command, args []string) error {
	text := "docsync embedding probe"
	if len(args) > 0 {
		text = strings.Join(args, " ")
	}

	emb, err := embedder.New(appConfig.Embedder())
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}
	defer func() { _ = emb.Close() }()

	result, err := emb.Embed(cmd.Context(), text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Provider:  %s\n", emb.Provider())
	fmt.Fprintf(out, "Model:     %s\n", emb.Model())
	fmt.Fprintf(out, "Dimension: %d\n", result.Dimension)
	fmt.Fprintf(out, "Tokens:    %d\n", result.TokenCount)
	return nil
}
