package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/docsync/internal/storage"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("docsync version %s\n", version)
		cmd.Printf("Build Time: %s\n", buildTime)
		cmd.Printf("SQLite Driver: %s (%s)\n", storage.DriverName, storage.BuildMode)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
