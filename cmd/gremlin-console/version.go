package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the console version",
	Run: func(_ *cobra.Command, _ []string) {
		pterm.Println("gremlin-console " + version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
