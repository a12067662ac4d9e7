package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pautacamara",
	Short: "📋 Pauta Câmara - plenary agenda aggregation service",
	Long: `📋 Pauta Câmara

Aggregates the Chamber of Deputies' daily plenary agenda from the Dados
Abertos API, resolving procedural-bundle (PPP) references and enriching
each item with authors and DTQ highlights.

Run "pautacamara serve" to start the HTTP server.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
