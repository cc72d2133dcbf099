// Package main provides the myceliactl CLI entry point.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mycelia/internal/repository/sqlite"
)

// Version is set at build time via ldflags
var Version = "dev"

var dbPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "myceliactl",
	Short: "Manage a mycelia signal network",
	Long: `myceliactl works with the same SQLite database the mycelia server
uses. It can export and import network snapshots, run offline signal
simulations, and print network statistics.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./mycelia.db", "SQLite database path")
	rootCmd.Version = Version
}

func openRepo() (*sqlite.Repository, error) {
	repo, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return repo, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
