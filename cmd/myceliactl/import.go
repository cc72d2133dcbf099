package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mycelia/internal/codec"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a network snapshot from YAML or JSON",
	Long: `Import a snapshot file into the database, replacing whatever
network is currently persisted. The format follows the file extension.

Examples:
  myceliactl import network.yaml
  myceliactl import network.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	snap, err := codec.ForPath(args[0]).Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.SaveSnapshot(context.Background(), snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	fmt.Fprintf(os.Stderr, "imported %d nodes, %d hyphae from %s\n", len(snap.Nodes), len(snap.Hyphae), args[0])
	return nil
}
