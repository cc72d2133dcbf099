package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mycelia/internal/network"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics for the persisted network",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	snap, err := repo.LoadSnapshot(context.Background())
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	engine := network.New(network.DefaultConfig())
	engine.Import(snap)

	return printJSON(engine.RefreshStats())
}
