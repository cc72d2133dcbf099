package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mycelia/internal/codec"
)

var exportFormat string

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "Output format when writing to stdout (yaml or json)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the network snapshot to YAML or JSON",
	Long: `Export the persisted network snapshot.

With a file argument the format follows the file extension; without
one the snapshot is written to stdout in the --format format.

Examples:
  myceliactl export network.yaml
  myceliactl export network.json
  myceliactl export --format json > network.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	snap, err := repo.LoadSnapshot(context.Background())
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create %s: %w", args[0], err)
		}
		defer f.Close()

		if err := codec.ForPath(args[0]).Export(snap, f); err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}

		fmt.Fprintf(os.Stderr, "exported %d nodes, %d hyphae to %s\n", len(snap.Nodes), len(snap.Hyphae), args[0])
		return nil
	}

	var c codec.Codec
	switch exportFormat {
	case "json":
		c = codec.NewJSONCodec()
	case "yaml", "yml":
		c = codec.NewYAMLCodec()
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", exportFormat)
	}

	return c.Export(snap, os.Stdout)
}
