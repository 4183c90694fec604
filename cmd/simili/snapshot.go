package main

import (
	"fmt"

	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/catalog/snapshot"
	"github.com/spf13/cobra"
)

var (
	snapshotName string
	snapshotMock bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write the configured catalog to a snapshot blob",
	Long: `Read every track from the configured catalog source and write it, with
precomputed feature vectors, to a snapshot in the configured storage.`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotName, "name", "", "Snapshot blob name (default: catalog.snapshot)")
	snapshotCmd.Flags().BoolVar(&snapshotMock, "mock", false, "Snapshot the built-in mock catalog instead of the configured source")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := openStore(ctx, a.cfg.Storage)
	if err != nil {
		return err
	}
	optFn, err := a.snapshotOptions()
	if err != nil {
		return err
	}

	name := snapshotName
	if name == "" {
		name = a.cfg.Catalog.Snapshot
	}
	src := a.source
	if snapshotMock {
		src = catalog.NewMock()
	}

	n, err := snapshot.Export(ctx, src, store, name, optFn)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d tracks to %s (%s, %s)\n", n, name, a.cfg.Catalog.Codec, a.cfg.Catalog.Compression)
	return nil
}
