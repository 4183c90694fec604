package main

import (
	"fmt"

	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/catalog/dynamo"
	"github.com/hupe1980/simili/catalog/postgres"
	"github.com/hupe1980/simili/catalog/snapshot"
	"github.com/hupe1980/simili/model"
	"github.com/spf13/cobra"
)

var seedFrom string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load tracks into the configured postgres or dynamodb catalog",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFrom, "from", "mock", "Track source: mock or snapshot (catalog.snapshot in storage)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var tracks []model.Track
	switch seedFrom {
	case "mock":
		tracks = catalog.MockTracks()
	case "snapshot":
		store, err := openStore(ctx, a.cfg.Storage)
		if err != nil {
			return err
		}
		mem, err := snapshot.Load(ctx, store, a.cfg.Catalog.Snapshot)
		if err != nil {
			return err
		}
		if tracks, err = mem.List(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown seed source %q", seedFrom)
	}

	switch src := a.source.(type) {
	case *postgres.Store:
		err = src.Upsert(ctx, tracks...)
	case *dynamo.Store:
		err = src.Put(ctx, tracks...)
	default:
		return fmt.Errorf("catalog source %s is read-only", a.cfg.Catalog.Source)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d tracks into %s\n", len(tracks), a.cfg.Catalog.Source)
	return nil
}
