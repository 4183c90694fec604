package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/hupe1980/simili"
	"github.com/hupe1980/simili/features"
	"github.com/spf13/cobra"
)

var vectorizeStrict bool

var vectorizeCmd = &cobra.Command{
	Use:   "vectorize [features-json]",
	Short: "Convert a feature record to its normalized vector",
	Long: `Convert a JSON feature record to its normalized vector.
The record is read from the argument, or from stdin when no argument is given.

  simili vectorize '{"energy":0.8,"tempo":125,"valence":0.7}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVectorize,
}

func init() {
	vectorizeCmd.Flags().BoolVar(&vectorizeStrict, "strict", false, "Fail when a feature is out of range")
	rootCmd.AddCommand(vectorizeCmd)
}

func runVectorize(cmd *cobra.Command, args []string) error {
	var data []byte
	if len(args) == 1 {
		data = []byte(args[0])
	} else {
		var err error
		if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	var rec features.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("invalid feature record: %w", err)
	}

	if err := features.Validate(rec); err != nil {
		if vectorizeStrict {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(simili.Vectorize(rec))
}
