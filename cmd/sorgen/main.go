// sorgen generates synthetic SoR files for benchmarks and tests.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/sor/pkg/generate"
)

func main() {
	opts := generate.Defaults()
	var output string
	var seed int64

	root := &cobra.Command{
		Use:   "sorgen",
		Short: "Generate a synthetic SoR file",
		Long: `sorgen writes a SoR file of random records. Column types cycle through
int, float, bool and string. Output is deterministic for a given seed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Seed = seed
			if !cmd.Flags().Changed("seed") {
				opts.Seed = time.Now().UnixNano()
			}

			if output == "-" {
				return generate.Write(os.Stdout, opts)
			}
			if err := generate.WriteFile(output, opts); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %d rows x %d cols to %s\n", opts.Rows, opts.Cols, output)
			return nil
		},
	}

	root.Flags().StringVarP(&output, "output", "o", "data.sor", "output path (- for stdout)")
	root.Flags().IntVar(&opts.Rows, "rows", opts.Rows, "number of records")
	root.Flags().IntVar(&opts.Cols, "cols", opts.Cols, "fields per record")
	root.Flags().Int64Var(&seed, "seed", 0, "random seed (default: current time)")
	root.Flags().Float64Var(&opts.MissingRate, "missing-rate", 0, "probability that a field is missing")
	root.Flags().IntVar(&opts.StringLen, "string-len", opts.StringLen, "length of string fields")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
