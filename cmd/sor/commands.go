package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/sor/pkg/table"
)

// queryCmd answers point queries against a parsed file, in the traditional
// flag style: exactly one of the three query flags must be given.
func queryCmd(flags *rootFlags) *cobra.Command {
	var (
		printColType int
		printColIdx  []int
		isMissingIdx []int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Answer a point query against a parsed file",
		Long: `Parse the input and answer one query:

  --print-col-type N    print the inferred type of column N
  --print-col-idx C R   print the value at column C, row R
  --is-missing-idx C R  print 1 if the value at column C, row R is missing, else 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := parseInput(flags)
			if err != nil {
				return err
			}

			switch {
			case cmd.Flags().Changed("print-col-type"):
				t, err := tbl.ColumnType(printColType)
				if err != nil {
					printIndexError(tbl, printColType, 0)
					return nil
				}
				fmt.Println(t)

			case cmd.Flags().Changed("print-col-idx"):
				col, row, err := pair(printColIdx)
				if err != nil {
					return err
				}
				cell, err := tbl.Value(col, row)
				if err != nil {
					printIndexError(tbl, col, row)
					return nil
				}
				fmt.Println(cell)

			case cmd.Flags().Changed("is-missing-idx"):
				col, row, err := pair(isMissingIdx)
				if err != nil {
					return err
				}
				missing, err := tbl.IsMissing(col, row)
				if err != nil {
					printIndexError(tbl, col, row)
					return nil
				}
				if missing {
					fmt.Println(1)
				} else {
					fmt.Println(0)
				}

			default:
				return cmd.Help()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&printColType, "print-col-type", 0, "print the type of the given column")
	cmd.Flags().IntSliceVar(&printColIdx, "print-col-idx", nil, "print the value at column,row")
	cmd.Flags().IntSliceVar(&isMissingIdx, "is-missing-idx", nil, "print whether the value at column,row is missing")
	cmd.MarkFlagsMutuallyExclusive("print-col-type", "print-col-idx", "is-missing-idx")
	return cmd
}

func pair(vals []int) (int, int, error) {
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("expected column,row but got %d values", len(vals))
	}
	return vals[0], vals[1], nil
}

// printIndexError reports out-of-range queries the way the tool always has:
// on stdout, without failing the process.
func printIndexError(tbl *table.Table, col, row int) {
	if col < 0 || col >= tbl.ColumnCount() {
		fmt.Printf("Error: There are only %d fields in the schema\n", tbl.ColumnCount())
		return
	}
	if row < 0 || row >= tbl.RowCount() {
		fmt.Printf("Error: Only %d lines were parsed\n", tbl.RowCount())
	}
}

// inferCmd parses the input under the usual range and worker settings and
// prints the schema it was decoded against.
func inferCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer and print the schema of a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := parseInput(flags)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := tbl.Schema().JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			for i, t := range tbl.Schema() {
				fmt.Printf("%d: %s\n", i, t)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the schema as JSON")
	return cmd
}

// parseCmd decodes the file and prints a summary, optionally exporting the
// table.
func parseCmd(flags *rootFlags) *cobra.Command {
	var (
		arrowOut string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a file and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := parseInput(flags)
			if err != nil {
				return err
			}

			if arrowOut != "" {
				f, err := os.Create(arrowOut) //nolint:gosec // G304: output path from flag
				if err != nil {
					return err
				}
				if err := tbl.WriteArrowIPC(f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}

			if asJSON {
				summary := map[string]interface{}{
					"rows":    tbl.RowCount(),
					"columns": tbl.ColumnCount(),
					"schema":  tbl.Schema(),
				}
				data, err := json.Marshal(summary)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Println("rows:    " + strconv.Itoa(tbl.RowCount()))
			fmt.Println("columns: " + strconv.Itoa(tbl.ColumnCount()))
			for i, t := range tbl.Schema() {
				fmt.Printf("  %d: %s\n", i, t)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&arrowOut, "arrow", "", "write the table to the given path in Arrow IPC format")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}
