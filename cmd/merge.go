package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvichaar/quotepipe/internal/merge"
	"github.com/suvichaar/quotepipe/internal/table"
)

var (
	mergeCSV    string
	mergeJSONL  string
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge generated metadata back into the identified table",
	Long: `Joins batch results to the identified structured CSV on normalized
custom_id. Rows without a result keep their place with empty metadata; result
lines that fail to parse are skipped. Row count and order always match the
input table.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		t, err := table.ReadFile(mergeCSV)
		if err != nil {
			return err
		}

		f, err := os.Open(mergeJSONL)
		if err != nil {
			return eris.Wrapf(err, "merge: open %s", mergeJSONL)
		}
		results, err := merge.LoadResults(f)
		_ = f.Close()
		if err != nil {
			return err
		}

		merged, err := merge.Merge(t, results)
		if err != nil {
			return err
		}

		out := mergeOutput
		if out == "" {
			out = artifactName("Textual-Data-Quote-Fancy", runTimestamp(), "csv")
		}
		if err := merged.WriteFile(out); err != nil {
			return err
		}

		zap.L().Info("merge complete",
			zap.Int("rows", len(merged.Rows)),
			zap.Int("matched_results", len(results)),
			zap.String("file", out),
		)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeCSV, "csv", "", "identified structured CSV (with custom_id)")
	mergeCmd.Flags().StringVar(&mergeJSONL, "jsonl", "", "batch results JSONL")
	mergeCmd.Flags().StringVar(&mergeOutput, "output", "", "merged CSV path (default Textual-Data-Quote-Fancy_<ts>.csv)")
	_ = mergeCmd.MarkFlagRequired("csv")
	_ = mergeCmd.MarkFlagRequired("jsonl")
	rootCmd.AddCommand(mergeCmd)
}
