package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvichaar/quotepipe/internal/structure"
	"github.com/suvichaar/quotepipe/internal/table"
)

var (
	structureInput  string
	structureOutput string
)

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Group raw quotes by author into the structured table",
	Long: `Reads a quotes table (CSV or XLSX) with Quote and Author columns and
emits one row per author with exactly eight quote slots, padded with the
sentinel where fewer quotes survive filtering.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		t, err := table.ReadFile(structureInput)
		if err != nil {
			return err
		}

		records, err := structure.BuildFromTable(t)
		if err != nil {
			return err
		}

		out := structureOutput
		if out == "" {
			out = artifactName("structured_quotes", runTimestamp(), "csv")
		}
		if err := structure.ToTable(records).WriteFile(out); err != nil {
			return err
		}

		zap.L().Info("structure complete",
			zap.Int("authors", len(records)),
			zap.String("file", out),
		)
		return nil
	},
}

func init() {
	structureCmd.Flags().StringVar(&structureInput, "input", "", "raw quotes CSV or XLSX")
	structureCmd.Flags().StringVar(&structureOutput, "output", "", "structured CSV path (default structured_quotes_<ts>.csv)")
	_ = structureCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(structureCmd)
}
