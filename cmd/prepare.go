package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvichaar/quotepipe/internal/identify"
	"github.com/suvichaar/quotepipe/internal/payload"
	"github.com/suvichaar/quotepipe/internal/sanitize"
	"github.com/suvichaar/quotepipe/internal/table"
)

var prepareInput string

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Clean the structured table, assign identifiers, and build the batch JSONL",
	Long: `Takes a structured quotes CSV and produces four artifacts:

  cleaned_data_<ts>.csv         rows with no missing cells
  removed_data_<ts>.csv         rows dropped for inspection
  structured-data-id_<ts>.csv   clean rows with custom_id prepended
  quotefancy_azure_batch_<ts>.jsonl   one generation request per row`,
	RunE: func(_ *cobra.Command, _ []string) error {
		t, err := table.ReadFile(prepareInput)
		if err != nil {
			return err
		}

		ts := runTimestamp()

		clean, removed := sanitize.Partition(t)
		cleanName := artifactName("cleaned_data", ts, "csv")
		removedName := artifactName("removed_data", ts, "csv")
		if err := clean.WriteFile(cleanName); err != nil {
			return err
		}
		if err := removed.WriteFile(removedName); err != nil {
			return err
		}

		identified, err := identify.Assign(clean)
		if err != nil {
			return err
		}
		idName := artifactName("structured-data-id", ts, "csv")
		if err := identified.WriteFile(idName); err != nil {
			return err
		}

		requests, err := payload.Build(identified, cfg.Batch.Model)
		if err != nil {
			return err
		}
		jsonlName := artifactName("quotefancy_azure_batch", ts, "jsonl")
		f, err := os.Create(jsonlName)
		if err != nil {
			return eris.Wrapf(err, "prepare: create %s", jsonlName)
		}
		if err := payload.EncodeJSONL(f, requests); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "prepare: close %s", jsonlName)
		}

		zap.L().Info("prepare complete",
			zap.Int("clean_rows", len(clean.Rows)),
			zap.Int("removed_rows", len(removed.Rows)),
			zap.Int("requests", len(requests)),
			zap.String("identified_csv", idName),
			zap.String("batch_jsonl", jsonlName),
		)
		return nil
	},
}

func init() {
	prepareCmd.Flags().StringVar(&prepareInput, "input", "", "structured quotes CSV")
	_ = prepareCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(prepareCmd)
}
