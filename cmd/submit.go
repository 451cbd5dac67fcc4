package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvichaar/quotepipe/internal/model"
)

var (
	submitJSONL string
	submitCSV   string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Upload the batch JSONL and submit the generation job",
	Long: `Uploads the prepared JSONL with purpose "batch", creates a batch job
with a 24h completion window, records the run in the local store, and writes
azure_batch_tracking_<ts>.json for the results step.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		client, err := newBatchClient()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(submitJSONL)
		if err != nil {
			return eris.Wrapf(err, "submit: read %s", submitJSONL)
		}

		fileID, err := client.UploadBatchFile(ctx, filepath.Base(submitJSONL), data, cfg.Batch.FileExpireSecs)
		if err != nil {
			return err
		}
		zap.L().Info("batch file uploaded", zap.String("file_id", fileID))

		job, err := client.CreateBatch(ctx, fileID)
		if err != nil {
			return err
		}
		zap.L().Info("batch job submitted",
			zap.String("batch_id", job.ID),
			zap.String("status", job.Status),
		)

		info := model.TrackingInfo{
			TS:        timestampFromArtifact(submitJSONL),
			BatchID:   job.ID,
			FileID:    fileID,
			JSONLFile: submitJSONL,
			CSVFile:   submitCSV,
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		run, err := st.CreateRun(ctx, info)
		if err != nil {
			return err
		}

		trackName := artifactName("azure_batch_tracking", info.TS, "json")
		trackData, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return eris.Wrap(err, "submit: marshal tracking info")
		}
		if err := os.WriteFile(trackName, trackData, 0o644); err != nil {
			return eris.Wrapf(err, "submit: write %s", trackName)
		}

		zap.L().Info("submit complete",
			zap.String("run_id", run.ID),
			zap.String("tracking_file", trackName),
		)
		return nil
	},
}

// timestampFromArtifact recovers the run timestamp embedded in an artifact
// name like quotefancy_azure_batch_1712345678.jsonl. Falls back to a fresh
// timestamp when the name does not carry one.
func timestampFromArtifact(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if idx := strings.LastIndex(base, "_"); idx != -1 {
		ts := base[idx+1:]
		if ts != "" && strings.IndexFunc(ts, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
			return ts
		}
	}
	return runTimestamp()
}

func init() {
	submitCmd.Flags().StringVar(&submitJSONL, "jsonl", "", "prepared batch JSONL file")
	submitCmd.Flags().StringVar(&submitCSV, "csv", "", "identified structured CSV (recorded for the merge step)")
	_ = submitCmd.MarkFlagRequired("jsonl")
	rootCmd.AddCommand(submitCmd)
}
