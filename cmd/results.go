package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvichaar/quotepipe/internal/model"
	"github.com/suvichaar/quotepipe/pkg/azureopenai"
)

var (
	resultsTracking string
	resultsRunID    string
)

const resultURLExpiry = 24 * time.Hour

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Fetch completed batch output and publish it to blob storage",
	Long: `Checks the batch job's status. If it is not completed yet the command
reports the status and exits; re-invoking it later is always safe. Once
completed, the output file is downloaded, saved locally, uploaded to blob
storage, and a signed 24h download URL is printed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		info, runID, err := loadTracking(ctx)
		if err != nil {
			return err
		}

		client, err := newBatchClient()
		if err != nil {
			return err
		}

		job, err := client.GetBatch(ctx, info.BatchID)
		if err != nil {
			return err
		}
		zap.L().Info("batch status",
			zap.String("batch_id", job.ID),
			zap.String("status", job.Status),
		)

		if job.Status != azureopenai.StatusCompleted {
			zap.L().Info("batch not ready yet; try again later")
			return nil
		}

		fileID := job.OutputFileID
		if fileID == "" {
			fileID = job.ErrorFileID
		}
		if fileID == "" {
			return eris.Errorf("results: batch %s has no output or error file", job.ID)
		}

		data, err := client.DownloadFile(ctx, fileID)
		if err != nil {
			return err
		}

		outName := artifactName("batch_results", info.TS, "jsonl")
		if err := os.WriteFile(outName, data, 0o644); err != nil {
			return eris.Wrapf(err, "results: write %s", outName)
		}
		zap.L().Info("batch output saved", zap.String("file", outName))

		blob, err := newBlobClient()
		if err != nil {
			return err
		}
		if err := blob.Upload(ctx, outName, data, "application/json"); err != nil {
			return err
		}
		url, err := blob.SignedURL(outName, resultURLExpiry)
		if err != nil {
			return err
		}

		if runID != "" {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			if err := st.UpdateRunStatus(ctx, runID, model.RunStatusCompleted, url); err != nil {
				zap.L().Warn("results: update run failed", zap.Error(err))
			}
		}

		zap.L().Info("results published",
			zap.String("blob", outName),
			zap.String("url", url),
		)
		return nil
	},
}

// loadTracking resolves the batch to poll, either from a tracking JSON file
// or from a stored run ID.
func loadTracking(ctx context.Context) (*model.TrackingInfo, string, error) {
	switch {
	case resultsTracking != "":
		data, err := os.ReadFile(resultsTracking)
		if err != nil {
			return nil, "", eris.Wrapf(err, "results: read %s", resultsTracking)
		}
		var info model.TrackingInfo
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, "", eris.Wrapf(err, "results: parse %s", resultsTracking)
		}
		if info.BatchID == "" {
			return nil, "", eris.Errorf("results: %s has no batch_id", resultsTracking)
		}
		return &info, "", nil

	case resultsRunID != "":
		st, err := initStore(ctx)
		if err != nil {
			return nil, "", err
		}
		defer func() { _ = st.Close() }()
		run, err := st.GetRun(ctx, resultsRunID)
		if err != nil {
			return nil, "", err
		}
		return &model.TrackingInfo{
			TS:        run.TS,
			BatchID:   run.BatchID,
			FileID:    run.FileID,
			JSONLFile: run.JSONLFile,
			CSVFile:   run.CSVFile,
		}, run.ID, nil

	default:
		return nil, "", eris.New("results: either --tracking or --run is required")
	}
}

func init() {
	resultsCmd.Flags().StringVar(&resultsTracking, "tracking", "", "azure_batch_tracking_<ts>.json file")
	resultsCmd.Flags().StringVar(&resultsRunID, "run", "", "stored run ID (see 'runs list')")
	rootCmd.AddCommand(resultsCmd)
}
