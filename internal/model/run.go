package model

import "time"

// RunStatus tracks where a batch run is in its lifecycle.
type RunStatus string

const (
	RunStatusSubmitted RunStatus = "submitted"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// BatchRun records one submitted generation batch so the results step can be
// re-invoked later without the tracking file.
type BatchRun struct {
	ID        string    `json:"id"`
	TS        string    `json:"ts"`
	BatchID   string    `json:"batch_id"`
	FileID    string    `json:"file_id"`
	JSONLFile string    `json:"jsonl_file"`
	CSVFile   string    `json:"csv_file"`
	Status    RunStatus `json:"status"`
	ResultURL string    `json:"result_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TrackingInfo is the downloadable artifact written at submit time. Field
// names match the JSON the batch tooling has always produced.
type TrackingInfo struct {
	TS        string `json:"ts"`
	BatchID   string `json:"batch_id"`
	FileID    string `json:"file_id"`
	JSONLFile string `json:"jsonl_file"`
	CSVFile   string `json:"csv_file"`
}
