// Package store persists submitted batch runs so result fetching can be
// re-invoked without the tracking file.
package store

import (
	"context"

	"github.com/suvichaar/quotepipe/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus
	Limit  int
}

// Store defines the persistence interface for batch run tracking.
type Store interface {
	CreateRun(ctx context.Context, info model.TrackingInfo) (*model.BatchRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, resultURL string) error
	GetRun(ctx context.Context, runID string) (*model.BatchRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.BatchRun, error)

	Migrate(ctx context.Context) error
	Close() error
}
