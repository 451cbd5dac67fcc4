package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/suvichaar/quotepipe/internal/store"
	"github.com/suvichaar/quotepipe/pkg/azureopenai"
	"github.com/suvichaar/quotepipe/pkg/blobstore"
)

// runTimestamp is the unix-seconds string stamped into every artifact name
// of a run.
func runTimestamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// artifactName joins a prefix, run timestamp, and extension into the
// conventional artifact file name.
func artifactName(prefix, ts, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, ts, ext)
}

// initStore opens and migrates the run-tracking database.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// newBatchClient builds the generation batch client from config.
func newBatchClient() (azureopenai.Client, error) {
	if cfg.Batch.Endpoint == "" || cfg.Batch.Key == "" {
		return nil, eris.New("batch endpoint and key must be configured (QUOTEPIPE_BATCH_ENDPOINT / QUOTEPIPE_BATCH_KEY)")
	}
	return azureopenai.NewClient(cfg.Batch.Endpoint, cfg.Batch.Key, cfg.Batch.APIVersion), nil
}

// newBlobClient builds the blob storage client from config.
func newBlobClient() (*blobstore.Client, error) {
	if cfg.Blob.AccountName == "" || cfg.Blob.AccountKey == "" {
		return nil, eris.New("blob account name and key must be configured (QUOTEPIPE_BLOB_ACCOUNT_NAME / QUOTEPIPE_BLOB_ACCOUNT_KEY)")
	}
	return blobstore.New(blobstore.Config{
		AccountName: cfg.Blob.AccountName,
		AccountKey:  cfg.Blob.AccountKey,
		Container:   cfg.Blob.Container,
	})
}
