// Package azureopenai wraps the Azure OpenAI batch surface used by the
// pipeline: file upload, batch creation, status retrieval, and output
// download.
package azureopenai

import (
	"bytes"
	"context"
	"io"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
	"github.com/rotisserie/eris"
)

// Batch statuses the pipeline cares about.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// BatchJob is the subset of a batch's state the pipeline consumes.
type BatchJob struct {
	ID           string
	Status       string
	InputFileID  string
	OutputFileID string
	ErrorFileID  string
}

// Client defines the batch service operations.
type Client interface {
	// UploadBatchFile uploads a JSONL payload with purpose "batch" and
	// returns the file ID.
	UploadBatchFile(ctx context.Context, filename string, data []byte, expireSecs int64) (string, error)
	// CreateBatch submits a batch job over the uploaded file.
	CreateBatch(ctx context.Context, inputFileID string) (*BatchJob, error)
	// GetBatch retrieves current batch state. Read-only and safe to re-invoke.
	GetBatch(ctx context.Context, batchID string) (*BatchJob, error)
	// DownloadFile fetches the raw content of a service-side file.
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// Option configures the client.
type Option func(*sdkClient)

// WithRequestOptions appends raw SDK request options (for testing).
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *sdkClient) {
		c.requestOpts = append(c.requestOpts, opts...)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *sdkClient) {
		c.requestOpts = append(c.requestOpts, option.WithHTTPClient(hc))
	}
}

type sdkClient struct {
	oc          openai.Client
	requestOpts []option.RequestOption
}

// NewClient creates a batch client against an Azure OpenAI endpoint.
func NewClient(endpoint, apiKey, apiVersion string, opts ...Option) Client {
	c := &sdkClient{
		requestOpts: []option.RequestOption{
			azure.WithEndpoint(endpoint, apiVersion),
			azure.WithAPIKey(apiKey),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.oc = openai.NewClient(c.requestOpts...)
	return c
}

func (c *sdkClient) UploadBatchFile(ctx context.Context, filename string, data []byte, expireSecs int64) (string, error) {
	params := openai.FileNewParams{
		File:    openai.File(bytes.NewReader(data), filename, "application/jsonl"),
		Purpose: openai.FilePurposeBatch,
	}
	if expireSecs > 0 {
		params.ExpiresAfter = openai.FileNewParamsExpiresAfter{
			Anchor:  constant.ValueOf[constant.CreatedAt](),
			Seconds: expireSecs,
		}
	}

	f, err := c.oc.Files.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "azureopenai: upload batch file")
	}
	return f.ID, nil
}

func (c *sdkClient) CreateBatch(ctx context.Context, inputFileID string) (*BatchJob, error) {
	// The Azure deployment expects the bare chat completions path, not the
	// /v1-prefixed one the SDK constant carries.
	b, err := c.oc.Batches.New(ctx, openai.BatchNewParams{
		InputFileID:      inputFileID,
		Endpoint:         openai.BatchNewParamsEndpoint("/chat/completions"),
		CompletionWindow: openai.BatchNewParamsCompletionWindow24h,
	})
	if err != nil {
		return nil, eris.Wrap(err, "azureopenai: create batch")
	}
	return fromBatch(b), nil
}

func (c *sdkClient) GetBatch(ctx context.Context, batchID string) (*BatchJob, error) {
	b, err := c.oc.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, eris.Wrapf(err, "azureopenai: get batch %s", batchID)
	}
	return fromBatch(b), nil
}

func (c *sdkClient) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.oc.Files.Content(ctx, fileID)
	if err != nil {
		return nil, eris.Wrapf(err, "azureopenai: download file %s", fileID)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "azureopenai: read file %s", fileID)
	}
	return data, nil
}

func fromBatch(b *openai.Batch) *BatchJob {
	return &BatchJob{
		ID:           b.ID,
		Status:       string(b.Status),
		InputFileID:  b.InputFileID,
		OutputFileID: b.OutputFileID,
		ErrorFileID:  b.ErrorFileID,
	}
}
