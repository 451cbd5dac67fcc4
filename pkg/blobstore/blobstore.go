// Package blobstore uploads result artifacts to Azure Blob Storage and
// produces signed, time-limited download URLs.
package blobstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/rotisserie/eris"
)

// Config holds the storage account credentials and target container.
type Config struct {
	AccountName string
	AccountKey  string
	Container   string
}

// Client uploads blobs and signs read-only URLs for them.
type Client struct {
	client     *azblob.Client
	credential *azblob.SharedKeyCredential
	account    string
	container  string
}

// New creates a blob client from shared-key credentials.
func New(cfg Config) (*Client, error) {
	credential, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, eris.Wrap(err, "blobstore: credential")
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, eris.Wrap(err, "blobstore: client")
	}

	return &Client{
		client:     client,
		credential: credential,
		account:    cfg.AccountName,
		container:  cfg.Container,
	}, nil
}

// Upload writes the blob, overwriting any existing one with the same name.
func (c *Client) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := c.client.UploadBuffer(ctx, c.container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	return eris.Wrapf(err, "blobstore: upload %s", name)
}

// SignedURL returns a fully-qualified read-only URL for the blob that
// expires after the given duration.
func (c *Client) SignedURL(name string, expiry time.Duration) (string, error) {
	permissions := sas.BlobPermissions{Read: true}
	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		ExpiryTime:    time.Now().UTC().Add(expiry),
		Permissions:   permissions.String(),
		ContainerName: c.container,
		BlobName:      name,
	}

	params, err := values.SignWithSharedKey(c.credential)
	if err != nil {
		return "", eris.Wrapf(err, "blobstore: sign %s", name)
	}

	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s?%s",
		c.account, c.container, name, params.Encode()), nil
}
