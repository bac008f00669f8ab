package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"go.uber.org/zap"
)

// Quote photos are small; one block per image keeps uploads to a single request.
const (
	imageBlockSize   = 4 << 20
	imageConcurrency = 2
	imageCacheHeader = "public, max-age=31536000, immutable"
)

// AzureBlobStorage keeps quote images in one Azure Blob Storage container
type AzureBlobStorage struct {
	container     *container.Client
	publicBaseURL string
	logger        *zap.Logger
}

// NewAzureBlobStorage connects to the account and makes sure the container
// exists. When publicBaseURL is empty, URLs point straight at the blob endpoint.
func NewAzureBlobStorage(connectionString, containerName, publicBaseURL string, logger *zap.Logger) (*AzureBlobStorage, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	containerClient := client.ServiceClient().NewContainerClient(containerName)
	if _, err := containerClient.Create(context.Background(), nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container %s: %w", containerName, err)
	}

	logger.Info("image storage ready", zap.String("backend", "azure"), zap.String("container", containerName))

	return &AzureBlobStorage{
		container:     containerClient,
		publicBaseURL: publicBaseURL,
		logger:        logger.With(zap.String("container", containerName)),
	}, nil
}

// Upload streams an image into the container under a fresh name
func (s *AzureBlobStorage) Upload(ctx context.Context, filename string, contentType string, data io.Reader) (string, int64, error) {
	name := objectName(filename)
	cacheControl := imageCacheHeader

	counted := &countingReader{r: data}
	_, err := s.container.NewBlockBlobClient(name).UploadStream(ctx, counted, &azblob.UploadStreamOptions{
		BlockSize:   imageBlockSize,
		Concurrency: imageConcurrency,
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType:  &contentType,
			BlobCacheControl: &cacheControl,
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	s.logger.Debug("image stored",
		zap.String("path", name),
		zap.String("content_type", contentType),
		zap.Int64("size", counted.n))

	return name, counted.n, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Download opens a stored image for streaming
func (s *AzureBlobStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	resp, err := s.container.NewBlobClient(storagePath).DownloadStream(ctx, nil)
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound):
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, storagePath)
	case err != nil:
		return nil, fmt.Errorf("failed to download %s: %w", storagePath, err)
	}
	return resp.Body, nil
}

// Delete removes a stored image; a missing blob is not an error
func (s *AzureBlobStorage) Delete(ctx context.Context, storagePath string) error {
	_, err := s.container.NewBlobClient(storagePath).Delete(ctx, nil)
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound):
		s.logger.Debug("image already gone", zap.String("path", storagePath))
		return nil
	case err != nil:
		return fmt.Errorf("failed to delete %s: %w", storagePath, err)
	}
	return nil
}

// URL returns the public address of a stored image
func (s *AzureBlobStorage) URL(storagePath string) string {
	if s.publicBaseURL != "" {
		return joinURL(s.publicBaseURL, storagePath)
	}
	return s.container.NewBlobClient(storagePath).URL()
}
