package delivery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	log "github.com/sirupsen/logrus"
)

type blobUploader interface {
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// BlobArchive keeps rendered reports in an Azure Blob Storage container.
type BlobArchive struct {
	client    blobUploader
	container string
}

// NewBlobArchive authenticates with the default Azure credential chain
// (environment, workload or managed identity, Azure CLI).
func NewBlobArchive(accountURL string, container string) (*BlobArchive, error) {
	if accountURL == "" || container == "" {
		return nil, fmt.Errorf("storage account url and container are required")
	}
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	client, err := azblob.NewClient(accountURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}
	return &BlobArchive{client: client, container: container}, nil
}

// Store uploads the rendered report and returns the blob name it was written to.
func (a *BlobArchive) Store(ctx context.Context, report Report, format Format, body []byte) (string, error) {
	name := BlobName(report.Brand, report.GeneratedAt, format)
	contentType := format.ContentType()
	_, err := a.client.UploadBuffer(ctx, a.container, name, body, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("upload report %s: %w", name, err)
	}
	log.WithField("container", a.container).WithField("blob", name).Info("archived report")
	return name, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// BlobName files reports under the brand, one blob per generation time.
func BlobName(brand string, generatedAt time.Time, format Format) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(brand), "-"), "-")
	if slug == "" {
		slug = "brand"
	}
	return fmt.Sprintf("%s/%s.%s", slug, generatedAt.UTC().Format("20060102T150405Z"), format.Extension())
}
