// Package azblob issues client upload credentials for Azure Blob Storage and
// probes the blobs clients write with them.
package azblob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/applicant-intake/internal/config"
	"github.com/applicant-intake/internal/domain"
)

// Store wraps a container in a storage account.
type Store struct {
	client     *azblob.Client
	credential *azblob.SharedKeyCredential
	serviceURL string
	container  string
}

func NewStore(cfg config.BlobStorage) (*Store, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("azure blob storage is not configured: %w", domain.ErrUnavailable)
	}
	credential, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("create azure credential: %w", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL+"/", credential, nil)
	if err != nil {
		return nil, fmt.Errorf("create azure blob client: %w", err)
	}
	return &Store{client: client, credential: credential, serviceURL: serviceURL, container: cfg.Container}, nil
}

// BlobURL is the unsigned URL of key in the container.
func (s *Store) BlobURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.serviceURL, s.container, escapePath(key))
}

// UploadURL returns a SAS URL that allows creating and writing key until ttl elapses.
func (s *Store) UploadURL(key string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	params, err := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     now.Add(-5 * time.Minute),
		ExpiryTime:    now.Add(ttl),
		Permissions:   (&sas.BlobPermissions{Create: true, Write: true}).String(),
		ContainerName: s.container,
		BlobName:      key,
	}.SignWithSharedKey(s.credential)
	if err != nil {
		return "", fmt.Errorf("sign sas: %w", err)
	}
	return s.BlobURL(key) + "?" + params.Encode(), nil
}

// Head probes key. A missing blob is reported as Exists=false, not an error.
func (s *Store) Head(ctx context.Context, key string) (domain.UploadInfo, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(key)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if isNotFound(err) {
			return domain.UploadInfo{}, nil
		}
		return domain.UploadInfo{}, fmt.Errorf("get blob properties: %w", err)
	}
	info := domain.UploadInfo{Exists: true}
	if props.ContentLength != nil {
		info.Size = *props.ContentLength
	}
	if props.ContentType != nil {
		info.ContentType = *props.ContentType
	}
	return info, nil
}

// Delete removes key. Deleting a blob that does not exist is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(key)
	if _, err := blobClient.Delete(ctx, nil); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return true
	}
	var re *azcore.ResponseError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}

func escapePath(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
