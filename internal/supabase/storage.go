package supabase

import (
	"bytes"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	baseURL string
}

func NewStorageClient(supabaseURL, key string) *StorageClient {
	baseURL := strings.TrimRight(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", key, nil)

	return &StorageClient{
		client:  client,
		baseURL: baseURL,
	}
}

// Upload stores data at bucket/path, replacing any existing object, and
// returns the object's public URL.
func (s *StorageClient) Upload(bucket, path string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/png"
	}
	upsert := true
	_, err := s.client.UploadFile(bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", path, bucket, err)
	}

	return s.PublicURL(bucket, path), nil
}

func (s *StorageClient) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucket, path)
}

func (s *StorageClient) Remove(bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if _, err := s.client.RemoveFile(bucket, paths); err != nil {
		return fmt.Errorf("failed to remove files from bucket %s: %w", bucket, err)
	}
	return nil
}

// Download reads bucket/path through the authenticated object endpoint, so
// private buckets work too.
func (s *StorageClient) Download(bucket, path string) ([]byte, error) {
	data, err := s.client.DownloadFile(bucket, path)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s from bucket %s: %w", path, bucket, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("downloaded %s from bucket %s is empty", path, bucket)
	}
	return data, nil
}
