package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseStore uploads objects to a Supabase Storage bucket over its HTTP
// API. There is no transactional guarantee across calls; callers own the
// ordering and failure policy.
type SupabaseStore struct {
	baseURL    string // https://xyz.supabase.co
	serviceKey string
	bucket     string
	client     *http.Client
}

func NewSupabaseStore(baseURL, serviceKey, bucket string) *SupabaseStore {
	return &SupabaseStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured reports whether uploads can be attempted.
func (s *SupabaseStore) IsConfigured() bool {
	return s.baseURL != "" && s.serviceKey != "" && s.bucket != ""
}

// UploadFile streams an object to the bucket and returns its public URL.
func (s *SupabaseStore) UploadFile(ctx context.Context, path string, contentType string, data io.Reader) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, data)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true") // Overwrite if exists

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("storage upload failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, path), nil
}

// DeleteFile removes an object given its public URL. Unknown URL shapes are
// ignored rather than treated as errors, since deletes are best effort.
func (s *SupabaseStore) DeleteFile(ctx context.Context, publicURL string) error {
	// Public URL format: {base}/storage/v1/object/public/{bucket}/{path}
	marker := "/storage/v1/object/public/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return nil
	}
	bucketAndPath := publicURL[idx+len(marker):]

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s", s.baseURL, bucketAndPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("storage delete failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
