// Package services holds thin HTTP clients for the external collaborators:
// the media storage provider, the transactional mail provider and the payment
// gateway. None of these are reimplemented here.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// MediaAsset is what the media provider hands back for an upload.
type MediaAsset struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

type MediaService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewMediaService(baseURL, apiKey string) *MediaService {
	return &MediaService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type mediaUploadRequest struct {
	PublicID string `json:"public_id"`
	Folder   string `json:"folder"`
	File     string `json:"file"` // base64 or remote URL, provider accepts both
}

// Upload pushes a file to the provider under the given folder and returns the
// stored asset.
func (m *MediaService) Upload(ctx context.Context, folder, file string) (*MediaAsset, error) {
	body, err := json.Marshal(mediaUploadRequest{
		PublicID: folder + "/" + uuid.NewString(),
		Folder:   folder,
		File:     file,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/upload", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media provider error: %v: %w", err, ErrProvider)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("media provider error: status=%d body=%s: %w", resp.StatusCode, raw, ErrProvider)
	}

	var asset MediaAsset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// Destroy removes a previously uploaded asset.
func (m *MediaService) Destroy(ctx context.Context, publicID string) error {
	body, err := json.Marshal(map[string]string{"public_id": publicID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/destroy", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("media provider error: %v: %w", err, ErrProvider)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("media provider error: status=%d body=%s: %w", resp.StatusCode, raw, ErrProvider)
	}
	return nil
}
