package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/upload", r.URL.Path)
		assert.Equal(t, "Bearer media-key", r.Header.Get("Authorization"))

		var req mediaUploadRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "lessons", req.Folder)
		assert.True(t, strings.HasPrefix(req.PublicID, "lessons/"))

		json.NewEncoder(w).Encode(MediaAsset{
			PublicID: req.PublicID,
			URL:      "https://cdn.example.com/" + req.PublicID,
		})
	}))
	defer srv.Close()

	svc := NewMediaService(srv.URL, "media-key")
	asset, err := svc.Upload(context.Background(), "lessons", "data:video/mp4;base64,AAAA")

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(asset.URL, "https://cdn.example.com/lessons/"))
}

func TestDestroy(t *testing.T) {
	var gotPublicID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/destroy", r.URL.Path)
		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPublicID = req["public_id"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewMediaService(srv.URL, "media-key")
	assert.NoError(t, svc.Destroy(context.Background(), "lessons/abc"))
	assert.Equal(t, "lessons/abc", gotPublicID)
}

func TestUploadProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"file too large"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	svc := NewMediaService(srv.URL, "media-key")
	asset, err := svc.Upload(context.Background(), "lessons", "AAAA")

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Nil(t, asset)
	assert.Contains(t, err.Error(), "file too large")
}
