package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/forepost/api/configs"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, []byte("not a real png"), 0o644))
	return path
}

func TestPublishTestMode(t *testing.T) {
	client := NewXClient(&config.Config{XTestMode: true})

	result, err := client.Publish(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, TestPostID, result.PostID)
	assert.Empty(t, result.Warning)
}

func TestPublishTextOnly(t *testing.T) {
	tweets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text  string `json:"text"`
			Media *struct {
				MediaIDs []string `json:"media_ids"`
			} `json:"media"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "hello", payload.Text)
		assert.Nil(t, payload.Media)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data": {"id": "12345"}}`))
	}))
	defer tweets.Close()

	client := &XClient{
		httpClient:     tweets.Client(),
		createTweetURL: tweets.URL,
	}

	result, err := client.Publish(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "12345", result.PostID)
}

func TestPublishWithImage(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("media")
		require.NoError(t, err)
		w.Write([]byte(`{"media_id_string": "777"}`))
	}))
	defer media.Close()

	tweets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text  string `json:"text"`
			Media struct {
				MediaIDs []string `json:"media_ids"`
			} `json:"media"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, []string{"777"}, payload.Media.MediaIDs)
		w.Write([]byte(`{"data": {"id": "12346"}}`))
	}))
	defer tweets.Close()

	client := &XClient{
		httpClient:     http.DefaultClient,
		mediaUploadURL: media.URL,
		createTweetURL: tweets.URL,
	}

	result, err := client.Publish(context.Background(), "hello", writeTestImage(t))
	require.NoError(t, err)
	assert.Equal(t, "12346", result.PostID)
	assert.Empty(t, result.Warning)
}

func TestPublishImageUploadFallback(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors": [{"message": "media type unrecognized"}]}`, http.StatusBadRequest)
	}))
	defer media.Close()

	var sawMedia atomic.Bool
	tweets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		if _, ok := payload["media"]; ok {
			sawMedia.Store(true)
		}
		w.Write([]byte(`{"data": {"id": "12347"}}`))
	}))
	defer tweets.Close()

	client := &XClient{
		httpClient:     http.DefaultClient,
		mediaUploadURL: media.URL,
		createTweetURL: tweets.URL,
	}

	result, err := client.Publish(context.Background(), "hello", writeTestImage(t))
	require.NoError(t, err)
	assert.Equal(t, "12347", result.PostID)
	assert.Equal(t, WarningImageUploadFailed, result.Warning)
	assert.False(t, sawMedia.Load(), "fallback tweet must not carry media ids")
}

func TestPublishCreateTweetError(t *testing.T) {
	tweets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title": "Too Many Requests"}`, http.StatusTooManyRequests)
	}))
	defer tweets.Close()

	client := &XClient{
		httpClient:     tweets.Client(),
		createTweetURL: tweets.URL,
	}

	_, err := client.Publish(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
