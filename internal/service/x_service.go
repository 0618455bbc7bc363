package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dghubble/oauth1"
	config "github.com/forepost/api/configs"
)

const (
	defaultMediaUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	defaultCreateTweetURL = "https://api.twitter.com/2/tweets"

	// Synthetic post id returned in test mode.
	TestPostID = "test_123"
)

// PublishResult is the success variant of a publish attempt. Warning is set
// when the text posted but the image upload did not.
type PublishResult struct {
	PostID  string
	Warning string
}

// WarningImageUploadFailed marks a text-only fallback after a failed image upload.
const WarningImageUploadFailed = "image upload failed"

type XPublisher interface {
	Publish(ctx context.Context, content, imagePath string) (*PublishResult, error)
}

// XClient posts to X. Media goes through the v1.1 upload endpoint, tweets
// through the v2 endpoint; both are OAuth 1.0a user-context signed.
type XClient struct {
	httpClient     *http.Client
	testMode       bool
	mediaUploadURL string
	createTweetURL string
}

func NewXClient(cfg *config.Config) *XClient {
	client := &XClient{
		testMode:       cfg.XTestMode,
		mediaUploadURL: defaultMediaUploadURL,
		createTweetURL: defaultCreateTweetURL,
	}

	if cfg.XTestMode {
		slog.Info("X client initialized in test mode")
		return client
	}

	oauthConfig := oauth1.NewConfig(cfg.XAPIKey, cfg.XAPISecret)
	token := oauth1.NewToken(cfg.XAccessToken, cfg.XAccessTokenSecret)
	client.httpClient = oauthConfig.Client(oauth1.NoContext, token)
	client.httpClient.Timeout = 2 * time.Minute
	slog.Info("X client initialized")
	return client
}

// Publish posts content, optionally with an image. A failed image upload falls
// back to a text-only post; the fallback's own failure is the final result.
func (c *XClient) Publish(ctx context.Context, content, imagePath string) (*PublishResult, error) {
	if c.testMode {
		slog.Info("test mode: skipping actual post")
		return &PublishResult{PostID: TestPostID}, nil
	}

	var mediaIDs []string
	var warning string

	if imagePath != "" {
		mediaID, err := c.uploadMedia(ctx, imagePath)
		if err != nil {
			slog.Warn("image upload failed, falling back to text-only post", "image", filepath.Base(imagePath), "error", err)
			warning = WarningImageUploadFailed
		} else {
			slog.Info("image uploaded", "media_id", mediaID)
			mediaIDs = append(mediaIDs, mediaID)
		}
	}

	postID, err := c.createTweet(ctx, content, mediaIDs)
	if err != nil {
		slog.Error("failed to post to X", "error", err)
		return nil, err
	}

	slog.Info("posted to X", "post_id", postID)
	return &PublishResult{PostID: postID, Warning: warning}, nil
}

func (c *XClient) uploadMedia(ctx context.Context, imagePath string) (string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("media", filepath.Base(imagePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mediaUploadURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("media upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("media upload returned status %d: %s", resp.StatusCode, body)
	}

	var uploadResponse struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResponse); err != nil {
		return "", fmt.Errorf("decode media upload response: %w", err)
	}
	if uploadResponse.MediaIDString == "" {
		return "", errors.New("media upload response missing media id")
	}

	return uploadResponse.MediaIDString, nil
}

func (c *XClient) createTweet(ctx context.Context, content string, mediaIDs []string) (string, error) {
	payload := map[string]any{"text": content}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]any{"media_ids": mediaIDs}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.createTweetURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create tweet request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("create tweet returned status %d: %s", resp.StatusCode, respBody)
	}

	var tweetResponse struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tweetResponse); err != nil {
		return "", fmt.Errorf("decode create tweet response: %w", err)
	}
	if tweetResponse.Data.ID == "" {
		return "", errors.New("create tweet response missing post id")
	}

	return tweetResponse.Data.ID, nil
}
