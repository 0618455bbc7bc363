package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/forepost/api/internal/models"
	"github.com/forepost/api/internal/notify"
	"github.com/forepost/api/internal/repository"
	"github.com/forepost/api/internal/transfer"
	"github.com/forepost/api/pkg/utils"
)

// EventSink receives post snapshots for real-time fan-out.
type EventSink interface {
	Publish(snapshot any)
}

// DeliveryResult reports a successful publish back to the caller.
type DeliveryResult struct {
	PlatformPostID string
	Warning        string
}

// DeliveryService drives a single post through the publisher and records the
// outcome. The immediate "post now" path and the scheduler share it.
type DeliveryService interface {
	Deliver(ctx context.Context, post *models.Post) (*DeliveryResult, error)
}

type deliveryService struct {
	pr        repository.PostRepository
	publisher XPublisher
	notifier  notify.Notifier
	events    EventSink
	uploadDir string
}

func NewDeliveryService(
	pr repository.PostRepository,
	publisher XPublisher,
	notifier notify.Notifier,
	events EventSink,
	uploadDir string) DeliveryService {
	return &deliveryService{
		pr:        pr,
		publisher: publisher,
		notifier:  notifier,
		events:    events,
		uploadDir: uploadDir,
	}
}

func (s *deliveryService) Deliver(ctx context.Context, post *models.Post) (*DeliveryResult, error) {
	if post.Platform != models.PlatformX {
		err := fmt.Errorf("unsupported platform: %s", post.Platform)
		slog.Error(err.Error(), "post_id", post.ID)
		s.recordFailure(ctx, post, err)
		return nil, err
	}

	// A declared image that is missing from storage does not fail the
	// delivery; the post goes out text-only.
	imagePath := ""
	if post.ImageFilename != "" {
		candidate := filepath.Join(s.uploadDir, post.ImageFilename)
		if _, err := os.Stat(candidate); err != nil {
			slog.Warn("image file not found, posting without it", "post_id", post.ID, "image", post.ImageFilename)
		} else {
			imagePath = candidate
		}
	}

	result, err := s.publisher.Publish(ctx, post.Content, imagePath)
	if err != nil {
		s.recordFailure(ctx, post, err)
		return nil, err
	}

	// The store reflects the new state before any observer hears about it. If
	// the write fails the row still reads "scheduled", so claiming success
	// here would lie to the operator about a post the next tick re-selects.
	if err := s.pr.SetPublished(ctx, post.ID, result.PostID); err != nil {
		slog.Error("post published but status write failed", "post_id", post.ID, "error", err)
		return nil, fmt.Errorf("record publish of post %d: %w", post.ID, err)
	}
	post.Status = models.PostStatusPosted
	post.PostID = result.PostID

	body := fmt.Sprintf("Post ID: %d\nContent: %s\nPlatform ID: %s\nTime: %s\n",
		post.ID, post.Content, post.PostID, time.Now().UTC().Format(time.RFC3339))
	if imagePath != "" {
		body += fmt.Sprintf("Image: %s\n", post.ImageFilename)
	}
	if result.Warning != "" {
		body += fmt.Sprintf("Warning: %s\n", result.Warning)
	}
	s.notifier.Notify(ctx, "Post Successfully Published", body)
	s.events.Publish(snapshot(post, result.Warning))

	return &DeliveryResult{PlatformPostID: result.PostID, Warning: result.Warning}, nil
}

func (s *deliveryService) recordFailure(ctx context.Context, post *models.Post, cause error) {
	// Same ordering rule as the success path: no failure notification for a
	// state the store does not hold yet.
	if err := s.pr.SetFailed(ctx, post.ID); err != nil {
		slog.Error("failed to record post failure", "post_id", post.ID, "error", err)
		return
	}
	post.Status = models.PostStatusFailed

	body := fmt.Sprintf("Post ID: %d\nContent: %s\nError: %s\nTime: %s\n",
		post.ID, post.Content, cause.Error(), time.Now().UTC().Format(time.RFC3339))
	s.notifier.Notify(ctx, "Post Failed", body)
	s.events.Publish(snapshot(post, ""))
}

func snapshot(post *models.Post, warning string) transfer.PostResponse {
	return transfer.PostResponse{
		ID:            post.ID,
		Content:       post.Content,
		ScheduledTime: utils.FormatEastern(post.ScheduledTime),
		Status:        post.Status,
		Platform:      post.Platform,
		PostID:        post.PostID,
		ImageFilename: post.ImageFilename,
		ImageURL:      post.ImageURL,
		Warning:       warning,
	}
}
