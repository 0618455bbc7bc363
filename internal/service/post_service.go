package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/forepost/api/internal/models"
	"github.com/forepost/api/internal/repository"
	"github.com/forepost/api/internal/transfer"
	"github.com/forepost/api/pkg/utils"
)

// StatusPostNow is the update-request sentinel that publishes immediately
// instead of patching fields.
const StatusPostNow = "post_now"

type PostService interface {
	Create(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.Post, *DeliveryResult, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Update(ctx context.Context, userID, postID int64, pu *transfer.PostUpdate) (*models.Post, *DeliveryResult, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	pr       repository.PostRepository
	delivery DeliveryService
}

func NewPostService(pr repository.PostRepository, delivery DeliveryService) PostService {
	return &postService{pr: pr, delivery: delivery}
}

// Create stores a new post. A future scheduled time leaves it for the
// scheduler; a due time publishes synchronously and the outcome decides the
// final status.
func (s *postService) Create(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.Post, *DeliveryResult, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, nil, err
	}
	if pc.Content == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return nil, nil, err
	}
	if pc.Platform == "" {
		err := errors.New("platform is required")
		slog.Info(err.Error())
		return nil, nil, err
	}

	scheduledTime, err := utils.ParseScheduledTime(pc.ScheduledTime)
	if err != nil {
		slog.Error(err.Error())
		return nil, nil, err
	}

	post := &models.Post{
		UserID:        userID,
		Content:       pc.Content,
		ScheduledTime: scheduledTime,
		Status:        models.PostStatusDraft,
		Platform:      pc.Platform,
		ImageFilename: pc.ImageFilename,
		ImageURL:      pc.ImageURL,
	}

	if utils.IsFuture(scheduledTime) {
		post.Status = models.PostStatusScheduled
	}

	postID, err := s.pr.Create(ctx, nil, post)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating post: %w", err)
	}
	post.ID = postID
	post.CreatedAt = time.Now().UTC()

	if post.Status == models.PostStatusScheduled {
		slog.Info("post scheduled", "post_id", postID, "scheduled_time", utils.FormatEastern(scheduledTime))
		return post, nil, nil
	}

	// Scheduled time is now or in the past: publish immediately.
	result, err := s.delivery.Deliver(ctx, post)
	if err != nil {
		return post, nil, err
	}
	return post, result, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Update applies a partial edit. The "post_now" status publishes instead of
// patching. An edit that moves the scheduled time into the future re-derives
// status "scheduled", which is how a failed post gets resubmitted.
func (s *postService) Update(ctx context.Context, userID, postID int64, pu *transfer.PostUpdate) (*models.Post, *DeliveryResult, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, nil, err
	}

	if pu.Status != nil && *pu.Status == StatusPostNow {
		result, err := s.delivery.Deliver(ctx, post)
		if err != nil {
			return post, nil, err
		}
		return post, result, nil
	}

	if pu.Content != nil {
		if *pu.Content == "" {
			err := errors.New("content cannot be empty")
			slog.Info(err.Error())
			return nil, nil, err
		}
		post.Content = *pu.Content
	}

	timeChanged := false
	if pu.ScheduledTime != nil {
		scheduledTime, err := utils.ParseScheduledTime(*pu.ScheduledTime)
		if err != nil {
			slog.Error(err.Error())
			return nil, nil, err
		}
		post.ScheduledTime = scheduledTime
		timeChanged = true
	}

	if pu.Platform != nil {
		post.Platform = *pu.Platform
	}

	if pu.Status != nil {
		post.Status = *pu.Status
	} else if timeChanged && utils.IsFuture(post.ScheduledTime) {
		post.Status = models.PostStatusScheduled
	}

	// Empty string clears the image reference.
	if pu.ImageFilename != nil {
		post.ImageFilename = *pu.ImageFilename
	}
	if pu.ImageURL != nil {
		post.ImageURL = *pu.ImageURL
	}

	if err := s.pr.Update(ctx, post); err != nil {
		return nil, nil, fmt.Errorf("error updating post: %w", err)
	}

	return post, nil, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return err
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	return nil
}

var ErrPostNotFound = errors.New("post not found")

func (s *postService) ownedPost(ctx context.Context, userID, postID int64) (*models.Post, error) {
	if userID == 0 {
		err := errors.New("user is not valid")
		slog.Info(err.Error())
		return nil, err
	}
	if postID == 0 {
		err := errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isOwner, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		slog.Info(ErrPostNotFound.Error(), "post_id", postID, "user_id", userID)
		return nil, ErrPostNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil || post == nil {
		return nil, fmt.Errorf("error getting post info")
	}
	return post, nil
}
