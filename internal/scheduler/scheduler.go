// Package scheduler runs the periodic job that publishes due posts.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/forepost/api/internal/models"
	"github.com/forepost/api/internal/notify"
	"github.com/forepost/api/internal/service"
)

// PostSource yields posts whose scheduled time falls at or before the given
// instant and whose status is still "scheduled".
type PostSource interface {
	GetDue(ctx context.Context, upcoming time.Time) ([]*models.Post, error)
}

// Deliverer publishes a single post and records the outcome.
type Deliverer interface {
	Deliver(ctx context.Context, post *models.Post) (*service.DeliveryResult, error)
}

// Scheduler polls for due posts on a fixed interval and feeds them to the
// delivery pipeline one at a time. A single instance per store is assumed;
// two would double-publish.
type Scheduler struct {
	cron     *cron.Cron
	posts    PostSource
	delivery Deliverer
	notifier notify.Notifier
	interval time.Duration
	advance  time.Duration

	shutdownOnce sync.Once
}

func New(posts PostSource, delivery Deliverer, notifier notify.Notifier, interval, advance time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		posts:    posts,
		delivery: delivery,
		notifier: notifier,
		interval: interval,
		advance:  advance,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.CheckScheduledPosts); err != nil {
		return fmt.Errorf("register scheduler job: %w", err)
	}

	s.cron.Start()
	slog.Info("scheduler started", "interval", s.interval.String(), "advance", s.advance.String())
	return nil
}

// CheckScheduledPosts is one tick: select due posts and deliver them
// sequentially. A tick that finds nothing is a no-op.
func (s *Scheduler) CheckScheduledPosts() {
	ctx := context.Background()
	upcoming := time.Now().UTC().Add(s.advance)

	posts, err := s.posts.GetDue(ctx, upcoming)
	if err != nil {
		slog.Error("failed to query due posts", "error", err)
		return
	}
	if len(posts) == 0 {
		return
	}

	slog.Info("processing due posts", "count", len(posts), "before", upcoming.Format(time.RFC3339))
	for _, post := range posts {
		s.processPost(ctx, post)
	}
}

// processPost isolates one delivery. A panic here must not take down the
// remaining posts in the batch or the loop itself.
func (s *Scheduler) processPost(ctx context.Context, post *models.Post) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic processing post", "post_id", post.ID, "recovered", r)
			s.notifier.Notify(ctx, "Scheduler Error",
				fmt.Sprintf("Error processing post %d: %v", post.ID, r))
		}
	}()

	// Publish failures are already recorded and notified by the delivery
	// pipeline; nothing more to do here.
	if _, err := s.delivery.Deliver(ctx, post); err != nil {
		slog.Error("scheduled delivery failed", "post_id", post.ID, "error", err)
	}
}

// Shutdown stops the periodic job and waits for an in-flight tick to finish.
// Safe to call more than once.
func (s *Scheduler) Shutdown() {
	s.shutdownOnce.Do(func() {
		slog.Info("shutting down scheduler...")
		<-s.cron.Stop().Done()
		slog.Info("scheduler stopped")
	})
}
