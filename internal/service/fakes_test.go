package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/forepost/api/internal/models"
)

// fakePostRepo is an in-memory PostRepository backing the service tests.
type fakePostRepo struct {
	mu     sync.Mutex
	posts  map[int64]*models.Post
	nextID int64

	createErr       error
	updateErr       error
	setPublishedErr error
	setFailedErr    error

	setPublishedCalls []string
	setFailedCalls    []int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*models.Post), nextID: 1}
}

func (r *fakePostRepo) add(post *models.Post) *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID == 0 {
		post.ID = r.nextID
		r.nextID++
	}
	r.posts[post.ID] = post
	return post
}

func (r *fakePostRepo) Create(_ context.Context, _ *sql.Tx, post *models.Post) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	return r.add(post).ID, nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id int64) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) GetByUserID(_ context.Context, userID int64) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, post := range r.posts {
		if post.UserID == userID {
			copied := *post
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePostRepo) GetDue(_ context.Context, upcoming time.Time) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, post := range r.posts {
		if post.Status == models.PostStatusScheduled && !post.ScheduledTime.After(upcoming) {
			copied := *post
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePostRepo) CheckByUserID(_ context.Context, postID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	return ok && post.UserID == userID, nil
}

func (r *fakePostRepo) Update(_ context.Context, post *models.Post) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return errors.New("post does not exist")
	}
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) SetPublished(_ context.Context, postID int64, platformPostID string) error {
	if r.setPublishedErr != nil {
		return r.setPublishedErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return errors.New("post does not exist")
	}
	post.Status = models.PostStatusPosted
	post.PostID = platformPostID
	r.setPublishedCalls = append(r.setPublishedCalls, platformPostID)
	return nil
}

func (r *fakePostRepo) SetFailed(_ context.Context, postID int64) error {
	if r.setFailedErr != nil {
		return r.setFailedErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return errors.New("post does not exist")
	}
	post.Status = models.PostStatusFailed
	r.setFailedCalls = append(r.setFailedCalls, postID)
	return nil
}

func (r *fakePostRepo) Remove(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

// fakePublisher records publish calls and returns a configured outcome.
type fakePublisher struct {
	mu     sync.Mutex
	calls  []publishCall
	result *PublishResult
	err    error
}

type publishCall struct {
	content   string
	imagePath string
}

func (p *fakePublisher) Publish(_ context.Context, content, imagePath string) (*PublishResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishCall{content: content, imagePath: imagePath})
	if p.err != nil {
		return nil, p.err
	}
	if p.result != nil {
		return p.result, nil
	}
	return &PublishResult{PostID: "100"}, nil
}

func (p *fakePublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// fakeNotifier captures notification subjects and bodies.
type fakeNotifier struct {
	mu       sync.Mutex
	subjects []string
	bodies   []string
}

func (n *fakeNotifier) Notify(_ context.Context, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
}

// fakeEventSink captures published snapshots.
type fakeEventSink struct {
	mu        sync.Mutex
	snapshots []any
}

func (e *fakeEventSink) Publish(snapshot any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshots = append(e.snapshots, snapshot)
}

// fakeSettingsRepo is an in-memory SettingsRepository.
type fakeSettingsRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{values: make(map[string]string)}
}

func (r *fakeSettingsRepo) Get(_ context.Context, key string) (*models.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.values[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, Value: value}, nil
}

func (r *fakeSettingsRepo) Upsert(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *fakeSettingsRepo) List(_ context.Context) ([]*models.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Setting, 0, len(r.values))
	for key, value := range r.values {
		out = append(out, &models.Setting{Key: key, Value: value})
	}
	return out, nil
}
