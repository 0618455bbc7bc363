package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	config "github.com/forepost/api/configs"
	"github.com/forepost/api/internal/models"
	"github.com/forepost/api/pkg/utils"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID].PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, PasswordHash: string(hash)}
	_, err = repo.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func TestLogin(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	repo := newFakeUserRepo()
	seedUser(t, repo, "admin", "hunter2")
	svc := NewAuthService(cfg, repo)
	ctx := context.Background()

	t.Run("valid credentials return a token", func(t *testing.T) {
		token, err := svc.Login(ctx, "admin", "hunter2")
		require.NoError(t, err)

		claims, err := utils.ValidateToken(token, cfg.JWTSecret)
		require.NoError(t, err)
		assert.Equal(t, "1", claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "admin", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "hunter2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUpdateCredentials(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "admin", "oldpass")
	svc := NewAuthService(cfg, repo)
	ctx := context.Background()

	t.Run("wrong current password is rejected", func(t *testing.T) {
		err := svc.UpdateCredentials(ctx, user.ID, "nope", "newpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty new password is rejected", func(t *testing.T) {
		err := svc.UpdateCredentials(ctx, user.ID, "oldpass", "")
		assert.Error(t, err)
	})

	t.Run("valid rotation takes effect", func(t *testing.T) {
		require.NoError(t, svc.UpdateCredentials(ctx, user.ID, "oldpass", "newpass"))

		_, err := svc.Login(ctx, "admin", "oldpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "admin", "newpass")
		assert.NoError(t, err)
	})
}

func TestEnsureAdminUser(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	repo := newFakeUserRepo()
	svc := NewAuthService(cfg, repo)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdminUser(ctx, "admin", "changeme"))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// A populated table is left alone.
	require.NoError(t, svc.EnsureAdminUser(ctx, "admin", "changeme"))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = svc.Login(ctx, "admin", "changeme")
	assert.NoError(t, err)
}
