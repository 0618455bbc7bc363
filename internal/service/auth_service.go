package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/forepost/api/configs"
	"github.com/forepost/api/internal/models"
	"github.com/forepost/api/internal/repository"
	"github.com/forepost/api/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const tokenDuration = 24 * time.Hour

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	UpdateCredentials(ctx context.Context, userID int64, currentPassword, newPassword string) error
	EnsureAdminUser(ctx context.Context, username, password string) error
}

type authService struct {
	cfg *config.Config
	ur  repository.UserRepository
}

func NewAuthService(cfg *config.Config, ur repository.UserRepository) AuthService {
	return &authService{cfg: cfg, ur: ur}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.ur.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		slog.Info("login attempt for unknown user", "username", username)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.cfg.JWTSecret, fmt.Sprintf("%d", user.ID), tokenDuration)
	if err != nil {
		return "", err
	}

	return token, nil
}

func (s *authService) UpdateCredentials(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if newPassword == "" {
		return errors.New("new password cannot be empty")
	}

	user, err := s.ur.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	return s.ur.UpdatePassword(ctx, userID, string(hash))
}

// EnsureAdminUser creates the bootstrap account when the users table is empty.
func (s *authService) EnsureAdminUser(ctx context.Context, username, password string) error {
	count, err := s.ur.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := s.ur.Create(ctx, &models.User{Username: username, PasswordHash: string(hash)}); err != nil {
		return err
	}

	slog.Info("created default admin user", "username", username)
	return nil
}
