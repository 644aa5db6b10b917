package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"quietseed/internal/auth"
	"quietseed/internal/cache"
	apperrors "quietseed/internal/errors"
	"quietseed/internal/model"
	"quietseed/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService reads profiles and applies admin credential updates.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, patch model.UserPatch) (*model.User, error)
}

type userService struct {
	store   repository.Store
	cache   *cache.Client
	metrics MutationRecorder
}

// NewUserService builds a UserService with store and cache. The cache only
// ever holds the public profile; password hashes are not serialized.
func NewUserService(store repository.Store, cache *cache.Client, metrics MutationRecorder) UserService {
	return &userService{store: store, cache: cache, metrics: recorderOrNoop(metrics)}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) GetUser(ctx context.Context, id uint) (user *model.User, err error) {
	ctx, span := startSpan(ctx, "UserService.GetUser")
	defer func() { endSpan(span, err) }()

	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err = s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// UpdateUser hashes a supplied password before it reaches the store.
func (s *userService) UpdateUser(ctx context.Context, id uint, patch model.UserPatch) (user *model.User, err error) {
	ctx, span := startSpan(ctx, "UserService.UpdateUser")
	defer func() { endSpan(span, err) }()

	if patch.Password != nil {
		hashed, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hashed
	}

	user, err = s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	s.metrics.RecordMutation("user", "update")
	slog.InfoContext(ctx, "user updated", "user_id", id, "password_changed", patch.Password != nil)
	return user, nil
}
