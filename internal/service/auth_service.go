package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"quietseed/internal/auth"
	apperrors "quietseed/internal/errors"
	"quietseed/internal/model"
	"quietseed/internal/repository"
)

// AuthService handles the session lifecycle: login, token refresh, logout
// and optional self-registration.
type AuthService interface {
	Register(ctx context.Context, username, password, displayName string) (*model.User, error)
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, session *auth.Claims, refreshToken string) error
}

type authService struct {
	store             repository.Store
	jwtService        *auth.JWTService
	tokenStore        auth.TokenStoreInterface
	allowRegistration bool
}

// NewAuthService creates a new authentication service.
func NewAuthService(store repository.Store, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, allowRegistration bool) AuthService {
	return &authService{
		store:             store,
		jwtService:        jwtService,
		tokenStore:        tokenStore,
		allowRegistration: allowRegistration,
	}
}

// Register creates a non-admin user with a hashed password.
func (s *authService) Register(ctx context.Context, username, password, displayName string) (user *model.User, err error) {
	ctx, span := startSpan(ctx, "AuthService.Register", attribute.String("username", username))
	defer func() { endSpan(span, err) }()

	if !s.allowRegistration {
		return nil, apperrors.ErrRegistrationClosed
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err = s.store.CreateUser(ctx, model.NewUser{
		Username:    username,
		Password:    hashed,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and issues an access and a refresh token.
func (s *authService) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, user *model.User, err error) {
	ctx, span := startSpan(ctx, "AuthService.Login", attribute.String("username", username))
	defer func() { endSpan(span, err) }()

	user, err = s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.Password, password) {
		slog.WarnContext(ctx, "login rejected", "username", username)
		return "", "", nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Username, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return accessToken, refreshToken, user, nil
}

// RefreshToken exchanges a stored refresh token for a new access token.
// The user is re-read so a revoked admin flag takes effect immediately.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error) {
	ctx, span := startSpan(ctx, "AuthService.RefreshToken")
	defer func() { endSpan(span, err) }()

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	storedUserID, storedUsername, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedUsername != claims.Username {
		return "", apperrors.ErrInvalidRefreshToken
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes the current access token and, when given, the refresh token.
func (s *authService) Logout(ctx context.Context, session *auth.Claims, refreshToken string) (err error) {
	ctx, span := startSpan(ctx, "AuthService.Logout")
	defer func() { endSpan(span, err) }()

	if session == nil {
		return apperrors.ErrUnauthorized
	}
	if err := s.tokenStore.BlacklistAccessToken(ctx, session.ID, s.jwtService.RemainingLifetime(session)); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}

	if refreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrWrongTokenType) {
				return apperrors.ErrInvalidRefreshToken
			}
			return err
		}
		if claims.UserID != session.UserID {
			return apperrors.ErrInvalidRefreshToken
		}
		if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
			return fmt.Errorf("delete refresh token: %w", err)
		}
	}

	slog.InfoContext(ctx, "user logged out", "user_id", session.UserID)
	return nil
}
