package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quietseed/internal/auth"
	apperrors "quietseed/internal/errors"
	"quietseed/internal/model"
	"quietseed/internal/repository"
)

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, username string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, username, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func newStoreWithAdmin(t *testing.T) (*repository.MemoryStore, *model.User) {
	t.Helper()
	store := repository.NewMemoryStore()
	hashed, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	admin, err := store.CreateUser(context.Background(), model.NewUser{
		Username:    "admin",
		Password:    hashed,
		DisplayName: "Admin User",
		IsAdmin:     true,
	})
	require.NoError(t, err)
	return store, admin
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		allow         bool
		username      string
		expectedError error
	}{
		{name: "successful registration", allow: true, username: "reader"},
		{name: "username taken", allow: true, username: "admin", expectedError: apperrors.ErrConflict},
		{name: "registration closed", allow: false, username: "reader", expectedError: apperrors.ErrRegistrationClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newStoreWithAdmin(t)
			svc := NewAuthService(store, auth.NewJWTService("test-secret"), new(MockTokenStore), tt.allow)

			user, err := svc.Register(context.Background(), tt.username, "password123", "Reader")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, user.Username)
			assert.False(t, user.IsAdmin)
			assert.NotEqual(t, "password123", user.Password)
			assert.True(t, auth.CheckPassword(user.Password, "password123"))
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockTokenStore, *model.User)
		expectedError error
	}{
		{
			name:     "successful login",
			username: "admin",
			password: "admin123",
			setupMock: func(m *MockTokenStore, admin *model.User) {
				m.On("StoreRefreshToken", mock.Anything, mock.AnythingOfType("string"), admin.ID, "admin", auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:          "invalid credentials - unknown user",
			username:      "nobody",
			password:      "admin123",
			setupMock:     func(*MockTokenStore, *model.User) {},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:          "invalid credentials - wrong password",
			username:      "admin",
			password:      "admin124",
			setupMock:     func(*MockTokenStore, *model.User) {},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, admin := newStoreWithAdmin(t)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockTokenStore, admin)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(store, jwtService, mockTokenStore, false)

			accessToken, refreshToken, user, err := svc.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, refreshToken)
				assert.Equal(t, admin.ID, user.ID)

				claims, err := jwtService.ValidateAccessToken(accessToken)
				require.NoError(t, err)
				assert.True(t, claims.IsAdmin)
				assert.Equal(t, "admin", claims.Username)
			}

			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	store, admin := newStoreWithAdmin(t)
	jwtService := auth.NewJWTService("test-secret")
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(admin)
	require.NoError(t, err)
	accessToken, err := jwtService.GenerateAccessToken(admin)
	require.NoError(t, err)

	t.Run("stored token", func(t *testing.T) {
		m := new(MockTokenStore)
		m.On("GetRefreshToken", mock.Anything, tokenID).Return(admin.ID, "admin", nil)
		svc := NewAuthService(store, jwtService, m, false)

		fresh, err := svc.RefreshToken(context.Background(), refreshToken)
		require.NoError(t, err)
		claims, err := jwtService.ValidateAccessToken(fresh)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, claims.UserID)
		m.AssertExpectations(t)
	})

	t.Run("revoked token", func(t *testing.T) {
		m := new(MockTokenStore)
		m.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(0), "", auth.ErrRefreshTokenNotFound)
		svc := NewAuthService(store, jwtService, m, false)

		_, err := svc.RefreshToken(context.Background(), refreshToken)
		assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	})

	t.Run("access token presented", func(t *testing.T) {
		svc := NewAuthService(store, jwtService, new(MockTokenStore), false)
		_, err := svc.RefreshToken(context.Background(), accessToken)
		assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	store, admin := newStoreWithAdmin(t)
	jwtService := auth.NewJWTService("test-secret")
	accessToken, err := jwtService.GenerateAccessToken(admin)
	require.NoError(t, err)
	session, err := jwtService.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(admin)
	require.NoError(t, err)

	t.Run("revokes both tokens", func(t *testing.T) {
		m := new(MockTokenStore)
		m.On("BlacklistAccessToken", mock.Anything, session.ID, mock.AnythingOfType("time.Duration")).Return(nil)
		m.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)
		svc := NewAuthService(store, jwtService, m, false)

		require.NoError(t, svc.Logout(context.Background(), session, refreshToken))
		m.AssertExpectations(t)
	})

	t.Run("access token only", func(t *testing.T) {
		m := new(MockTokenStore)
		m.On("BlacklistAccessToken", mock.Anything, session.ID, mock.AnythingOfType("time.Duration")).Return(nil)
		svc := NewAuthService(store, jwtService, m, false)

		require.NoError(t, svc.Logout(context.Background(), session, ""))
		m.AssertExpectations(t)
		m.AssertNotCalled(t, "DeleteRefreshToken", mock.Anything, mock.Anything)
	})

	t.Run("no session", func(t *testing.T) {
		svc := NewAuthService(store, jwtService, new(MockTokenStore), false)
		assert.ErrorIs(t, svc.Logout(context.Background(), nil, ""), apperrors.ErrUnauthorized)
	})
}
