package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quietseed/internal/auth"
	"quietseed/internal/config"
	apperrors "quietseed/internal/errors"
	"quietseed/internal/handler"
	"quietseed/internal/metrics"
	"quietseed/internal/model"
	"quietseed/internal/repository"
	"quietseed/internal/seed"
	"quietseed/internal/service"
)

// memoryTokens is an in-process TokenStoreInterface so revocation can be
// exercised without Redis.
type memoryTokens struct {
	mu      sync.Mutex
	refresh map[string]refreshEntry
	revoked map[string]bool
}

type refreshEntry struct {
	userID   uint
	username string
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{refresh: map[string]refreshEntry{}, revoked: map[string]bool{}}
}

func (m *memoryTokens) StoreRefreshToken(_ context.Context, tokenID string, userID uint, username string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh[tokenID] = refreshEntry{userID: userID, username: username}
	return nil
}

func (m *memoryTokens) GetRefreshToken(_ context.Context, tokenID string) (uint, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.refresh[tokenID]
	if !ok {
		return 0, "", auth.ErrRefreshTokenNotFound
	}
	return entry.userID, entry.username, nil
}

func (m *memoryTokens) DeleteRefreshToken(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refresh, tokenID)
	return nil
}

func (m *memoryTokens) BlacklistAccessToken(_ context.Context, tokenID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = true
	return nil
}

func (m *memoryTokens) IsAccessTokenBlacklisted(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[tokenID], nil
}

type testServer struct {
	e        *echo.Echo
	store    *repository.MemoryStore
	jwt      *auth.JWTService
	registry *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repository.NewMemoryStore()
	fixtures, err := seed.Default()
	require.NoError(t, err)
	_, err = seed.Apply(context.Background(), store, fixtures)
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		LoginRateLimit:     0,
		CORSAllowedOrigins: []string{"*"},
	}
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokens := newMemoryTokens()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	userService := service.NewUserService(store, nil, m)
	h := Handlers{
		Post:     handler.NewPostHandler(service.NewPostService(store, m)),
		Category: handler.NewCategoryHandler(service.NewCategoryService(store, m)),
		Settings: handler.NewSettingsHandler(service.NewSettingsService(store, m), service.NewPageService(store, m)),
		Auth:     handler.NewAuthHandler(service.NewAuthService(store, jwtService, tokens, false), userService),
		User:     handler.NewUserHandler(userService),
	}

	e := echo.New()
	Register(e, cfg, NewSessionGate(jwtService, tokens), m, registry, h)
	return &testServer{e: e, store: store, jwt: jwtService, registry: registry}
}

func (s *testServer) tokenFor(t *testing.T, username string) string {
	t.Helper()
	user, err := s.store.GetUserByUsername(context.Background(), username)
	require.NoError(t, err)
	require.NotNil(t, user)
	token, err := s.jwt.GenerateAccessToken(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_PublicReads(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{name: "health", target: "/healthz", status: http.StatusOK},
		{name: "list posts", target: "/api/posts", status: http.StatusOK},
		{name: "featured", target: "/api/posts/featured", status: http.StatusOK},
		{name: "post by slug", target: "/api/posts/month-without-internet", status: http.StatusOK},
		{name: "post by id", target: "/api/posts/1", status: http.StatusOK},
		{name: "unknown slug", target: "/api/posts/no-such-post", status: http.StatusNotFound, code: "POST_NOT_FOUND"},
		{name: "unknown id", target: "/api/posts/999", status: http.StatusNotFound, code: "POST_NOT_FOUND"},
		{name: "search without query", target: "/api/search", status: http.StatusBadRequest, code: "QUERY_REQUIRED"},
		{name: "posts search without query", target: "/api/posts/search", status: http.StatusOK},
		{name: "category", target: "/api/category/story", status: http.StatusOK},
		{name: "categories", target: "/api/categories", status: http.StatusOK},
		{name: "settings", target: "/api/settings", status: http.StatusOK},
		{name: "about page", target: "/api/pages/about", status: http.StatusOK},
		{name: "unknown page", target: "/api/pages/contact", status: http.StatusNotFound, code: "PAGE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(http.MethodGet, tt.target, "", "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, rec).Code)
			}
		})
	}
}

func TestRouter_PostViews(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/api/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 4)
	assert.Equal(t, "finding-stillness-in-a-busy-world", posts[0].Slug)

	rec = srv.do(http.MethodGet, "/api/posts/finding-stillness-in-a-busy-world", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var details model.PostWithDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, "Reflection", details.CategoryName)
	assert.Equal(t, "reflection", details.CategorySlug)
	assert.Equal(t, "Mai Chi", details.AuthorName)
	assert.Contains(t, details.ReadingTime, "min read")

	rec = srv.do(http.MethodGet, "/api/search?q=letter", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	posts = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "forgotten-art-of-letter-writing", posts[0].Slug)

	rec = srv.do(http.MethodGet, "/api/posts/category/all", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	posts = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	assert.Len(t, posts, 4)
}

func TestRouter_SessionGate(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.tokenFor(t, "admin")
	reader := srv.tokenFor(t, "maichi")

	adminUser, err := srv.store.GetUserByUsername(context.Background(), "admin")
	require.NoError(t, err)
	_, refresh, err := srv.jwt.GenerateRefreshToken(adminUser)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		status int
		code   string
	}{
		{name: "no token", method: http.MethodPost, target: "/api/posts", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "garbage token", method: http.MethodPost, target: "/api/posts", token: "not-a-jwt", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "refresh token as bearer", method: http.MethodGet, target: "/api/me", token: refresh, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "non-admin create", method: http.MethodPost, target: "/api/posts", token: reader, status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "non-admin delete", method: http.MethodDelete, target: "/api/posts/1", token: reader, status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "non-admin settings", method: http.MethodPut, target: "/api/settings", token: reader, status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "admin delete missing", method: http.MethodDelete, target: "/api/posts/999", token: admin, status: http.StatusNotFound, code: "POST_NOT_FOUND"},
		{name: "admin bad id", method: http.MethodPut, target: "/api/posts/abc", token: admin, status: http.StatusBadRequest, code: "INVALID_ID"},
		{name: "me", method: http.MethodGet, target: "/api/me", token: reader, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(tt.method, tt.target, "", tt.token)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, rec).Code)
			}
		})
	}
}

func TestRouter_LogoutRevokesAccessToken(t *testing.T) {
	srv := newTestServer(t)
	token := srv.tokenFor(t, "maichi")

	rec := srv.do(http.MethodGet, "/api/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodPost, "/api/logout", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(http.MethodGet, "/api/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CreatePostDefaultsAuthor(t *testing.T) {
	srv := newTestServer(t)
	token := srv.tokenFor(t, "admin")
	admin, err := srv.store.GetUserByUsername(context.Background(), "admin")
	require.NoError(t, err)

	body := `{"title":"Tea at Dawn","content":"<p>Steam rising.</p>","excerpt":"Steam.","publishedAt":"2023-07-01","featured":"false"}`
	rec := srv.do(http.MethodPost, "/api/posts", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var post model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, admin.ID, post.AuthorID)
	assert.Equal(t, "tea-at-dawn", post.Slug)
	assert.False(t, post.Featured)
	require.NotNil(t, post.CategoryID)

	rec = srv.do(http.MethodPost, "/api/posts",
		`{"title":"Ghost","content":"x","excerpt":"x","publishedAt":"2023-07-01","authorId":999}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)

	rec = srv.do(http.MethodPost, "/api/posts", `{"title":"No body"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, rec).Code)
}

func TestRouter_FeaturedFallsBackToNewest(t *testing.T) {
	srv := newTestServer(t)
	token := srv.tokenFor(t, "admin")

	rec := srv.do(http.MethodDelete, "/api/posts/1", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(http.MethodGet, "/api/posts/featured", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var featured model.PostWithDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &featured))
	assert.Equal(t, "5-simple-morning-rituals", featured.Slug)
	assert.False(t, featured.Featured)
}

func TestRouter_UpdateSettings(t *testing.T) {
	srv := newTestServer(t)
	token := srv.tokenFor(t, "admin")

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{name: "missing tagline", body: `{}`, status: http.StatusBadRequest},
		{name: "wrong type", body: `{"tagline":5}`, status: http.StatusBadRequest},
		{name: "valid", body: `{"tagline":"Slow down."}`, status: http.StatusOK, want: "Slow down."},
		{name: "empty tagline", body: `{"tagline":""}`, status: http.StatusBadRequest},
		{name: "too short", body: `{"tagline":"Slow."}`, status: http.StatusBadRequest},
		{name: "too long", body: `{"tagline":"` + strings.Repeat("a", 201) + `"}`, status: http.StatusBadRequest},
		{name: "longest allowed", body: `{"tagline":"` + strings.Repeat("a", 200) + `"}`, status: http.StatusOK, want: strings.Repeat("a", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(http.MethodPut, "/api/settings", tt.body, token)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			var settings model.SiteSettings
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
			assert.Equal(t, tt.want, settings.Tagline)
		})
	}
}

func TestRouter_RegistrationClosed(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/register", `{"username":"reader","password":"secret123"}`, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "REGISTRATION_CLOSED", decodeError(t, rec).Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	srv.do(http.MethodGet, "/api/posts", "", "")
	rec := srv.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `quietseed_http_requests_total{method="GET",route="/api/posts",status="200"} 1`)
}

func TestLoginRateLimiter(t *testing.T) {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, loginRateLimiter(1))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}
	assert.Equal(t, http.StatusNoContent, statuses[0])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
}

func TestRouter_LoginAndRefresh(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/login", `{"username":"admin","password":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, rec).Code)

	rec = srv.do(http.MethodPost, "/api/login", `{"username":"admin","password":"admin123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login handler.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)

	rec = srv.do(http.MethodPost, "/api/refresh", `{"refresh_token":"`+login.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var refreshed handler.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))

	rec = srv.do(http.MethodGet, "/api/me", "", refreshed.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "admin", me.Username)
	assert.True(t, me.IsAdmin)
}
