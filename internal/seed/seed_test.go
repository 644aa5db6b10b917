package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quietseed/internal/auth"
	"quietseed/internal/repository"
)

func TestDefaultFixtures(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	assert.Len(t, f.Users, 2)
	assert.Len(t, f.Categories, 4)
	assert.Len(t, f.Posts, 4)
	assert.True(t, f.Posts[0].Featured)
}

func TestApply_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	f, err := Default()
	require.NoError(t, err)

	report, err := Apply(ctx, store, f)
	require.NoError(t, err)
	assert.Equal(t, Report{UsersCreated: 2, CategoriesCreated: 4, PostsCreated: 4}, report)

	again, err := Apply(ctx, store, f)
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 10}, again)

	posts, err := store.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 4)
	assert.Equal(t, "finding-stillness-in-a-busy-world", posts[0].Slug)
	assert.Equal(t, "month-without-internet", posts[3].Slug)

	featured, err := store.GetFeaturedPost(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Finding Stillness in a Busy World", featured.Title)
	assert.Equal(t, "Reflection", featured.CategoryName)
	assert.Equal(t, "Mai Chi", featured.AuthorName)

	letters, err := store.GetPostsByCategory(ctx, "philosophy")
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "The Forgotten Art of Letter Writing", letters[0].Title)
}

func TestApply_HashesPasswords(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	f, err := Default()
	require.NoError(t, err)
	_, err = Apply(ctx, store, f)
	require.NoError(t, err)

	admin, err := store.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.NotEqual(t, "admin123", admin.Password)
	assert.True(t, auth.CheckPassword(admin.Password, "admin123"))
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown key", doc: "users:\n  - username: a\n    password: b\n    role: admin\n"},
		{name: "missing password", doc: "users:\n  - username: a\n"},
		{name: "unknown author", doc: "posts:\n  - title: T\n    author: ghost\n    publishedAt: \"2023-01-01\"\n"},
		{name: "bad date", doc: "users:\n  - {username: a, password: b}\nposts:\n  - {title: T, author: a, publishedAt: soon}\n"},
		{name: "unknown category", doc: "users:\n  - {username: a, password: b}\nposts:\n  - {title: T, author: a, category: poetry, publishedAt: \"2023-01-01\"}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	f, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Posts)
}
