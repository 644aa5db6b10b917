// Package repository is the content store of the blog: users, categories,
// posts, site settings and static pages behind one interface with a volatile
// (MemoryStore) and a durable (GormStore) implementation.
//
// Lookups that find nothing return (nil, nil); errors are reserved for
// invalid input, uniqueness conflicts and backend failures.
package repository

import (
	"context"
	"time"

	"quietseed/internal/model"
)

// AllCategoriesSlug lists every post when used as a category slug and no
// category actually owns it.
const AllCategoriesSlug = "all"

// DefaultTagline seeds the settings singleton the first time it is read.
const DefaultTagline = "Mindful reflections, gentle guides and thoughtful stories about slow living."

// PageDefaults is the built-in content of a known static page.
type PageDefaults struct {
	Title   string
	Content string
}

// DefaultPages lists the page ids that are created lazily on first read.
var DefaultPages = map[string]PageDefaults{
	"about": {
		Title: "About The Quiet Seed",
		Content: "<p>The Quiet Seed is a space for mindful reflections, gentle how-to guides " +
			"and thoughtful stories about slow living in a fast-paced world.</p>" +
			"<p>Every post is an invitation to pause, breathe and notice the small things " +
			"that make an ordinary day feel whole.</p>",
	},
}

// Store is the storage contract shared by every backend.
type Store interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, user model.NewUser) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, patch model.UserPatch) (*model.User, error)

	GetAllCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*model.Category, error)
	CreateCategory(ctx context.Context, category model.NewCategory) (*model.Category, error)

	// GetAllPosts returns every post, most recently published first.
	GetAllPosts(ctx context.Context) ([]model.Post, error)
	GetPost(ctx context.Context, id uint) (*model.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*model.Post, error)
	// GetPostWithDetails returns nil unless the post, its author and its
	// category (when it has one) all resolve.
	GetPostWithDetails(ctx context.Context, slug string) (*model.PostWithDetails, error)
	// GetFeaturedPost returns the first post flagged featured, falling back
	// to the most recently published post.
	GetFeaturedPost(ctx context.Context) (*model.PostWithDetails, error)
	GetPostsByCategory(ctx context.Context, categorySlug string) ([]model.Post, error)
	CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error)
	UpdatePost(ctx context.Context, id uint, input model.PostInput) (*model.Post, error)
	DeletePost(ctx context.Context, id uint) (bool, error)
	// SearchPosts matches title, content or excerpt case-insensitively.
	// A blank query returns every post.
	SearchPosts(ctx context.Context, query string) ([]model.Post, error)

	GetSiteSettings(ctx context.Context) (*model.SiteSettings, error)
	UpdateSiteSettings(ctx context.Context, patch model.SiteSettingsPatch) (*model.SiteSettings, error)

	// GetPageContent returns nil for unknown page ids that were never written.
	GetPageContent(ctx context.Context, id string) (*model.PageContent, error)
	UpdatePageContent(ctx context.Context, id string, patch model.PageContentPatch) (*model.PageContent, error)
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for createdAt/updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
