package repository

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"quietseed/internal/content"
	apperrors "quietseed/internal/errors"
	"quietseed/internal/model"
)

// newPost normalizes a create payload. CategoryID is resolved by the store.
func newPost(in model.PostInput, now time.Time) (model.Post, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return model.Post{}, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	if in.PublishedAt == nil {
		return model.Post{}, fmt.Errorf("%w: publishedAt is required", apperrors.ErrInvalidInput)
	}
	if in.AuthorID == nil || *in.AuthorID == 0 {
		return model.Post{}, fmt.Errorf("%w: authorId is required", apperrors.ErrInvalidInput)
	}

	p := model.Post{CreatedAt: now, UpdatedAt: now}
	if err := applyPostFields(&p, in); err != nil {
		return model.Post{}, err
	}
	if in.Slug == nil || strings.TrimSpace(*in.Slug) == "" {
		p.Slug = content.Slugify(p.Title)
	}
	if p.Slug == "" {
		return model.Post{}, fmt.Errorf("%w: slug cannot be derived from title", apperrors.ErrInvalidInput)
	}
	return p, nil
}

// patchPost merges the supplied fields onto p and bumps UpdatedAt.
// CategoryID is resolved by the store.
func patchPost(p *model.Post, in model.PostInput, now time.Time) error {
	next := *p
	if err := applyPostFields(&next, in); err != nil {
		return err
	}
	if strings.TrimSpace(next.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", apperrors.ErrInvalidInput)
	}
	if in.Slug != nil && next.Slug == "" {
		return fmt.Errorf("%w: slug cannot be empty", apperrors.ErrInvalidInput)
	}
	next.UpdatedAt = now
	*p = next
	return nil
}

func applyPostFields(p *model.Post, in model.PostInput) error {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Slug != nil {
		p.Slug = content.Slugify(*in.Slug)
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if in.ImageURL != nil {
		if url := strings.TrimSpace(*in.ImageURL); url != "" {
			p.ImageURL = &url
		} else {
			p.ImageURL = nil
		}
	}
	if in.PublishedAt != nil {
		publishedAt, err := CoerceTime(in.PublishedAt)
		if err != nil {
			return fmt.Errorf("publishedAt: %w", err)
		}
		p.PublishedAt = publishedAt
	}
	if in.AuthorID != nil {
		if *in.AuthorID == 0 {
			return fmt.Errorf("%w: authorId cannot be zero", apperrors.ErrInvalidInput)
		}
		p.AuthorID = *in.AuthorID
	}
	if in.Featured != nil {
		featured, err := CoerceBool(in.Featured)
		if err != nil {
			return fmt.Errorf("featured: %w", err)
		}
		p.Featured = featured
	}
	return nil
}

// resolveCategoryID maps a loose category reference onto an existing
// category. Absent, malformed or dangling references fall back to the first
// category; with no categories at all the post is left uncategorized.
func resolveCategoryID(raw any, exists func(uint) (bool, error), first func() (*uint, error)) (*uint, error) {
	if id, ok := coerceRef(raw); ok {
		found, err := exists(id)
		if err != nil {
			return nil, err
		}
		if found {
			return &id, nil
		}
	}
	return first()
}

// sortNewestFirst orders posts by PublishedAt descending; ties keep id order.
func sortNewestFirst(posts []model.Post) {
	slices.SortStableFunc(posts, func(a, b model.Post) int {
		if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

func matchesQuery(p model.Post, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(p.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Content), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Excerpt), lowerQuery)
}

// joinDetails flattens a post with its author and optional category.
// It returns nil when a referenced row is missing.
func joinDetails(p model.Post, category *model.Category, author *model.User) *model.PostWithDetails {
	if author == nil {
		return nil
	}
	if p.CategoryID != nil && category == nil {
		return nil
	}
	d := &model.PostWithDetails{
		Post:        p,
		AuthorName:  author.DisplayName,
		ReadingTime: content.ReadingTime(p.Content),
	}
	if d.AuthorName == "" {
		d.AuthorName = author.Username
	}
	if category != nil {
		d.CategoryName = category.Name
		d.CategorySlug = category.Slug
	}
	return d
}

func defaultPage(id string, now time.Time) model.PageContent {
	page := model.PageContent{ID: id, Title: id, LastUpdated: now}
	if defaults, ok := DefaultPages[id]; ok {
		page.Title = defaults.Title
		page.Content = defaults.Content
	}
	return page
}

func applyPagePatch(page *model.PageContent, patch model.PageContentPatch, now time.Time) {
	if patch.Title != nil {
		page.Title = *patch.Title
	}
	if patch.Content != nil {
		page.Content = *patch.Content
	}
	page.LastUpdated = now
}

// canonicalUsername folds usernames so lookups behave the same on every
// backend, whatever the database collation.
func canonicalUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func normalizeUser(u model.NewUser) (model.NewUser, error) {
	u.Username = canonicalUsername(u.Username)
	if u.Username == "" {
		return u, fmt.Errorf("%w: username is required", apperrors.ErrInvalidInput)
	}
	if u.Password == "" {
		return u, fmt.Errorf("%w: password is required", apperrors.ErrInvalidInput)
	}
	return u, nil
}

func normalizeCategory(c model.NewCategory) (model.NewCategory, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, fmt.Errorf("%w: category name is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(c.Slug) == "" {
		c.Slug = c.Name
	}
	c.Slug = content.Slugify(c.Slug)
	if c.Slug == "" {
		return c, fmt.Errorf("%w: category slug cannot be empty", apperrors.ErrInvalidInput)
	}
	return c, nil
}

func unknownAuthor(id uint) error {
	return fmt.Errorf("%w: author %d does not exist", apperrors.ErrInvalidInput, id)
}

func conflict(what, value string) error {
	return fmt.Errorf("%w: %s %q is taken", apperrors.ErrConflict, what, value)
}

// applyUserPatch merges everything except the username, which the stores
// check for uniqueness themselves.
func applyUserPatch(u *model.User, patch model.UserPatch) {
	if patch.Password != nil {
		u.Password = *patch.Password
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.IsAdmin != nil {
		u.IsAdmin = *patch.IsAdmin
	}
}
