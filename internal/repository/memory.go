package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"quietseed/internal/model"
)

// MemoryStore keeps everything in process memory. Contents are lost on
// restart. A single mutex serializes writers so lazy creation of settings
// and pages is atomic.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	users      map[uint]model.User
	categories map[uint]model.Category
	posts      map[uint]model.Post
	pages      map[string]model.PageContent
	settings   *model.SiteSettings

	nextUserID     uint
	nextCategoryID uint
	nextPostID     uint
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		now:            func() time.Time { return o.now().UTC() },
		users:          make(map[uint]model.User),
		categories:     make(map[uint]model.Category),
		posts:          make(map[uint]model.Post),
		pages:          make(map[string]model.PageContent),
		nextUserID:     1,
		nextCategoryID: 1,
		nextPostID:     1,
	}
}

// Users

func (s *MemoryStore) GetUser(_ context.Context, id uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userByUsername(canonicalUsername(username)), nil
}

func (s *MemoryStore) userByUsername(username string) *model.User {
	for _, u := range s.users {
		if u.Username == username {
			return &u
		}
	}
	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, in model.NewUser) (*model.User, error) {
	in, err := normalizeUser(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userByUsername(in.Username) != nil {
		return nil, conflict("username", in.Username)
	}

	u := model.User{
		ID:          s.nextUserID,
		Username:    in.Username,
		Password:    in.Password,
		DisplayName: in.DisplayName,
		IsAdmin:     in.IsAdmin,
		CreatedAt:   s.now(),
	}
	s.nextUserID++
	s.users[u.ID] = u
	return &u, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id uint, patch model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if patch.Username != nil {
		username := canonicalUsername(*patch.Username)
		if other := s.userByUsername(username); other != nil && other.ID != id {
			return nil, conflict("username", username)
		}
		u.Username = username
	}
	applyUserPatch(&u, patch)
	if _, err := normalizeUser(model.NewUser{Username: u.Username, Password: u.Password}); err != nil {
		return nil, err
	}
	s.users[id] = u
	return &u, nil
}

// Categories

func (s *MemoryStore) GetAllCategories(_ context.Context) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Category, 0, len(s.categories))
	for id := uint(1); id < s.nextCategoryID; id++ {
		if c, ok := s.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetCategoryBySlug(_ context.Context, slug string) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categoryBySlug(slug), nil
}

func (s *MemoryStore) categoryBySlug(slug string) *model.Category {
	for _, c := range s.categories {
		if c.Slug == slug {
			return &c
		}
	}
	return nil
}

func (s *MemoryStore) GetCategoryByID(_ context.Context, id uint) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.categories[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, in model.NewCategory) (*model.Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Slug == in.Slug {
			return nil, conflict("category slug", in.Slug)
		}
		if c.Name == in.Name {
			return nil, conflict("category name", in.Name)
		}
	}

	c := model.Category{
		ID:          s.nextCategoryID,
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		CreatedAt:   s.now(),
	}
	s.nextCategoryID++
	s.categories[c.ID] = c
	return &c, nil
}

// Posts

func (s *MemoryStore) GetAllPosts(_ context.Context) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterPosts(func(model.Post) bool { return true }), nil
}

// filterPosts returns matching posts newest first. Callers hold the lock.
func (s *MemoryStore) filterPosts(keep func(model.Post) bool) []model.Post {
	out := make([]model.Post, 0, len(s.posts))
	for id := uint(1); id < s.nextPostID; id++ {
		if p, ok := s.posts[id]; ok && keep(p) {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	return out
}

func (s *MemoryStore) GetPost(_ context.Context, id uint) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.posts[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetPostBySlug(_ context.Context, slug string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.postBySlug(slug), nil
}

func (s *MemoryStore) postBySlug(slug string) *model.Post {
	for _, p := range s.posts {
		if p.Slug == slug {
			return &p
		}
	}
	return nil
}

func (s *MemoryStore) GetPostWithDetails(_ context.Context, slug string) (*model.PostWithDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.postBySlug(slug)
	if p == nil {
		return nil, nil
	}
	return s.details(*p), nil
}

func (s *MemoryStore) details(p model.Post) *model.PostWithDetails {
	var category *model.Category
	if p.CategoryID != nil {
		if c, ok := s.categories[*p.CategoryID]; ok {
			category = &c
		}
	}
	var author *model.User
	if u, ok := s.users[p.AuthorID]; ok {
		author = &u
	}
	return joinDetails(p, category, author)
}

func (s *MemoryStore) GetFeaturedPost(_ context.Context) (*model.PostWithDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id := uint(1); id < s.nextPostID; id++ {
		if p, ok := s.posts[id]; ok && p.Featured {
			return s.details(p), nil
		}
	}
	all := s.filterPosts(func(model.Post) bool { return true })
	if len(all) == 0 {
		return nil, nil
	}
	return s.details(all[0]), nil
}

func (s *MemoryStore) GetPostsByCategory(_ context.Context, categorySlug string) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category := s.categoryBySlug(categorySlug)
	if category == nil {
		if categorySlug == AllCategoriesSlug {
			return s.filterPosts(func(model.Post) bool { return true }), nil
		}
		return []model.Post{}, nil
	}
	return s.filterPosts(func(p model.Post) bool {
		return p.CategoryID != nil && *p.CategoryID == category.ID
	}), nil
}

func (s *MemoryStore) CreatePost(_ context.Context, in model.PostInput) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := newPost(in, s.now())
	if err != nil {
		return nil, err
	}
	if s.postBySlug(p.Slug) != nil {
		return nil, conflict("post slug", p.Slug)
	}
	if _, ok := s.users[p.AuthorID]; !ok {
		return nil, unknownAuthor(p.AuthorID)
	}
	if p.CategoryID, err = s.resolveCategory(in.CategoryID); err != nil {
		return nil, err
	}

	p.ID = s.nextPostID
	s.nextPostID++
	s.posts[p.ID] = p
	return &p, nil
}

func (s *MemoryStore) UpdatePost(_ context.Context, id uint, in model.PostInput) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	if err := patchPost(&p, in, s.now()); err != nil {
		return nil, err
	}
	if other := s.postBySlug(p.Slug); other != nil && other.ID != id {
		return nil, conflict("post slug", p.Slug)
	}
	if _, ok := s.users[p.AuthorID]; !ok {
		return nil, unknownAuthor(p.AuthorID)
	}
	if in.CategoryID != nil {
		categoryID, err := s.resolveCategory(in.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = categoryID
	}
	s.posts[id] = p
	return &p, nil
}

func (s *MemoryStore) resolveCategory(raw any) (*uint, error) {
	return resolveCategoryID(raw,
		func(id uint) (bool, error) {
			_, ok := s.categories[id]
			return ok, nil
		},
		func() (*uint, error) {
			for id := uint(1); id < s.nextCategoryID; id++ {
				if _, ok := s.categories[id]; ok {
					return &id, nil
				}
			}
			return nil, nil
		},
	)
}

func (s *MemoryStore) DeletePost(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return false, nil
	}
	delete(s.posts, id)
	return true, nil
}

func (s *MemoryStore) SearchPosts(_ context.Context, query string) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	return s.filterPosts(func(p model.Post) bool {
		return q == "" || matchesQuery(p, q)
	}), nil
}

// Settings and pages

func (s *MemoryStore) GetSiteSettings(_ context.Context) (*model.SiteSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := s.siteSettings()
	return &settings, nil
}

// siteSettings returns the singleton, creating it first if needed.
// Callers hold the write lock.
func (s *MemoryStore) siteSettings() model.SiteSettings {
	if s.settings == nil {
		s.settings = &model.SiteSettings{
			ID:        model.SiteSettingsID,
			Tagline:   DefaultTagline,
			UpdatedAt: s.now(),
		}
	}
	return *s.settings
}

func (s *MemoryStore) UpdateSiteSettings(_ context.Context, patch model.SiteSettingsPatch) (*model.SiteSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.siteSettings()
	if patch.Tagline != nil {
		settings.Tagline = *patch.Tagline
	}
	settings.UpdatedAt = s.now()
	s.settings = &settings
	return &settings, nil
}

func (s *MemoryStore) GetPageContent(_ context.Context, id string) (*model.PageContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if page, ok := s.pages[id]; ok {
		return &page, nil
	}
	if _, known := DefaultPages[id]; !known {
		return nil, nil
	}
	page := defaultPage(id, s.now())
	s.pages[id] = page
	return &page, nil
}

func (s *MemoryStore) UpdatePageContent(_ context.Context, id string, patch model.PageContentPatch) (*model.PageContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, ok := s.pages[id]
	if !ok {
		page = defaultPage(id, s.now())
	}
	applyPagePatch(&page, patch, s.now())
	s.pages[id] = page
	return &page, nil
}
