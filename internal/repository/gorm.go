package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "quietseed/internal/errors"
	"quietseed/internal/model"
)

const newestFirst = "published_at DESC, id ASC"

// GormStore persists content in a relational database through GORM.
// Every write is a single statement or a single-table transaction.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ Store = (*GormStore)(nil)

// NewGormStore builds a GORM-backed store. The schema must already be migrated.
func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	o := buildOptions(opts)
	return &GormStore{
		db:  db,
		now: func() time.Time { return o.now().UTC() },
	}
}

// first runs query.First and maps "record not found" to (false, nil).
func first(query *gorm.DB, dest any) (bool, error) {
	err := query.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// translate turns unique-index violations into ErrConflict.
func translate(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, what)
	}
	return err
}

// Users

func (s *GormStore) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	found, err := first(s.db.WithContext(ctx).Where("id = ?", id), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	found, err := first(s.db.WithContext(ctx).Where("username = ?", canonicalUsername(username)), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, in model.NewUser) (*model.User, error) {
	in, err := normalizeUser(in)
	if err != nil {
		return nil, err
	}
	existing, err := s.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflict("username", in.Username)
	}

	user := model.User{
		Username:    in.Username,
		Password:    in.Password,
		DisplayName: in.DisplayName,
		IsAdmin:     in.IsAdmin,
		CreatedAt:   s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, translate(err, "username")
	}
	return &user, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, id uint, patch model.UserPatch) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	if patch.Username != nil {
		username := canonicalUsername(*patch.Username)
		other, err := s.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, conflict("username", username)
		}
		user.Username = username
	}
	applyUserPatch(user, patch)
	if _, err := normalizeUser(model.NewUser{Username: user.Username, Password: user.Password}); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, translate(err, "username")
	}
	return user, nil
}

// Categories

func (s *GormStore) GetAllCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *GormStore) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	found, err := first(s.db.WithContext(ctx).Where("slug = ?", slug), &category)
	if err != nil || !found {
		return nil, err
	}
	return &category, nil
}

func (s *GormStore) GetCategoryByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	found, err := first(s.db.WithContext(ctx).Where("id = ?", id), &category)
	if err != nil || !found {
		return nil, err
	}
	return &category, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, in model.NewCategory) (*model.Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Category{}).
		Where("slug = ? OR name = ?", in.Slug, in.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("category", in.Slug)
	}

	category := model.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		CreatedAt:   s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &category, nil
}

// Posts

func (s *GormStore) GetAllPosts(ctx context.Context) ([]model.Post, error) {
	posts := []model.Post{}
	if err := s.db.WithContext(ctx).Order(newestFirst).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *GormStore) GetPost(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	found, err := first(s.db.WithContext(ctx).Where("id = ?", id), &post)
	if err != nil || !found {
		return nil, err
	}
	return &post, nil
}

func (s *GormStore) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	found, err := first(s.db.WithContext(ctx).Where("slug = ?", slug), &post)
	if err != nil || !found {
		return nil, err
	}
	return &post, nil
}

func (s *GormStore) GetPostWithDetails(ctx context.Context, slug string) (*model.PostWithDetails, error) {
	post, err := s.GetPostBySlug(ctx, slug)
	if err != nil || post == nil {
		return nil, err
	}
	return s.details(ctx, *post)
}

func (s *GormStore) details(ctx context.Context, post model.Post) (*model.PostWithDetails, error) {
	author, err := s.GetUser(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}
	var category *model.Category
	if post.CategoryID != nil {
		if category, err = s.GetCategoryByID(ctx, *post.CategoryID); err != nil {
			return nil, err
		}
	}
	return joinDetails(post, category, author), nil
}

func (s *GormStore) GetFeaturedPost(ctx context.Context) (*model.PostWithDetails, error) {
	var post model.Post
	found, err := first(s.db.WithContext(ctx).Where("featured = ?", true).Order("id ASC"), &post)
	if err != nil {
		return nil, err
	}
	if !found {
		found, err = first(s.db.WithContext(ctx).Order(newestFirst), &post)
		if err != nil || !found {
			return nil, err
		}
	}
	return s.details(ctx, post)
}

func (s *GormStore) GetPostsByCategory(ctx context.Context, categorySlug string) ([]model.Post, error) {
	category, err := s.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		if categorySlug == AllCategoriesSlug {
			return s.GetAllPosts(ctx)
		}
		return []model.Post{}, nil
	}

	posts := []model.Post{}
	if err := s.db.WithContext(ctx).
		Where("category_id = ?", category.ID).
		Order(newestFirst).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *GormStore) CreatePost(ctx context.Context, in model.PostInput) (*model.Post, error) {
	post, err := newPost(in, s.now())
	if err != nil {
		return nil, err
	}
	existing, err := s.GetPostBySlug(ctx, post.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflict("post slug", post.Slug)
	}
	if err := s.requireAuthor(ctx, post.AuthorID); err != nil {
		return nil, err
	}
	if post.CategoryID, err = s.resolveCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, translate(err, "post slug")
	}
	return &post, nil
}

func (s *GormStore) UpdatePost(ctx context.Context, id uint, in model.PostInput) (*model.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	if err := patchPost(post, in, s.now()); err != nil {
		return nil, err
	}
	other, err := s.GetPostBySlug(ctx, post.Slug)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != id {
		return nil, conflict("post slug", post.Slug)
	}
	if in.AuthorID != nil {
		if err := s.requireAuthor(ctx, post.AuthorID); err != nil {
			return nil, err
		}
	}
	if in.CategoryID != nil {
		if post.CategoryID, err = s.resolveCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Save(post).Error; err != nil {
		return nil, translate(err, "post slug")
	}
	return post, nil
}

func (s *GormStore) requireAuthor(ctx context.Context, id uint) error {
	author, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if author == nil {
		return unknownAuthor(id)
	}
	return nil
}

func (s *GormStore) resolveCategory(ctx context.Context, raw any) (*uint, error) {
	return resolveCategoryID(raw,
		func(id uint) (bool, error) {
			category, err := s.GetCategoryByID(ctx, id)
			return category != nil, err
		},
		func() (*uint, error) {
			var category model.Category
			found, err := first(s.db.WithContext(ctx).Order("id ASC"), &category)
			if err != nil || !found {
				return nil, err
			}
			return &category.ID, nil
		},
	)
}

func (s *GormStore) DeletePost(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.Post{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// likeEscaper escapes LIKE wildcards with '!', which MySQL and SQLite both
// accept as an explicit ESCAPE character.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (s *GormStore) SearchPosts(ctx context.Context, query string) ([]model.Post, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.GetAllPosts(ctx)
	}

	// SQLite's LOWER only folds ASCII, so matching happens here instead.
	if s.db.Dialector.Name() == "sqlite" {
		posts, err := s.GetAllPosts(ctx)
		if err != nil {
			return nil, err
		}
		matches := []model.Post{}
		for _, p := range posts {
			if matchesQuery(p, q) {
				matches = append(matches, p)
			}
		}
		return matches, nil
	}

	pattern := "%" + likeEscaper.Replace(q) + "%"
	posts := []model.Post{}
	if err := s.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(content) LIKE ? ESCAPE '!' OR LOWER(excerpt) LIKE ? ESCAPE '!'",
			pattern, pattern, pattern).
		Order(newestFirst).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Settings and pages

// GetSiteSettings reads the singleton row, inserting the default first when
// it is missing. The insert ignores conflicts so concurrent first reads
// cannot create two rows or fail.
func (s *GormStore) GetSiteSettings(ctx context.Context) (*model.SiteSettings, error) {
	var settings model.SiteSettings
	found, err := first(s.db.WithContext(ctx).Where("id = ?", model.SiteSettingsID), &settings)
	if err != nil {
		return nil, err
	}
	if found {
		return &settings, nil
	}

	seed := model.SiteSettings{ID: model.SiteSettingsID, Tagline: DefaultTagline, UpdatedAt: s.now()}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("seed site settings: %w", err)
	}
	if err := s.db.WithContext(ctx).Where("id = ?", model.SiteSettingsID).First(&settings).Error; err != nil {
		return nil, fmt.Errorf("read seeded site settings: %w", err)
	}
	return &settings, nil
}

func (s *GormStore) UpdateSiteSettings(ctx context.Context, patch model.SiteSettingsPatch) (*model.SiteSettings, error) {
	settings, err := s.GetSiteSettings(ctx)
	if err != nil {
		return nil, err
	}
	if patch.Tagline != nil {
		settings.Tagline = *patch.Tagline
	}
	settings.UpdatedAt = s.now()
	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *GormStore) GetPageContent(ctx context.Context, id string) (*model.PageContent, error) {
	var page model.PageContent
	found, err := first(s.db.WithContext(ctx).Where("id = ?", id), &page)
	if err != nil {
		return nil, err
	}
	if found {
		return &page, nil
	}
	if _, known := DefaultPages[id]; !known {
		return nil, nil
	}

	seed := defaultPage(id, s.now())
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("seed page %q: %w", id, err)
	}
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&page).Error; err != nil {
		return nil, fmt.Errorf("read seeded page %q: %w", id, err)
	}
	return &page, nil
}

func (s *GormStore) UpdatePageContent(ctx context.Context, id string, patch model.PageContentPatch) (*model.PageContent, error) {
	var page model.PageContent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := first(tx.Where("id = ?", id), &page)
		if err != nil {
			return err
		}
		if !found {
			page = defaultPage(id, s.now())
		}
		applyPagePatch(&page, patch, s.now())
		return tx.Save(&page).Error
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}
