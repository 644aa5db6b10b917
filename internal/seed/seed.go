// Package seed loads demo content from YAML and applies it to a store.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"quietseed/internal/auth"
	"quietseed/internal/model"
	"quietseed/internal/repository"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the seed document.
type Fixtures struct {
	Users      []UserFixture     `yaml:"users"`
	Categories []CategoryFixture `yaml:"categories"`
	Posts      []PostFixture     `yaml:"posts"`
}

// UserFixture holds a plaintext password; it is hashed on Apply.
type UserFixture struct {
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"displayName"`
	IsAdmin     bool   `yaml:"isAdmin"`
}

type CategoryFixture struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// PostFixture references its author by username and its category by slug.
type PostFixture struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Author      string `yaml:"author"`
	Category    string `yaml:"category"`
	PublishedAt string `yaml:"publishedAt"`
	Featured    bool   `yaml:"featured"`
	ImageURL    string `yaml:"imageUrl"`
	Excerpt     string `yaml:"excerpt"`
	Content     string `yaml:"content"`
}

// Report counts what Apply created and skipped.
type Report struct {
	UsersCreated      int
	CategoriesCreated int
	PostsCreated      int
	Skipped           int
}

// Default returns the built-in demo fixtures.
func Default() (*Fixtures, error) {
	return Load(bytes.NewReader(defaultFixtures))
}

// Load decodes and checks a fixtures document. Unknown keys are rejected.
func Load(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixtures
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	users := map[string]bool{}
	for i, u := range f.Users {
		if u.Username == "" || u.Password == "" {
			return fmt.Errorf("users[%d]: username and password are required", i)
		}
		users[u.Username] = true
	}
	categories := map[string]bool{}
	for i, c := range f.Categories {
		if c.Name == "" {
			return fmt.Errorf("categories[%d]: name is required", i)
		}
		categories[c.Slug] = true
	}
	for i, p := range f.Posts {
		if p.Title == "" || p.PublishedAt == "" {
			return fmt.Errorf("posts[%d]: title and publishedAt are required", i)
		}
		if _, err := repository.CoerceTime(p.PublishedAt); err != nil {
			return fmt.Errorf("posts[%d]: %w", i, err)
		}
		if p.Category != "" && !categories[p.Category] {
			return fmt.Errorf("posts[%d]: unknown category %q", i, p.Category)
		}
		if !users[p.Author] {
			return fmt.Errorf("posts[%d]: unknown author %q", i, p.Author)
		}
	}
	return nil
}

// Apply writes the fixtures to store. Users, categories and posts that
// already exist (by username or slug) are left untouched, so Apply can run
// on every start.
func Apply(ctx context.Context, store repository.Store, f *Fixtures) (Report, error) {
	var report Report

	for _, u := range f.Users {
		existing, err := store.GetUserByUsername(ctx, u.Username)
		if err != nil {
			return report, err
		}
		if existing != nil {
			report.Skipped++
			continue
		}
		hashed, err := auth.HashPassword(u.Password)
		if err != nil {
			return report, err
		}
		if _, err := store.CreateUser(ctx, model.NewUser{
			Username:    u.Username,
			Password:    hashed,
			DisplayName: u.DisplayName,
			IsAdmin:     u.IsAdmin,
		}); err != nil {
			return report, fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		report.UsersCreated++
	}

	for _, c := range f.Categories {
		existing, err := store.GetCategoryBySlug(ctx, c.Slug)
		if err != nil {
			return report, err
		}
		if existing != nil {
			report.Skipped++
			continue
		}
		category := model.NewCategory{Name: c.Name, Slug: c.Slug}
		if c.Description != "" {
			description := c.Description
			category.Description = &description
		}
		if _, err := store.CreateCategory(ctx, category); err != nil {
			return report, fmt.Errorf("seed category %q: %w", c.Slug, err)
		}
		report.CategoriesCreated++
	}

	for _, p := range f.Posts {
		created, err := applyPost(ctx, store, p)
		if err != nil {
			return report, fmt.Errorf("seed post %q: %w", p.Title, err)
		}
		if created {
			report.PostsCreated++
		} else {
			report.Skipped++
		}
	}

	slog.InfoContext(ctx, "fixtures applied",
		"users", report.UsersCreated,
		"categories", report.CategoriesCreated,
		"posts", report.PostsCreated,
		"skipped", report.Skipped)
	return report, nil
}

func applyPost(ctx context.Context, store repository.Store, p PostFixture) (bool, error) {
	if p.Slug != "" {
		existing, err := store.GetPostBySlug(ctx, p.Slug)
		if err != nil || existing != nil {
			return false, err
		}
	}

	author, err := store.GetUserByUsername(ctx, p.Author)
	if err != nil {
		return false, err
	}
	if author == nil {
		return false, fmt.Errorf("author %q not found", p.Author)
	}

	input := model.PostInput{
		Title:       &p.Title,
		Content:     &p.Content,
		Excerpt:     &p.Excerpt,
		PublishedAt: p.PublishedAt,
		AuthorID:    &author.ID,
		Featured:    p.Featured,
	}
	if p.Slug != "" {
		input.Slug = &p.Slug
	}
	if p.ImageURL != "" {
		input.ImageURL = &p.ImageURL
	}
	if p.Category != "" {
		category, err := store.GetCategoryBySlug(ctx, p.Category)
		if err != nil {
			return false, err
		}
		if category != nil {
			input.CategoryID = category.ID
		}
	}

	if _, err := store.CreatePost(ctx, input); err != nil {
		return false, err
	}
	return true, nil
}
