package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	apperrors "quietseed/internal/errors"
	"quietseed/internal/model"
	"quietseed/internal/repository"
)

// PostService exposes post reads and admin writes. Lookups that resolve to
// nothing come back as not-found errors.
type PostService interface {
	List(ctx context.Context) ([]model.Post, error)
	Featured(ctx context.Context) (*model.PostWithDetails, error)
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	GetBySlug(ctx context.Context, slug string) (*model.PostWithDetails, error)
	ByCategory(ctx context.Context, categorySlug string) ([]model.Post, error)
	Search(ctx context.Context, query string) ([]model.Post, error)
	Create(ctx context.Context, input model.PostInput) (*model.Post, error)
	Update(ctx context.Context, id uint, input model.PostInput) (*model.Post, error)
	Delete(ctx context.Context, id uint) error
}

type postService struct {
	store   repository.Store
	metrics MutationRecorder
}

// NewPostService builds a PostService on top of a store.
func NewPostService(store repository.Store, metrics MutationRecorder) PostService {
	return &postService{store: store, metrics: recorderOrNoop(metrics)}
}

func (s *postService) List(ctx context.Context) (posts []model.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.List")
	defer func() { endSpan(span, err) }()

	return s.store.GetAllPosts(ctx)
}

func (s *postService) Featured(ctx context.Context) (post *model.PostWithDetails, err error) {
	ctx, span := startSpan(ctx, "PostService.Featured")
	defer func() { endSpan(span, err) }()

	post, err = s.store.GetFeaturedPost(ctx)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.ErrNoFeaturedPost
	}
	return post, nil
}

func (s *postService) GetByID(ctx context.Context, id uint) (post *model.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.GetByID", attribute.Int64("post.id", int64(id)))
	defer func() { endSpan(span, err) }()

	post, err = s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}
	return post, nil
}

func (s *postService) GetBySlug(ctx context.Context, slug string) (post *model.PostWithDetails, err error) {
	ctx, span := startSpan(ctx, "PostService.GetBySlug", attribute.String("post.slug", slug))
	defer func() { endSpan(span, err) }()

	post, err = s.store.GetPostWithDetails(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}
	return post, nil
}

func (s *postService) ByCategory(ctx context.Context, categorySlug string) (posts []model.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.ByCategory", attribute.String("category.slug", categorySlug))
	defer func() { endSpan(span, err) }()

	return s.store.GetPostsByCategory(ctx, categorySlug)
}

func (s *postService) Search(ctx context.Context, query string) (posts []model.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Search", attribute.String("query", query))
	defer func() { endSpan(span, err) }()

	return s.store.SearchPosts(ctx, query)
}

func (s *postService) Create(ctx context.Context, input model.PostInput) (post *model.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Create")
	defer func() { endSpan(span, err) }()

	post, err = s.store.CreatePost(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.metrics.RecordMutation("post", "create")
	slog.InfoContext(ctx, "post created", "post_id", post.ID, "slug", post.Slug)
	return post, nil
}

func (s *postService) Update(ctx context.Context, id uint, input model.PostInput) (post *model.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Update", attribute.Int64("post.id", int64(id)))
	defer func() { endSpan(span, err) }()

	post, err = s.store.UpdatePost(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}

	s.metrics.RecordMutation("post", "update")
	slog.InfoContext(ctx, "post updated", "post_id", post.ID)
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := startSpan(ctx, "PostService.Delete", attribute.Int64("post.id", int64(id)))
	defer func() { endSpan(span, err) }()

	deleted, err := s.store.DeletePost(ctx, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if !deleted {
		return apperrors.ErrPostNotFound
	}

	s.metrics.RecordMutation("post", "delete")
	slog.InfoContext(ctx, "post deleted", "post_id", id)
	return nil
}
