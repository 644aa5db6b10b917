package service

import (
	"context"
	"fmt"
	"log/slog"

	"quietseed/internal/model"
	"quietseed/internal/repository"
)

// CategoryService lists and creates categories.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, category model.NewCategory) (*model.Category, error)
}

type categoryService struct {
	store   repository.Store
	metrics MutationRecorder
}

// NewCategoryService builds a CategoryService.
func NewCategoryService(store repository.Store, metrics MutationRecorder) CategoryService {
	return &categoryService{store: store, metrics: recorderOrNoop(metrics)}
}

func (s *categoryService) List(ctx context.Context) (categories []model.Category, err error) {
	ctx, span := startSpan(ctx, "CategoryService.List")
	defer func() { endSpan(span, err) }()

	return s.store.GetAllCategories(ctx)
}

func (s *categoryService) Create(ctx context.Context, in model.NewCategory) (category *model.Category, err error) {
	ctx, span := startSpan(ctx, "CategoryService.Create")
	defer func() { endSpan(span, err) }()

	category, err = s.store.CreateCategory(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.metrics.RecordMutation("category", "create")
	slog.InfoContext(ctx, "category created", "category_id", category.ID, "slug", category.Slug)
	return category, nil
}
