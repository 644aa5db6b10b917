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

// SettingsService reads and updates the site settings singleton.
type SettingsService interface {
	Get(ctx context.Context) (*model.SiteSettings, error)
	Update(ctx context.Context, patch model.SiteSettingsPatch) (*model.SiteSettings, error)
}

type settingsService struct {
	store   repository.Store
	metrics MutationRecorder
}

// NewSettingsService builds a SettingsService.
func NewSettingsService(store repository.Store, metrics MutationRecorder) SettingsService {
	return &settingsService{store: store, metrics: recorderOrNoop(metrics)}
}

func (s *settingsService) Get(ctx context.Context) (settings *model.SiteSettings, err error) {
	ctx, span := startSpan(ctx, "SettingsService.Get")
	defer func() { endSpan(span, err) }()

	settings, err = s.store.GetSiteSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get site settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, patch model.SiteSettingsPatch) (settings *model.SiteSettings, err error) {
	ctx, span := startSpan(ctx, "SettingsService.Update")
	defer func() { endSpan(span, err) }()

	settings, err = s.store.UpdateSiteSettings(ctx, patch)
	if err != nil {
		return nil, fmt.Errorf("update site settings: %w", err)
	}

	s.metrics.RecordMutation("settings", "update")
	slog.InfoContext(ctx, "site settings updated")
	return settings, nil
}

// PageService reads and upserts static pages.
type PageService interface {
	Get(ctx context.Context, id string) (*model.PageContent, error)
	Update(ctx context.Context, id string, patch model.PageContentPatch) (*model.PageContent, error)
}

type pageService struct {
	store   repository.Store
	metrics MutationRecorder
}

// NewPageService builds a PageService.
func NewPageService(store repository.Store, metrics MutationRecorder) PageService {
	return &pageService{store: store, metrics: recorderOrNoop(metrics)}
}

func (s *pageService) Get(ctx context.Context, id string) (page *model.PageContent, err error) {
	ctx, span := startSpan(ctx, "PageService.Get", attribute.String("page.id", id))
	defer func() { endSpan(span, err) }()

	page, err = s.store.GetPageContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get page %q: %w", id, err)
	}
	if page == nil {
		return nil, apperrors.ErrPageNotFound
	}
	return page, nil
}

func (s *pageService) Update(ctx context.Context, id string, patch model.PageContentPatch) (page *model.PageContent, err error) {
	ctx, span := startSpan(ctx, "PageService.Update", attribute.String("page.id", id))
	defer func() { endSpan(span, err) }()

	page, err = s.store.UpdatePageContent(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update page %q: %w", id, err)
	}

	s.metrics.RecordMutation("page", "update")
	slog.InfoContext(ctx, "page updated", "page_id", id)
	return page, nil
}
