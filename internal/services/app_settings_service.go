package services

import (
	"context"
	"errors"
	"time"

	"taletable/internal/models"
	"taletable/internal/repositories"
)

type AppSettingsService interface {
	Get() (*models.AppSettings, error)
	Update(theme, locale string) (*models.AppSettings, error)
	SetActiveProject(projectKey string) (*models.AppSettings, error)
	SetDefaultWindow(n int) (*models.AppSettings, error)
	Startup(ctx context.Context)
}

type appSettingsService struct {
	appSettings repositories.AppSettingsRepository
	context     context.Context
}

func (s *appSettingsService) Startup(ctx context.Context) {
	s.context = ctx
}

func NewAppSettingsService(appSettings repositories.AppSettingsRepository) AppSettingsService {
	return &appSettingsService{appSettings: appSettings, context: context.Background()}
}

func (s *appSettingsService) Get() (*models.AppSettings, error) {
	return s.appSettings.Get(s.context)
}

func (s *appSettingsService) Update(theme, locale string) (*models.AppSettings, error) {
	if theme == "" {
		return nil, errors.New("theme is required")
	}
	if locale == "" {
		return nil, errors.New("locale is required")
	}

	// Validate theme values
	if theme != "light" && theme != "dark" && theme != "system" {
		return nil, errors.New("theme must be 'light', 'dark', or 'system'")
	}

	return s.mutate(func(current *models.AppSettings) {
		current.Theme = theme
		current.Locale = locale
	})
}

func (s *appSettingsService) SetActiveProject(projectKey string) (*models.AppSettings, error) {
	return s.mutate(func(current *models.AppSettings) {
		current.ActiveProject = projectKey
	})
}

func (s *appSettingsService) SetDefaultWindow(n int) (*models.AppSettings, error) {
	if n < 0 {
		return nil, errors.New("window must not be negative")
	}
	return s.mutate(func(current *models.AppSettings) {
		current.DefaultWindow = n
	})
}

func (s *appSettingsService) mutate(apply func(*models.AppSettings)) (*models.AppSettings, error) {
	current, err := s.appSettings.Get(s.context)
	if err != nil {
		return nil, err
	}

	apply(current)
	current.UpdatedAt = time.Now().Format(time.RFC3339)

	if err := s.appSettings.Update(s.context, current); err != nil {
		return nil, err
	}
	return current, nil
}
