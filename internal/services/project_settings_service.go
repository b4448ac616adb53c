package services

import (
	"context"
	"fmt"
	"strings"

	"taletable/internal/models"
	"taletable/internal/repositories"
	"taletable/internal/transcript"
)

type ProjectSettingsService interface {
	// Get returns the stored settings with defaults filled in, or the defaults
	// when the project has none stored.
	Get(projectKey string) (*models.ProjectSettings, error)
	List() ([]*models.ProjectSettings, error)
	Save(settings *models.ProjectSettings) (*models.ProjectSettings, error)
	Delete(projectKey string) error
	Startup(ctx context.Context)
}

type projectSettingsService struct {
	repo         repositories.ProjectSettingsRepository
	defaultModel string
	ctx          context.Context
}

func NewProjectSettingsService(repo repositories.ProjectSettingsRepository, defaultModel string) ProjectSettingsService {
	return &projectSettingsService{repo: repo, defaultModel: defaultModel, ctx: context.Background()}
}

func (s *projectSettingsService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *projectSettingsService) Get(projectKey string) (*models.ProjectSettings, error) {
	if err := transcript.ValidateProjectKey(projectKey); err != nil {
		return nil, err
	}
	stored, err := s.repo.GetByProject(s.ctx, projectKey)
	if err != nil {
		return nil, fmt.Errorf("service: get settings %s: %w", projectKey, err)
	}
	if stored == nil {
		def := models.DefaultProjectSettings(projectKey, s.defaultModel)
		return &def, nil
	}
	stored.FillDefaults(s.defaultModel)
	return stored, nil
}

func (s *projectSettingsService) List() ([]*models.ProjectSettings, error) {
	list, err := s.repo.List(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("service: list settings: %w", err)
	}
	for _, p := range list {
		p.FillDefaults(s.defaultModel)
	}
	return list, nil
}

func (s *projectSettingsService) Save(settings *models.ProjectSettings) (*models.ProjectSettings, error) {
	if settings == nil {
		return nil, fmt.Errorf("service: settings are required")
	}
	settings.ProjectKey = strings.TrimSpace(settings.ProjectKey)
	if err := transcript.ValidateProjectKey(settings.ProjectKey); err != nil {
		return nil, err
	}
	if settings.ContextMode != "" && !settings.ContextMode.Valid() {
		return nil, fmt.Errorf("service: unknown context mode %q", settings.ContextMode)
	}
	settings.FillDefaults(s.defaultModel)
	if err := s.repo.Save(s.ctx, settings); err != nil {
		return nil, fmt.Errorf("service: save settings %s: %w", settings.ProjectKey, err)
	}
	return settings, nil
}

func (s *projectSettingsService) Delete(projectKey string) error {
	if err := s.repo.Delete(s.ctx, projectKey); err != nil {
		return fmt.Errorf("service: delete settings %s: %w", projectKey, err)
	}
	return nil
}
