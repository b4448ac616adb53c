package mocks

import (
	"context"

	"taletable/internal/models"
)

type ProjectSettingsRepositoryMock struct {
	GetByProjectFunc func(ctx context.Context, projectKey string) (*models.ProjectSettings, error)
	ListFunc         func(ctx context.Context) ([]*models.ProjectSettings, error)
	SaveFunc         func(ctx context.Context, settings *models.ProjectSettings) error
	DeleteFunc       func(ctx context.Context, projectKey string) error
}

func (m *ProjectSettingsRepositoryMock) GetByProject(ctx context.Context, projectKey string) (*models.ProjectSettings, error) {
	if m.GetByProjectFunc != nil {
		return m.GetByProjectFunc(ctx, projectKey)
	}
	return nil, nil
}

func (m *ProjectSettingsRepositoryMock) List(ctx context.Context) ([]*models.ProjectSettings, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.ProjectSettings{}, nil
}

func (m *ProjectSettingsRepositoryMock) Save(ctx context.Context, settings *models.ProjectSettings) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, settings)
	}
	return nil
}

func (m *ProjectSettingsRepositoryMock) Delete(ctx context.Context, projectKey string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, projectKey)
	}
	return nil
}
