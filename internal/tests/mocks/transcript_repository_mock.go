package mocks

import (
	"context"

	"taletable/internal/models"
)

type TranscriptRepositoryMock struct {
	GetByProjectFunc func(ctx context.Context, projectKey string) (*models.TranscriptRecord, error)
	SaveFunc         func(ctx context.Context, projectKey string, turnsJSON string) error
	ListProjectsFunc func(ctx context.Context) ([]string, error)
	DeleteFunc       func(ctx context.Context, projectKey string) error
}

func (m *TranscriptRepositoryMock) GetByProject(ctx context.Context, projectKey string) (*models.TranscriptRecord, error) {
	if m.GetByProjectFunc != nil {
		return m.GetByProjectFunc(ctx, projectKey)
	}
	return nil, nil
}

func (m *TranscriptRepositoryMock) Save(ctx context.Context, projectKey string, turnsJSON string) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, projectKey, turnsJSON)
	}
	return nil
}

func (m *TranscriptRepositoryMock) ListProjects(ctx context.Context) ([]string, error) {
	if m.ListProjectsFunc != nil {
		return m.ListProjectsFunc(ctx)
	}
	return []string{}, nil
}

func (m *TranscriptRepositoryMock) Delete(ctx context.Context, projectKey string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, projectKey)
	}
	return nil
}
