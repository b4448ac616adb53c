package mocks

import (
	"context"

	"taletable/internal/models"
)

type SnippetRepositoryMock struct {
	GetFunc           func(ctx context.Context, id uint) (*models.Snippet, error)
	GetManyFunc       func(ctx context.Context, ids []uint) ([]*models.Snippet, error)
	ListByProjectFunc func(ctx context.Context, projectKey string) ([]*models.Snippet, error)
	CreateFunc        func(ctx context.Context, snippet *models.Snippet) error
	UpdateFunc        func(ctx context.Context, snippet *models.Snippet) error
	DeleteFunc        func(ctx context.Context, id uint) error
}

func (m *SnippetRepositoryMock) Get(ctx context.Context, id uint) (*models.Snippet, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *SnippetRepositoryMock) GetMany(ctx context.Context, ids []uint) ([]*models.Snippet, error) {
	if m.GetManyFunc != nil {
		return m.GetManyFunc(ctx, ids)
	}
	return []*models.Snippet{}, nil
}

func (m *SnippetRepositoryMock) ListByProject(ctx context.Context, projectKey string) ([]*models.Snippet, error) {
	if m.ListByProjectFunc != nil {
		return m.ListByProjectFunc(ctx, projectKey)
	}
	return []*models.Snippet{}, nil
}

func (m *SnippetRepositoryMock) Create(ctx context.Context, snippet *models.Snippet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, snippet)
	}
	return nil
}

func (m *SnippetRepositoryMock) Update(ctx context.Context, snippet *models.Snippet) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, snippet)
	}
	return nil
}

func (m *SnippetRepositoryMock) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
