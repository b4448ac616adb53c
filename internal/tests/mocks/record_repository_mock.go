package mocks

import (
	"context"

	"taletable/internal/models"
)

type RecordRepositoryMock struct {
	GetFunc           func(ctx context.Context, id uint) (*models.Record, error)
	GetManyFunc       func(ctx context.Context, ids []uint) ([]*models.Record, error)
	ListByProjectFunc func(ctx context.Context, projectKey string) ([]*models.Record, error)
	CreateFunc        func(ctx context.Context, record *models.Record) error
	UpdateFunc        func(ctx context.Context, record *models.Record) error
	DeleteFunc        func(ctx context.Context, id uint) error
}

func (m *RecordRepositoryMock) Get(ctx context.Context, id uint) (*models.Record, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *RecordRepositoryMock) GetMany(ctx context.Context, ids []uint) ([]*models.Record, error) {
	if m.GetManyFunc != nil {
		return m.GetManyFunc(ctx, ids)
	}
	return []*models.Record{}, nil
}

func (m *RecordRepositoryMock) ListByProject(ctx context.Context, projectKey string) ([]*models.Record, error) {
	if m.ListByProjectFunc != nil {
		return m.ListByProjectFunc(ctx, projectKey)
	}
	return []*models.Record{}, nil
}

func (m *RecordRepositoryMock) Create(ctx context.Context, record *models.Record) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	return nil
}

func (m *RecordRepositoryMock) Update(ctx context.Context, record *models.Record) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, record)
	}
	return nil
}

func (m *RecordRepositoryMock) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
