package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taletable/internal/models"
)

type RecordRepository interface {
	Get(ctx context.Context, id uint) (*models.Record, error)
	GetMany(ctx context.Context, ids []uint) ([]*models.Record, error)
	ListByProject(ctx context.Context, projectKey string) ([]*models.Record, error)
	Create(ctx context.Context, record *models.Record) error
	Update(ctx context.Context, record *models.Record) error
	Delete(ctx context.Context, id uint) error
}

type recordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Get(ctx context.Context, id uint) (*models.Record, error) {
	var record models.Record
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("record %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("getting record %d: %w", id, err)
	}
	return &record, nil
}

// GetMany returns the records with the given ids, in the order of ids.
// Unknown ids are skipped.
func (r *recordRepository) GetMany(ctx context.Context, ids []uint) ([]*models.Record, error) {
	if len(ids) == 0 {
		return []*models.Record{}, nil
	}
	var found []*models.Record
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("getting records: %w", err)
	}
	byID := make(map[uint]*models.Record, len(found))
	for _, rec := range found {
		byID[rec.ID] = rec
	}
	out := make([]*models.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *recordRepository) ListByProject(ctx context.Context, projectKey string) ([]*models.Record, error) {
	var list []*models.Record
	err := r.db.WithContext(ctx).
		Where("project_key = ?", projectKey).
		Order("category").Order("name").Order("id").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("listing records for %s: %w", projectKey, err)
	}
	return list, nil
}

func (r *recordRepository) Create(ctx context.Context, record *models.Record) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("creating record: %w", err)
	}
	return nil
}

func (r *recordRepository) Update(ctx context.Context, record *models.Record) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("updating record %d: %w", record.ID, err)
	}
	return nil
}

func (r *recordRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Record{}, id).Error; err != nil {
		return fmt.Errorf("deleting record %d: %w", id, err)
	}
	return nil
}
