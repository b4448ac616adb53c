package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taletable/internal/models"
)

type TranscriptRepository interface {
	// GetByProject returns nil, nil when the project has no stored transcript.
	GetByProject(ctx context.Context, projectKey string) (*models.TranscriptRecord, error)
	Save(ctx context.Context, projectKey string, turnsJSON string) error
	ListProjects(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, projectKey string) error
}

type transcriptRepository struct {
	db *gorm.DB
}

func NewTranscriptRepository(db *gorm.DB) TranscriptRepository {
	return &transcriptRepository{db: db}
}

func (r *transcriptRepository) GetByProject(ctx context.Context, projectKey string) (*models.TranscriptRecord, error) {
	var rec models.TranscriptRecord
	err := r.db.WithContext(ctx).Where("project_key = ?", projectKey).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting transcript for %s: %w", projectKey, err)
	}
	return &rec, nil
}

func (r *transcriptRepository) Save(ctx context.Context, projectKey string, turnsJSON string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.TranscriptRecord{ProjectKey: projectKey, TurnsJSON: turnsJSON}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"turns_json", "updated_at"}),
		}).Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("saving transcript for %s: %w", projectKey, err)
	}
	return nil
}

func (r *transcriptRepository) ListProjects(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&models.TranscriptRecord{}).Order("project_key").Pluck("project_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("listing transcript projects: %w", err)
	}
	return keys, nil
}

func (r *transcriptRepository) Delete(ctx context.Context, projectKey string) error {
	if err := r.db.WithContext(ctx).Where("project_key = ?", projectKey).Delete(&models.TranscriptRecord{}).Error; err != nil {
		return fmt.Errorf("deleting transcript for %s: %w", projectKey, err)
	}
	return nil
}
