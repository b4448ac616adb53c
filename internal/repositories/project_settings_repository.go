package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taletable/internal/models"
)

type ProjectSettingsRepository interface {
	// GetByProject returns nil, nil when the project has no stored settings.
	GetByProject(ctx context.Context, projectKey string) (*models.ProjectSettings, error)
	List(ctx context.Context) ([]*models.ProjectSettings, error)
	Save(ctx context.Context, settings *models.ProjectSettings) error
	Delete(ctx context.Context, projectKey string) error
}

type projectSettingsRepository struct {
	db *gorm.DB
}

func NewProjectSettingsRepository(db *gorm.DB) ProjectSettingsRepository {
	return &projectSettingsRepository{db: db}
}

func (r *projectSettingsRepository) GetByProject(ctx context.Context, projectKey string) (*models.ProjectSettings, error) {
	var settings models.ProjectSettings
	err := r.db.WithContext(ctx).Where("project_key = ?", projectKey).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting settings for %s: %w", projectKey, err)
	}
	return &settings, nil
}

func (r *projectSettingsRepository) List(ctx context.Context) ([]*models.ProjectSettings, error) {
	var list []*models.ProjectSettings
	if err := r.db.WithContext(ctx).Order("project_key").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("listing project settings: %w", err)
	}
	return list, nil
}

// Save inserts or updates the row keyed by ProjectKey.
func (r *projectSettingsRepository) Save(ctx context.Context, settings *models.ProjectSettings) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if settings.ID == 0 {
			var existing models.ProjectSettings
			err := tx.Where("project_key = ?", settings.ProjectKey).First(&existing).Error
			switch {
			case err == nil:
				settings.ID = existing.ID
				settings.CreatedAt = existing.CreatedAt
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}
		return tx.Save(settings).Error
	})
	if err != nil {
		return fmt.Errorf("saving settings for %s: %w", settings.ProjectKey, err)
	}
	return nil
}

func (r *projectSettingsRepository) Delete(ctx context.Context, projectKey string) error {
	if err := r.db.WithContext(ctx).Where("project_key = ?", projectKey).Delete(&models.ProjectSettings{}).Error; err != nil {
		return fmt.Errorf("deleting settings for %s: %w", projectKey, err)
	}
	return nil
}
