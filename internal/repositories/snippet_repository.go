package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taletable/internal/models"
)

type SnippetRepository interface {
	Get(ctx context.Context, id uint) (*models.Snippet, error)
	GetMany(ctx context.Context, ids []uint) ([]*models.Snippet, error)
	ListByProject(ctx context.Context, projectKey string) ([]*models.Snippet, error)
	Create(ctx context.Context, snippet *models.Snippet) error
	Update(ctx context.Context, snippet *models.Snippet) error
	Delete(ctx context.Context, id uint) error
}

type snippetRepository struct {
	db *gorm.DB
}

func NewSnippetRepository(db *gorm.DB) SnippetRepository {
	return &snippetRepository{db: db}
}

func (r *snippetRepository) Get(ctx context.Context, id uint) (*models.Snippet, error) {
	var snippet models.Snippet
	if err := r.db.WithContext(ctx).First(&snippet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("snippet %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("getting snippet %d: %w", id, err)
	}
	return &snippet, nil
}

// GetMany returns the snippets with the given ids, in the order of ids.
// Unknown ids are skipped.
func (r *snippetRepository) GetMany(ctx context.Context, ids []uint) ([]*models.Snippet, error) {
	if len(ids) == 0 {
		return []*models.Snippet{}, nil
	}
	var found []*models.Snippet
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("getting snippets: %w", err)
	}
	byID := make(map[uint]*models.Snippet, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	out := make([]*models.Snippet, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *snippetRepository) ListByProject(ctx context.Context, projectKey string) ([]*models.Snippet, error) {
	var list []*models.Snippet
	err := r.db.WithContext(ctx).
		Where("project_key = ?", projectKey).
		Order("category").Order("name").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("listing snippets for %s: %w", projectKey, err)
	}
	return list, nil
}

func (r *snippetRepository) Create(ctx context.Context, snippet *models.Snippet) error {
	if err := r.db.WithContext(ctx).Create(snippet).Error; err != nil {
		return fmt.Errorf("creating snippet: %w", err)
	}
	return nil
}

func (r *snippetRepository) Update(ctx context.Context, snippet *models.Snippet) error {
	if err := r.db.WithContext(ctx).Save(snippet).Error; err != nil {
		return fmt.Errorf("updating snippet %d: %w", snippet.ID, err)
	}
	return nil
}

func (r *snippetRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Snippet{}, id).Error; err != nil {
		return fmt.Errorf("deleting snippet %d: %w", id, err)
	}
	return nil
}
