package services

import (
	context "context"
	"fmt"
	"strings"

	"taletable/internal/models"
	"taletable/internal/repositories"
)

type SnippetService interface {
	GetSnippet(id uint) (*models.Snippet, error)
	ListSnippets(projectKey string) ([]*models.Snippet, error)
	CreateSnippet(s *models.Snippet) (*models.Snippet, error)
	UpdateSnippet(s *models.Snippet) (*models.Snippet, error)
	DeleteSnippet(id uint) error
	// BuildBundle turns the selected snippets and records of a project into
	// the transient context for one turn. Records whose tags match a reference
	// tag of the selection follow the selected ones. The first selected
	// snippet that names a model overrides the session model for that turn.
	BuildBundle(projectKey string, sel models.ContextSelection) (models.TransientBundle, error)
	Startup(ctx context.Context)
}

// relatedHistoryEntries is how many recent history entries a tag-matched
// record contributes.
const relatedHistoryEntries = 2

type snippetService struct {
	repo    repositories.SnippetRepository
	records repositories.RecordRepository
	ctx     context.Context
}

func (s *snippetService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func NewSnippetService(repo repositories.SnippetRepository, records repositories.RecordRepository) SnippetService {
	return &snippetService{repo: repo, records: records, ctx: context.Background()}
}

func (s *snippetService) GetSnippet(id uint) (*models.Snippet, error) {
	snippet, err := s.repo.Get(s.ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: get snippet %d: %w", id, err)
	}
	return snippet, nil
}

func (s *snippetService) ListSnippets(projectKey string) ([]*models.Snippet, error) {
	list, err := s.repo.ListByProject(s.ctx, projectKey)
	if err != nil {
		return nil, fmt.Errorf("service: list snippets: %w", err)
	}
	return list, nil
}

func validateSnippet(sn *models.Snippet) error {
	if sn == nil {
		return fmt.Errorf("service: snippet is required")
	}
	sn.ProjectKey = strings.TrimSpace(sn.ProjectKey)
	sn.Category = strings.TrimSpace(sn.Category)
	sn.Name = strings.TrimSpace(sn.Name)
	sn.ModelID = strings.TrimSpace(sn.ModelID)
	sn.ReferenceTags = models.NormalizeTags(sn.ReferenceTags)
	if sn.ProjectKey == "" {
		return fmt.Errorf("service: snippet project is required")
	}
	if sn.Name == "" {
		return fmt.Errorf("service: snippet name is required")
	}
	return nil
}

func (s *snippetService) CreateSnippet(sn *models.Snippet) (*models.Snippet, error) {
	if err := validateSnippet(sn); err != nil {
		return nil, err
	}
	if err := s.repo.Create(s.ctx, sn); err != nil {
		return nil, fmt.Errorf("service: create snippet: %w", err)
	}
	return sn, nil
}

func (s *snippetService) UpdateSnippet(sn *models.Snippet) (*models.Snippet, error) {
	if err := validateSnippet(sn); err != nil {
		return nil, err
	}
	if err := s.repo.Update(s.ctx, sn); err != nil {
		return nil, fmt.Errorf("service: update snippet %d: %w", sn.ID, err)
	}
	return sn, nil
}

func (s *snippetService) DeleteSnippet(id uint) error {
	if err := s.repo.Delete(s.ctx, id); err != nil {
		return fmt.Errorf("service: delete snippet %d: %w", id, err)
	}
	return nil
}

func (s *snippetService) BuildBundle(projectKey string, sel models.ContextSelection) (models.TransientBundle, error) {
	bundle := models.TransientBundle{Mode: sel.Mode, Snippets: []models.ContextSnippet{}}
	if len(sel.SnippetIDs) == 0 && len(sel.RecordIDs) == 0 {
		return bundle, nil
	}

	var refTags []string
	list, err := s.repo.GetMany(s.ctx, sel.SnippetIDs)
	if err != nil {
		return models.TransientBundle{}, fmt.Errorf("service: build bundle: %w", err)
	}
	for _, sn := range list {
		if sn.ProjectKey != projectKey {
			return models.TransientBundle{}, fmt.Errorf("service: snippet %d does not belong to %s", sn.ID, projectKey)
		}
		bundle.Snippets = append(bundle.Snippets, models.ContextSnippet{
			Label:    sn.Label(),
			Text:     sn.Text,
			Category: sn.Category,
		})
		if bundle.ModelOverride == "" && sn.ModelID != "" {
			bundle.ModelOverride = sn.ModelID
		}
		refTags = append(refTags, sn.ReferenceTags...)
	}

	if s.records == nil {
		if len(sel.RecordIDs) > 0 {
			return models.TransientBundle{}, fmt.Errorf("service: build bundle: records are not available")
		}
		return bundle, nil
	}

	included := make(map[uint]struct{})
	selected, err := s.records.GetMany(s.ctx, sel.RecordIDs)
	if err != nil {
		return models.TransientBundle{}, fmt.Errorf("service: build bundle: %w", err)
	}
	for _, r := range selected {
		if r.ProjectKey != projectKey {
			return models.TransientBundle{}, fmt.Errorf("service: record %d does not belong to %s", r.ID, projectKey)
		}
		if _, ok := included[r.ID]; ok {
			continue
		}
		included[r.ID] = struct{}{}
		bundle.Snippets = append(bundle.Snippets, models.ContextSnippet{
			Label:    r.Label(),
			Text:     r.ContextText(0),
			Category: r.Category,
		})
		refTags = append(refTags, r.ReferenceTags...)
	}

	related, err := findRecordsByTags(s.ctx, s.records, projectKey, refTags)
	if err != nil {
		return models.TransientBundle{}, fmt.Errorf("service: build bundle: %w", err)
	}
	for _, r := range related {
		if _, ok := included[r.ID]; ok {
			continue
		}
		included[r.ID] = struct{}{}
		bundle.Snippets = append(bundle.Snippets, models.ContextSnippet{
			Label:    r.Label(),
			Text:     r.ContextText(relatedHistoryEntries),
			Category: r.Category,
		})
	}
	return bundle, nil
}
