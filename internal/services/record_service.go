package services

import (
	context "context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taletable/internal/models"
	"taletable/internal/repositories"
)

type RecordService interface {
	GetRecord(id uint) (*models.Record, error)
	ListRecords(projectKey string) ([]*models.Record, error)
	CreateRecord(r *models.Record) (*models.Record, error)
	UpdateRecord(r *models.Record) (*models.Record, error)
	DeleteRecord(id uint) error
	// AddHistoryEntry appends a dated note to a record.
	AddHistoryEntry(id uint, entry string) (*models.Record, error)
	// FindByTags returns the records of a project carrying any of tags, ignoring case.
	FindByTags(projectKey string, tags []string) ([]*models.Record, error)
	Startup(ctx context.Context)
}

type recordService struct {
	repo repositories.RecordRepository
	ctx  context.Context
	now  func() time.Time
}

func (s *recordService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func NewRecordService(repo repositories.RecordRepository) RecordService {
	return &recordService{repo: repo, ctx: context.Background(), now: time.Now}
}

func (s *recordService) GetRecord(id uint) (*models.Record, error) {
	record, err := s.repo.Get(s.ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: get record %d: %w", id, err)
	}
	return record, nil
}

func (s *recordService) ListRecords(projectKey string) ([]*models.Record, error) {
	list, err := s.repo.ListByProject(s.ctx, projectKey)
	if err != nil {
		return nil, fmt.Errorf("service: list records: %w", err)
	}
	return list, nil
}

func validateRecord(r *models.Record) error {
	if r == nil {
		return fmt.Errorf("service: record is required")
	}
	r.ProjectKey = strings.TrimSpace(r.ProjectKey)
	r.Category = strings.TrimSpace(r.Category)
	r.Name = strings.TrimSpace(r.Name)
	r.Tags = models.NormalizeTags(r.Tags)
	r.ReferenceTags = models.NormalizeTags(r.ReferenceTags)
	if r.History == nil {
		r.History = []models.RecordHistoryEntry{}
	}
	if r.ProjectKey == "" {
		return fmt.Errorf("service: record project is required")
	}
	if r.Name == "" {
		return fmt.Errorf("service: record name is required")
	}
	return nil
}

func (s *recordService) CreateRecord(r *models.Record) (*models.Record, error) {
	if err := validateRecord(r); err != nil {
		return nil, err
	}
	if err := s.repo.Create(s.ctx, r); err != nil {
		return nil, fmt.Errorf("service: create record: %w", err)
	}
	return r, nil
}

func (s *recordService) UpdateRecord(r *models.Record) (*models.Record, error) {
	if err := validateRecord(r); err != nil {
		return nil, err
	}
	if err := s.repo.Update(s.ctx, r); err != nil {
		return nil, fmt.Errorf("service: update record %d: %w", r.ID, err)
	}
	return r, nil
}

func (s *recordService) DeleteRecord(id uint) error {
	if err := s.repo.Delete(s.ctx, id); err != nil {
		return fmt.Errorf("service: delete record %d: %w", id, err)
	}
	return nil
}

func (s *recordService) AddHistoryEntry(id uint, entry string) (*models.Record, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, fmt.Errorf("service: history entry is required")
	}
	record, err := s.repo.Get(s.ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: add history to record %d: %w", id, err)
	}
	record.History = append(record.History, models.RecordHistoryEntry{
		ID:        uuid.NewString(),
		Timestamp: s.now().UTC(),
		Entry:     entry,
	})
	if err := s.repo.Update(s.ctx, record); err != nil {
		return nil, fmt.Errorf("service: add history to record %d: %w", id, err)
	}
	return record, nil
}

func (s *recordService) FindByTags(projectKey string, tags []string) ([]*models.Record, error) {
	return findRecordsByTags(s.ctx, s.repo, projectKey, tags)
}

func findRecordsByTags(ctx context.Context, repo repositories.RecordRepository, projectKey string, tags []string) ([]*models.Record, error) {
	tags = models.NormalizeTags(tags)
	if len(tags) == 0 {
		return []*models.Record{}, nil
	}
	all, err := repo.ListByProject(ctx, projectKey)
	if err != nil {
		return nil, fmt.Errorf("service: find records by tags: %w", err)
	}
	out := make([]*models.Record, 0, len(all))
	for _, r := range all {
		if r.MatchesAnyTag(tags) {
			out = append(out, r)
		}
	}
	return out, nil
}
