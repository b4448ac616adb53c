package transcript

import (
	"context"

	"taletable/internal/repositories"
)

// RepositoryBackend keeps transcripts in the application database, one row per project.
type RepositoryBackend struct {
	repo repositories.TranscriptRepository
}

func NewRepositoryBackend(repo repositories.TranscriptRepository) *RepositoryBackend {
	return &RepositoryBackend{repo: repo}
}

func (b *RepositoryBackend) Read(ctx context.Context, projectKey string) ([]byte, bool, error) {
	if err := ValidateProjectKey(projectKey); err != nil {
		return nil, false, err
	}
	rec, err := b.repo.GetByProject(ctx, projectKey)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, nil
	}
	return []byte(rec.TurnsJSON), true, nil
}

// WriteAtomic upserts the row inside a single transaction.
func (b *RepositoryBackend) WriteAtomic(ctx context.Context, projectKey string, data []byte) error {
	if err := ValidateProjectKey(projectKey); err != nil {
		return err
	}
	return b.repo.Save(ctx, projectKey, string(data))
}

func (b *RepositoryBackend) ListProjects(ctx context.Context) ([]string, error) {
	return b.repo.ListProjects(ctx)
}
