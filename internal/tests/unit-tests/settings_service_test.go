package unit_tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taletable/internal/llm/client"
	"taletable/internal/models"
	"taletable/internal/services"
	"taletable/internal/tests/mocks"
)

func TestAppSettingsService_Update(t *testing.T) {
	var saved *models.AppSettings
	repo := &mocks.AppSettingsRepositoryMock{
		UpdateFunc: func(ctx context.Context, s *models.AppSettings) error {
			saved = s
			return nil
		},
	}
	svc := services.NewAppSettingsService(repo)

	got, err := svc.Update("dark", "fr")
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, "fr", got.Locale)
	assert.NotEmpty(t, got.UpdatedAt)
	assert.Same(t, got, saved)

	_, err = svc.Update("neon", "en")
	assert.Error(t, err)
	_, err = svc.Update("dark", "")
	assert.Error(t, err)
}

func TestAppSettingsService_ActiveProjectAndWindow(t *testing.T) {
	svc := services.NewAppSettingsService(&mocks.AppSettingsRepositoryMock{})

	got, err := svc.SetActiveProject("novel")
	require.NoError(t, err)
	assert.Equal(t, "novel", got.ActiveProject)

	got, err = svc.SetDefaultWindow(8)
	require.NoError(t, err)
	assert.Equal(t, 8, got.DefaultWindow)

	_, err = svc.SetDefaultWindow(-1)
	assert.Error(t, err)
}

func TestAppSettingsService_UpdateFailure(t *testing.T) {
	repo := &mocks.AppSettingsRepositoryMock{
		UpdateFunc: func(ctx context.Context, s *models.AppSettings) error { return errors.New("locked") },
	}
	svc := services.NewAppSettingsService(repo)

	_, err := svc.Update("light", "en")
	assert.EqualError(t, err, "locked")
}

func TestProjectSettingsService_GetDefaults(t *testing.T) {
	svc := services.NewProjectSettingsService(&mocks.ProjectSettingsRepositoryMock{}, "gpt-4o")

	got, err := svc.Get("novel")
	require.NoError(t, err)
	assert.Equal(t, "novel", got.ProjectKey)
	assert.Equal(t, "gpt-4o", got.ModelID)
	assert.Equal(t, models.DefaultContextTemplate, got.ContextTemplate)
	assert.Equal(t, models.InjectionFormattedUser, got.ContextMode)
	assert.Equal(t, models.DefaultDummyResponse, got.DummyResponseText)

	_, err = svc.Get("a/b")
	assert.Error(t, err)
}

func TestProjectSettingsService_GetFillsStoredGaps(t *testing.T) {
	repo := &mocks.ProjectSettingsRepositoryMock{
		GetByProjectFunc: func(ctx context.Context, key string) (*models.ProjectSettings, error) {
			return &models.ProjectSettings{ProjectKey: key, SystemInstruction: "Custom.", ContextMode: "bogus"}, nil
		},
	}
	svc := services.NewProjectSettingsService(repo, "")

	got, err := svc.Get("novel")
	require.NoError(t, err)
	assert.Equal(t, "Custom.", got.SystemInstruction)
	assert.Equal(t, models.DefaultModelID, got.ModelID)
	assert.Equal(t, models.InjectionFormattedUser, got.ContextMode)
}

func TestProjectSettingsService_Save(t *testing.T) {
	var saved *models.ProjectSettings
	repo := &mocks.ProjectSettingsRepositoryMock{
		SaveFunc: func(ctx context.Context, s *models.ProjectSettings) error {
			saved = s
			return nil
		},
	}
	svc := services.NewProjectSettingsService(repo, "gpt-4o")

	got, err := svc.Save(&models.ProjectSettings{ProjectKey: " novel ", ContextMode: models.InjectionDummyResponse})
	require.NoError(t, err)
	assert.Equal(t, "novel", got.ProjectKey)
	assert.Equal(t, "gpt-4o", got.ModelID)
	assert.Equal(t, models.InjectionDummyResponse, got.ContextMode)
	assert.Same(t, got, saved)

	_, err = svc.Save(&models.ProjectSettings{ProjectKey: "novel", ContextMode: "loud"})
	assert.Error(t, err)
	_, err = svc.Save(nil)
	assert.Error(t, err)
}

func TestSnippetService_CreateValidates(t *testing.T) {
	created := false
	repo := &mocks.SnippetRepositoryMock{
		CreateFunc: func(ctx context.Context, sn *models.Snippet) error {
			created = true
			sn.ID = 11
			return nil
		},
	}
	svc := services.NewSnippetService(repo, &mocks.RecordRepositoryMock{})

	_, err := svc.CreateSnippet(&models.Snippet{ProjectKey: "novel"})
	assert.Error(t, err)
	assert.False(t, created)

	sn, err := svc.CreateSnippet(&models.Snippet{ProjectKey: " novel", Category: " character ", Name: "Alice ", Text: "Curious."})
	require.NoError(t, err)
	assert.Equal(t, uint(11), sn.ID)
	assert.Equal(t, "character - Alice", sn.Label())
}

func TestSnippetService_BuildBundle(t *testing.T) {
	repo := &mocks.SnippetRepositoryMock{
		GetManyFunc: func(ctx context.Context, ids []uint) ([]*models.Snippet, error) {
			assert.Equal(t, []uint{2, 1}, ids)
			return []*models.Snippet{
				{ID: 2, ProjectKey: "novel", Category: "place", Name: "Castle", Text: "Tall."},
				{ID: 1, ProjectKey: "novel", Category: "character", Name: "Bob", Text: "Grumpy.", ModelID: "gpt-4o"},
			}, nil
		},
	}
	svc := services.NewSnippetService(repo, &mocks.RecordRepositoryMock{})

	bundle, err := svc.BuildBundle("novel", models.ContextSelection{SnippetIDs: []uint{2, 1}, Mode: models.InjectionSystemRole})
	require.NoError(t, err)
	assert.Equal(t, models.InjectionSystemRole, bundle.Mode)
	assert.Equal(t, "gpt-4o", bundle.ModelOverride)
	require.Len(t, bundle.Snippets, 2)
	assert.Equal(t, "place - Castle", bundle.Snippets[0].Label)
	assert.Equal(t, "Grumpy.", bundle.Snippets[1].Text)

	empty, err := svc.BuildBundle("novel", models.ContextSelection{})
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestSnippetService_BuildBundle_RecordsAndReferenceTags(t *testing.T) {
	snippets := &mocks.SnippetRepositoryMock{
		GetManyFunc: func(ctx context.Context, ids []uint) ([]*models.Snippet, error) {
			return []*models.Snippet{
				{ID: 1, ProjectKey: "novel", Category: "scene", Name: "Market", Text: "Busy.", ReferenceTags: []string{"Merchant"}},
			}, nil
		},
	}
	history := []models.RecordHistoryEntry{
		{ID: "h1", Entry: "Arrived in town."},
		{ID: "h2", Entry: "Opened a stall."},
		{ID: "h3", Entry: "Lost the stall."},
	}
	all := []*models.Record{
		{ID: 10, ProjectKey: "novel", Category: "character", Name: "Ann", Description: "A spy.", Tags: []string{"guild"}, ReferenceTags: []string{"GUILD", "harbor"}},
		{ID: 11, ProjectKey: "novel", Category: "character", Name: "Cid", Description: "A trader.", Tags: []string{"merchant"}, History: history},
		{ID: 12, ProjectKey: "novel", Category: "place", Name: "Docks", Description: "Wet.", Tags: []string{"Harbor", "merchant"}},
		{ID: 13, ProjectKey: "novel", Category: "place", Name: "Keep", Description: "Dry.", Tags: []string{"castle"}},
	}
	records := &mocks.RecordRepositoryMock{
		GetManyFunc: func(ctx context.Context, ids []uint) ([]*models.Record, error) {
			assert.Equal(t, []uint{10}, ids)
			return []*models.Record{all[0]}, nil
		},
		ListByProjectFunc: func(ctx context.Context, projectKey string) ([]*models.Record, error) {
			assert.Equal(t, "novel", projectKey)
			return all, nil
		},
	}
	svc := services.NewSnippetService(snippets, records)

	bundle, err := svc.BuildBundle("novel", models.ContextSelection{SnippetIDs: []uint{1}, RecordIDs: []uint{10}})
	require.NoError(t, err)

	labels := make([]string, 0, len(bundle.Snippets))
	for _, sn := range bundle.Snippets {
		labels = append(labels, sn.Label)
	}
	// The selected record is not repeated by its own tag; Keep matches no tag.
	assert.Equal(t, []string{"scene - Market", "character - Ann", "character - Cid", "place - Docks"}, labels)

	assert.Equal(t, "character", bundle.Snippets[1].Category)
	assert.Contains(t, bundle.Snippets[1].Text, "A spy.")
	assert.Contains(t, bundle.Snippets[1].Text, "Tags: guild")

	cid := bundle.Snippets[2].Text
	assert.Contains(t, cid, "A trader.")
	assert.NotContains(t, cid, "Arrived in town.")
	assert.Contains(t, cid, "Opened a stall.")
	assert.Contains(t, cid, "Lost the stall.")
}

func TestSnippetService_BuildBundle_ForeignRecord(t *testing.T) {
	records := &mocks.RecordRepositoryMock{
		GetManyFunc: func(ctx context.Context, ids []uint) ([]*models.Record, error) {
			return []*models.Record{{ID: 3, ProjectKey: "other", Name: "Eve"}}, nil
		},
	}
	svc := services.NewSnippetService(&mocks.SnippetRepositoryMock{}, records)

	_, err := svc.BuildBundle("novel", models.ContextSelection{RecordIDs: []uint{3}})
	assert.Error(t, err)
}

func TestRecordService_CreateValidatesAndNormalizesTags(t *testing.T) {
	var saved *models.Record
	repo := &mocks.RecordRepositoryMock{
		CreateFunc: func(ctx context.Context, r *models.Record) error {
			saved = r
			r.ID = 21
			return nil
		},
	}
	svc := services.NewRecordService(repo)

	_, err := svc.CreateRecord(&models.Record{ProjectKey: "novel", Name: " "})
	assert.Error(t, err)
	assert.Nil(t, saved)

	rec, err := svc.CreateRecord(&models.Record{
		ProjectKey: " novel ",
		Category:   "character",
		Name:       " Ann",
		Tags:       []string{" guild", "", "Guild", "spy"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(21), rec.ID)
	assert.Equal(t, "novel", saved.ProjectKey)
	assert.Equal(t, []string{"guild", "spy"}, saved.Tags)
	assert.NotNil(t, saved.History)
}

func TestRecordService_AddHistoryEntry(t *testing.T) {
	stored := &models.Record{ID: 5, ProjectKey: "novel", Name: "Ann"}
	var updated *models.Record
	repo := &mocks.RecordRepositoryMock{
		GetFunc: func(ctx context.Context, id uint) (*models.Record, error) {
			if id != 5 {
				return nil, errors.New("not found")
			}
			return stored, nil
		},
		UpdateFunc: func(ctx context.Context, r *models.Record) error {
			updated = r
			return nil
		},
	}
	svc := services.NewRecordService(repo)

	_, err := svc.AddHistoryEntry(5, "   ")
	assert.Error(t, err)
	_, err = svc.AddHistoryEntry(9, "Left town.")
	assert.Error(t, err)

	rec, err := svc.AddHistoryEntry(5, " Left town. ")
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Len(t, rec.History, 1)
	assert.Equal(t, "Left town.", rec.History[0].Entry)
	assert.NotEmpty(t, rec.History[0].ID)
	assert.False(t, rec.History[0].Timestamp.IsZero())
}

func TestRecordService_FindByTags(t *testing.T) {
	repo := &mocks.RecordRepositoryMock{
		ListByProjectFunc: func(ctx context.Context, projectKey string) ([]*models.Record, error) {
			return []*models.Record{
				{ID: 1, Name: "Ann", Tags: []string{"Guild"}},
				{ID: 2, Name: "Bob", Tags: []string{"bakery"}},
				{ID: 3, Name: "Cid", Tags: []string{"harbor", "guild"}},
			}, nil
		},
	}
	svc := services.NewRecordService(repo)

	found, err := svc.FindByTags("novel", []string{"GUILD", "nowhere"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Ann", found[0].Name)
	assert.Equal(t, "Cid", found[1].Name)

	none, err := svc.FindByTags("novel", []string{" "})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestModelService(t *testing.T) {
	catalog, err := client.DefaultCatalog()
	require.NoError(t, err)
	svc := services.NewModelService(catalog)

	groups, err := svc.ListModelGroups()
	require.NoError(t, err)
	assert.NotEmpty(t, groups)

	mdl, err := svc.GetModel("gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "openai", mdl.ProviderID)

	_, err = svc.GetModel(" ")
	assert.Error(t, err)
}
