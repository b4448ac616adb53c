package services

import (
	"taletable/internal/repositories"

	"gorm.io/gorm"
)

// DbServices aggregates all domain services backed by the database.
type DbServices struct {
	AppSettings     AppSettingsService
	ProjectSettings ProjectSettingsService
	Snippets        SnippetService
	Records         RecordService

	// Transcripts backs the transcript store when the sqlite backend is selected.
	Transcripts repositories.TranscriptRepository
}

// NewDbServices constructs the service container using repositories backed by db.
func NewDbServices(db *gorm.DB, defaultModel string) *DbServices {
	records := repositories.NewRecordRepository(db)
	return &DbServices{
		AppSettings:     NewAppSettingsService(repositories.NewAppSettingsRepository(db)),
		ProjectSettings: NewProjectSettingsService(repositories.NewProjectSettingsRepository(db), defaultModel),
		Snippets:        NewSnippetService(repositories.NewSnippetRepository(db), records),
		Records:         NewRecordService(records),
		Transcripts:     repositories.NewTranscriptRepository(db),
	}
}
