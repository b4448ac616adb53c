// Package bootstrap wires configuration, storage and services into a
// runtime shared by the desktop app and the command line client.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taletable/internal/config"
	"taletable/internal/database"
	"taletable/internal/llm/client"
	"taletable/internal/services"
	"taletable/internal/transcript"
)

// Runtime holds every long-lived component of the application.
type Runtime struct {
	Config  *config.Config
	DB      *gorm.DB
	Db      *services.DbServices
	Keys    *services.KeyringService
	Factory *client.Factory
	Models  services.ModelService
	Store   *transcript.Store
	Chat    *services.ChatService
}

// Options tune New. A nil Keyring opens the OS credential store.
type Options struct {
	Keyring   keyring.Keyring
	Builders  map[string]client.Builder
	SQLLogger logger.LogLevel
}

// New opens the database, the keyring and the transcript backend and builds the services.
func New(cfg *config.Config, opts Options) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}

	db, err := database.Init(database.Config{Path: cfg.DatabasePath, LogLevel: opts.SQLLogger})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open database: %w", err)
	}

	ring := opts.Keyring
	if ring == nil {
		ring, err = services.OpenKeyring()
		if err != nil {
			log.Warn().Err(err).Msg("keyring unavailable")
		}
	}
	keys := services.NewKeyringService(ring)

	catalog, err := client.DefaultCatalog()
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("bootstrap: load model catalog: %w", err)
	}
	catalog.Add(cfg.AvailableModels...)
	catalog.Add(cfg.DefaultModel)

	factoryOpts := make([]client.FactoryOption, 0, len(opts.Builders))
	for provider, b := range opts.Builders {
		factoryOpts = append(factoryOpts, client.WithBuilder(provider, b))
	}
	factory := client.NewFactory(catalog, keys, cfg.Generation, factoryOpts...)
	keys.OnChange = func(string) { factory.Reset() }

	dbs := services.NewDbServices(db, cfg.DefaultModel)

	var backend interface {
		transcript.Backend
		services.ProjectLister
	}
	switch cfg.TranscriptBackend {
	case config.BackendSQLite:
		backend = transcript.NewRepositoryBackend(dbs.Transcripts)
	default:
		backend = transcript.NewFileBackend(cfg.DataDir)
	}
	store := transcript.NewStore(backend)

	rt := &Runtime{
		Config:  cfg,
		DB:      db,
		Db:      dbs,
		Keys:    keys,
		Factory: factory,
		Models:  services.NewModelService(catalog),
		Store:   store,
		Chat:    services.NewChatService(store, backend, dbs.ProjectSettings, dbs.Snippets, factory, cfg.DefaultWindow),
	}

	log.Info().
		Str("backend", cfg.TranscriptBackend).
		Str("database", cfg.DatabasePath).
		Str("default_model", cfg.DefaultModel).
		Msg("runtime ready")
	return rt, nil
}

// Startup hands ctx to every service and restores the last active project.
func (r *Runtime) Startup(ctx context.Context) {
	r.Keys.Startup()
	r.Db.AppSettings.Startup(ctx)
	r.Db.ProjectSettings.Startup(ctx)
	r.Db.Snippets.Startup(ctx)
	r.Db.Records.Startup(ctx)
	r.Chat.Startup(ctx)

	settings, err := r.Db.AppSettings.Get()
	if err != nil {
		log.Warn().Err(err).Msg("could not read app settings")
		return
	}
	r.Chat.SetDefaultWindow(settings.DefaultWindow)
	if settings.ActiveProject == "" {
		return
	}
	if err := r.Chat.SwitchProject(settings.ActiveProject); err != nil {
		log.Warn().Err(err).Str("project", settings.ActiveProject).Msg("could not restore active project")
	}
}

// Open activates projectKey and remembers it as the active project.
func (r *Runtime) Open(projectKey string) error {
	if err := r.Chat.SwitchProject(projectKey); err != nil {
		return err
	}
	if _, err := r.Db.AppSettings.SetActiveProject(projectKey); err != nil {
		log.Warn().Err(err).Msg("could not save active project")
	}
	return nil
}

// Close flushes the transcript and closes the database.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if err := r.Chat.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush transcript: %w", err))
	}
	if sqlDB, err := r.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
