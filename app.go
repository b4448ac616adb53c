package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"taletable/internal/bootstrap"
	"taletable/internal/models"
)

// App struct
type App struct {
	ctx context.Context
	rt  *bootstrap.Runtime
}

// NewApp creates a new App application struct
func NewApp(rt *bootstrap.Runtime) *App {
	return &App{rt: rt}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.rt.Startup(ctx)
}

// shutdown is called when the app is closing. Clean up resources here.
func (a *App) shutdown(ctx context.Context) {
	if err := a.rt.Close(ctx); err != nil {
		runtime.LogError(ctx, fmt.Sprintf("shutdown: %v", err))
		return
	}
	runtime.LogInfo(ctx, "transcript flushed, database closed")
}

// OpenProject activates a project and remembers it for the next launch.
func (a *App) OpenProject(projectKey string) error {
	if err := a.rt.Open(projectKey); err != nil {
		runtime.LogError(a.ctx, fmt.Sprintf("failed to open project %s: %v", projectKey, err))
		return err
	}
	return nil
}

// SetDefaultWindow changes the number of exchanges sent as history.
func (a *App) SetDefaultWindow(n int) (*models.AppSettings, error) {
	settings, err := a.rt.Db.AppSettings.SetDefaultWindow(n)
	if err != nil {
		return nil, err
	}
	a.rt.Chat.SetDefaultWindow(settings.DefaultWindow)
	return settings, nil
}
