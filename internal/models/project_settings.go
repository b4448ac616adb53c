package models

import "time"

const (
	DefaultModelID           = "gemini-1.5-pro-latest"
	DefaultSystemInstruction = "You are a helpful AI assistant."
	DefaultDummyResponse     = "Understood. I will take this context into account."
	DefaultContextTemplate   = "[[default]]\n### {label}\n{text}"
)

// ProjectSettings holds the per-project configuration read by the chat session.
type ProjectSettings struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	ProjectKey        string        `gorm:"size:255;not null;uniqueIndex" json:"projectKey"`
	DisplayName       string        `gorm:"size:255" json:"displayName"`
	ModelID           string        `gorm:"size:255" json:"modelId"`
	SystemInstruction string        `gorm:"type:text" json:"systemInstruction"`
	EditModelID       string        `gorm:"size:255" json:"editModelId"`
	ContextTemplate   string        `gorm:"type:text" json:"contextTemplate"`
	ContextMode       InjectionMode `gorm:"size:32" json:"contextMode"`
	DummyResponseText string        `gorm:"type:text" json:"dummyResponseText"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// DefaultProjectSettings returns the settings used when a project has none stored.
func DefaultProjectSettings(projectKey, modelID string) ProjectSettings {
	if modelID == "" {
		modelID = DefaultModelID
	}
	return ProjectSettings{
		ProjectKey:        projectKey,
		DisplayName:       projectKey,
		ModelID:           modelID,
		SystemInstruction: DefaultSystemInstruction,
		ContextTemplate:   DefaultContextTemplate,
		ContextMode:       InjectionFormattedUser,
		DummyResponseText: DefaultDummyResponse,
	}
}

// FillDefaults replaces empty fields with defaults, the way older records are upgraded on load.
func (p *ProjectSettings) FillDefaults(defaultModel string) {
	def := DefaultProjectSettings(p.ProjectKey, defaultModel)
	if p.DisplayName == "" {
		p.DisplayName = def.DisplayName
	}
	if p.ModelID == "" {
		p.ModelID = def.ModelID
	}
	if p.ContextTemplate == "" {
		p.ContextTemplate = def.ContextTemplate
	}
	if !p.ContextMode.Valid() {
		p.ContextMode = def.ContextMode
	}
	if p.DummyResponseText == "" {
		p.DummyResponseText = def.DummyResponseText
	}
}

// SessionConfig derives the session configuration for this project.
func (p ProjectSettings) SessionConfig() SessionConfig {
	return SessionConfig{
		ModelID:           p.ModelID,
		SystemInstruction: p.SystemInstruction,
		ProjectKey:        p.ProjectKey,
	}
}
