package models

import "time"

// Snippet is a reusable prompt fragment stored per project.
type Snippet struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ProjectKey string `gorm:"size:255;not null;uniqueIndex:idx_snippet_project_category_name" json:"projectKey"`
	Category   string `gorm:"size:255;not null;uniqueIndex:idx_snippet_project_category_name" json:"category"`
	Name       string `gorm:"size:255;not null;uniqueIndex:idx_snippet_project_category_name" json:"name"`
	Text       string `gorm:"type:text;not null" json:"text"`
	ModelID    string `gorm:"size:255" json:"modelId,omitempty"`

	// ReferenceTags pull tag-matched records into the context when the snippet is selected.
	ReferenceTags []string  `gorm:"type:text;serializer:json" json:"referenceTags,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Label is how the snippet is introduced inside a transient context block.
func (s Snippet) Label() string {
	if s.Category == "" {
		return s.Name
	}
	return s.Category + " - " + s.Name
}
