package models

import "time"

// TranscriptRecord stores one project's transcript as a single JSON array.
type TranscriptRecord struct {
	ID         uint   `gorm:"primaryKey"`
	ProjectKey string `gorm:"size:255;not null;uniqueIndex"`
	TurnsJSON  string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
