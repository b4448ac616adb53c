package models

type AppSettings struct {
	ID            uint   `gorm:"primaryKey" json:"id"` // single-row table (ID=1)
	Version       int    `gorm:"not null;default:1" json:"version"`
	Theme         string `gorm:"not null;default:system" json:"theme"` // "light" | "dark" | "system"
	Locale        string `gorm:"not null" json:"locale"`
	ActiveProject string `gorm:"size:255" json:"activeProject"`
	DefaultWindow int    `gorm:"not null;default:5" json:"defaultWindow"`
	UpdatedAt     string `json:"updatedAt"`
}
