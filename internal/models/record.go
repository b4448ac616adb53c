package models

import (
	"strings"
	"time"
)

// Record is a piece of structured reference data kept per project, such as a
// character or a place. Selected records and records whose tags match the
// reference tags of the selection are added to the transient context.
type Record struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	ProjectKey    string               `gorm:"size:255;not null;index" json:"projectKey"`
	Category      string               `gorm:"size:255;not null" json:"category"`
	Name          string               `gorm:"size:255;not null" json:"name"`
	Description   string               `gorm:"type:text" json:"description"`
	Tags          []string             `gorm:"type:text;serializer:json" json:"tags"`
	ReferenceTags []string             `gorm:"type:text;serializer:json" json:"referenceTags"`
	History       []RecordHistoryEntry `gorm:"type:text;serializer:json" json:"history"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// RecordHistoryEntry is one dated note in the life of a record.
type RecordHistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Entry     string    `json:"entry"`
}

func (r Record) Label() string {
	if r.Category == "" {
		return r.Name
	}
	return r.Category + " - " + r.Name
}

// MatchesAnyTag reports whether the record carries at least one of tags,
// ignoring case.
func (r Record) MatchesAnyTag(tags []string) bool {
	for _, have := range r.Tags {
		for _, want := range tags {
			if strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want)) {
				return true
			}
		}
	}
	return false
}

// RecentHistory returns up to n of the newest history entries, oldest first.
func (r Record) RecentHistory(n int) []RecordHistoryEntry {
	if n <= 0 || len(r.History) == 0 {
		return nil
	}
	if n > len(r.History) {
		n = len(r.History)
	}
	return r.History[len(r.History)-n:]
}

// ContextText renders the record for a context block. historyN newest
// history entries are appended when it is positive.
func (r Record) ContextText(historyN int) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(r.Description))
	if len(r.Tags) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Tags: " + strings.Join(r.Tags, ", "))
	}
	if recent := r.RecentHistory(historyN); len(recent) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Recent history:")
		for _, h := range recent {
			b.WriteString("\n- " + strings.TrimSpace(h.Entry))
		}
	}
	return b.String()
}

// NormalizeTags trims tags and drops blanks and case-insensitive duplicates.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
