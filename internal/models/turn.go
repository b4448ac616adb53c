package models

import "time"

// Role identifies who authored a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// UsageMetadata is the token accounting reported by the provider for a single call.
type UsageMetadata struct {
	PromptTokens     int `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens" yaml:"completion_tokens"`
	TotalTokens      int `json:"total_tokens" yaml:"total_tokens"`
}

// Turn is one persisted exchange unit of a transcript.
type Turn struct {
	ID            string         `json:"id,omitempty" yaml:"id,omitempty"`
	Role          Role           `json:"role" yaml:"role"`
	Text          string         `json:"text" yaml:"text"`
	Timestamp     time.Time      `json:"timestamp" yaml:"timestamp"`
	UsageMetadata *UsageMetadata `json:"usage_metadata,omitempty" yaml:"usage_metadata,omitempty"`
}

// Clone returns a deep copy so callers never share usage pointers with the store.
func (t Turn) Clone() Turn {
	out := t
	if t.UsageMetadata != nil {
		u := *t.UsageMetadata
		out.UsageMetadata = &u
	}
	return out
}
