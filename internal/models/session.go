package models

// InjectionMode is the strategy used to merge transient context into a request.
type InjectionMode string

const (
	InjectionFormattedUser InjectionMode = "formatted_user"
	InjectionDummyResponse InjectionMode = "dummy_response"
	InjectionSystemRole    InjectionMode = "system_role"
)

// Valid reports whether m is one of the known injection modes.
func (m InjectionMode) Valid() bool {
	switch m {
	case InjectionFormattedUser, InjectionDummyResponse, InjectionSystemRole:
		return true
	}
	return false
}

// SessionConfig is the live configuration turns are issued against.
// It is replaced wholesale on project switch or settings change.
type SessionConfig struct {
	ModelID           string `json:"modelId"`
	SystemInstruction string `json:"systemInstruction"`
	ProjectKey        string `json:"projectKey"`
}

// ContextSnippet is one labelled piece of transient context.
type ContextSnippet struct {
	Label    string `json:"label"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
}

// ContextSelection names the stored snippets and records chosen for one turn.
// An empty Mode means the project's configured injection mode.
type ContextSelection struct {
	SnippetIDs []uint        `json:"snippetIds"`
	RecordIDs  []uint        `json:"recordIds"`
	Mode       InjectionMode `json:"mode"`
}

// TransientBundle is the ephemeral context merged into a single request. It is never persisted.
type TransientBundle struct {
	Snippets []ContextSnippet `json:"snippets"`
	Mode     InjectionMode    `json:"mode"`
	// ModelOverride is set when a selected snippet pins a model for this turn.
	ModelOverride string `json:"modelOverride,omitempty"`
}

// IsEmpty reports whether the bundle carries no snippet text at all.
func (b TransientBundle) IsEmpty() bool {
	for _, s := range b.Snippets {
		if s.Text != "" || s.Label != "" {
			return false
		}
	}
	return true
}
