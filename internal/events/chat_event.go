package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"taletable/internal/models"
)

type EventType string

const (
	EventChunk     EventType = "chunk"
	EventDone      EventType = "done"
	EventError     EventType = "error"
	EventCancelled EventType = "cancelled"
	EventInfo      EventType = "info"
	EventWarn      EventType = "warn"
)

const (
	ChatChunk     = "event:chat:chunk"
	ChatDone      = "event:chat:done"
	ChatError     = "event:chat:error"
	ChatCancelled = "event:chat:cancelled"
	ChatNotice    = "event:chat:notice"
)

// ChatEvent is the payload forwarded to the presentation layer for a chat turn.
type ChatEvent struct {
	ID         string                `json:"id"`
	Type       EventType             `json:"type"`
	TurnID     string                `json:"turnId,omitempty"`
	ProjectKey string                `json:"projectKey,omitempty"`
	Text       string                `json:"text,omitempty"`
	Usage      *models.UsageMetadata `json:"usage,omitempty"`
	ErrorKind  string                `json:"errorKind,omitempty"`
	Message    string                `json:"message,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

type contextKey string

const projectContextKey contextKey = "taletable/events/project"

// WithProject returns a derived context annotated with the given project key
// so emitters can scope payloads automatically.
func WithProject(ctx context.Context, projectKey string) context.Context {
	if strings.TrimSpace(projectKey) == "" {
		return ctx
	}
	return context.WithValue(ctx, projectContextKey, projectKey)
}

// ProjectFromContext extracts the project key associated with ctx.
func ProjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(projectContextKey).(string); ok {
		return v
	}
	return ""
}

func newChatEvent(eventType EventType, turnID string) ChatEvent {
	return ChatEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		TurnID:    turnID,
		Timestamp: time.Now(),
	}
}

func NewChunk(turnID, fragment string) ChatEvent {
	evt := newChatEvent(EventChunk, turnID)
	evt.Text = fragment
	return evt
}

func NewDone(turnID, text string, usage models.UsageMetadata) ChatEvent {
	evt := newChatEvent(EventDone, turnID)
	evt.Text = text
	evt.Usage = &usage
	return evt
}

func NewError(turnID, kind, message string) ChatEvent {
	evt := newChatEvent(EventError, turnID)
	evt.ErrorKind = kind
	evt.Message = message
	return evt
}

func NewCancelled(turnID string) ChatEvent {
	return newChatEvent(EventCancelled, turnID)
}

// NewWarn creates a notice that is not tied to a turn, e.g. a failed save.
func NewWarn(message string) ChatEvent {
	evt := newChatEvent(EventWarn, "")
	evt.Message = message
	return evt
}

func NewInfo(message string) ChatEvent {
	evt := newChatEvent(EventInfo, "")
	evt.Message = message
	return evt
}

// NameFor returns the runtime event name a ChatEvent is emitted under.
func NameFor(evt ChatEvent) string {
	switch evt.Type {
	case EventChunk:
		return ChatChunk
	case EventDone:
		return ChatDone
	case EventError:
		return ChatError
	case EventCancelled:
		return ChatCancelled
	}
	return ChatNotice
}
