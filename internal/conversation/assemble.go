// Package conversation builds the outgoing request for a chat turn from the
// transcript window, the transient context bundle and the new user text.
package conversation

import (
	"errors"
	"strings"

	"taletable/internal/models"
	"taletable/internal/prompt"
)

// ErrEmptyRequest is returned when a turn has neither user text nor transient context.
var ErrEmptyRequest = errors.New("conversation: empty request")

// Message is one role-tagged entry of an outgoing request.
type Message struct {
	Role models.Role `json:"role"`
	Text string      `json:"text"`
}

// OutgoingRequest is what the session client sends for one turn.
type OutgoingRequest struct {
	ModelID           string    `json:"modelId"`
	SystemInstruction string    `json:"systemInstruction"`
	Messages          []Message `json:"messages"`
	// InjectedMessages counts the leading messages that came from the transient bundle.
	InjectedMessages int `json:"injectedMessages"`
}

// WindowSource is the read side of the transcript store the assembler needs.
type WindowSource interface {
	Window(n int) []models.Turn
}

// ContextOptions are the project-level settings that shape the transient block.
type ContextOptions struct {
	Template      string
	DummyResponse string
}

// OptionsFromSettings extracts the assembler options from project settings.
func OptionsFromSettings(s models.ProjectSettings) ContextOptions {
	return ContextOptions{Template: s.ContextTemplate, DummyResponse: s.DummyResponseText}
}

// Assemble builds the request for one turn. An empty rendered context block is omitted.
func Assemble(src WindowSource, windowN int, bundle models.TransientBundle, userText string, cfg models.SessionConfig, opts ContextOptions) (OutgoingRequest, error) {
	block := ""
	if !bundle.IsEmpty() {
		tmpl := opts.Template
		if strings.TrimSpace(tmpl) == "" {
			tmpl = models.DefaultContextTemplate
		}
		block = prompt.RenderSnippets(tmpl, bundle.Snippets)
	}

	hasUser := strings.TrimSpace(userText) != ""
	if block == "" && !hasUser {
		return OutgoingRequest{}, ErrEmptyRequest
	}

	req := OutgoingRequest{
		ModelID:           cfg.ModelID,
		SystemInstruction: cfg.SystemInstruction,
	}
	if bundle.ModelOverride != "" {
		req.ModelID = bundle.ModelOverride
	}

	var window []models.Turn
	if src != nil {
		window = src.Window(windowN)
	}
	req.Messages = make([]Message, 0, len(window)+3)

	if block != "" {
		switch bundle.Mode {
		case models.InjectionSystemRole:
			if req.SystemInstruction == "" {
				req.SystemInstruction = block
			} else {
				req.SystemInstruction = req.SystemInstruction + "\n\n" + block
			}
		case models.InjectionDummyResponse:
			ack := opts.DummyResponse
			if strings.TrimSpace(ack) == "" {
				ack = models.DefaultDummyResponse
			}
			req.Messages = append(req.Messages,
				Message{Role: models.RoleUser, Text: block},
				Message{Role: models.RoleModel, Text: ack},
			)
			req.InjectedMessages = 2
		default:
			req.Messages = append(req.Messages, Message{Role: models.RoleUser, Text: block})
			req.InjectedMessages = 1
		}
	}

	for _, t := range window {
		req.Messages = append(req.Messages, Message{Role: t.Role, Text: t.Text})
	}
	if hasUser {
		req.Messages = append(req.Messages, Message{Role: models.RoleUser, Text: userText})
	}
	if len(req.Messages) == 0 {
		return OutgoingRequest{}, ErrEmptyRequest
	}
	return req, nil
}
