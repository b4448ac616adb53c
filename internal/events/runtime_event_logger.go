package events

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// describe summarises an event for the runtime log without its text body.
func describe(name string, event ChatEvent) string {
	line := fmt.Sprintf("%s turn=%s project=%s", name, event.TurnID, event.ProjectKey)
	switch event.Type {
	case EventDone:
		line += fmt.Sprintf(" chars=%d", len(event.Text))
		if event.Usage != nil {
			line += fmt.Sprintf(" tokens=%d", event.Usage.TotalTokens)
		}
	case EventError:
		line += fmt.Sprintf(" kind=%s message=%q", event.ErrorKind, event.Message)
	case EventWarn, EventInfo:
		line += fmt.Sprintf(" message=%q", event.Message)
	}
	return line
}

func logRuntimeEvent(ctx context.Context, name string, event ChatEvent) {
	line := describe(name, event)
	switch event.Type {
	case EventError:
		runtime.LogError(ctx, line)
	case EventWarn, EventCancelled:
		runtime.LogWarning(ctx, line)
	default:
		runtime.LogInfo(ctx, line)
	}
}
