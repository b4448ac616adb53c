package events

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

var Emit = func(ctx context.Context, name string, evt ChatEvent) {}

func EnableRuntimeEmitter() {
	Emit = func(ctx context.Context, name string, evt ChatEvent) {
		if evt.ProjectKey == "" {
			evt.ProjectKey = ProjectFromContext(ctx)
		}

		runtime.EventsEmit(ctx, name, evt)

		if evt.Type != EventChunk {
			logRuntimeEvent(ctx, name, evt)
		}
	}
}

func SetCustomEmitter(f func(ctx context.Context, name string, evt ChatEvent)) {
	if f == nil {
		Emit = func(context.Context, string, ChatEvent) {}
		return
	}
	Emit = func(ctx context.Context, name string, evt ChatEvent) {
		if evt.ProjectKey == "" {
			evt.ProjectKey = ProjectFromContext(ctx)
		}
		f(ctx, name, evt)
	}
}

// Publish emits evt under its canonical name.
func Publish(ctx context.Context, evt ChatEvent) {
	Emit(ctx, NameFor(evt), evt)
}
