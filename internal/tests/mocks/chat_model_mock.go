package mocks

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModelMock is a model.BaseChatModel whose calls are recorded.
type ChatModelMock struct {
	GenerateFunc func(ctx context.Context, in []*schema.Message) (*schema.Message, error)
	StreamFunc   func(ctx context.Context, in []*schema.Message) (*schema.StreamReader[*schema.Message], error)

	mu    sync.Mutex
	calls [][]*schema.Message
}

func (m *ChatModelMock) Generate(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.record(in)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, in)
	}
	return schema.AssistantMessage("", nil), nil
}

func (m *ChatModelMock) Stream(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.record(in)
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, in)
	}
	return StreamOf(ctx), nil
}

func (m *ChatModelMock) record(in []*schema.Message) {
	m.mu.Lock()
	m.calls = append(m.calls, in)
	m.mu.Unlock()
}

// Calls returns the message lists received so far.
func (m *ChatModelMock) Calls() [][]*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]*schema.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// StreamOf streams the given fragments as assistant chunks.
func StreamOf(ctx context.Context, fragments ...string) *schema.StreamReader[*schema.Message] {
	msgs := make([]*schema.Message, 0, len(fragments))
	for _, f := range fragments {
		msgs = append(msgs, schema.AssistantMessage(f, nil))
	}
	return StreamMessages(ctx, nil, msgs...)
}

// StreamMessages streams msgs, waiting on gate before each one when gate is not nil.
func StreamMessages(ctx context.Context, gate <-chan struct{}, msgs ...*schema.Message) *schema.StreamReader[*schema.Message] {
	sr, sw := schema.Pipe[*schema.Message](0)
	go func() {
		defer sw.Close()
		for _, msg := range msgs {
			if gate != nil {
				select {
				case <-gate:
				case <-ctx.Done():
					sw.Send(nil, ctx.Err())
					return
				}
			}
			if closed := sw.Send(msg, nil); closed {
				return
			}
		}
	}()
	return sr
}

// ModelSourceMock resolves every model id through ChatModelFunc, or to Model.
type ModelSourceMock struct {
	Model         model.BaseChatModel
	ChatModelFunc func(ctx context.Context, modelID string) (model.BaseChatModel, error)

	mu  sync.Mutex
	ids []string
}

func (m *ModelSourceMock) ChatModel(ctx context.Context, modelID string) (model.BaseChatModel, error) {
	m.mu.Lock()
	m.ids = append(m.ids, modelID)
	m.mu.Unlock()
	if m.ChatModelFunc != nil {
		return m.ChatModelFunc(ctx, modelID)
	}
	return m.Model, nil
}

// ModelIDs returns the resolved model ids in call order.
func (m *ModelSourceMock) ModelIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...)
}
