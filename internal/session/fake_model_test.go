package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// fakeModel streams canned chunks through an eino pipe.
type fakeModel struct {
	chunks []*schema.Message
	// failAfter sends failErr once that many chunks were written; -1 disables it.
	failAfter int
	failErr   error
	streamErr error
	// gate, when set, must be signalled once per chunk.
	gate chan struct{}

	generateOut *schema.Message
	generateErr error

	streamCalls atomic.Int32
	mu          sync.Mutex
	lastInput   []*schema.Message
}

func newFakeModel(chunks ...*schema.Message) *fakeModel {
	return &fakeModel{chunks: chunks, failAfter: -1}
}

func (f *fakeModel) record(in []*schema.Message) {
	f.mu.Lock()
	f.lastInput = in
	f.mu.Unlock()
}

func (f *fakeModel) input() []*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastInput
}

func (f *fakeModel) Generate(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.record(in)
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.generateOut, nil
}

func (f *fakeModel) Stream(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.streamCalls.Add(1)
	f.record(in)
	if f.streamErr != nil {
		return nil, f.streamErr
	}

	sr, sw := schema.Pipe[*schema.Message](0)
	go func() {
		defer sw.Close()
		for i := 0; i <= len(f.chunks); i++ {
			if i == f.failAfter {
				sw.Send(nil, f.failErr)
				return
			}
			if i == len(f.chunks) {
				return
			}
			if f.gate != nil {
				select {
				case <-f.gate:
				case <-ctx.Done():
					sw.Send(nil, ctx.Err())
					return
				}
			}
			if closed := sw.Send(f.chunks[i], nil); closed {
				return
			}
		}
	}()
	return sr, nil
}

type fakeSource struct {
	model  model.BaseChatModel
	err    error
	mu     sync.Mutex
	lastID string
}

func (s *fakeSource) ChatModel(_ context.Context, modelID string) (model.BaseChatModel, error) {
	s.mu.Lock()
	s.lastID = modelID
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.model, nil
}

func (s *fakeSource) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastID
}

func chunk(text string) *schema.Message {
	return &schema.Message{Role: schema.Assistant, Content: text}
}

func chunkWithUsage(text string, prompt, completion, total int) *schema.Message {
	m := chunk(text)
	m.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
	}}
	return m
}

var errBoom = errors.New("boom")
