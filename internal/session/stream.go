// Package session drives chat requests against the remote model: one
// cancellable streaming turn at a time, plus independent single-shot calls.
package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"taletable/internal/conversation"
	"taletable/internal/models"
)

// ModelSource resolves a model id to a ready chat model.
type ModelSource interface {
	ChatModel(ctx context.Context, modelID string) (model.BaseChatModel, error)
}

// Event is delivered on Turn.Events in arrival order. Every turn ends with
// exactly one terminal event (complete, error or cancelled), then the channel closes.
type Event struct {
	Type   EventType
	TurnID string
	// Text is the fragment for chunk events and the full reply for complete events.
	Text  string
	Usage models.UsageMetadata
	Err   *ProviderError
}

// Client owns the streaming session for one project.
type Client struct {
	models ModelSource

	mu     sync.Mutex
	active *Turn
}

func NewClient(models ModelSource) *Client {
	return &Client{models: models}
}

// Start opens a streaming call for req and returns the turn tracking it.
// Errors returned here happen before any network call is made.
// The caller must drain Turn.Events until it is closed.
func (c *Client) Start(ctx context.Context, req conversation.OutgoingRequest) (*Turn, error) {
	if len(req.Messages) == 0 {
		return nil, conversation.ErrEmptyRequest
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil && !c.active.State().Terminal() {
		return nil, ErrSessionBusy
	}

	cm, err := c.models.ChatModel(ctx, req.ModelID)
	if err != nil {
		return nil, newProviderError(err)
	}

	turnCtx, cancel := context.WithCancel(ctx)
	t := &Turn{
		ID:      uuid.NewString(),
		Request: req,
		ctx:     turnCtx,
		cancel:  cancel,
		state:   StateSending,
		events:  make(chan Event),
		done:    make(chan struct{}),
	}
	c.active = t

	log.Debug().
		Str("turn", t.ID).
		Str("model", req.ModelID).
		Int("messages", len(req.Messages)).
		Msg("starting streaming turn")

	go t.run(cm)
	return t, nil
}

// Cancel aborts the in-flight turn. It returns ErrNoActiveTurn when the
// last turn already reached a terminal state.
func (c *Client) Cancel() error {
	c.mu.Lock()
	t := c.active
	c.mu.Unlock()

	if t == nil || !t.Cancel() {
		return ErrNoActiveTurn
	}
	return nil
}

// Active returns the most recent turn, or nil.
func (c *Client) Active() *Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Busy reports whether a turn is Sending or Streaming.
func (c *Client) Busy() bool {
	t := c.Active()
	return t != nil && !t.State().Terminal()
}

// Turn is one outgoing streaming request.
type Turn struct {
	ID      string
	Request conversation.OutgoingRequest

	ctx    context.Context
	cancel context.CancelFunc

	// sendMu serialises chunk delivery with Cancel.
	sendMu sync.Mutex

	mu    sync.Mutex
	state State
	text  string
	usage models.UsageMetadata
	err   error

	events chan Event
	done   chan struct{}
}

// Events returns the ordered event channel of the turn.
func (t *Turn) Events() <-chan Event {
	return t.events
}

// Done is closed once the terminal event has been delivered.
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

func (t *Turn) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Result returns the outcome after Done is closed. err is ErrCancelled for
// cancelled turns and a *ProviderError for failed ones.
func (t *Turn) Result() (string, models.UsageMetadata, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text, t.usage, t.err
}

// Cancel moves an in-flight turn to Cancelled. No chunk or complete event is
// delivered once it returns true. It is a no-op on terminal turns.
func (t *Turn) Cancel() bool {
	t.mu.Lock()
	inFlight := t.state.InFlight()
	t.mu.Unlock()
	if !inFlight {
		return false
	}

	// Unblocks a pending chunk delivery so sendMu can be taken.
	t.cancel()

	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.InFlight() {
		t.state = StateCancelled
		t.err = ErrCancelled
	}
	// The worker may have observed the cancelled context first.
	return t.state == StateCancelled
}

type recvResult struct {
	msg *schema.Message
	err error
}

func (t *Turn) run(cm model.BaseChatModel) {
	defer t.cancel()

	reader, err := cm.Stream(t.ctx, toSchemaMessages(t.Request.SystemInstruction, t.Request.Messages))
	if err != nil {
		t.finish(err)
		return
	}
	if reader == nil {
		t.finish(errors.New("model returned nil stream reader"))
		return
	}
	defer reader.Close()

	t.mu.Lock()
	if t.state == StateSending {
		t.state = StateStreaming
	}
	t.mu.Unlock()

	recv := make(chan recvResult)
	go func() {
		for {
			msg, err := reader.Recv()
			select {
			case recv <- recvResult{msg: msg, err: err}:
			case <-t.ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var sb strings.Builder
	var usage *models.UsageMetadata
	for {
		var r recvResult
		select {
		case <-t.ctx.Done():
			t.finish(t.ctx.Err())
			return
		case r = <-recv:
		}

		if r.err != nil {
			if errors.Is(r.err, io.EOF) {
				break
			}
			t.finish(r.err)
			return
		}
		if r.msg == nil {
			continue
		}
		if u := usageOf(r.msg); u != nil {
			usage = u
		}
		if r.msg.Content == "" {
			continue
		}
		sb.WriteString(r.msg.Content)
		if !t.deliverChunk(r.msg.Content) {
			t.finish(context.Canceled)
			return
		}
	}

	full := sb.String()
	if strings.TrimSpace(full) == "" {
		t.finish(emptyResponseError())
		return
	}
	t.complete(full, usage)
}

// deliverChunk hands one fragment to the consumer while the turn is streaming.
func (t *Turn) deliverChunk(fragment string) bool {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	if t.State() != StateStreaming {
		return false
	}
	select {
	case t.events <- Event{Type: EventChunk, TurnID: t.ID, Text: fragment}:
		return true
	case <-t.ctx.Done():
		return false
	}
}

func (t *Turn) complete(full string, usage *models.UsageMetadata) {
	t.mu.Lock()
	if t.state.Terminal() {
		t.mu.Unlock()
		t.emitTerminal()
		return
	}
	t.state = StateCompleted
	t.text = full
	if usage != nil {
		t.usage = *usage
	}
	t.mu.Unlock()
	t.emitTerminal()
}

// finish settles the turn after an error. A cancelled context means the user
// (or the owner of the parent context) aborted the turn.
func (t *Turn) finish(err error) {
	t.mu.Lock()
	if !t.state.Terminal() {
		if errors.Is(err, context.Canceled) {
			t.state = StateCancelled
			t.err = ErrCancelled
		} else {
			t.state = StateFailed
			t.err = newProviderError(err)
		}
	}
	t.mu.Unlock()
	t.emitTerminal()
}

func (t *Turn) emitTerminal() {
	t.mu.Lock()
	ev := Event{TurnID: t.ID}
	switch t.state {
	case StateCompleted:
		ev.Type = EventComplete
		ev.Text = t.text
		ev.Usage = t.usage
	case StateFailed:
		ev.Type = EventError
		var pe *ProviderError
		if errors.As(t.err, &pe) {
			ev.Err = pe
		}
	default:
		ev.Type = EventCancelled
	}
	t.mu.Unlock()

	log.Debug().Str("turn", t.ID).Str("event", string(ev.Type)).Msg("streaming turn finished")

	t.events <- ev
	close(t.events)
	close(t.done)
}
