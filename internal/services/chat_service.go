package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"taletable/internal/conversation"
	"taletable/internal/events"
	"taletable/internal/models"
	"taletable/internal/session"
	"taletable/internal/transcript"
)

// ProjectLister lists the projects that have a stored transcript.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]string, error)
}

// pendingTurn is the turn currently owned by the chat service.
type pendingTurn struct {
	turn      *session.Turn
	userText  string
	startedAt time.Time
}

// ChatService is the conversation facade bound to the UI. All transcript
// mutations happen under mu, including those driven by streamed events.
type ChatService struct {
	ctx      context.Context
	store    *transcript.Store
	projects ProjectLister
	settings ProjectSettingsService
	snippets SnippetService
	stream   *session.Client
	oneShot  *session.OneShot

	mu            sync.Mutex
	cfg           models.SessionConfig
	project       models.ProjectSettings
	defaultWindow int
	pending       *pendingTurn
}

func NewChatService(
	store *transcript.Store,
	projects ProjectLister,
	settings ProjectSettingsService,
	snippets SnippetService,
	chatModels session.ModelSource,
	defaultWindow int,
) *ChatService {
	return &ChatService{
		ctx:           context.Background(),
		store:         store,
		projects:      projects,
		settings:      settings,
		snippets:      snippets,
		stream:        session.NewClient(chatModels),
		oneShot:       session.NewOneShot(chatModels),
		defaultWindow: defaultWindow,
	}
}

func (s *ChatService) Startup(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
}

// Shutdown settles the pending turn and flushes the transcript. A turn that
// completed before the pump applied it is committed; otherwise it is cancelled.
func (s *ChatService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.pending; p != nil {
		s.pending = nil
		if p.turn.Cancel() {
			events.Publish(s.eventCtx(), events.NewCancelled(p.turn.ID))
		} else if p.turn.State() == session.StateCompleted {
			// The pump has not applied the completion yet; commit it here.
			text, usage, _ := p.turn.Result()
			s.commitLocked(p, session.Event{Type: session.EventComplete, TurnID: p.turn.ID, Text: text, Usage: usage})
			events.Publish(s.eventCtx(), events.NewDone(p.turn.ID, text, usage))
		}
	}
	if s.store.Project() == "" || !s.store.Dirty() {
		return nil
	}
	return s.store.Persist(ctx)
}

// Session returns the live session configuration.
func (s *ChatService) Session() models.SessionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// ProjectSettings returns the settings of the active project.
func (s *ChatService) ProjectSettings() models.ProjectSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project
}

// InFlight reports whether a turn is Sending or Streaming.
func (s *ChatService) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *ChatService) SetDefaultWindow(n int) {
	if n < 0 {
		return
	}
	s.mu.Lock()
	s.defaultWindow = n
	s.mu.Unlock()
}

func (s *ChatService) ListProjects() ([]string, error) {
	if s.projects == nil {
		return []string{}, nil
	}
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	keys, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: list projects: %w", err)
	}
	return keys, nil
}

// SwitchProject persists the current transcript and activates projectKey,
// replacing the session configuration wholesale.
func (s *ChatService) SwitchProject(projectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return session.ErrSessionBusy
	}
	ps, err := s.settings.Get(projectKey)
	if err != nil {
		return err
	}
	if err := s.store.Switch(s.ctx, projectKey); err != nil {
		return err
	}
	s.project = *ps
	s.cfg = ps.SessionConfig()

	log.Info().Str("project", projectKey).Str("model", s.cfg.ModelID).Msg("project activated")
	return nil
}

// UpdateProjectSettings saves settings for the active project and reconfigures the session.
func (s *ChatService) UpdateProjectSettings(ps *models.ProjectSettings) (*models.ProjectSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ps == nil || ps.ProjectKey != s.store.Project() {
		return nil, fmt.Errorf("service: settings do not belong to the active project")
	}
	saved, err := s.settings.Save(ps)
	if err != nil {
		return nil, err
	}
	s.project = *saved
	s.cfg = saved.SessionConfig()
	return saved, nil
}

// StartTurn assembles and sends a turn. windowN < 0 selects the default window.
// It returns the id of the streaming turn; progress arrives as chat events.
func (s *ChatService) StartTurn(userText string, windowN int, bundle models.TransientBundle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return "", session.ErrSessionBusy
	}
	if s.store.Project() == "" {
		return "", transcript.ErrNoProject
	}
	if windowN < 0 {
		windowN = s.defaultWindow
	}
	if bundle.Mode == "" {
		bundle.Mode = s.project.ContextMode
	}

	req, err := conversation.Assemble(s.store, windowN, bundle, userText, s.cfg, conversation.OptionsFromSettings(s.project))
	if err != nil {
		return "", err
	}

	turn, err := s.stream.Start(events.WithProject(s.ctx, s.cfg.ProjectKey), req)
	if err != nil {
		return "", err
	}

	p := &pendingTurn{turn: turn, userText: userText, startedAt: time.Now().UTC()}
	s.pending = p
	go s.pump(p)

	log.Info().
		Str("project", s.cfg.ProjectKey).
		Str("turn", turn.ID).
		Int("window", windowN).
		Int("snippets", len(bundle.Snippets)).
		Str("mode", string(bundle.Mode)).
		Msg("turn started")
	return turn.ID, nil
}

// StartTurnWithContext builds the transient bundle from stored snippets and
// records and starts a turn. An empty mode uses the project's configured
// injection mode.
func (s *ChatService) StartTurnWithContext(userText string, windowN int, sel models.ContextSelection) (string, error) {
	project := s.store.Project()
	if project == "" {
		return "", transcript.ErrNoProject
	}
	bundle, err := s.snippets.BuildBundle(project, sel)
	if err != nil {
		return "", err
	}
	return s.StartTurn(userText, windowN, bundle)
}

// CancelTurn aborts the in-flight turn. Nothing is committed for it.
func (s *ChatService) CancelTurn() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pending
	if p == nil {
		return session.ErrNoActiveTurn
	}
	if !p.turn.Cancel() {
		// Already terminal: the pump commits or reports it.
		return session.ErrNoActiveTurn
	}
	s.pending = nil
	events.Publish(s.eventCtx(), events.NewCancelled(p.turn.ID))
	log.Info().Str("turn", p.turn.ID).Msg("turn cancelled")
	return nil
}

// pump applies the events of one turn in arrival order.
func (s *ChatService) pump(p *pendingTurn) {
	for ev := range p.turn.Events() {
		s.dispatch(p, ev)
	}
}

func (s *ChatService) dispatch(p *pendingTurn, ev session.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Events of a cancelled or replaced turn are dropped.
	if s.pending != p {
		return
	}
	ctx := s.eventCtx()

	switch ev.Type {
	case session.EventChunk:
		events.Publish(ctx, events.NewChunk(ev.TurnID, ev.Text))
	case session.EventComplete:
		s.pending = nil
		s.commitLocked(p, ev)
		events.Publish(ctx, events.NewDone(ev.TurnID, ev.Text, ev.Usage))
	case session.EventError:
		s.pending = nil
		kind, msg := "unknown", "request failed"
		if ev.Err != nil {
			kind, msg = string(ev.Err.Kind), ev.Err.Error()
		}
		log.Warn().Str("turn", ev.TurnID).Str("kind", kind).Msg("turn failed")
		events.Publish(ctx, events.NewError(ev.TurnID, kind, msg))
	case session.EventCancelled:
		s.pending = nil
		events.Publish(ctx, events.NewCancelled(ev.TurnID))
	}
}

// commitLocked appends the user input and the model reply, then persists.
// A failed write keeps the turns in memory and is reported as a notice.
func (s *ChatService) commitLocked(p *pendingTurn, ev session.Event) {
	if strings.TrimSpace(p.userText) != "" {
		if _, err := s.store.Append(models.Turn{Role: models.RoleUser, Text: p.userText, Timestamp: p.startedAt}); err != nil {
			log.Error().Err(err).Msg("append user turn")
			return
		}
	}
	usage := ev.Usage
	if _, err := s.store.Append(models.Turn{Role: models.RoleModel, Text: ev.Text, UsageMetadata: &usage}); err != nil {
		log.Error().Err(err).Msg("append model turn")
		return
	}
	if err := s.store.Persist(s.ctx); err != nil {
		log.Error().Err(err).Str("project", s.store.Project()).Msg("persist transcript")
		events.Publish(s.eventCtx(), events.NewWarn("The conversation could not be saved: "+err.Error()))
	}
}

func (s *ChatService) eventCtx() context.Context {
	return events.WithProject(s.ctx, s.cfg.ProjectKey)
}

// GetTranscriptSnapshot returns a copy of the active transcript.
func (s *ChatService) GetTranscriptSnapshot() []models.Turn {
	return s.store.Snapshot()
}

// EditTurn replaces the text of a turn and persists the transcript.
func (s *ChatService) EditTurn(turnID, text string) error {
	return s.mutate(func() error { return s.store.Edit(turnID, text) })
}

// DeleteTurn removes a turn and persists the transcript.
func (s *ChatService) DeleteTurn(turnID string) error {
	return s.mutate(func() error { return s.store.Delete(turnID) })
}

func (s *ChatService) mutate(change func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return session.ErrSessionBusy
	}
	if err := change(); err != nil {
		return err
	}
	return s.store.Persist(s.ctx)
}

// GenerateOnce runs a history-independent request for edit-assist features.
// Without an override it uses the project's edit model, then the session model.
func (s *ChatService) GenerateOnce(systemInstruction, prompt, modelOverride string) (session.OneShotResult, error) {
	s.mu.Lock()
	sessionModel := s.cfg.ModelID
	if s.project.EditModelID != "" {
		sessionModel = s.project.EditModelID
	}
	ctx := s.ctx
	s.mu.Unlock()

	if sessionModel == "" && strings.TrimSpace(modelOverride) == "" {
		return session.OneShotResult{}, errors.New("service: no model configured")
	}
	return s.oneShot.Generate(ctx, sessionModel, systemInstruction, prompt, modelOverride)
}
