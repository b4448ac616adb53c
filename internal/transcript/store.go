// Package transcript owns the persisted conversation history of the active project.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"taletable/internal/models"
)

// Backend is the durable storage a Store reads from and writes to.
type Backend interface {
	// Read returns the stored record for a project; ok is false when none exists.
	Read(ctx context.Context, projectKey string) (data []byte, ok bool, err error)
	// WriteAtomic replaces the stored record. A failed write must leave the previous record intact.
	WriteAtomic(ctx context.Context, projectKey string, data []byte) error
}

// Store holds the ordered turns of one project in memory.
// Mutations are not persisted until Persist is called.
type Store struct {
	backend Backend

	mu      sync.RWMutex
	project string
	turns   []models.Turn
	dirty   bool

	now   func() time.Time
	newID func() string
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Load reads the persisted transcript of a project without touching the store's state.
// A project with no record yields an empty transcript.
func (s *Store) Load(ctx context.Context, projectKey string) ([]models.Turn, error) {
	data, ok, err := s.backend.Read(ctx, projectKey)
	if err != nil {
		return nil, &StorageError{Op: "read", Project: projectKey, Err: err}
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return []models.Turn{}, nil
	}

	var turns []models.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, &StorageError{Op: "decode", Project: projectKey, Err: err}
	}
	for i := range turns {
		if turns[i].Role == "assistant" {
			turns[i].Role = models.RoleModel
		}
		if turns[i].Role != models.RoleUser && turns[i].Role != models.RoleModel {
			return nil, &StorageError{Op: "decode", Project: projectKey, Err: fmt.Errorf("turn %d has unknown role %q", i, turns[i].Role)}
		}
	}
	return turns, nil
}

// Switch persists the current transcript if it has unsaved changes and then
// replaces the in-memory state with the transcript of projectKey.
// On failure the store keeps representing the previous project.
func (s *Store) Switch(ctx context.Context, projectKey string) error {
	if projectKey == "" {
		return ErrInvalidProjectKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project != "" && s.dirty {
		if err := s.persistLocked(ctx); err != nil {
			return err
		}
	}

	turns, err := s.Load(ctx, projectKey)
	if err != nil {
		return err
	}

	dirty := false
	for i := range turns {
		if turns[i].ID == "" {
			turns[i].ID = s.newID()
			dirty = true
		}
	}

	s.project = projectKey
	s.turns = turns
	s.dirty = dirty
	log.Debug().Str("project", projectKey).Int("turns", len(turns)).Msg("transcript switched")
	return nil
}

// Project returns the key of the project the store currently represents.
func (s *Store) Project() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

// Dirty reports whether the in-memory transcript differs from the last persisted copy.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Append adds turn to the end of the transcript, assigning an id and timestamp when absent.
func (s *Store) Append(turn models.Turn) (models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == "" {
		return models.Turn{}, ErrNoProject
	}
	turn = turn.Clone()
	if turn.ID == "" {
		turn.ID = s.newID()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = s.now()
	}
	if turn.Role == models.RoleUser {
		turn.UsageMetadata = nil
	}
	s.turns = append(s.turns, turn)
	s.dirty = true
	return turn.Clone(), nil
}

// Edit replaces the text of a turn in place. The timestamp and usage are kept.
func (s *Store) Edit(turnID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(turnID)
	if i < 0 {
		return fmt.Errorf("edit %q: %w", turnID, ErrNotFound)
	}
	s.turns[i].Text = text
	s.dirty = true
	return nil
}

// Delete removes a turn, keeping the relative order of the others.
func (s *Store) Delete(turnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(turnID)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", turnID, ErrNotFound)
	}
	s.turns = append(s.turns[:i:i], s.turns[i+1:]...)
	s.dirty = true
	return nil
}

// Window returns up to the last 2n turns in their original order.
func (s *Store) Window(n int) []models.Turn {
	if n <= 0 {
		return []models.Turn{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Compare before doubling so huge n cannot overflow.
	if n >= len(s.turns) {
		return cloneTurns(s.turns)
	}
	start := len(s.turns) - 2*n
	if start < 0 {
		start = 0
	}
	return cloneTurns(s.turns[start:])
}

// Snapshot returns a copy of the full transcript.
func (s *Store) Snapshot() []models.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTurns(s.turns)
}

// Persist writes the full transcript through the backend, replacing the previous record.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.project == "" {
		return ErrNoProject
	}
	turns := s.turns
	if turns == nil {
		turns = []models.Turn{}
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Project: s.project, Err: err}
	}
	if err := s.backend.WriteAtomic(ctx, s.project, data); err != nil {
		return &StorageError{Op: "write", Project: s.project, Err: err}
	}
	s.dirty = false
	log.Debug().Str("project", s.project).Int("turns", len(turns)).Msg("transcript persisted")
	return nil
}

func (s *Store) indexLocked(turnID string) int {
	if turnID == "" {
		return -1
	}
	for i := range s.turns {
		if s.turns[i].ID == turnID {
			return i
		}
	}
	return -1
}

func cloneTurns(in []models.Turn) []models.Turn {
	out := make([]models.Turn, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
