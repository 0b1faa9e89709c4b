// Package chat implements the client side of chat sessions: a local
// mirror of the remote session list, a SQLite transcript cache, and
// the streaming message channel.
package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"bopchat/internal/api"
)

var (
	// ErrBusy rejects an action while the previous request for the
	// same action is still outstanding.
	ErrBusy = errors.New("request already in flight")
	// ErrActiveSession guards the currently open session from
	// deletion; callers treat it as a no-op, not a failure.
	ErrActiveSession = errors.New("cannot delete the active session")
	// ErrUnknownSession is returned for ids not in the local list.
	ErrUnknownSession = errors.New("unknown session")
)

// RequestState tracks one action through its lifecycle so tests can
// assert transitions instead of inferring them from side effects.
type RequestState int

const (
	StateIdle RequestState = iota
	StateInFlight
	StateSettled
	StateErrored
)

func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in-flight"
	case StateSettled:
		return "settled"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("RequestState(%d)", int(s))
	}
}

// Action identifies the guarded operations of the store.
type Action int

const (
	ActionList Action = iota
	ActionCreate
	ActionDelete
)

// Backend is the slice of the REST client the store needs.
type Backend interface {
	ListChats(ctx context.Context) ([]api.ChatSession, error)
	CreateChat(ctx context.Context) (api.ChatSession, error)
	DeleteChat(ctx context.Context, chatID string) error
	Messages(ctx context.Context, chatID string) ([]api.ChatMessage, error)
}

// Store mirrors the remote session list into local state and tracks
// which session is active. All methods are safe for concurrent use,
// though the REPL drives it from a single goroutine.
type Store struct {
	backend Backend
	db      *sql.DB // transcript cache, may be nil
	logger  *slog.Logger

	mu       sync.Mutex
	sessions []Session
	activeID string
	states   map[Action]RequestState
}

// NewStore creates a session store. db may be nil to disable the
// transcript cache.
func NewStore(backend Backend, db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		db:      db,
		logger:  logger,
		states:  make(map[Action]RequestState),
	}
}

// State reports the request state of an action.
func (s *Store) State(a Action) RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[a]
}

// begin moves an action to InFlight, refusing when one is outstanding.
func (s *Store) begin(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[a] == StateInFlight {
		return ErrBusy
	}
	s.states[a] = StateInFlight
	return nil
}

func (s *Store) settle(a Action, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.states[a] = StateErrored
	} else {
		s.states[a] = StateSettled
	}
}

// Sessions returns a copy of the local session list.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// ActiveID returns the currently open session id, empty when none.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Refresh fetches the remote session list. On failure the local list
// is left untouched (empty on first load) and the error is both
// logged and returned so views can surface it.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.begin(ActionList); err != nil {
		return err
	}

	remote, err := s.backend.ListChats(ctx)
	s.settle(ActionList, err)
	if err != nil {
		s.logger.Error("failed to fetch chats", "error", err)
		return fmt.Errorf("failed to fetch chats: %w", err)
	}

	s.mu.Lock()
	s.sessions = make([]Session, len(remote))
	for i, r := range remote {
		s.sessions[i] = Session{ID: r.ID, CreatedAt: r.CreatedAt}
	}
	// The active session must exist in the list; fall back to none.
	if s.activeID != "" && s.indexLocked(s.activeID) < 0 {
		s.activeID = ""
	}
	s.mu.Unlock()

	s.logger.Info("fetched chats", "count", len(remote))
	return nil
}

// Create requests a new session and appends it once the server
// confirms the id. Guarded against double submission.
func (s *Store) Create(ctx context.Context) (Session, error) {
	if err := s.begin(ActionCreate); err != nil {
		return Session{}, err
	}

	created, err := s.backend.CreateChat(ctx)
	s.settle(ActionCreate, err)
	if err != nil {
		s.logger.Error("failed to create chat", "error", err)
		return Session{}, fmt.Errorf("failed to create chat: %w", err)
	}

	sess := Session{ID: created.ID, CreatedAt: created.CreatedAt}
	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	s.mu.Unlock()

	s.logger.Info("created chat", "chat_id", sess.ID)
	return sess, nil
}

// Delete removes a session. Deleting the active session is refused
// with ErrActiveSession and leaves the list unchanged. On success
// exactly the named entry is removed, order preserved, and its cached
// transcript dropped.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if id == s.activeID && id != "" {
		s.mu.Unlock()
		return ErrActiveSession
	}
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return ErrUnknownSession
	}
	s.mu.Unlock()

	if err := s.begin(ActionDelete); err != nil {
		return err
	}

	err := s.backend.DeleteChat(ctx, id)
	s.settle(ActionDelete, err)
	if err != nil {
		s.logger.Error("failed to delete chat", "chat_id", id, "error", err)
		return fmt.Errorf("failed to delete chat: %w", err)
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	}
	s.mu.Unlock()

	s.dropCachedHistory(id)
	s.logger.Info("deleted chat", "chat_id", id)
	return nil
}

// Select makes id the active session. Returns false when the id is
// not in the list, in which case callers navigate to a safe default.
func (s *Store) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return false
	}
	s.activeID = id
	return true
}

// Deselect clears the active session (navigating back home).
func (s *Store) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
}

func (s *Store) indexLocked(id string) int {
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

// History loads a session transcript from the backend, refreshing the
// local cache. When the network fails it falls back to the cached
// transcript, returning the error only if the cache is empty too.
func (s *Store) History(ctx context.Context, chatID string) ([]Message, error) {
	remote, err := s.backend.Messages(ctx, chatID)
	if err != nil {
		s.logger.Warn("failed to fetch history, trying cache", "chat_id", chatID, "error", err)
		cached, cacheErr := s.CachedHistory(chatID)
		if cacheErr == nil && len(cached) > 0 {
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	msgs := make([]Message, len(remote))
	for i, m := range remote {
		msgs[i] = fromAPIMessage(m)
	}

	if err := s.cacheHistory(chatID, remote); err != nil {
		s.logger.Warn("failed to cache history", "chat_id", chatID, "error", err)
	}
	return msgs, nil
}

// fromAPIMessage maps the wire sender ("user"/"bot") onto view roles.
func fromAPIMessage(m api.ChatMessage) Message {
	role := RoleAssistant
	if m.Sender == "user" {
		role = RoleUser
	}
	return Message{ID: m.ID, Role: role, Content: m.Content, Timestamp: m.Timestamp}
}

// cacheHistory replaces the cached transcript of one chat.
func (s *Store) cacheHistory(chatID string, msgs []api.ChatMessage) error {
	if s.db == nil {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR REPLACE INTO chats (id, created_at) VALUES (?, CURRENT_TIMESTAMP)", chatID); err != nil {
		return fmt.Errorf("failed to cache chat: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM messages WHERE chat_id = ?", chatID); err != nil {
		return fmt.Errorf("failed to clear cached messages: %w", err)
	}

	for _, m := range msgs {
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO messages (id, chat_id, sender, content, timestamp) VALUES (?, ?, ?, ?, ?)",
			m.ID, chatID, m.Sender, m.Content, m.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to cache message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CachedHistory reads a transcript from the local cache.
func (s *Store) CachedHistory(chatID string) ([]Message, error) {
	if s.db == nil {
		return nil, nil
	}

	rows, err := s.db.Query(
		"SELECT id, sender, content, timestamp FROM messages WHERE chat_id = ? ORDER BY timestamp",
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m api.ChatMessage
		if err := rows.Scan(&m.ID, &m.Sender, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan cached message: %w", err)
		}
		msgs = append(msgs, fromAPIMessage(m))
	}
	return msgs, rows.Err()
}

func (s *Store) dropCachedHistory(chatID string) {
	if s.db == nil {
		return
	}
	if _, err := s.db.Exec("DELETE FROM messages WHERE chat_id = ?", chatID); err != nil {
		s.logger.Warn("failed to drop cached messages", "chat_id", chatID, "error", err)
	}
	if _, err := s.db.Exec("DELETE FROM chats WHERE id = ?", chatID); err != nil {
		s.logger.Warn("failed to drop cached chat", "chat_id", chatID, "error", err)
	}
}
