package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bopchat/internal/api"
)

// EndOfStream is the in-band sentinel the backend sends after the last
// chunk of a response.
const EndOfStream = "[END]"

// apology replaces the in-progress assistant message when the
// transport fails mid-response.
const apology = "Sorry, something went wrong. Please try again."

// ErrEmptyMessage rejects blank submissions before anything is
// appended to the transcript.
var ErrEmptyMessage = errors.New("message is empty")

// StreamState is the submission lifecycle of the message channel.
type StreamState int

const (
	StreamIdle StreamState = iota
	StreamSent
	StreamStreaming
	StreamSettled
	StreamErrored
)

func (s StreamState) String() string {
	switch s {
	case StreamIdle:
		return "idle"
	case StreamSent:
		return "sent"
	case StreamStreaming:
		return "streaming"
	case StreamSettled:
		return "settled"
	case StreamErrored:
		return "errored"
	default:
		return fmt.Sprintf("StreamState(%d)", int(s))
	}
}

// Transport is the slice of *websocket.Conn the channel uses, kept
// narrow so tests can script inbound chunks.
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// MessageSender is the request/response variant of the channel,
// satisfied by *api.Client.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID, text string) ([]api.ChatMessage, error)
}

// Stream owns one session transcript and enforces the single
// in-flight-message invariant: chunks only ever append to the most
// recently created assistant placeholder, and a new submission is
// rejected while one is awaiting a response.
type Stream struct {
	conn   Transport
	logger *slog.Logger

	mu       sync.Mutex
	messages []Message
	awaiting bool
	state    StreamState
}

// Dial connects the websocket variant of the channel.
func Dial(socketURL string, logger *slog.Logger) (*Stream, error) {
	conn, _, err := websocket.DefaultDialer.Dial(socketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to websocket: %w", err)
	}
	logger.Info("connected message channel", "url", socketURL)
	return NewStream(conn, logger), nil
}

// NewStream wraps an existing transport. conn may be nil when only
// the request/response variant is used.
func NewStream(conn Transport, logger *slog.Logger) *Stream {
	return &Stream{conn: conn, logger: logger, state: StreamIdle}
}

// Connected reports whether the websocket variant is available.
func (st *Stream) Connected() bool {
	return st.conn != nil
}

// State reports the current submission state.
func (st *Stream) State() StreamState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// Awaiting reports whether a response is outstanding.
func (st *Stream) Awaiting() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.awaiting
}

// Messages returns a copy of the transcript.
func (st *Stream) Messages() []Message {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]Message, len(st.messages))
	copy(out, st.messages)
	return out
}

// SetHistory seeds the transcript, e.g. from Store.History when a
// session is reopened. Refused while a response is streaming.
func (st *Stream) SetHistory(msgs []Message) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.awaiting {
		return ErrBusy
	}
	st.messages = make([]Message, len(msgs))
	copy(st.messages, msgs)
	return nil
}

// Close shuts the websocket down with a normal-closure handshake.
func (st *Stream) Close() error {
	if st.conn == nil {
		return nil
	}
	st.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return st.conn.Close()
}

// begin validates a submission and appends the optimistic user echo
// plus the empty assistant placeholder. Returns the trimmed text.
func (st *Stream) begin(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyMessage
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.awaiting {
		return "", ErrBusy
	}

	traceID := uuid.NewString()
	now := time.Now()
	st.messages = append(st.messages,
		Message{ID: traceID, Role: RoleUser, Content: trimmed, Timestamp: now},
		Message{ID: traceID, Role: RoleAssistant, Content: "", Timestamp: now},
	)
	st.awaiting = true
	st.state = StreamSent
	return trimmed, nil
}

// settle finalizes the placeholder and re-enables submission.
func (st *Stream) settle(failed bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.awaiting = false
	if failed {
		st.state = StreamErrored
		// The placeholder carries the apology; the round still
		// settles so the next submission is allowed.
		if n := len(st.messages); n > 0 && st.messages[n-1].Role == RoleAssistant {
			st.messages[n-1].Content = apology
		}
		return
	}
	st.state = StreamSettled
}

// appendChunk adds streamed content to the in-flight placeholder.
func (st *Stream) appendChunk(chunk string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state = StreamStreaming
	if n := len(st.messages); n > 0 && st.messages[n-1].Role == RoleAssistant {
		st.messages[n-1].Content += chunk
	}
}

// Submit sends text over the websocket and appends inbound chunks to
// the placeholder until the end-of-stream sentinel arrives. onChunk,
// when non-nil, is called for each chunk so views can render
// incrementally. Exactly one assistant message is added per call.
func (st *Stream) Submit(ctx context.Context, text string, onChunk func(string)) (Message, error) {
	if st.conn == nil {
		return Message{}, fmt.Errorf("message channel is not connected")
	}

	trimmed, err := st.begin(text)
	if err != nil {
		return Message{}, err
	}

	if err := st.conn.WriteMessage(websocket.TextMessage, []byte(trimmed)); err != nil {
		st.logger.Error("failed to send message", "error", err)
		st.settle(true)
		return st.last(), fmt.Errorf("failed to send message: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			st.settle(true)
			return st.last(), err
		}

		_, data, err := st.conn.ReadMessage()
		if err != nil {
			st.logger.Error("failed to read stream", "error", err)
			st.settle(true)
			return st.last(), fmt.Errorf("failed to read stream: %w", err)
		}

		chunk := string(data)
		if strings.Contains(chunk, EndOfStream) {
			break
		}

		st.appendChunk(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	st.settle(false)
	return st.last(), nil
}

// SubmitViaREST is the request/response variant: the placeholder is
// filled in one step from the persisted bot message.
func (st *Stream) SubmitViaREST(ctx context.Context, sender MessageSender, chatID, text string) (Message, error) {
	trimmed, err := st.begin(text)
	if err != nil {
		return Message{}, err
	}

	persisted, err := sender.SendMessage(ctx, chatID, trimmed)
	if err != nil {
		st.logger.Error("failed to send message", "chat_id", chatID, "error", err)
		st.settle(true)
		return st.last(), fmt.Errorf("failed to send message: %w", err)
	}

	for _, m := range persisted {
		if m.Sender != "user" {
			st.appendChunk(m.Content)
		}
	}

	st.settle(false)
	return st.last(), nil
}

// last returns the most recent message, the assistant reply after a
// settled round.
func (st *Stream) last() Message {
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.messages) == 0 {
		return Message{}
	}
	return st.messages[len(st.messages)-1]
}
