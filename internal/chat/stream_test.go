package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bopchat/internal/api"
)

// fakeTransport scripts inbound frames and records outbound ones.
type fakeTransport struct {
	inbound  []string
	written  []string
	closed   bool
	writeErr error
	readErr  error
}

func (f *fakeTransport) WriteMessage(messageType int, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if messageType == websocket.TextMessage {
		f.written = append(f.written, string(data))
	}
	return nil
}

func (f *fakeTransport) ReadMessage() (int, []byte, error) {
	if f.readErr != nil && len(f.inbound) == 0 {
		return 0, nil, f.readErr
	}
	if len(f.inbound) == 0 {
		return 0, nil, errors.New("script exhausted")
	}
	frame := f.inbound[0]
	f.inbound = f.inbound[1:]
	return websocket.TextMessage, []byte(frame), nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func TestSubmitConcatenatesChunks(t *testing.T) {
	conn := &fakeTransport{inbound: []string{"مرحبا", " بك", " في البنك", EndOfStream}}
	st := NewStream(conn, testLogger())

	var streamed []string
	reply, err := st.Submit(context.Background(), "  ما هي ساعات الدوام؟  ", func(chunk string) {
		streamed = append(streamed, chunk)
	})
	require.NoError(t, err)

	// The sentinel terminates the stream and never reaches the transcript.
	assert.Equal(t, "مرحبا بك في البنك", reply.Content)
	assert.Equal(t, RoleAssistant, reply.Role)
	assert.Equal(t, []string{"مرحبا", " بك", " في البنك"}, streamed)

	// Outbound text was trimmed before sending.
	require.Len(t, conn.written, 1)
	assert.Equal(t, "ما هي ساعات الدوام؟", conn.written[0])

	assert.Equal(t, StreamSettled, st.State())
	assert.False(t, st.Awaiting())
}

func TestSubmitAddsExactlyOneRoundToTranscript(t *testing.T) {
	conn := &fakeTransport{inbound: []string{"a", "b", EndOfStream, "c", EndOfStream}}
	st := NewStream(conn, testLogger())

	_, err := st.Submit(context.Background(), "first", nil)
	require.NoError(t, err)
	_, err = st.Submit(context.Background(), "second", nil)
	require.NoError(t, err)

	msgs := st.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "ab", msgs[1].Content)
	assert.Equal(t, RoleUser, msgs[2].Role)
	assert.Equal(t, "c", msgs[3].Content)

	// The echo and its reply share an id.
	assert.Equal(t, msgs[0].ID, msgs[1].ID)
	assert.NotEqual(t, msgs[0].ID, msgs[2].ID)
}

func TestSubmitRejectsBlankText(t *testing.T) {
	conn := &fakeTransport{}
	st := NewStream(conn, testLogger())

	_, err := st.Submit(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = st.Submit(context.Background(), "   \t\n", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)

	// Nothing was appended, nothing was sent.
	assert.Empty(t, st.Messages())
	assert.Empty(t, conn.written)
	assert.Equal(t, StreamIdle, st.State())
}

func TestSubmitWriteFailureYieldsApology(t *testing.T) {
	conn := &fakeTransport{writeErr: errors.New("broken pipe")}
	st := NewStream(conn, testLogger())

	reply, err := st.Submit(context.Background(), "hello", nil)
	require.Error(t, err)

	assert.Equal(t, "Sorry, something went wrong. Please try again.", reply.Content)
	assert.Equal(t, StreamErrored, st.State())

	// The round still settled: the next submission is allowed.
	assert.False(t, st.Awaiting())
}

func TestSubmitReadFailureYieldsApology(t *testing.T) {
	conn := &fakeTransport{inbound: []string{"partial"}, readErr: errors.New("connection reset")}
	st := NewStream(conn, testLogger())

	reply, err := st.Submit(context.Background(), "hello", nil)
	require.Error(t, err)

	assert.Equal(t, "Sorry, something went wrong. Please try again.", reply.Content)
	assert.Equal(t, StreamErrored, st.State())
}

func TestSubmitHonorsContextCancellation(t *testing.T) {
	conn := &fakeTransport{inbound: []string{"a", "b", "c", EndOfStream}}
	st := NewStream(conn, testLogger())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.Submit(cancelled, "hello", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StreamErrored, st.State())
}

func TestSubmitWithoutConnection(t *testing.T) {
	st := NewStream(nil, testLogger())
	assert.False(t, st.Connected())

	_, err := st.Submit(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Empty(t, st.Messages())
}

// reentrantSender drives a second submission from inside the first to
// exercise the single-in-flight guard.
type reentrantSender struct {
	st      *Stream
	busyErr error
}

func (r *reentrantSender) SendMessage(ctx context.Context, chatID, text string) ([]api.ChatMessage, error) {
	_, r.busyErr = r.st.SubmitViaREST(ctx, r, chatID, "nested")
	return []api.ChatMessage{
		{ID: "m2", ChatID: chatID, Sender: "bot", Content: "reply", Timestamp: time.Now()},
	}, nil
}

func TestSubmitGuardsAgainstDoubleSubmission(t *testing.T) {
	st := NewStream(nil, testLogger())
	sender := &reentrantSender{st: st}

	reply, err := st.SubmitViaREST(context.Background(), sender, "1", "outer")
	require.NoError(t, err)

	assert.ErrorIs(t, sender.busyErr, ErrBusy)
	assert.Equal(t, "reply", reply.Content)
	require.Len(t, st.Messages(), 2)
}

func TestSubmitViaRESTFillsPlaceholder(t *testing.T) {
	st := NewStream(nil, testLogger())
	sender := &staticSender{messages: []api.ChatMessage{
		{ID: "u1", ChatID: "1", Sender: "user", Content: "hello", Timestamp: time.Now()},
		{ID: "b1", ChatID: "1", Sender: "bot", Content: "أهلاً وسهلاً", Timestamp: time.Now()},
	}}

	reply, err := st.SubmitViaREST(context.Background(), sender, "1", "hello")
	require.NoError(t, err)

	// The persisted user echo is not duplicated; only the bot content
	// lands in the placeholder.
	assert.Equal(t, "أهلاً وسهلاً", reply.Content)
	msgs := st.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, StreamSettled, st.State())
}

func TestSubmitViaRESTFailureYieldsApology(t *testing.T) {
	st := NewStream(nil, testLogger())
	sender := &staticSender{err: errors.New("503")}

	reply, err := st.SubmitViaREST(context.Background(), sender, "1", "hello")
	require.Error(t, err)
	assert.Equal(t, "Sorry, something went wrong. Please try again.", reply.Content)
}

type staticSender struct {
	messages []api.ChatMessage
	err      error
}

func (s *staticSender) SendMessage(ctx context.Context, chatID, text string) ([]api.ChatMessage, error) {
	return s.messages, s.err
}

func TestSetHistorySeedsTranscript(t *testing.T) {
	st := NewStream(nil, testLogger())
	seed := []Message{
		{ID: "1", Role: RoleUser, Content: "hi", Timestamp: time.Now()},
		{ID: "2", Role: RoleAssistant, Content: "hello", Timestamp: time.Now()},
	}

	require.NoError(t, st.SetHistory(seed))
	assert.Equal(t, seed, st.Messages())

	// Replacing the history wholesale is allowed while idle.
	require.NoError(t, st.SetHistory(nil))
	assert.Empty(t, st.Messages())
}

func TestCloseSendsCloseHandshake(t *testing.T) {
	conn := &fakeTransport{}
	st := NewStream(conn, testLogger())

	require.NoError(t, st.Close())
	assert.True(t, conn.closed)

	// A REST-only stream closes without a transport.
	assert.NoError(t, NewStream(nil, testLogger()).Close())
}
