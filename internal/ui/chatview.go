package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"bopchat/internal/chat"
)

// Chat runs the chat view: the token gate, the session picker and the
// streaming REPL.
func (a *App) Chat(ctx context.Context, sessionID string) error {
	t := a.Theme

	// Expiry is checked proactively instead of waiting for a 401.
	if !a.Auth.Valid() {
		a.notice("Your session has expired. Please run `bopchat login` first.")
		return nil
	}

	if err := a.Store.Refresh(ctx); err != nil {
		a.notice("Could not load your chats.")
	}

	if sessionID != "" && !a.Store.Select(sessionID) {
		// Unknown route parameter: fall back to the picker instead of
		// rendering a dead session.
		a.notice("That chat does not exist. Pick one below or /new.")
	}

	stream, err := chat.Dial(a.Config.SocketURL, a.Logger)
	if err != nil {
		a.Logger.Warn("websocket unavailable, falling back to request/response", "error", err)
		a.println(t.Subtle.Render("Streaming unavailable; replies will arrive in one piece."))
		stream = chat.NewStream(nil, a.Logger)
	}
	defer stream.Close()

	if active := a.Store.ActiveID(); active != "" {
		a.openSession(ctx, stream, active)
	} else {
		a.listSessions()
	}

	a.println(t.Subtle.Render("Type /help for commands, /quit to exit."))

	for {
		input, ok := a.prompt(t.UserTag.Render("You: "))
		if !ok {
			break
		}
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit := a.handleChatCommand(ctx, stream, input)
			if quit {
				break
			}
			continue
		}

		a.submit(ctx, stream, input)
	}

	a.println("Goodbye!")
	return nil
}

// submit sends one message through whichever variant of the channel
// is available and renders the reply.
func (a *App) submit(ctx context.Context, stream *chat.Stream, text string) {
	t := a.Theme

	if a.Store.ActiveID() == "" {
		a.notice("No chat selected. Use /new or /open first.")
		return
	}

	var reply chat.Message
	var err error

	a.printf("%s", t.BotTag.Render("Bot: "))
	if stream.Connected() {
		reply, err = stream.Submit(ctx, text, func(chunk string) {
			a.printf("%s", chunk)
		})
		a.println()
	} else {
		reply, err = stream.SubmitViaREST(ctx, a.API, a.Store.ActiveID(), text)
		a.println(reply.Content)
	}

	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		a.println()
	case errors.Is(err, chat.ErrBusy):
		a.notice("Please wait for the current response to finish.")
	case err != nil:
		// The transcript already carries the apology; show it once.
		a.println(reply.Content)
	}
}

// openSession makes id active and seeds the stream transcript with
// its history (cache-backed when the network is down).
func (a *App) openSession(ctx context.Context, stream *chat.Stream, id string) {
	t := a.Theme

	history, err := a.Store.History(ctx, id)
	if err != nil {
		a.notice("Could not load this chat's history.")
	}
	if err := stream.SetHistory(history); err != nil {
		a.Logger.Warn("failed to seed transcript", "error", err)
		return
	}

	if len(history) == 0 {
		a.overview()
		return
	}

	a.println()
	for _, m := range history {
		tag := t.BotTag.Render("Bot: ")
		if m.Role == chat.RoleUser {
			tag = t.UserTag.Render("You: ")
		}
		a.println(tag + m.Content)
	}
	a.println()
}

// overview is the welcome panel shown on an empty transcript.
func (a *App) overview() {
	t := a.Theme
	a.println()
	a.println(t.Title.Render("Welcome to BOP-chatbot"))
	a.println(t.Subtle.Render("Your AI-powered assistant for all your banking needs."))
	a.println()
}

func (a *App) listSessions() {
	t := a.Theme
	sessions := a.Store.Sessions()
	active := a.Store.ActiveID()

	a.println()
	a.println(t.Subtitle.Render("Chats"))
	if len(sessions) == 0 {
		a.println(t.Subtle.Render("No chats yet. Create one with /new."))
		return
	}
	for i, s := range sessions {
		marker := "  "
		if s.ID == active {
			marker = t.Accent.Render("* ")
		}
		a.printf("%s%d. Chat %d (%s)\n", marker, i+1, i+1, s.ID)
	}
}

// resolveSession turns a /open or /delete argument (1-based index or
// raw id) into a session id.
func (a *App) resolveSession(arg string) (string, bool) {
	sessions := a.Store.Sessions()
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(sessions) {
			return sessions[n-1].ID, true
		}
		return "", false
	}
	for _, s := range sessions {
		if s.ID == arg {
			return s.ID, true
		}
	}
	return "", false
}

// handleChatCommand processes slash commands; returns true to quit.
func (a *App) handleChatCommand(ctx context.Context, stream *chat.Stream, cmd string) bool {
	t := a.Theme
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true

	case "/chats":
		a.listSessions()

	case "/new":
		sess, err := a.Store.Create(ctx)
		if errors.Is(err, chat.ErrBusy) {
			a.notice("A chat is already being created.")
			return false
		}
		if err != nil {
			a.notice("Could not create a chat.")
			return false
		}
		a.println(t.Success.Render("Created chat " + sess.ID))
		a.Store.Select(sess.ID)
		a.openSession(ctx, stream, sess.ID)

	case "/open":
		if len(parts) < 2 {
			a.notice("Usage: /open <number|id>")
			return false
		}
		id, ok := a.resolveSession(parts[1])
		if !ok || !a.Store.Select(id) {
			a.notice("That chat does not exist.")
			a.listSessions()
			return false
		}
		a.openSession(ctx, stream, id)

	case "/delete":
		if len(parts) < 2 {
			a.notice("Usage: /delete <number|id>")
			return false
		}
		id, ok := a.resolveSession(parts[1])
		if !ok {
			a.notice("That chat does not exist.")
			return false
		}
		if !a.confirm("Are you sure you want to delete this chat?") {
			return false
		}
		err := a.Store.Delete(ctx, id)
		switch {
		case errors.Is(err, chat.ErrActiveSession):
			a.notice("Close this chat before deleting it.")
		case errors.Is(err, chat.ErrBusy):
			a.notice("A delete is already in progress.")
		case err != nil:
			a.notice("Could not delete the chat.")
		default:
			a.println(t.Success.Render("Deleted chat " + id))
		}

	case "/theme":
		a.Theme.Toggle()
		a.println("Theme: " + a.Theme.Mode())

	case "/help":
		a.println("Available commands:")
		a.println("  /chats              - List your chats")
		a.println("  /new                - Create a chat")
		a.println("  /open <number|id>   - Open a chat")
		a.println("  /delete <number|id> - Delete a chat")
		a.println("  /theme              - Toggle light/dark theme")
		a.println("  /quit, /exit        - Leave the chat")

	default:
		a.notice("Unknown command. Type /help.")
	}

	return false
}
