package ui

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"bopchat/internal/api"
	"bopchat/internal/auth"
	"bopchat/internal/chat"
	"bopchat/internal/config"
	"bopchat/internal/reviews"
)

// App wires the views to their dependencies. One instance serves a
// whole run of the program.
type App struct {
	Config config.Config
	Theme  *Theme
	Logger *slog.Logger
	API    *api.Client
	Auth   *auth.Store
	Store  *chat.Store
	Data   *reviews.Datasets

	in  *bufio.Scanner
	out io.Writer
}

// NewApp binds the views to stdin/stdout equivalents. in and out are
// injectable for tests.
func NewApp(cfg config.Config, theme *Theme, logger *slog.Logger, client *api.Client, tokens *auth.Store, store *chat.Store, data *reviews.Datasets, in io.Reader, out io.Writer) *App {
	return &App{
		Config: cfg,
		Theme:  theme,
		Logger: logger,
		API:    client,
		Auth:   tokens,
		Store:  store,
		Data:   data,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.out, args...)
}

// notice prints a short user-facing error line.
func (a *App) notice(msg string) {
	a.println(a.Theme.Error.Render(msg))
}

// prompt reads one line of input, returning false on EOF.
func (a *App) prompt(label string) (string, bool) {
	a.printf("%s", label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// confirm asks a yes/no question, defaulting to no.
func (a *App) confirm(question string) bool {
	answer, ok := a.prompt(question + " [y/N]: ")
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
