// Package api implements the REST client for the chatbot backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// TokenSource supplies the bearer token attached to authenticated
// requests. Satisfied by *auth.Store.
type TokenSource interface {
	Token() string
}

// Client talks to the chatbot backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewClient creates a backend client. baseURL must not have a trailing
// slash.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
		tracer:     tracer,
		meter:      meter,
	}
}

// do executes a request inside a span, records the duration histogram
// and decodes the JSON response into out (when out is non-nil).
func (c *Client) do(ctx context.Context, spanName string, req *http.Request, authed bool, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, spanName)
	defer span.End()
	req = req.WithContext(ctx)

	if authed {
		req.Header.Set("Authorization", "Bearer "+c.tokens.Token())
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	duration := time.Since(start)
	histogram, err := c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(duration.Milliseconds()))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("backend call failed",
			"span", spanName, "status", resp.Status, "body", truncate(string(body), 256))
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ID accepts both string and numeric JSON ids; the backend issues
// integers but the client treats ids as opaque strings.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// --- Auth ---

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. The endpoint takes a
// form-encoded body.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp loginResponse
	if err := c.do(ctx, "login", req, false, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("login response contained no token")
	}
	return resp.AccessToken, nil
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	req, err := c.jsonRequest(http.MethodPost, "/signup", signupRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return err
	}
	return c.do(ctx, "signup", req, false, nil)
}

// --- Chats ---

type chatResponse struct {
	ID        ID        `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession is one remote chat session.
type ChatSession struct {
	ID        string
	CreatedAt time.Time
}

// ListChats fetches all sessions for the authenticated user.
func (c *Client) ListChats(ctx context.Context) ([]ChatSession, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/chats/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var raw []chatResponse
	if err := c.do(ctx, "list_chats", req, true, &raw); err != nil {
		return nil, err
	}

	sessions := make([]ChatSession, len(raw))
	for i, r := range raw {
		sessions[i] = ChatSession{ID: string(r.ID), CreatedAt: r.CreatedAt}
	}
	return sessions, nil
}

// CreateChat requests a new session and returns the server-issued id.
func (c *Client) CreateChat(ctx context.Context) (ChatSession, error) {
	req, err := c.jsonRequest(http.MethodPost, "/chats/", struct{}{})
	if err != nil {
		return ChatSession{}, err
	}

	var raw chatResponse
	if err := c.do(ctx, "create_chat", req, true, &raw); err != nil {
		return ChatSession{}, err
	}
	return ChatSession{ID: string(raw.ID), CreatedAt: raw.CreatedAt}, nil
}

// DeleteChat removes a session on the backend.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/chats/"+url.PathEscape(chatID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(ctx, "delete_chat", req, true, nil)
}

// --- Messages ---

type messageResponse struct {
	ID        ID        `json:"id"`
	ChatID    ID        `json:"chat_id"`
	Sender    string    `json:"sender"` // "user" or "bot"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatMessage is one persisted message.
type ChatMessage struct {
	ID        string
	ChatID    string
	Sender    string
	Content   string
	Timestamp time.Time
}

// Messages fetches the ordered history of a session.
func (c *Client) Messages(ctx context.Context, chatID string) ([]ChatMessage, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/chats/"+url.PathEscape(chatID)+"/messages", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var raw []messageResponse
	if err := c.do(ctx, "list_messages", req, true, &raw); err != nil {
		return nil, err
	}

	msgs := make([]ChatMessage, len(raw))
	for i, r := range raw {
		msgs[i] = ChatMessage{
			ID:        string(r.ID),
			ChatID:    string(r.ChatID),
			Sender:    r.Sender,
			Content:   r.Content,
			Timestamp: r.Timestamp,
		}
	}
	return msgs, nil
}

type sendMessageRequest struct {
	ChatID      string `json:"chat_id"`
	UserMessage string `json:"user_message"`
}

// SendMessage posts a user message and returns the persisted user and
// bot messages. This is the request/response variant of the message
// channel; the websocket variant lives in internal/chat.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) ([]ChatMessage, error) {
	req, err := c.jsonRequest(http.MethodPost, "/messages/", sendMessageRequest{ChatID: chatID, UserMessage: text})
	if err != nil {
		return nil, err
	}

	var raw []messageResponse
	if err := c.do(ctx, "send_message", req, true, &raw); err != nil {
		return nil, err
	}

	msgs := make([]ChatMessage, len(raw))
	for i, r := range raw {
		msgs[i] = ChatMessage{
			ID:        string(r.ID),
			ChatID:    string(r.ChatID),
			Sender:    r.Sender,
			Content:   r.Content,
			Timestamp: r.Timestamp,
		}
	}
	return msgs, nil
}

// --- Reviews ---

// Review is one customer review as served by GET /reviews.
type Review struct {
	ID        int    `json:"id"`
	Review    string `json:"review"`
	Stars     int    `json:"stars"`
	Reviewer  string `json:"reviewer"`
	Source    string `json:"source"`
	Location  string `json:"location"`
	Sentiment string `json:"sentiment"` // Positive | Neutral | Negative
}

// ReviewFilter selects reviews server-side. Zero values mean "no
// constraint".
type ReviewFilter struct {
	Stars     int
	Sentiment string
	Location  string
}

// Reviews fetches reviews matching the filter.
func (c *Client) Reviews(ctx context.Context, filter ReviewFilter) ([]Review, error) {
	q := url.Values{}
	if filter.Stars > 0 {
		q.Set("stars", strconv.Itoa(filter.Stars))
	}
	if filter.Sentiment != "" && filter.Sentiment != "All" {
		q.Set("sentiment", filter.Sentiment)
	}
	if filter.Location != "" && filter.Location != "All" {
		q.Set("location", filter.Location)
	}

	endpoint := c.baseURL + "/reviews"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var reviews []Review
	if err := c.do(ctx, "list_reviews", req, false, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// --- Institution profile ---

type profileResponse struct {
	Profile string `json:"profile"`
}

// InstitutionProfile fetches the free-text profile document.
func (c *Client) InstitutionProfile(ctx context.Context) (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/institution-profile", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	var resp profileResponse
	if err := c.do(ctx, "institution_profile", req, false, &resp); err != nil {
		return "", err
	}
	return resp.Profile, nil
}

// BankProfileData fetches the structured profile fields, arrays of
// strings keyed by category.
func (c *Client) BankProfileData(ctx context.Context) (map[string][]string, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/data/bank_profile_data.json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var data map[string][]string
	if err := c.do(ctx, "bank_profile_data", req, false, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) jsonRequest(method, path string, body interface{}) (*http.Request, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
