// Package httpstore implements client.Store over the backend's REST API and
// websocket push channel.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/indicae/backend/internal/client"
)

const requestTimeout = 15 * time.Second

// Client talks to one backend instance on behalf of one authenticated user.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	dialer  *websocket.Dialer
}

// New builds a store over the API at baseURL (e.g. "http://localhost:8080")
// using the JWT obtained from Login or Register.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
		dialer:  websocket.DefaultDialer,
	}
}

var _ client.Store = (*Client)(nil)

// Login exchanges credentials for a session token.
func Login(ctx context.Context, baseURL, email, password string) (string, error) {
	return authenticate(ctx, baseURL, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and returns its session token.
func Register(ctx context.Context, baseURL, name, email, password string) (string, error) {
	return authenticate(ctx, baseURL, "/api/v1/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func authenticate(ctx context.Context, baseURL, path string, body map[string]string) (string, error) {
	c := New(baseURL, "")
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Wire representations, matching the server's JSON.

type wireProfile struct {
	UserID     string   `json:"user_id"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	DOB        string   `json:"dob"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Education  string   `json:"education"`
	SoftSkills []string `json:"soft_skills"`
	HardSkills []string `json:"hard_skills"`
	AvatarURL  string   `json:"avatar_url"`
}

func (w wireProfile) toProfile() client.Profile {
	name := w.FirstName
	if w.LastName != "" {
		name += " " + w.LastName
	}
	return client.Profile{
		ID:         w.UserID,
		Name:       name,
		DOB:        w.DOB,
		City:       w.City,
		State:      w.State,
		Education:  w.Education,
		SoftSkills: w.SoftSkills,
		HardSkills: w.HardSkills,
		AvatarURL:  w.AvatarURL,
	}
}

type wireRequest struct {
	ID              string    `json:"id"`
	SenderID        string    `json:"sender_id"`
	ReceiverID      string    `json:"receiver_id"`
	Status          string    `json:"status"`
	InterestMessage string    `json:"interest_message"`
	CreatedAt       time.Time `json:"created_at"`
}

func (w wireRequest) toRequest() client.Request {
	return client.Request{
		ID:              w.ID,
		SenderID:        w.SenderID,
		ReceiverID:      w.ReceiverID,
		Status:          w.Status,
		InterestMessage: w.InterestMessage,
		CreatedAt:       w.CreatedAt,
	}
}

type wireMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func (w wireMessage) toMessage() client.Message {
	return client.Message{
		ID:         w.ID,
		SenderID:   w.SenderID,
		ReceiverID: w.ReceiverID,
		Text:       w.Content,
		CreatedAt:  w.CreatedAt,
	}
}

type wireEvent struct {
	Type    string       `json:"type"`
	Message *wireMessage `json:"message,omitempty"`
	Request *wireRequest `json:"request,omitempty"`
}

// OwnUserID resolves the session user's id from its own profile. The token
// is opaque to the client, so this is the one extra round-trip a session
// needs before it can start.
func (c *Client) OwnUserID(ctx context.Context) (string, error) {
	var w wireProfile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profiles/me", nil, &w); err != nil {
		return "", err
	}
	return w.UserID, nil
}

// OwnProfile returns the session user's directory record.
func (c *Client) OwnProfile(ctx context.Context) (client.Profile, error) {
	var w wireProfile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profiles/me", nil, &w); err != nil {
		return client.Profile{}, err
	}
	return w.toProfile(), nil
}

func (c *Client) ListProfiles(ctx context.Context) ([]client.Profile, error) {
	var wires []wireProfile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profiles", nil, &wires); err != nil {
		return nil, err
	}
	out := make([]client.Profile, len(wires))
	for i, w := range wires {
		out[i] = w.toProfile()
	}
	return out, nil
}

func (c *Client) GetProfiles(ctx context.Context, ids []string) (map[string]client.Profile, error) {
	body := map[string][]string{"user_ids": ids}
	var wires map[string]wireProfile
	if err := c.do(ctx, http.MethodPost, "/api/v1/profiles/lookup", body, &wires); err != nil {
		return nil, err
	}
	out := make(map[string]client.Profile, len(wires))
	for id, w := range wires {
		out[id] = w.toProfile()
	}
	return out, nil
}

func (c *Client) ListIncomingPending(ctx context.Context) ([]client.Request, error) {
	return c.listRequests(ctx, "/api/v1/connections/incoming")
}

func (c *Client) ListOutgoingPending(ctx context.Context) ([]client.Request, error) {
	return c.listRequests(ctx, "/api/v1/connections/outgoing")
}

func (c *Client) ListAccepted(ctx context.Context) ([]client.Request, error) {
	return c.listRequests(ctx, "/api/v1/connections/accepted")
}

func (c *Client) listRequests(ctx context.Context, path string) ([]client.Request, error) {
	var wires []wireRequest
	if err := c.do(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, err
	}
	out := make([]client.Request, len(wires))
	for i, w := range wires {
		out[i] = w.toRequest()
	}
	return out, nil
}

func (c *Client) CreateRequest(ctx context.Context, receiverID, interestMessage string) (client.Request, error) {
	body := map[string]string{
		"receiver_id":      receiverID,
		"interest_message": interestMessage,
	}
	var w wireRequest
	if err := c.do(ctx, http.MethodPost, "/api/v1/connections", body, &w); err != nil {
		return client.Request{}, err
	}
	return w.toRequest(), nil
}

func (c *Client) RespondRequest(ctx context.Context, requestID string, accept bool) (client.Request, error) {
	action := "reject"
	if accept {
		action = "accept"
	}
	var w wireRequest
	if err := c.do(ctx, http.MethodPut, "/api/v1/connections/"+url.PathEscape(requestID), map[string]string{"action": action}, &w); err != nil {
		return client.Request{}, err
	}
	return w.toRequest(), nil
}

func (c *Client) History(ctx context.Context, contactID string) ([]client.Message, error) {
	var wires []wireMessage
	if err := c.do(ctx, http.MethodGet, "/api/v1/messages/"+url.PathEscape(contactID), nil, &wires); err != nil {
		return nil, err
	}
	out := make([]client.Message, len(wires))
	for i, w := range wires {
		out[i] = w.toMessage()
	}
	return out, nil
}

func (c *Client) SendMessage(ctx context.Context, contactID, text string) (client.Message, error) {
	body := map[string]string{
		"receiver_id": contactID,
		"content":     text,
	}
	var w wireMessage
	if err := c.do(ctx, http.MethodPost, "/api/v1/messages", body, &w); err != nil {
		return client.Message{}, err
	}
	return w.toMessage(), nil
}

// Subscribe dials the websocket endpoint and streams decoded events until
// the context is cancelled or the connection drops. The returned channel is
// closed on teardown; missed events are not replayed.
func (c *Client) Subscribe(ctx context.Context) (<-chan client.Event, error) {
	wsURL, err := c.websocketURL()
	if err != nil {
		return nil, err
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("dial live updates: %w", err)
	}

	events := make(chan client.Event)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(events)
		defer func() { _ = conn.Close() }()
		for {
			var w wireEvent
			if err := conn.ReadJSON(&w); err != nil {
				if ctx.Err() == nil {
					logrus.WithError(err).Warn("live update stream closed")
				}
				return
			}
			ev := client.Event{Type: w.Type}
			if w.Message != nil {
				m := w.Message.toMessage()
				ev.Message = &m
			}
			if w.Request != nil {
				r := w.Request.toRequest()
				ev.Request = &r
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.baseURL + "/api/v1/ws")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
