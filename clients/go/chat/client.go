// Package chat provides a Go client for the messaging API: a thin REST
// client plus a Conversation view model that reconciles optimistic
// sends, live pushes and paginated history into one ordered list.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// PageSize is the server's fixed history page size. A page shorter than
// this means the conversation start has been reached.
const PageSize = 20

// Message is a stored message as the API returns it.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	IsRead     bool      `json:"is_read"`
	Timestamp  time.Time `json:"timestamp"`
}

// ContactSummary is one inbox row.
type ContactSummary struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	LastMessage   string    `json:"last_message"`
	LastTimestamp time.Time `json:"last_timestamp"`
	LastSenderID  string    `json:"last_sender_id"`
	LastStatus    string    `json:"last_status"`
	UnreadCount   int       `json:"unread_count"`
}

// Client is a messaging API client. Token is the caller's bearer token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("chat: API error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

type sendRequest struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// Send persists a message to receiverID and returns the stored record.
// The returned ID and Timestamp are the only server-trusted values; use
// them to reconcile an optimistic local copy.
func (c *Client) Send(ctx context.Context, receiverID, content string) (Message, error) {
	body, _ := json.Marshal(sendRequest{ReceiverID: receiverID, Content: content})
	respBody, err := c.doRequest(ctx, http.MethodPost, "/api/v1/messages", body)
	if err != nil {
		return Message{}, err
	}
	var msg Message
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// History fetches one ascending page of the conversation with
// otherUserID. A zero before fetches the newest page; otherwise only
// messages strictly older than before are returned. Safe to cancel and
// retry.
func (c *Client) History(ctx context.Context, otherUserID string, before time.Time) ([]Message, error) {
	path := "/api/v1/messages/" + url.PathEscape(otherUserID)
	if !before.IsZero() {
		path += "?before=" + url.QueryEscape(before.Format(time.RFC3339Nano))
	}
	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var msgs []Message
	if err := json.Unmarshal(respBody, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkReadResult reports which message IDs a mark-read call flipped.
type MarkReadResult struct {
	Success        bool    `json:"success"`
	ReadMessageIDs []int64 `json:"readMessageIds"`
}

// MarkRead marks every unread message from otherUserID as read.
func (c *Client) MarkRead(ctx context.Context, otherUserID string) (MarkReadResult, error) {
	path := "/api/v1/messages/" + url.PathEscape(otherUserID) + "/read"
	respBody, err := c.doRequest(ctx, http.MethodPatch, path, nil)
	if err != nil {
		return MarkReadResult{}, err
	}
	var res MarkReadResult
	if err := json.Unmarshal(respBody, &res); err != nil {
		return MarkReadResult{}, err
	}
	return res, nil
}

// Contacts lists conversation partners, most recent first.
func (c *Client) Contacts(ctx context.Context) ([]ContactSummary, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/api/v1/messages/contacts", nil)
	if err != nil {
		return nil, err
	}
	var contacts []ContactSummary
	if err := json.Unmarshal(respBody, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// UnreadCount returns the total unread messages across conversations.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/api/v1/messages/unread/count", nil)
	if err != nil {
		return 0, err
	}
	var res struct {
		UnreadCount int `json:"unreadCount"`
	}
	if err := json.Unmarshal(respBody, &res); err != nil {
		return 0, err
	}
	return res.UnreadCount, nil
}
