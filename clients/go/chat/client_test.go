package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok-alice", r.Header.Get("Authorization"))

		var req sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bob", req.ReceiverID)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Message{
			ID: 12, SenderID: "alice", ReceiverID: "bob",
			Content: req.Content, Status: "sent", Timestamp: time.Now().UTC(),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-alice")
	msg, err := c.Send(context.Background(), "bob", "مرحبا")
	require.NoError(t, err)
	assert.Equal(t, int64(12), msg.ID)
	assert.Equal(t, "مرحبا", msg.Content)
}

func TestClientHistoryCursor(t *testing.T) {
	before := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/messages/bob", r.URL.Path)
		assert.Equal(t, before.Format(time.RFC3339Nano), r.URL.Query().Get("before"))
		_ = json.NewEncoder(w).Encode([]Message{{ID: 1, SenderID: "bob", Content: "hi", Status: "read", IsRead: true, Timestamp: before.Add(-time.Hour)}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	msgs, err := c.History(context.Background(), "bob", before)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1), msgs[0].ID)
}

func TestClientHistoryOmitsZeroCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("before"))
		_ = json.NewEncoder(w).Encode([]Message{})
	}))
	defer srv.Close()

	msgs, err := NewClient(srv.URL, "tok").History(context.Background(), "bob", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestClientMarkRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/messages/bob/read", r.URL.Path)
		_ = json.NewEncoder(w).Encode(MarkReadResult{Success: true, ReadMessageIDs: []int64{3, 4}})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, "tok").MarkRead(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []int64{3, 4}, res.ReadMessageIDs)
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not a participant in this conversation"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "tok").History(context.Background(), "bob", time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "not a participant")
}

func TestClientUnreadCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/messages/unread/count", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]int{"unreadCount": 5})
	}))
	defer srv.Close()

	n, err := NewClient(srv.URL, "tok").UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
