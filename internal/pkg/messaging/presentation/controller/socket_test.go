package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messaging "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/domain"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/event"
)

// dialWS connects an authenticated websocket client and consumes the
// connected handshake frame.
func dialWS(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws?token=" + signToken(t, userID)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	frame := readFrame(t, conn)
	require.Equal(t, event.TypeConnected, frame.Type)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) event.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	frame, err := event.Decode(data)
	require.NoError(t, err)
	return frame
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame event.Envelope) {
	t.Helper()
	payload, err := frame.Encode()
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
}

func TestSocketRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSocketTypingRelay(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	alice := dialWS(t, srv, "alice")
	bob := dialWS(t, srv, "bob")

	writeFrame(t, alice, event.Envelope{Type: event.TypeTyping, ToUserID: "bob"})
	frame := readFrame(t, bob)
	assert.Equal(t, event.TypeTyping, frame.Type)
	assert.Equal(t, "alice", frame.FromUserID, "relay stamps the socket identity")

	writeFrame(t, alice, event.Envelope{Type: event.TypeStopTyping, ToUserID: "bob"})
	frame = readFrame(t, bob)
	assert.Equal(t, event.TypeStopTyping, frame.Type)
}

func TestSocketPushOnSend(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	bob := dialWS(t, srv, "bob")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/messages",
		strings.NewReader(`{"receiver_id":"bob","content":"hello"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, "alice"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sent messaging.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sent))

	frame := readFrame(t, bob)
	assert.Equal(t, event.TypePrivateMessage, frame.Type)
	assert.Equal(t, "alice", frame.FromUserID)
	assert.Equal(t, sent.ID, frame.ID)
	assert.Equal(t, "hello", frame.Message)

	// the live push acks delivery in storage
	require.Eventually(t, func() bool {
		env.repo.mu.Lock()
		defer env.repo.mu.Unlock()
		for _, m := range env.repo.msgs {
			if m.ID == sent.ID {
				return m.Status == messaging.StatusDelivered
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestSocketMessageReadReceipt(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	seeded := env.repo.seed("alice", "bob", "are you there?")

	alice := dialWS(t, srv, "alice")
	bob := dialWS(t, srv, "bob")

	writeFrame(t, bob, event.Envelope{Type: event.TypeMessageRead, MessageID: seeded.ID})

	frame := readFrame(t, alice)
	assert.Equal(t, event.TypeStatusUpdate, frame.Type)
	assert.Equal(t, seeded.ID, frame.MessageID)
	assert.Equal(t, string(messaging.StatusRead), frame.Status)

	// a repeat intent changes nothing and emits nothing further
	writeFrame(t, bob, event.Envelope{Type: event.TypeMessageRead, MessageID: seeded.ID})
	require.NoError(t, alice.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := alice.ReadMessage()
	assert.Error(t, err, "no duplicate receipt expected")
}

func TestSocketRejectsMalformedFrames(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	alice := dialWS(t, srv, "alice")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"mystery"}`)))
	frame := readFrame(t, alice)
	assert.Equal(t, event.TypeError, frame.Type)

	// connection survives the bad frame
	writeFrame(t, alice, event.Envelope{Type: event.TypeChatOpen, ChattingWith: "bob"})
	assert.Eventually(t, func() bool {
		partner, ok := env.registry.Viewing("alice")
		return ok && partner == "bob"
	}, time.Second, 10*time.Millisecond)
}
